package catalog

import (
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"

	"github.com/streamql-io/streamql/value"
)

// registerBuiltins installs the native function table. lower is
// spec-mandated; upper, concat, coalesce and length round out the
// dialect the way a production SQL engine's builtin function package
// does (the teacher registers a comparable small set of scalar
// functions alongside its mandatory ones). Every function here is
// total and never panics: lower and upper return an empty string and
// log a diagnostic for a non-string argument; length returns Null and
// logs a diagnostic for a wrong argument count or a value without a
// length; concat renders Null, arrays and objects as empty text;
// coalesce returns Null when every argument is Null.
func registerBuiltins(c *Catalog) {
	c.RegisterFunction("lower", fnLower)
	c.RegisterFunction("upper", fnUpper)
	c.RegisterFunction("concat", fnConcat)
	c.RegisterFunction("coalesce", fnCoalesce)
	c.RegisterFunction("length", fnLength)
}

func fnLower(args []value.Value) value.Value {
	s, ok := stringArg(args, 0)
	if !ok {
		logrus.WithField("function", "lower").Warn("argument is not a string")
		return value.String("")
	}
	return value.String(strings.ToLower(s))
}

func fnUpper(args []value.Value) value.Value {
	s, ok := stringArg(args, 0)
	if !ok {
		logrus.WithField("function", "upper").Warn("argument is not a string")
		return value.String("")
	}
	return value.String(strings.ToUpper(s))
}

func fnConcat(args []value.Value) value.Value {
	var b strings.Builder
	for _, a := range args {
		if s, ok := a.AsString(); ok {
			b.WriteString(s)
			continue
		}
		b.WriteString(cast.ToString(renderForConcat(a)))
	}
	return value.String(b.String())
}

// renderForConcat produces a best-effort scalar for cast.ToString to
// coerce; non-scalar values (arrays, objects) concat as empty per the
// "never panic, degrade to a safe default" invariant.
func renderForConcat(v value.Value) interface{} {
	switch v.Kind() {
	case value.KindNumber:
		n, _ := v.AsNumber()
		return n
	case value.KindBool:
		b, _ := v.AsBool()
		return b
	default:
		return ""
	}
}

func fnCoalesce(args []value.Value) value.Value {
	for _, a := range args {
		if !a.IsNull() {
			return a
		}
	}
	return value.Null
}

func fnLength(args []value.Value) value.Value {
	if len(args) != 1 {
		logrus.WithField("function", "length").Warn("expected exactly one argument")
		return value.Null
	}
	switch args[0].Kind() {
	case value.KindString:
		s, _ := args[0].AsString()
		return value.Number(float64(len(s)))
	case value.KindArray:
		arr, _ := args[0].AsArray()
		return value.Number(float64(len(arr)))
	case value.KindObject:
		obj, _ := args[0].AsObject()
		return value.Number(float64(obj.Len()))
	default:
		logrus.WithField("function", "length").Warn("argument has no length")
		return value.Null
	}
}

func stringArg(args []value.Value, i int) (string, bool) {
	if i >= len(args) {
		return "", false
	}
	return args[i].AsString()
}
