// Package eval implements the pure expression evaluator of spec.md
// §4.4: (catalog, record, expr) -> value. Evaluation never fails or
// performs I/O; unsupported combinations yield Null plus a returned
// Diagnostic, never an aborted query.
package eval

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/streamql-io/streamql/ast"
	"github.com/streamql-io/streamql/catalog"
	"github.com/streamql-io/streamql/value"
)

// Diagnostic is a non-fatal evaluation note: a missing identifier, an
// unknown function, or a type-mismatched operator. It is logged by the
// caller (the operator task that invoked Eval), not here, so that the
// log line carries the task's own context fields.
type Diagnostic struct {
	Message string
}

// Eval computes expr against record under cat, returning both the
// result and any diagnostics raised along the way.
func Eval(cat *catalog.Catalog, record value.Record, expr ast.Expr) (value.Value, []Diagnostic) {
	var diags []Diagnostic
	v := eval(cat, record, expr, &diags)
	return v, diags
}

func eval(cat *catalog.Catalog, record value.Record, expr ast.Expr, diags *[]Diagnostic) value.Value {
	switch e := expr.(type) {
	case *ast.Ident:
		v, ok := record.Get(e.Name)
		if !ok {
			note(diags, fmt.Sprintf("there is no variable named %s", e.Name))
			return value.Null
		}
		return v

	case *ast.StringLit:
		return value.String(e.Value)

	case *ast.NumberLit:
		return value.Number(e.Value)

	case *ast.FunctionCall:
		fn, ok := cat.LookupFunction(e.Name)
		if !ok {
			note(diags, fmt.Sprintf("there is no function named %s", e.Name))
			return value.Null
		}
		args := make([]value.Value, len(e.Args))
		for i, a := range e.Args {
			args[i] = eval(cat, record, a, diags)
		}
		return fn(args)

	case *ast.BinaryOp:
		left := eval(cat, record, e.Left, diags)
		right := eval(cat, record, e.Right, diags)
		return evalBinaryOp(left, e.Op, right, diags)

	default:
		note(diags, fmt.Sprintf("unsupported expression %T", expr))
		return value.Null
	}
}

func evalBinaryOp(left value.Value, op ast.BinOp, right value.Value, diags *[]Diagnostic) value.Value {
	if op == ast.OpEq {
		return value.Bool(value.Equal(left, right))
	}

	ln, lok := left.AsNumber()
	rn, rok := right.AsNumber()
	if !lok || !rok {
		note(diags, fmt.Sprintf("operator %s requires numeric operands", op))
		return value.Null
	}

	switch op {
	case ast.OpAdd:
		return value.Number(ln + rn)
	case ast.OpSub:
		return value.Number(ln - rn)
	case ast.OpMul:
		return value.Number(ln * rn)
	case ast.OpDiv:
		// IEEE 754 division; by-zero yields ±Inf or NaN, not an error.
		return value.Number(ln / rn)
	case ast.OpGt:
		return value.Bool(ln > rn)
	case ast.OpLt:
		return value.Bool(ln < rn)
	case ast.OpGte:
		return value.Bool(ln >= rn)
	case ast.OpLte:
		return value.Bool(ln <= rn)
	default:
		note(diags, fmt.Sprintf("unsupported operator %s", op))
		return value.Null
	}
}

func note(diags *[]Diagnostic, msg string) {
	*diags = append(*diags, Diagnostic{Message: msg})
}

// Log writes diags to the structured logger, tagged with the calling
// operator's name. Operators call this after Eval rather than Eval
// logging globally, so diagnostics carry the task's own context.
func Log(operator string, diags []Diagnostic) {
	for _, d := range diags {
		logrus.WithField("operator", operator).Warn(d.Message)
	}
}
