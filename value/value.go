// Package value implements the dynamic JSON-like value lattice that flows
// through every record in the engine: Null, Bool, Number, String, Array and
// Object. A Record is simply a Value known to be object-shaped.
package value

import "fmt"

// Kind distinguishes the variants of the value lattice.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a dynamically typed, structurally comparable value.
//
// The zero Value is Null. Object preserves insertion order, so two
// Objects built from the same key/value pairs in a different order
// render differently through ToJSON but are still structurally Equal
// (Equal ignores key order; JSON rendering and Merge observe it).
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
	arr  []Value
	obj  *Object
}

// Object is an ordered string-keyed mapping of Value.
type Object struct {
	keys   []string
	values map[string]Value
}

// NewObject returns an empty, ordered Object.
func NewObject() *Object {
	return &Object{values: make(map[string]Value)}
}

// Set inserts or overwrites key. Overwriting an existing key keeps its
// original position in Keys(); inserting a new key appends it.
func (o *Object) Set(key string, v Value) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Get returns the value at key and whether it was present.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Keys returns the keys in insertion order. Callers must not mutate it.
func (o *Object) Keys() []string {
	return o.keys
}

// Len returns the number of keys.
func (o *Object) Len() int {
	return len(o.keys)
}

// Null is the Null value.
var Null = Value{kind: KindNull}

// Bool constructs a Bool value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number constructs a Number value.
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

// String constructs a String value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Array constructs an Array value.
func Array(items []Value) Value { return Value{kind: KindArray, arr: items} }

// FromObject constructs an Object value. A Record is just this, viewed
// through the Record alias.
func FromObject(o *Object) Value { return Value{kind: KindObject, obj: o} }

// Record is a Value known to be object-shaped. Records flow through
// operator channels.
type Record = Value

// Kind reports the variant of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is Null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the bool payload and whether v is a Bool.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsNumber returns the float64 payload and whether v is a Number.
func (v Value) AsNumber() (float64, bool) { return v.n, v.kind == KindNumber }

// AsString returns the string payload and whether v is a String.
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// AsArray returns the element slice and whether v is an Array.
func (v Value) AsArray() ([]Value, bool) { return v.arr, v.kind == KindArray }

// AsObject returns the Object and whether v is an Object.
func (v Value) AsObject() (*Object, bool) { return v.obj, v.kind == KindObject }

// Get looks up key in an Object value. Returns Null, false for any other
// kind or a missing key.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindObject || v.obj == nil {
		return Null, false
	}
	return v.obj.Get(key)
}

// Truthy implements spec.md's truthiness table: Null, false, 0, "", [],
// {} are false; everything else is true.
func Truthy(v Value) bool {
	switch v.kind {
	case KindNull:
		return false
	case KindBool:
		return v.b
	case KindNumber:
		return v.n != 0
	case KindString:
		return v.s != ""
	case KindArray:
		return len(v.arr) > 0
	case KindObject:
		return v.obj != nil && v.obj.Len() > 0
	default:
		return false
	}
}

// Equal implements structural equality across the whole lattice.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		return a.n == b.n
	case KindString:
		return a.s == b.s
	case KindArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		ao, bo := a.obj, b.obj
		if ao == nil || bo == nil {
			return ao == bo
		}
		if ao.Len() != bo.Len() {
			return false
		}
		for _, k := range ao.Keys() {
			av, _ := ao.Get(k)
			bv, ok := bo.Get(k)
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// String renders v for diagnostics; it is not the JSON wire form (use
// ToJSON for that).
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindNumber:
		return fmt.Sprintf("%g", v.n)
	case KindString:
		return v.s
	case KindArray:
		return fmt.Sprintf("%v", v.arr)
	case KindObject:
		return fmt.Sprintf("object(%d keys)", v.obj.Len())
	default:
		return "?"
	}
}

// Merge returns a new Object-shaped Record combining left then right,
// with right-hand keys overwriting left-hand keys on collision. Both
// arguments must be Object-shaped; non-objects are treated as empty.
func Merge(left, right Value) Value {
	out := NewObject()
	if lo, ok := left.AsObject(); ok {
		for _, k := range lo.Keys() {
			v, _ := lo.Get(k)
			out.Set(k, v)
		}
	}
	if ro, ok := right.AsObject(); ok {
		for _, k := range ro.Keys() {
			v, _ := ro.Get(k)
			out.Set(k, v)
		}
	}
	return FromObject(out)
}
