package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/streamql-io/streamql/catalog"
	"github.com/streamql-io/streamql/value"
)

func TestRegisterRelationRejectsDuplicates(t *testing.T) {
	cat := catalog.New()
	desc := catalog.StreamRelation{StreamName: "s"}

	require.True(t, cat.RegisterRelation("r", desc))
	require.False(t, cat.RegisterRelation("r", desc))
}

func TestLookupRelationIsTotal(t *testing.T) {
	cat := catalog.New()
	_, ok := cat.LookupRelation("nope")
	require.False(t, ok)
}

func TestLowerBuiltinIsPreregistered(t *testing.T) {
	cat := catalog.New()
	fn, ok := cat.LookupFunction("lower")
	require.True(t, ok)

	v := fn([]value.Value{value.String("AbC")})
	s, ok := v.AsString()
	require.True(t, ok)
	require.Equal(t, "abc", s)
}

func TestLowerBuiltinNonStringArgReturnsEmptyString(t *testing.T) {
	cat := catalog.New()
	fn, _ := cat.LookupFunction("lower")

	v := fn([]value.Value{value.Number(5)})
	s, ok := v.AsString()
	require.True(t, ok)
	require.Equal(t, "", s)
}

func TestRegisterFunctionOverwriteIsIdempotent(t *testing.T) {
	cat := catalog.New()
	cat.RegisterFunction("id", func(args []value.Value) value.Value {
		if len(args) == 0 {
			return value.Null
		}
		return args[0]
	})
	cat.RegisterFunction("id", func(args []value.Value) value.Value {
		return value.String("second")
	})

	fn, ok := cat.LookupFunction("id")
	require.True(t, ok)
	v := fn(nil)
	s, _ := v.AsString()
	require.Equal(t, "second", s)
}

func TestCoalesceReturnsFirstNonNull(t *testing.T) {
	cat := catalog.New()
	fn, ok := cat.LookupFunction("coalesce")
	require.True(t, ok)

	v := fn([]value.Value{value.Null, value.Null, value.Number(7)})
	n, ok := v.AsNumber()
	require.True(t, ok)
	require.Equal(t, float64(7), n)
}
