package ctyconv

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestToNative(t *testing.T) {
	tests := []struct {
		name string
		in   cty.Value
		want any
	}{
		{name: "null", in: cty.NullVal(cty.String), want: nil},
		{name: "unknown", in: cty.UnknownVal(cty.Number), want: nil},
		{name: "string", in: cty.StringVal("hi"), want: "hi"},
		{name: "number", in: cty.NumberIntVal(3), want: 3.0},
		{name: "bool", in: cty.True, want: true},
		{name: "tuple", in: cty.TupleVal([]cty.Value{cty.StringVal("a"), cty.NumberIntVal(1)}), want: []any{"a", 1.0}},
		{name: "list", in: cty.ListVal([]cty.Value{cty.True, cty.False}), want: []any{true, false}},
		{name: "object", in: cty.ObjectVal(map[string]cty.Value{
			"a": cty.NumberIntVal(1),
			"b": cty.ObjectVal(map[string]cty.Value{"c": cty.StringVal("d")}),
		}), want: map[string]any{"a": 1.0, "b": map[string]any{"c": "d"}}},
		{name: "empty tuple", in: cty.EmptyTupleVal, want: []any{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToNative(tt.in)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ToNative() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFromNative(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want cty.Value
	}{
		{name: "nil", in: nil, want: cty.NullVal(cty.DynamicPseudoType)},
		{name: "int", in: 3, want: cty.NumberIntVal(3)},
		{name: "float", in: 1.5, want: cty.NumberFloatVal(1.5)},
		{name: "string", in: "x", want: cty.StringVal("x")},
		{name: "bool", in: false, want: cty.False},
		{name: "slice", in: []any{1, "a"}, want: cty.TupleVal([]cty.Value{cty.NumberIntVal(1), cty.StringVal("a")})},
		{name: "map", in: map[string]any{"k": true}, want: cty.ObjectVal(map[string]cty.Value{"k": cty.True})},
		{name: "empty slice", in: []any{}, want: cty.EmptyTupleVal},
		{name: "passthrough", in: cty.StringVal("raw"), want: cty.StringVal("raw")},
		{name: "typed slice", in: []string{"a"}, want: cty.ListVal([]cty.Value{cty.StringVal("a")})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromNative(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.RawEquals(got), "want %#v, got %#v", tt.want, got)
		})
	}
}

func TestFromNative_Unsupported(t *testing.T) {
	_, err := FromNative(make(chan int))
	assert.Error(t, err)
}

// opaque has no cty representation.
type opaque func()

func (opaque) String() string { return "opaque" }

func TestScopeJSON(t *testing.T) {
	out, err := ScopeJSON(map[string]any{
		"b":    2,
		"a":    "x",
		"none": nil,
		"list": []any{1, true},
		"fn":   opaque(nil),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"x","b":2,"none":null,"list":[1,true],"fn":"opaque"}`, string(out))

	empty, err := ScopeJSON(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(empty))
}
