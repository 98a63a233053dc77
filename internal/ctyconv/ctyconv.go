// Package ctyconv converts between native Go values and cty.Value.
//
// The graph scope holds plain Go values; HCL expressions evaluate over cty.
// ToNative maps cty onto the most natural Go shapes (float64 for numbers,
// []any for sequences, map[string]any for objects and maps). FromNative is
// its inverse and also accepts the usual Go scalar kinds.
package ctyconv

import (
	"fmt"
	"reflect"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// ToNative recursively converts a cty.Value to its Go counterpart. A null or
// unknown value becomes nil.
func ToNative(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Number:
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, fmt.Errorf("could not convert cty.Number to float64: %w", err)
		}
		return f, nil

	case ty == cty.Bool:
		return v.True(), nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		slice := make([]any, 0, v.LengthInt())
		it := v.ElementIterator()
		for i := 0; it.Next(); i++ {
			_, elem := it.Element()
			native, err := ToNative(elem)
			if err != nil {
				return nil, fmt.Errorf("in element %d: %w", i, err)
			}
			slice = append(slice, native)
		}
		return slice, nil

	case ty.IsObjectType() || ty.IsMapType():
		m := make(map[string]any, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			key, elem := it.Element()
			native, err := ToNative(elem)
			if err != nil {
				return nil, fmt.Errorf("in attribute '%s': %w", key.AsString(), err)
			}
			m[key.AsString()] = native
		}
		return m, nil

	default:
		return nil, fmt.Errorf("unsupported cty type for conversion: %s", ty.FriendlyName())
	}
}

// FromNative converts a Go value into a cty.Value. Values that are already
// cty.Value pass through; anything not handled directly goes through gocty
// type inference.
func FromNative(v any) (cty.Value, error) {
	switch x := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case cty.Value:
		return x, nil
	case bool:
		return cty.BoolVal(x), nil
	case string:
		return cty.StringVal(x), nil
	case int:
		return cty.NumberIntVal(int64(x)), nil
	case int32:
		return cty.NumberIntVal(int64(x)), nil
	case int64:
		return cty.NumberIntVal(x), nil
	case uint:
		return cty.NumberUIntVal(uint64(x)), nil
	case uint64:
		return cty.NumberUIntVal(x), nil
	case float32:
		return cty.NumberFloatVal(float64(x)), nil
	case float64:
		return cty.NumberFloatVal(x), nil
	case []any:
		if len(x) == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, len(x))
		for i, e := range x {
			ev, err := FromNative(e)
			if err != nil {
				return cty.NilVal, fmt.Errorf("in element %d: %w", i, err)
			}
			elems[i] = ev
		}
		return cty.TupleVal(elems), nil
	case map[string]any:
		if len(x) == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, len(x))
		for k, e := range x {
			ev, err := FromNative(e)
			if err != nil {
				return cty.NilVal, fmt.Errorf("in attribute '%s': %w", k, err)
			}
			attrs[k] = ev
		}
		return cty.ObjectVal(attrs), nil
	}

	ty, err := gocty.ImpliedType(v)
	if err != nil {
		return cty.NilVal, fmt.Errorf("unable to infer cty type for %s: %w", reflect.TypeOf(v), err)
	}
	return gocty.ToCtyValue(v, ty)
}

// Object converts a map of Go values into a cty object, as used for HCL
// evaluation variables.
func Object(values map[string]any) (map[string]cty.Value, error) {
	out := make(map[string]cty.Value, len(values))
	for name, v := range values {
		cv, err := FromNative(v)
		if err != nil {
			return nil, fmt.Errorf("value '%s': %w", name, err)
		}
		out[name] = cv
	}
	return out, nil
}

// ScopeJSON renders a scope as a JSON object with sorted keys. Values that
// have no cty representation are rendered through fmt instead of failing
// the whole document.
func ScopeJSON(scope map[string]any) ([]byte, error) {
	if len(scope) == 0 {
		return []byte("{}"), nil
	}
	attrs := make(map[string]cty.Value, len(scope))
	for name, v := range scope {
		cv, err := FromNative(v)
		if err != nil || !cv.IsWhollyKnown() {
			cv = cty.StringVal(fmt.Sprintf("%v", v))
		}
		attrs[name] = cv
	}
	obj := cty.ObjectVal(attrs)
	return ctyjson.Marshal(obj, obj.Type())
}
