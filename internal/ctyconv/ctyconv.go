// Package ctyconv converts cty values into the plain Go values that
// transports put on the wire (strings, numbers, bool, maps and slices).
package ctyconv

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/zclconf/go-cty/cty"
)

// ToInterface converts a cty.Value to a Go interface{}. Numbers never lose
// precision: see numberToInterface.
func ToInterface(val cty.Value) (any, error) {
	if val == cty.NilVal || !val.IsKnown() || val.IsNull() {
		return nil, nil
	}
	ty := val.Type()
	if ty.IsPrimitiveType() {
		switch ty {
		case cty.String:
			return val.AsString(), nil
		case cty.Number:
			return numberToInterface(val.AsBigFloat()), nil
		case cty.Bool:
			return val.True(), nil
		default:
			return nil, fmt.Errorf("unsupported primitive type: %s", ty.FriendlyName())
		}
	}
	if ty.IsObjectType() || ty.IsMapType() {
		out := make(map[string]any)
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			elem, err := ToInterface(v)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = elem
		}
		return out, nil
	}
	if ty.IsTupleType() || ty.IsListType() || ty.IsSetType() {
		out := make([]any, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			elem, err := ToInterface(v)
			if err != nil {
				return nil, err
			}
			out = append(out, elem)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported cty.Type for conversion: %s", ty.FriendlyName())
}

// numberToInterface keeps every digit of a cty number. Integers that fit
// int64 and exactly representable fractions become native values, anything
// else a json.Number holding the exact decimal text.
func numberToInterface(bf *big.Float) any {
	if bf.IsInt() {
		if i, acc := bf.Int64(); acc == big.Exact {
			return i
		}
		return json.Number(bf.Text('f', -1))
	}
	if f, acc := bf.Float64(); acc == big.Exact {
		return f
	}
	return json.Number(bf.Text('g', -1))
}

// ForLogs renders a value for structured logging without ever failing.
func ForLogs(val cty.Value) any {
	v, err := ToInterface(val)
	if err != nil {
		return fmt.Sprintf("[unloggable cty.Value: %v]", err)
	}
	return v
}
