package ctyconv

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestToInterface(t *testing.T) {
	testCases := []struct {
		name     string
		in       cty.Value
		expected any
	}{
		{name: "nil value", in: cty.NilVal, expected: nil},
		{name: "null", in: cty.NullVal(cty.String), expected: nil},
		{name: "string", in: cty.StringVal("0xA"), expected: "0xA"},
		{name: "whole number", in: cty.NumberIntVal(1000), expected: int64(1000)},
		{name: "fraction", in: cty.NumberFloatVal(0.25), expected: 0.25},
		{name: "bool", in: cty.True, expected: true},
		{
			name:     "tuple",
			in:       cty.TupleVal([]cty.Value{cty.StringVal("a"), cty.NumberIntVal(2)}),
			expected: []any{"a", int64(2)},
		},
		{
			name: "object",
			in: cty.ObjectVal(map[string]cty.Value{
				"fee":  cty.NumberIntVal(1),
				"tags": cty.ListVal([]cty.Value{cty.StringVal("x")}),
			}),
			expected: map[string]any{"fee": int64(1), "tags": []any{"x"}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ToInterface(tc.in)
			require.NoError(t, err)
			if diff := cmp.Diff(tc.expected, got); diff != "" {
				t.Errorf("ToInterface() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestToInterface_NumbersKeepPrecision(t *testing.T) {
	testCases := []struct {
		name     string
		in       cty.Value
		expected any
	}{
		{name: "max int64", in: cty.NumberIntVal(math.MaxInt64), expected: int64(math.MaxInt64)},
		{name: "above int64", in: cty.MustParseNumberVal("9223372036854775808"), expected: json.Number("9223372036854775808")},
		{name: "wei amount", in: cty.MustParseNumberVal("123456789012345678901234567"), expected: json.Number("123456789012345678901234567")},
		{name: "negative above int64", in: cty.MustParseNumberVal("-100000000000000000000"), expected: json.Number("-100000000000000000000")},
		{name: "decimal without exact float", in: cty.MustParseNumberVal("0.1"), expected: json.Number("0.1")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ToInterface(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestToInterface_LargeNumberMarshalsVerbatim(t *testing.T) {
	v, err := ToInterface(cty.TupleVal([]cty.Value{cty.MustParseNumberVal("123456789012345678901234567")}))
	require.NoError(t, err)

	raw, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, "[123456789012345678901234567]", string(raw))
}

func TestForLogs_NeverFails(t *testing.T) {
	assert.Equal(t, "x", ForLogs(cty.StringVal("x")))
	assert.Nil(t, ForLogs(cty.DynamicVal))
}
