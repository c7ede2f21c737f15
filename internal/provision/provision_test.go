package provision

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"

	"github.com/specialistvlad/provisiongrid/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestRequest_Payload(t *testing.T) {
	req := Request{
		RunID:      "run-1",
		Step:       "pool_portal",
		Descriptor: "PoolPortal",
		Args: []Value{
			{Literal: cty.StringVal("0xBANCOR")},
			{Ref: "ratio", Identity: "0xRATIO"},
			{Literal: cty.NumberIntVal(1000)},
		},
	}

	payload, err := req.Payload()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"run_id":     "run-1",
		"step":       "pool_portal",
		"descriptor": "PoolPortal",
		"args":       []any{"0xBANCOR", "0xRATIO", int64(1000)},
	}, payload)
}

func TestRequest_PayloadRejectsUnknownLiteral(t *testing.T) {
	req := Request{Step: "x", Args: []Value{{Literal: cty.UnknownVal(cty.String)}}}
	_, err := req.Payload()
	assert.NoError(t, err, "unknown values convert to nil")

	req.Args = []Value{{Literal: cty.CapsuleVal(cty.Capsule("thing", reflect.TypeOf(struct{}{})), &struct{}{})}}
	_, err = req.Payload()
	assert.Error(t, err)
}

func TestRequest_PayloadKeepsLargeIntegers(t *testing.T) {
	req := Request{
		RunID:      "run-1",
		Step:       "fund",
		Descriptor: "SmartFundETH",
		Args: []Value{
			{Literal: cty.MustParseNumberVal("123456789012345678901234567")},
			{Ref: "permitted", Identity: "0xPERM"},
		},
	}

	payload, err := req.Payload()
	require.NoError(t, err)
	raw, err := json.Marshal(payload["args"])
	require.NoError(t, err)
	assert.JSONEq(t, `[123456789012345678901234567, "0xPERM"]`, string(raw))
	assert.Contains(t, string(raw), "123456789012345678901234567")
}

func TestClientFunc(t *testing.T) {
	var c Client = ClientFunc(func(_ context.Context, req Request) (identity.Identity, error) {
		return identity.Identity("0x" + req.Step), nil
	})
	id, err := c.Provision(context.Background(), Request{Step: "A"})
	require.NoError(t, err)
	assert.Equal(t, identity.Identity("0xA"), id)
}
