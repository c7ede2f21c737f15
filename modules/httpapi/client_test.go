package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/specialistvlad/provisiongrid/internal/config"
	"github.com/specialistvlad/provisiongrid/internal/identity"
	"github.com/specialistvlad/provisiongrid/internal/plan"
	"github.com/specialistvlad/provisiongrid/internal/provision"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func newClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(context.Background(), &config.Environment{
		Name:     "test",
		Client:   Kind,
		Endpoint: srv.URL + "/",
		Headers:  map[string]string{"Authorization": "Bearer token"},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.(*Client).Close() })
	return c.(*Client)
}

func TestClient_Provision(t *testing.T) {
	var got map[string]any
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/provision", r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		assert.Equal(t, "run-1/pool", r.Header.Get("Idempotency-Key"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		_, _ = w.Write([]byte(`{"identity":"0xPOOL"}`))
	})

	req := provision.Request{
		RunID:      "run-1",
		Step:       "pool",
		Descriptor: plan.Descriptor("SmartFundETHFactory"),
		Args: []provision.Value{
			{Ref: "permitted", Identity: "0xPERM"},
			{Literal: cty.NumberIntVal(1000)},
		},
	}
	id, err := c.Provision(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, identity.Identity("0xPOOL"), id)

	assert.Equal(t, "run-1", got["run_id"])
	assert.Equal(t, "pool", got["step"])
	assert.Equal(t, "SmartFundETHFactory", got["descriptor"])
	assert.Equal(t, []any{"0xPERM", float64(1000)}, got["args"])
	assert.NotEmpty(t, got["request_id"])
}

func TestClient_IdempotencyKeyStableAcrossResubmissions(t *testing.T) {
	var mu sync.Mutex
	var keys, requestIDs []string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		mu.Lock()
		keys = append(keys, r.Header.Get("Idempotency-Key"))
		requestIDs = append(requestIDs, fmt.Sprint(body["request_id"]))
		mu.Unlock()
		_, _ = w.Write([]byte(`{"identity":"0xFUND"}`))
	})

	req := provision.Request{RunID: "run-7", Step: "fund", Descriptor: "SmartFundETH"}
	for i := 0; i < 2; i++ {
		_, err := c.Provision(context.Background(), req)
		require.NoError(t, err)
	}
	other := req
	other.Step = "registry"
	_, err := c.Provision(context.Background(), other)
	require.NoError(t, err)

	assert.Equal(t, []string{"run-7/fund", "run-7/fund", "run-7/registry"}, keys)
	assert.NotEqual(t, requestIDs[0], requestIDs[1])
}

func TestClient_ProvisionErrors(t *testing.T) {
	testCases := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "error status with message", status: http.StatusConflict, body: `{"error":"nonce too low"}`, wantErr: "nonce too low"},
		{name: "error status with text", status: http.StatusBadGateway, body: "upstream down", wantErr: "upstream down"},
		{name: "error in ok body", status: http.StatusOK, body: `{"error":"reverted"}`, wantErr: "reverted"},
		{name: "empty identity", status: http.StatusOK, body: `{}`, wantErr: "no identity"},
		{name: "malformed body", status: http.StatusOK, body: `not json`, wantErr: "failed to decode response"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := c.Provision(context.Background(), provision.Request{Step: "a", Descriptor: "A"})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(context.Background(), &config.Environment{})
	assert.ErrorContains(t, err, "endpoint is required")

	_, err = NewClient(context.Background(), &config.Environment{Endpoint: "not a url"})
	assert.ErrorContains(t, err, "invalid endpoint")
}
