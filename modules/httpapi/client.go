package httpapi

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/provisiongrid/internal/config"
	"github.com/specialistvlad/provisiongrid/internal/ctxlog"
	"github.com/specialistvlad/provisiongrid/internal/identity"
	"github.com/specialistvlad/provisiongrid/internal/provision"
)

// DefaultTimeout bounds a single provisioning request when the environment
// sets none.
const DefaultTimeout = 60 * time.Second

const maxErrorBody = 512

// Client posts provisioning requests to a deployment service.
type Client struct {
	endpoint string
	headers  map[string]string
	http     *http.Client
}

type response struct {
	Identity string `json:"identity"`
	Error    string `json:"error"`
}

// NewClient builds an HTTP client for env. env.Endpoint is required.
func NewClient(ctx context.Context, env *config.Environment) (provision.Client, error) {
	if env.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	u, err := url.Parse(env.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid endpoint %q", env.Endpoint)
	}

	timeout := env.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	if env.InsecureSkipVerify {
		ctxlog.FromContext(ctx).Warn("Skipping TLS certificate verification", "endpoint", env.Endpoint)
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Client{
		endpoint: strings.TrimRight(env.Endpoint, "/") + "/provision",
		headers:  env.Headers,
		http:     &http.Client{Timeout: timeout, Transport: transport},
	}, nil
}

// Provision submits one step and returns the identity reported by the service.
func (c *Client) Provision(ctx context.Context, req provision.Request) (identity.Identity, error) {
	requestID := uuid.NewString()
	key := IdempotencyKey(req)
	logger := ctxlog.FromContext(ctx).With("client", Kind, "step", req.Step, "request_id", requestID, "idempotency_key", key)

	payload, err := req.Payload()
	if err != nil {
		return "", err
	}
	payload["request_id"] = requestID
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Idempotency-Key", key)
	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}

	logger.Debug("Making HTTP request", "url", c.endpoint)
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()
	logger.Debug("Received HTTP response", "status", resp.Status)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	var out response
	decodeErr := json.Unmarshal(raw, &out)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if decodeErr == nil && out.Error != "" {
			return "", fmt.Errorf("deployment service returned %s: %s", resp.Status, out.Error)
		}
		return "", fmt.Errorf("deployment service returned %s: %s", resp.Status, truncate(string(raw), maxErrorBody))
	}
	if decodeErr != nil {
		return "", fmt.Errorf("failed to decode response: %w", decodeErr)
	}
	if out.Error != "" {
		return "", fmt.Errorf("deployment service: %s", out.Error)
	}
	if out.Identity == "" {
		return "", fmt.Errorf("deployment service returned no identity")
	}
	return identity.Identity(out.Identity), nil
}

// IdempotencyKey identifies a step within a run, so a resubmitted request for
// the same step carries the same key.
func IdempotencyKey(req provision.Request) string {
	return req.RunID + "/" + req.Step
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
