package socketio

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/provisiongrid/internal/ctxlog"
	"github.com/specialistvlad/provisiongrid/internal/identity"
	"github.com/specialistvlad/provisiongrid/internal/provision"
)

// DefaultTimeout bounds the wait for a "provisioned" answer when the
// environment sets none. On-chain deployments can take minutes.
const DefaultTimeout = 5 * time.Minute

type opResult struct {
	identity identity.Identity
	err      error
}

// Client correlates "provision" emits with "provisioned" answers by
// request_id, so several steps may be in flight on one connection.
type Client struct {
	timeout    time.Duration
	emit       func(event string, args ...any)
	disconnect func()

	mu      sync.Mutex
	pending map[string]chan opResult
	closed  bool
}

func newClient(timeout time.Duration, emit func(string, ...any), disconnect func()) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		timeout:    timeout,
		emit:       emit,
		disconnect: disconnect,
		pending:    make(map[string]chan opResult),
	}
}

// Provision emits one request and waits for its answer.
func (c *Client) Provision(ctx context.Context, req provision.Request) (identity.Identity, error) {
	requestID := uuid.NewString()
	logger := ctxlog.FromContext(ctx).With("client", Kind, "step", req.Step, "request_id", requestID)

	payload, err := req.Payload()
	if err != nil {
		return "", err
	}
	payload["request_id"] = requestID

	done := make(chan opResult, 1)
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return "", fmt.Errorf("socket.io client is closed")
	}
	c.pending[requestID] = done
	c.mu.Unlock()
	defer c.forget(requestID)

	if logger.Enabled(ctx, slog.LevelDebug) {
		jsonData, _ := json.Marshal(payload)
		logger.Debug("Emitting event", "event", EventProvision, "data", string(jsonData))
	}
	c.emit(EventProvision, payload)

	opCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	select {
	case <-opCtx.Done():
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("timed out after %v waiting for event '%s'", c.timeout, EventProvisioned)
	case res := <-done:
		if res.err != nil {
			return "", res.err
		}
		logger.Debug("Received response event", "event", EventProvisioned, "identity", res.identity)
		return res.identity, nil
	}
}

// Close fails any outstanding requests and disconnects.
func (c *Client) Close() error {
	c.failPending(fmt.Errorf("socket.io client closed"))
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	if c.disconnect != nil {
		c.disconnect()
	}
	return nil
}

// dispatch routes a "provisioned" event to the waiting request.
func (c *Client) dispatch(data ...any) {
	if len(data) == 0 {
		return
	}
	msg, ok := data[0].(map[string]any)
	if !ok {
		return
	}
	requestID, _ := msg["request_id"].(string)

	c.mu.Lock()
	done, ok := c.pending[requestID]
	delete(c.pending, requestID)
	c.mu.Unlock()
	if !ok {
		return
	}

	if errMsg, _ := msg["error"].(string); errMsg != "" {
		done <- opResult{err: fmt.Errorf("deployment agent: %s", errMsg)}
		return
	}
	id, _ := msg["identity"].(string)
	if id == "" {
		done <- opResult{err: fmt.Errorf("deployment agent returned no identity")}
		return
	}
	done <- opResult{identity: identity.Identity(id)}
}

func (c *Client) failPending(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, done := range c.pending {
		done <- opResult{err: err}
		delete(c.pending, id)
	}
}

func (c *Client) forget(requestID string) {
	c.mu.Lock()
	delete(c.pending, requestID)
	c.mu.Unlock()
}
