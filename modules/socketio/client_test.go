package socketio

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/specialistvlad/provisiongrid/internal/config"
	"github.com/specialistvlad/provisiongrid/internal/identity"
	"github.com/specialistvlad/provisiongrid/internal/provision"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

// fakeAgent answers every provision event through reply.
type fakeAgent struct {
	mu      sync.Mutex
	emitted []map[string]any
	reply   func(msg map[string]any) map[string]any
	client  *Client
}

func (a *fakeAgent) emit(event string, args ...any) {
	msg := args[0].(map[string]any)
	a.mu.Lock()
	a.emitted = append(a.emitted, msg)
	a.mu.Unlock()
	if a.reply == nil {
		return
	}
	answer := a.reply(msg)
	go a.client.dispatch(answer)
}

func newTestClient(timeout time.Duration, reply func(map[string]any) map[string]any) (*Client, *fakeAgent) {
	agent := &fakeAgent{reply: reply}
	c := newClient(timeout, agent.emit, nil)
	agent.client = c
	return c, agent
}

func TestClient_Provision(t *testing.T) {
	c, agent := newTestClient(time.Second, func(msg map[string]any) map[string]any {
		return map[string]any{"request_id": msg["request_id"], "identity": "0x" + msg["step"].(string)}
	})

	id, err := c.Provision(context.Background(), provision.Request{
		RunID:      "run",
		Step:       "registry",
		Descriptor: "SmartFundRegistry",
		Args:       []provision.Value{{Literal: cty.StringVal("0x0")}, {Ref: "pool", Identity: "0xPOOL"}},
	})
	require.NoError(t, err)
	assert.Equal(t, identity.Identity("0xregistry"), id)

	require.Len(t, agent.emitted, 1)
	assert.Equal(t, "SmartFundRegistry", agent.emitted[0]["descriptor"])
	assert.Equal(t, []any{"0x0", "0xPOOL"}, agent.emitted[0]["args"])
	assert.NotEmpty(t, agent.emitted[0]["request_id"])
}

func TestClient_ConcurrentRequestsAreCorrelated(t *testing.T) {
	c, _ := newTestClient(time.Second, func(msg map[string]any) map[string]any {
		return map[string]any{"request_id": msg["request_id"], "identity": "id-" + msg["step"].(string)}
	})

	var wg sync.WaitGroup
	steps := []string{"a", "b", "c", "d", "e"}
	results := make([]identity.Identity, len(steps))
	for i, s := range steps {
		wg.Add(1)
		go func(i int, s string) {
			defer wg.Done()
			id, err := c.Provision(context.Background(), provision.Request{Step: s, Descriptor: "X"})
			assert.NoError(t, err)
			results[i] = id
		}(i, s)
	}
	wg.Wait()
	for i, s := range steps {
		assert.Equal(t, identity.Identity("id-"+s), results[i])
	}
}

func TestClient_ProvisionErrors(t *testing.T) {
	testCases := []struct {
		name    string
		reply   func(map[string]any) map[string]any
		wantErr string
	}{
		{
			name: "agent error",
			reply: func(msg map[string]any) map[string]any {
				return map[string]any{"request_id": msg["request_id"], "error": "out of gas"}
			},
			wantErr: "out of gas",
		},
		{
			name: "no identity",
			reply: func(msg map[string]any) map[string]any {
				return map[string]any{"request_id": msg["request_id"]}
			},
			wantErr: "no identity",
		},
		{
			name:    "timeout",
			reply:   nil,
			wantErr: "timed out",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestClient(50*time.Millisecond, tc.reply)
			_, err := c.Provision(context.Background(), provision.Request{Step: "a", Descriptor: "A"})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestClient_CloseFailsPending(t *testing.T) {
	c, agent := newTestClient(time.Minute, nil)

	errCh := make(chan error, 1)
	go func() {
		_, err := c.Provision(context.Background(), provision.Request{Step: "a", Descriptor: "A"})
		errCh <- err
	}()

	require.Eventually(t, func() bool {
		agent.mu.Lock()
		defer agent.mu.Unlock()
		return len(agent.emitted) == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, c.Close())
	select {
	case err := <-errCh:
		assert.ErrorContains(t, err, "closed")
	case <-time.After(time.Second):
		t.Fatal("pending request was not failed by Close")
	}

	_, err := c.Provision(context.Background(), provision.Request{Step: "b", Descriptor: "B"})
	assert.ErrorContains(t, err, "closed")
}

func TestClient_DispatchIgnoresUnknownRequests(t *testing.T) {
	c, _ := newTestClient(time.Second, nil)
	assert.NotPanics(t, func() {
		c.dispatch()
		c.dispatch("not a map")
		c.dispatch(map[string]any{"request_id": "nobody", "identity": "0x1"})
	})
}

func TestConnectSignal_LateOutcomesDoNotBlock(t *testing.T) {
	signal := newConnectSignal()
	refused := errors.New("connection refused")

	done := make(chan struct{})
	go func() {
		defer close(done)
		signal.deliver(refused)
		signal.deliver(nil)
		signal.deliver(errors.New("again"))
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("deliver blocked with nobody reading")
	}
	assert.Equal(t, refused, <-signal)
}

func TestNewClient_InvalidEndpoint(t *testing.T) {
	_, err := NewClient(context.Background(), &config.Environment{Name: "x"})
	assert.ErrorContains(t, err, "endpoint is required")

	_, err = NewClient(context.Background(), &config.Environment{Name: "x", Endpoint: "deployer:3000"})
	assert.Error(t, err)
}
