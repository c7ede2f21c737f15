// Package provisiontest provides a scripted, recording provision.Client for
// tests of the orchestrator and the application.
package provisiontest

import (
	"context"
	"sync"

	"github.com/specialistvlad/provisiongrid/internal/identity"
	"github.com/specialistvlad/provisiongrid/internal/provision"
)

// Client returns "0x<step>" for every step unless scripted otherwise, and
// records every request it receives in arrival order.
type Client struct {
	mu         sync.Mutex
	identities map[string]identity.Identity
	failures   map[string]error
	gates      map[string]chan struct{}
	onCall     func(provision.Request)

	calls     []provision.Request
	active    int
	maxActive int
}

// New returns a client with no scripted behavior.
func New() *Client {
	return &Client{
		identities: make(map[string]identity.Identity),
		failures:   make(map[string]error),
		gates:      make(map[string]chan struct{}),
	}
}

// WithIdentity scripts the identity returned for step.
func (c *Client) WithIdentity(step string, id identity.Identity) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.identities[step] = id
	return c
}

// FailOn makes the call for step return err.
func (c *Client) FailOn(step string, err error) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures[step] = err
	return c
}

// OnCall registers a hook invoked synchronously at the start of every call.
func (c *Client) OnCall(fn func(provision.Request)) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onCall = fn
	return c
}

// Gate makes the call for step block until the returned channel is closed.
func (c *Client) Gate(step string) chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	g := make(chan struct{})
	c.gates[step] = g
	return g
}

// Provision implements provision.Client.
func (c *Client) Provision(_ context.Context, req provision.Request) (identity.Identity, error) {
	c.mu.Lock()
	c.calls = append(c.calls, req)
	c.active++
	if c.active > c.maxActive {
		c.maxActive = c.active
	}
	gate := c.gates[req.Step]
	hook := c.onCall
	c.mu.Unlock()

	if hook != nil {
		hook(req)
	}
	if gate != nil {
		<-gate
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.active--
	if err, ok := c.failures[req.Step]; ok {
		return "", err
	}
	if id, ok := c.identities[req.Step]; ok {
		return id, nil
	}
	return identity.Identity("0x" + req.Step), nil
}

// Calls returns a copy of all received requests in arrival order.
func (c *Client) Calls() []provision.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]provision.Request, len(c.calls))
	copy(out, c.calls)
	return out
}

// CalledSteps returns the step names of all received requests in arrival order.
func (c *Client) CalledSteps() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.calls))
	for i, r := range c.calls {
		out[i] = r.Step
	}
	return out
}

// MaxConcurrent returns the highest number of simultaneously active calls.
func (c *Client) MaxConcurrent() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxActive
}
