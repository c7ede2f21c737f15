// Package provision defines the boundary between the orchestrator and the
// transport that actually submits components to the target environment.
//
// A Client is treated as opaque, possibly slow and possibly failing I/O. The
// orchestrator calls it at most once per step and never retries; timeouts and
// retry policy, if any, belong to the Client implementation.
package provision

import (
	"context"
	"fmt"

	"github.com/specialistvlad/provisiongrid/internal/ctyconv"
	"github.com/specialistvlad/provisiongrid/internal/identity"
	"github.com/specialistvlad/provisiongrid/internal/plan"
	"github.com/zclconf/go-cty/cty"
)

// Client submits a provisioning request and returns the new identity.
type Client interface {
	Provision(ctx context.Context, req Request) (identity.Identity, error)
}

// ClientFunc adapts a function to the Client interface.
type ClientFunc func(ctx context.Context, req Request) (identity.Identity, error)

// Provision implements Client.
func (f ClientFunc) Provision(ctx context.Context, req Request) (identity.Identity, error) {
	return f(ctx, req)
}

// Value is a resolved constructor argument: either the literal from the plan
// or the identity of the referenced step.
type Value struct {
	Literal cty.Value
	// Ref is the referenced step name; empty for literals.
	Ref      string
	Identity identity.Identity
}

// IsIdentity reports whether the value was resolved from a reference.
func (v Value) IsIdentity() bool {
	return v.Ref != ""
}

// Interface converts the value to a plain Go value suitable for JSON or
// socket.io payloads. Identities become strings.
func (v Value) Interface() (any, error) {
	if v.IsIdentity() {
		return string(v.Identity), nil
	}
	return ctyconv.ToInterface(v.Literal)
}

// Request is everything a transport needs to provision one step.
type Request struct {
	RunID      string
	Step       string
	Descriptor plan.Descriptor
	Args       []Value
}

// ArgValues converts all arguments with Value.Interface.
func (r Request) ArgValues() ([]any, error) {
	out := make([]any, len(r.Args))
	for i, a := range r.Args {
		v, err := a.Interface()
		if err != nil {
			return nil, fmt.Errorf("argument %d of step %q: %w", i, r.Step, err)
		}
		out[i] = v
	}
	return out, nil
}

// Payload builds the wire representation shared by the network transports.
func (r Request) Payload() (map[string]any, error) {
	args, err := r.ArgValues()
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"run_id":     r.RunID,
		"step":       r.Step,
		"descriptor": string(r.Descriptor),
		"args":       args,
	}, nil
}
