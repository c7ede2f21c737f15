// Package socketio provides a provisioning client that talks to a remote
// deployment agent over socket.io.
//
// The client holds one connection per run. For every step it emits a
// "provision" event carrying the request payload and a request_id, and waits
// for the agent to answer with a "provisioned" event echoing that request_id
// together with either an identity or an error.
package socketio

import (
	"github.com/specialistvlad/provisiongrid/internal/registry"
)

// Kind is the client kind used in environment blocks.
const Kind = "socketio"

const (
	EventProvision   = "provision"
	EventProvisioned = "provisioned"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the socket.io client factory.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterClient(Kind, NewClient)
}
