// Package httpapi provides a provisioning client that submits each step to a
// deployment service over HTTP.
//
// Every request is a POST of the JSON payload to <endpoint>/provision. The
// service answers 2xx with {"identity": "..."}; any other status, or a body
// carrying "error", fails the step.
package httpapi

import (
	"github.com/specialistvlad/provisiongrid/internal/registry"
)

// Kind is the client kind used in environment blocks.
const Kind = "httpapi"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the HTTP client factory.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterClient(Kind, NewClient)
}
