// Package simulated provides a provisioning client for dry runs. It never
// leaves the process and derives a stable address-like identity from the
// step, so repeated runs of the same plan report the same identities.
package simulated

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/specialistvlad/provisiongrid/internal/config"
	"github.com/specialistvlad/provisiongrid/internal/ctxlog"
	"github.com/specialistvlad/provisiongrid/internal/identity"
	"github.com/specialistvlad/provisiongrid/internal/provision"
	"github.com/specialistvlad/provisiongrid/internal/registry"
)

// Kind is the client kind used in environment blocks.
const Kind = "simulated"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the simulated client factory.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterClient(Kind, NewClient)
}

// Client answers every request locally.
type Client struct {
	namespace string
}

// NewClient builds a simulated client. The environment namespace salts the
// generated identities.
func NewClient(ctx context.Context, env *config.Environment) (provision.Client, error) {
	return &Client{namespace: env.Namespace}, nil
}

// Provision returns Identity(namespace, step, descriptor).
func (c *Client) Provision(ctx context.Context, req provision.Request) (identity.Identity, error) {
	logger := ctxlog.FromContext(ctx).With("client", Kind, "step", req.Step)
	if _, err := req.ArgValues(); err != nil {
		return "", err
	}
	id := Identity(c.namespace, req.Step, string(req.Descriptor))
	logger.Debug("Simulated provisioning.", "identity", id)
	return id, nil
}

// Identity derives a 20-byte hex address from its inputs.
func Identity(parts ...string) identity.Identity {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return identity.Identity(fmt.Sprintf("0x%s", hex.EncodeToString(sum[:20])))
}
