package testutil

import (
	"context"

	"github.com/specialistvlad/provisiongrid/internal/config"
	"github.com/specialistvlad/provisiongrid/internal/provision"
	"github.com/specialistvlad/provisiongrid/internal/provision/provisiontest"
	"github.com/specialistvlad/provisiongrid/internal/registry"
)

// ScriptedModule registers a provisiontest client under Kind.
type ScriptedModule struct {
	Kind   string
	Client *provisiontest.Client
	// Environments records every environment the factory was asked for.
	Environments []*config.Environment
}

// Register implements registry.Module.
func (m *ScriptedModule) Register(r *registry.Registry) {
	r.RegisterClient(m.Kind, func(ctx context.Context, env *config.Environment) (provision.Client, error) {
		m.Environments = append(m.Environments, env)
		return m.Client, nil
	})
}
