package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/specialistvlad/provisiongrid/internal/config"
	"github.com/specialistvlad/provisiongrid/internal/provision"
)

// Module is the interface that all client modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Factory builds a provisioning client for an environment. Clients that hold
// connections should also implement io.Closer.
type Factory func(ctx context.Context, env *config.Environment) (provision.Client, error)

// Registry holds the client factories for a single application instance.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// RegisterClient registers the factory for a client kind. Registering the
// same kind twice is a programming error and panics.
func (r *Registry) RegisterClient(kind string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[kind]; exists {
		panic(fmt.Sprintf("client kind '%s' already registered", kind))
	}
	slog.Debug("Registering provisioning client.", "kind", kind)
	r.factories[kind] = factory
}

// Kinds returns the registered client kinds, sorted.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Client builds the provisioning client selected by env.
func (r *Registry) Client(ctx context.Context, env *config.Environment) (provision.Client, error) {
	r.mu.RLock()
	factory, ok := r.factories[env.Client]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("environment %q: unknown client %q, available: %v", env.Name, env.Client, r.Kinds())
	}
	client, err := factory(ctx, env)
	if err != nil {
		return nil, fmt.Errorf("environment %q: creating %s client: %w", env.Name, env.Client, err)
	}
	return client, nil
}
