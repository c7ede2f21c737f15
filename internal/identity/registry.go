// Package identity holds the run-scoped Identity Registry: the single source
// of truth from which dependent steps read the identities of the components
// provisioned before them.
//
// # Characteristics
//
//   - Write-once: a name can be registered a single time; identities are never
//     overwritten or removed.
//   - Run-scoped: a Registry is created empty for each orchestration run and is
//     never shared between runs.
//   - Thread-safe: guarded by a sync.RWMutex so that concurrent workers may
//     commit identities for distinct names while others read.
package identity

import (
	"errors"
	"fmt"
	"sync"
)

// Identity is the opaque, durable handle returned by a successful
// provisioning call, e.g. a contract address.
type Identity string

// ErrAlreadyRegistered is returned by Put when the name is already present.
var ErrAlreadyRegistered = errors.New("identity already registered")

// UnknownIdentityError is returned by Get for a name that was never registered.
type UnknownIdentityError struct {
	Name string
}

func (e *UnknownIdentityError) Error() string {
	return fmt.Sprintf("unknown identity %q", e.Name)
}

// Registry maps step names to identities.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Identity
	order   []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Identity)}
}

// Put registers id under name. It fails if name is already present.
func (r *Registry) Put(name string, id Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.entries[name]; ok {
		return fmt.Errorf("%w: %q is %s", ErrAlreadyRegistered, name, existing)
	}
	r.entries[name] = id
	r.order = append(r.order, name)
	return nil
}

// Get returns the identity registered under name, or *UnknownIdentityError.
func (r *Registry) Get(name string) (Identity, error) {
	if id, ok := r.Lookup(name); ok {
		return id, nil
	}
	return "", &UnknownIdentityError{Name: name}
}

// Lookup is the comma-ok form of Get.
func (r *Registry) Lookup(name string) (Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.entries[name]
	return id, ok
}

// Len returns the number of registered identities.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Names returns registered names in commit order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Snapshot returns a copy of the current contents.
func (r *Registry) Snapshot() map[string]Identity {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]Identity, len(r.entries))
	for k, v := range r.entries {
		out[k] = v
	}
	return out
}
