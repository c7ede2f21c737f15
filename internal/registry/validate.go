package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/provisiongrid/internal/config"
	"github.com/specialistvlad/provisiongrid/internal/ctxlog"
)

// ValidateEnvironments checks that every environment declared by the model
// names a registered client kind.
func (r *Registry) ValidateEnvironments(ctx context.Context, model *config.Model) error {
	logger := ctxlog.FromContext(ctx)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var errs []error
	for _, name := range model.EnvironmentNames() {
		env := model.Environments[name]
		if _, ok := r.factories[env.Client]; !ok {
			errs = append(errs, fmt.Errorf("environment %q: unknown client %q", name, env.Client))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	logger.Debug("Environments validated against registry.", "environments", len(model.Environments))
	return nil
}
