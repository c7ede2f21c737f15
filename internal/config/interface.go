package config

import "context"

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads every plan document found under the given paths and merges
	// them into a single Model.
	Load(ctx context.Context, paths ...string) (*Model, error)
}
