package app

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/provisiongrid/internal/report"
)

// ErrConfig marks errors caused by the operator's input rather than by
// provisioning: unreadable plans, unknown environments, bad flags.
var ErrConfig = errors.New("configuration error")

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	PlanPaths   []string // .hcl/.yaml files or directories
	Environment string
	// Vars are "name=value" assignments from the command line.
	Vars []string
	// Environ is the process environment, scanned for PGRID_VAR_* overrides.
	Environ []string

	Workers      int
	ValidateOnly bool
	ReportPath   string
	ReportFormat string

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
}

// NewConfig validates cfg and fills defaults.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.PlanPaths) == 0 {
		return nil, errors.New("PlanPaths is a required configuration field and cannot be empty")
	}
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("workers must be positive, got %d", cfg.Workers)
	}
	if cfg.ReportFormat == "" {
		cfg.ReportFormat = string(report.FormatJSON)
	}
	if _, err := report.ParseFormat(cfg.ReportFormat); err != nil {
		return nil, err
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("healthcheck port out of range: %d", cfg.HealthcheckPort)
	}
	return &cfg, nil
}

func configError(err error) error {
	return fmt.Errorf("%w: %w", ErrConfig, err)
}
