package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/provisiongrid/internal/ctxlog"
	"github.com/specialistvlad/provisiongrid/internal/orchestrator"
	"github.com/specialistvlad/provisiongrid/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	registry   *registry.Registry
	progress   *progress
	httpServer *http.Server
	result     *orchestrator.Result
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// When no modules are given the core client modules are registered.
func NewApp(outW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All client modules registered.", "count", len(modules), "kinds", reg.Kinds())

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
		progress: newProgress(),
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Result returns the outcome of the last run, or nil if nothing was
// provisioned (validation-only runs and configuration errors).
func (a *App) Result() *orchestrator.Result {
	return a.result
}

// Status returns the live progress document served on /status.
func (a *App) Status() Status {
	return a.progress.snapshot()
}

func (a *App) context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}
