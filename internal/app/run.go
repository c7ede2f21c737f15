package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"

	"github.com/google/uuid"
	"github.com/specialistvlad/provisiongrid/internal/config"
	"github.com/specialistvlad/provisiongrid/internal/ctxlog"
	"github.com/specialistvlad/provisiongrid/internal/dag"
	"github.com/specialistvlad/provisiongrid/internal/orchestrator"
	"github.com/specialistvlad/provisiongrid/internal/plan"
	"github.com/specialistvlad/provisiongrid/internal/report"
	"github.com/zclconf/go-cty/cty"
)

// Run executes the main application logic. Errors caused by operator input
// wrap ErrConfig; plan and provisioning errors are returned as produced by
// the plan and orchestrator packages.
func (a *App) Run(ctx context.Context) error {
	ctx = a.context(ctx)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("App.Run method started.")

	if a.config.HealthcheckPort > 0 {
		if err := a.startHealthcheckServer(ctx, a.config.HealthcheckPort); err != nil {
			return configError(err)
		}
		defer a.closeHealthcheckServer(ctx)
	}

	p, env, err := a.preparePlan(ctx)
	if err != nil {
		return err
	}

	if a.config.ValidateOnly {
		return a.describePlan(p)
	}

	client, err := a.registry.Client(ctx, env)
	if err != nil {
		return err
	}
	if closer, ok := client.(io.Closer); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				logger.Warn("Failed to close provisioning client", "error", err)
			}
		}()
	}

	runID := uuid.NewString()
	a.progress.start(runID, p.Names())
	orch := orchestrator.New(client,
		orchestrator.WithRunID(runID),
		orchestrator.WithWorkers(a.config.Workers),
		orchestrator.WithObserver(a.progress.observe),
	)
	res, runErr := orch.Run(ctx, p)
	a.result = res
	a.progress.finish(res, string(report.Classify(res)))

	if err := a.writeReports(ctx, res, env.Name); err != nil {
		if runErr != nil {
			logger.Error("Failed to write report", "error", err)
			return runErr
		}
		return err
	}

	logger.Debug("App.Run method finished.")
	return runErr
}

// preparePlan loads, resolves and validates the plan. Nothing is provisioned
// and no client is built until it succeeds.
func (a *App) preparePlan(ctx context.Context) (*plan.Plan, *config.Environment, error) {
	logger := ctxlog.FromContext(ctx)

	model, err := a.loadModel(ctx)
	if err != nil {
		return nil, nil, configError(err)
	}
	if err := a.registry.ValidateEnvironments(ctx, model); err != nil {
		return nil, nil, configError(err)
	}
	env, err := model.Environment(a.config.Environment)
	if err != nil {
		return nil, nil, configError(err)
	}
	logger.Info("Environment selected.", "environment", env.Name, "client", env.Client)

	overrides, err := a.overrides()
	if err != nil {
		return nil, nil, configError(err)
	}
	p, err := model.Plan(env, overrides)
	if err != nil {
		return nil, nil, err
	}
	if err := p.Validate(); err != nil {
		logger.Error("Plan rejected before provisioning.", "error", err)
		return nil, nil, err
	}
	logger.Debug("Plan resolved and validated.", "steps", p.Len())
	return p, env, nil
}

// overrides merges PGRID_VAR_* values with -var flags; flags win.
func (a *App) overrides() (map[string]cty.Value, error) {
	out := config.EnvOverrides(a.config.Environ)
	flags, err := config.ParseAssignments(a.config.Vars)
	if err != nil {
		return nil, err
	}
	maps.Copy(out, flags)
	return out, nil
}

// describePlan prints the execution waves of a valid plan.
func (a *App) describePlan(p *plan.Plan) error {
	g, err := dag.FromPlan(p)
	if err != nil {
		return err
	}
	levels := g.Levels()
	fmt.Fprintf(a.outW, "plan is valid: %d steps in %d waves\n", p.Len(), len(levels))
	for i, level := range levels {
		fmt.Fprintf(a.outW, "  wave %d:", i+1)
		for _, name := range level {
			s, _ := p.Step(name)
			fmt.Fprintf(a.outW, " %s(%s)", name, s.Descriptor)
		}
		fmt.Fprintln(a.outW)
	}
	return nil
}

func (a *App) writeReports(ctx context.Context, res *orchestrator.Result, env string) error {
	var errs []error
	if a.config.ReportPath != "" {
		format, err := report.ParseFormat(a.config.ReportFormat)
		if err == nil {
			err = report.WriteFile(a.config.ReportPath, format, res, env)
		}
		if err != nil {
			errs = append(errs, err)
		} else {
			ctxlog.FromContext(ctx).Info("Report written.", "path", a.config.ReportPath, "format", format)
		}
	}
	if err := report.WriteSummary(a.outW, res); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
