package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/provisiongrid/internal/ctxlog"
	"github.com/specialistvlad/provisiongrid/internal/ctyconv"
	"github.com/specialistvlad/provisiongrid/internal/identity"
	"github.com/specialistvlad/provisiongrid/internal/plan"
	"github.com/specialistvlad/provisiongrid/internal/provision"
)

// Observer is notified every time a step changes status. It is called from
// the goroutine coordinating the run and must not block.
type Observer func(StepOutcome)

// Orchestrator executes plans against one provisioning client.
type Orchestrator struct {
	client   provision.Client
	workers  int
	runID    string
	observer Observer
	now      func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithWorkers sets the number of concurrent provisioning calls. Values below
// two select strictly sequential execution.
func WithWorkers(n int) Option {
	return func(o *Orchestrator) { o.workers = n }
}

// WithRunID fixes the run identifier instead of generating a UUID.
func WithRunID(id string) Option {
	return func(o *Orchestrator) { o.runID = id }
}

// WithObserver registers a status-change callback.
func WithObserver(fn Observer) Option {
	return func(o *Orchestrator) { o.observer = fn }
}

// New creates an orchestrator for the given client.
func New(client provision.Client, opts ...Option) *Orchestrator {
	o := &Orchestrator{client: client, workers: 1, now: time.Now}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run validates and executes p. The returned error is the same value as
// Result.Err; the Result is never nil.
func (o *Orchestrator) Run(ctx context.Context, p *plan.Plan) (*Result, error) {
	runID := o.runID
	if runID == "" {
		runID = uuid.NewString()
	}
	ctx, logger := ctxlog.With(ctx, "run_id", runID)
	res := newResult(runID)

	if err := p.Validate(); err != nil {
		logger.Error("Plan rejected before provisioning.", "error", err)
		res.Err = err
		return res, err
	}
	res.initSteps(p)

	if p.Len() == 0 {
		logger.Warn("Plan has no steps, nothing to provision.")
		return res, nil
	}

	logger.Info("🚀 Starting provisioning run.", "steps", p.Len(), "workers", o.workers)
	var err error
	if o.workers > 1 {
		err = o.runConcurrent(ctx, p, res)
	} else {
		err = o.runSequential(ctx, p, res)
	}
	res.finish()
	res.Err = err

	if err != nil {
		logger.Error("Provisioning run stopped.", "error", err, "committed", res.Registry.Len(), "failed_step", res.FailedStep)
		return res, err
	}
	logger.Info("🏁 Provisioning run finished.", "committed", res.Registry.Len())
	return res, nil
}

func (o *Orchestrator) runSequential(ctx context.Context, p *plan.Plan, res *Result) error {
	for i, s := range p.Steps {
		if err := ctx.Err(); err != nil {
			return o.cancelled(ctx, s.Name)
		}
		req, err := o.prepare(ctx, p, res, i)
		if err != nil {
			return err
		}
		id, callErr := o.invoke(ctx, req)
		if err := o.commit(ctx, p, res, i, id, callErr); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) cancelled(ctx context.Context, next string) error {
	ctxlog.FromContext(ctx).Warn("Run cancelled, not starting further steps.", "next_step", next)
	return &CancelledError{NextStep: next, Cause: context.Cause(ctx)}
}

// prepare resolves the arguments of step i and marks it running.
func (o *Orchestrator) prepare(ctx context.Context, p *plan.Plan, res *Result, i int) (provision.Request, error) {
	s := p.Steps[i]
	logger := ctxlog.FromContext(ctx).With("step", s.Name)

	args, err := resolveArgs(s, res.Registry)
	if err != nil {
		logger.Error("Reference could not be resolved.", "error", err)
		res.FailedStep = s.Name
		res.Steps[i].Status = StatusFailed
		res.Steps[i].Err = err
		o.notify(res.Steps[i])
		return provision.Request{}, err
	}

	res.Steps[i].Status = StatusRunning
	res.Steps[i].Started = o.now()
	o.notify(res.Steps[i])

	return provision.Request{
		RunID:      res.RunID,
		Step:       s.Name,
		Descriptor: s.Descriptor,
		Args:       args,
	}, nil
}

// invoke performs the provisioning call. The client gets a context that
// keeps the run's values but ignores its cancellation.
func (o *Orchestrator) invoke(ctx context.Context, req provision.Request) (identity.Identity, error) {
	logger := ctxlog.FromContext(ctx).With("step", req.Step, "descriptor", req.Descriptor)
	logger.Info("▶️ Provisioning step")
	if logger.Enabled(ctx, slog.LevelDebug) {
		for i, a := range req.Args {
			if a.IsIdentity() {
				logger.Debug("Argument resolved from reference.", "index", i, "ref", a.Ref, "identity", a.Identity)
			} else {
				logger.Debug("Literal argument.", "index", i, "value", ctyconv.ForLogs(a.Literal))
			}
		}
	}
	return o.client.Provision(context.WithoutCancel(ctx), req)
}

// commit records the outcome of step i. Only successful identities enter the
// registry.
func (o *Orchestrator) commit(ctx context.Context, p *plan.Plan, res *Result, i int, id identity.Identity, callErr error) error {
	s := p.Steps[i]
	logger := ctxlog.FromContext(ctx).With("step", s.Name, "descriptor", s.Descriptor)
	out := &res.Steps[i]
	out.Finished = o.now()

	if callErr == nil && id == "" {
		callErr = errEmptyIdentity
	}
	if callErr != nil {
		failure := &ProvisioningFailedError{Step: s.Name, Descriptor: s.Descriptor, Cause: callErr}
		out.Status = StatusFailed
		out.Err = failure
		o.notify(*out)
		logger.Error("❌ Step failed.", "error", callErr, "duration", out.Duration())
		if res.FailedStep == "" {
			res.FailedStep = s.Name
		}
		return failure
	}

	if err := res.Registry.Put(s.Name, id); err != nil {
		out.Status = StatusFailed
		out.Err = err
		o.notify(*out)
		return fmt.Errorf("internal error committing step %q: %w", s.Name, err)
	}
	out.Status = StatusSucceeded
	out.Identity = id
	o.notify(*out)
	logger.Info("✅ Step provisioned", "identity", id, "duration", out.Duration())
	return nil
}

func (o *Orchestrator) notify(out StepOutcome) {
	if o.observer != nil {
		o.observer(out)
	}
}

// resolveArgs replaces every reference with the committed identity. Because
// the plan was validated, a missing identity is an internal defect.
func resolveArgs(s *plan.Step, reg *identity.Registry) ([]provision.Value, error) {
	args := make([]provision.Value, len(s.Args))
	for i, a := range s.Args {
		if !a.IsReference() {
			args[i] = provision.Value{Literal: a.Value}
			continue
		}
		id, err := reg.Get(a.Ref)
		if err != nil {
			return nil, &UnresolvedReferenceError{Step: s.Name, Ref: a.Ref, Cause: err}
		}
		args[i] = provision.Value{Ref: a.Ref, Identity: id}
	}
	for _, d := range s.DependsOn {
		if _, err := reg.Get(d); err != nil {
			return nil, &UnresolvedReferenceError{Step: s.Name, Ref: d, Cause: err}
		}
	}
	return args, nil
}
