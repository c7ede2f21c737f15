package orchestrator

import (
	"time"

	"github.com/specialistvlad/provisiongrid/internal/identity"
	"github.com/specialistvlad/provisiongrid/internal/plan"
)

// Status is the execution state of one step within a run.
type Status string

const (
	StatusPending    Status = "pending"
	StatusRunning    Status = "running"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
	StatusNotStarted Status = "not_started"
)

// StepOutcome records what happened to one step.
type StepOutcome struct {
	Name       string
	Descriptor plan.Descriptor
	Status     Status
	Identity   identity.Identity
	Err        error
	Started    time.Time
	Finished   time.Time
}

// Duration is the wall time of the provisioning call, zero if it never ran.
func (o StepOutcome) Duration() time.Duration {
	if o.Started.IsZero() || o.Finished.IsZero() {
		return 0
	}
	return o.Finished.Sub(o.Started)
}

// Result is the outcome of one orchestration run. Registry is never nil and
// holds every identity committed before the run ended.
type Result struct {
	RunID    string
	Registry *identity.Registry
	// Steps lists outcomes in plan order. It is empty when the plan was invalid.
	Steps []StepOutcome
	// FailedStep names the first step whose provisioning failed, if any.
	FailedStep string
	Err        error
}

// OK reports whether every step succeeded.
func (r *Result) OK() bool {
	return r.Err == nil
}

// Outcome returns the outcome of the named step.
func (r *Result) Outcome(name string) (StepOutcome, bool) {
	for _, o := range r.Steps {
		if o.Name == name {
			return o, true
		}
	}
	return StepOutcome{}, false
}

// Count returns how many steps ended in the given status.
func (r *Result) Count(s Status) int {
	n := 0
	for _, o := range r.Steps {
		if o.Status == s {
			n++
		}
	}
	return n
}

func newResult(runID string) *Result {
	return &Result{RunID: runID, Registry: identity.NewRegistry()}
}

func (r *Result) initSteps(p *plan.Plan) {
	r.Steps = make([]StepOutcome, len(p.Steps))
	for i, s := range p.Steps {
		r.Steps[i] = StepOutcome{Name: s.Name, Descriptor: s.Descriptor, Status: StatusPending}
	}
}

// finish marks every step that never started.
func (r *Result) finish() {
	for i := range r.Steps {
		if r.Steps[i].Status == StatusPending {
			r.Steps[i].Status = StatusNotStarted
		}
	}
}
