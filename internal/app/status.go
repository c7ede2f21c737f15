package app

import (
	"sync"

	"github.com/specialistvlad/provisiongrid/internal/orchestrator"
)

// RunState is the coarse lifecycle of the application's single run.
type RunState string

const (
	StateIdle     RunState = "idle"
	StateRunning  RunState = "running"
	StateFinished RunState = "finished"
)

// StepStatus is the /status view of one step.
type StepStatus struct {
	Name     string `json:"name"`
	Status   string `json:"status"`
	Identity string `json:"identity,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Status is the /status document.
type Status struct {
	RunID   string       `json:"run_id,omitempty"`
	State   RunState     `json:"state"`
	Outcome string       `json:"outcome,omitempty"`
	Steps   []StepStatus `json:"steps"`
}

// progress tracks step transitions reported by the orchestrator observer.
type progress struct {
	mu      sync.Mutex
	runID   string
	state   RunState
	outcome string
	order   []string
	steps   map[string]StepStatus
}

func newProgress() *progress {
	return &progress{state: StateIdle, steps: make(map[string]StepStatus)}
}

func (p *progress) start(runID string, names []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.runID = runID
	p.state = StateRunning
	p.order = append([]string(nil), names...)
	for _, n := range names {
		p.steps[n] = StepStatus{Name: n, Status: string(orchestrator.StatusPending)}
	}
}

// observe is an orchestrator.Observer.
func (p *progress) observe(o orchestrator.StepOutcome) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := StepStatus{Name: o.Name, Status: string(o.Status), Identity: string(o.Identity)}
	if o.Err != nil {
		s.Error = o.Err.Error()
	}
	p.steps[o.Name] = s
}

func (p *progress) finish(res *orchestrator.Result, outcome string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = StateFinished
	p.outcome = outcome
	for _, o := range res.Steps {
		s := StepStatus{Name: o.Name, Status: string(o.Status), Identity: string(o.Identity)}
		if o.Err != nil {
			s.Error = o.Err.Error()
		}
		p.steps[o.Name] = s
	}
}

func (p *progress) snapshot() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := Status{RunID: p.runID, State: p.state, Outcome: p.outcome, Steps: make([]StepStatus, 0, len(p.order))}
	for _, n := range p.order {
		st.Steps = append(st.Steps, p.steps[n])
	}
	return st
}
