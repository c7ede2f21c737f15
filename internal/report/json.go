package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/specialistvlad/provisiongrid/internal/orchestrator"
)

// Document is the JSON report of one run.
type Document struct {
	RunID       string            `json:"run_id"`
	Environment string            `json:"environment,omitempty"`
	Outcome     Outcome           `json:"outcome"`
	FailedStep  string            `json:"failed_step,omitempty"`
	Error       string            `json:"error,omitempty"`
	Identities  map[string]string `json:"identities"`
	Steps       []StepDocument    `json:"steps"`
}

// StepDocument is the JSON form of a step outcome.
type StepDocument struct {
	Name       string `json:"name"`
	Descriptor string `json:"descriptor"`
	Status     string `json:"status"`
	Identity   string `json:"identity,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms,omitempty"`
}

// NewDocument builds the JSON report for res.
func NewDocument(res *orchestrator.Result, env string) *Document {
	doc := &Document{
		RunID:       res.RunID,
		Environment: env,
		Outcome:     Classify(res),
		FailedStep:  res.FailedStep,
		Identities:  make(map[string]string),
		Steps:       make([]StepDocument, 0, len(res.Steps)),
	}
	if res.Err != nil {
		doc.Error = res.Err.Error()
	}
	for name, id := range res.Registry.Snapshot() {
		doc.Identities[name] = string(id)
	}
	for _, o := range res.Steps {
		sd := StepDocument{
			Name:       o.Name,
			Descriptor: string(o.Descriptor),
			Status:     string(o.Status),
			Identity:   string(o.Identity),
			DurationMS: o.Duration().Milliseconds(),
		}
		if o.Err != nil {
			sd.Error = o.Err.Error()
		}
		doc.Steps = append(doc.Steps, sd)
	}
	return doc
}

// WriteJSON writes the indented JSON report.
func WriteJSON(w io.Writer, res *orchestrator.Result, env string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewDocument(res, env)); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
