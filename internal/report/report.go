// Package report renders the outcome of a run for operators and for
// follow-up plans.
package report

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/specialistvlad/provisiongrid/internal/orchestrator"
	"github.com/specialistvlad/provisiongrid/internal/plan"
)

// Format selects the report encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatHCL  Format = "hcl"
)

// ParseFormat validates a -report-format value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatHCL:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown report format %q, want json or hcl", s)
	}
}

// Outcome classifies a whole run.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeInvalid   Outcome = "invalid_plan"
)

// Classify maps a run result to its outcome.
func Classify(res *orchestrator.Result) Outcome {
	switch {
	case res.Err == nil:
		return OutcomeSucceeded
	case errors.Is(res.Err, plan.ErrInvalidPlan):
		return OutcomeInvalid
	case errors.Is(res.Err, orchestrator.ErrCancelled):
		return OutcomeCancelled
	default:
		return OutcomeFailed
	}
}

// Write renders res in the given format.
func Write(w io.Writer, format Format, res *orchestrator.Result, env string) error {
	switch format {
	case FormatHCL:
		return WriteHCL(w, res)
	case FormatJSON:
		return WriteJSON(w, res, env)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// WriteFile renders res into path, replacing any existing file.
func WriteFile(path string, format Format, res *orchestrator.Result, env string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	if err := Write(f, format, res, env); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
