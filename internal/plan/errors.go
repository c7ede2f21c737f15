package plan

import (
	"errors"
	"fmt"
)

// ErrInvalidPlan is matched by every *InvalidPlanError via errors.Is.
var ErrInvalidPlan = errors.New("invalid plan")

// Violation names the structural defect found in a plan.
type Violation string

const (
	ViolationInvalidName       Violation = "invalid step name"
	ViolationMissingDescriptor Violation = "missing descriptor"
	ViolationDuplicateName     Violation = "duplicate step name"
	ViolationSelfReference     Violation = "self reference"
	ViolationForwardReference  Violation = "forward reference"
	ViolationUnknownReference  Violation = "unknown reference"
	ViolationUndefinedVariable Violation = "undefined variable"
	ViolationInvalidArgument   Violation = "invalid argument"
)

// InvalidPlanError reports the first structural defect found in a plan. It is
// always produced before any provisioning call.
type InvalidPlanError struct {
	Step      string
	Index     int
	Violation Violation
	// Reference is the offending referenced name, when the violation concerns one.
	Reference string
	Detail    string
}

func (e *InvalidPlanError) Error() string {
	msg := fmt.Sprintf("invalid plan: step %q (#%d): %s", e.Step, e.Index+1, e.Violation)
	if e.Reference != "" {
		msg += fmt.Sprintf(" %q", e.Reference)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Is lets callers match any invalid plan error with errors.Is(err, ErrInvalidPlan).
func (e *InvalidPlanError) Is(target error) bool {
	return target == ErrInvalidPlan
}
