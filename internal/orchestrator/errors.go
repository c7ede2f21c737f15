package orchestrator

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/provisiongrid/internal/plan"
)

// ErrCancelled is matched by every *CancelledError via errors.Is.
var ErrCancelled = errors.New("run cancelled")

// errEmptyIdentity is the cause recorded when a client reports success
// without returning an identity.
var errEmptyIdentity = errors.New("client returned an empty identity")

// ProvisioningFailedError reports that the client call for Step failed.
// Identities committed before the failure remain in the Result's registry.
type ProvisioningFailedError struct {
	Step       string
	Descriptor plan.Descriptor
	Cause      error
}

func (e *ProvisioningFailedError) Error() string {
	return fmt.Sprintf("provisioning step %q (%s) failed: %v", e.Step, e.Descriptor, e.Cause)
}

func (e *ProvisioningFailedError) Unwrap() error { return e.Cause }

// UnresolvedReferenceError means a reference could not be resolved although
// the plan passed validation. It signals a defect, not a user error.
type UnresolvedReferenceError struct {
	Step  string
	Ref   string
	Cause error
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("internal error: step %q references %q which has no committed identity: %v", e.Step, e.Ref, e.Cause)
}

func (e *UnresolvedReferenceError) Unwrap() error { return e.Cause }

// CancelledError reports an operator abort observed before NextStep started.
type CancelledError struct {
	NextStep string
	Cause    error
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("run cancelled before step %q: %v", e.NextStep, e.Cause)
}

func (e *CancelledError) Unwrap() error { return e.Cause }

// Is lets callers match with errors.Is(err, ErrCancelled).
func (e *CancelledError) Is(target error) bool {
	return target == ErrCancelled
}
