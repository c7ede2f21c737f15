package cli

import (
	"errors"

	"github.com/specialistvlad/provisiongrid/internal/app"
	"github.com/specialistvlad/provisiongrid/internal/orchestrator"
	"github.com/specialistvlad/provisiongrid/internal/plan"
)

// Process exit codes.
const (
	ExitOK                 = 0
	ExitFailure            = 1
	ExitUsage              = 2
	ExitInvalidPlan        = 3
	ExitProvisioningFailed = 4
	ExitCancelled          = 5
	ExitInternal           = 6
)

// ExitCode maps an error returned by the application to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	var unresolved *orchestrator.UnresolvedReferenceError
	var failed *orchestrator.ProvisioningFailedError
	switch {
	case errors.As(err, &exitErr):
		return exitErr.Code
	case errors.Is(err, app.ErrConfig):
		return ExitUsage
	case errors.Is(err, plan.ErrInvalidPlan):
		return ExitInvalidPlan
	case errors.As(err, &unresolved):
		return ExitInternal
	case errors.As(err, &failed):
		return ExitProvisioningFailed
	case errors.Is(err, orchestrator.ErrCancelled):
		return ExitCancelled
	default:
		return ExitFailure
	}
}
