package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertStepProvisioned checks the log output for the success line of step.
func AssertStepProvisioned(t *testing.T, result *HarnessResult, step string) {
	t.Helper()

	marker := fmt.Sprintf(" step=%s ", step)
	for _, line := range strings.Split(result.Output, "\n") {
		if strings.Contains(line, "Step provisioned") && strings.Contains(line+" ", marker) {
			return
		}
	}
	require.Fail(t, "step was not provisioned", "no success log line for step %q", step)
}

// AssertStepNotProvisioned checks that no provisioning call was logged for step.
func AssertStepNotProvisioned(t *testing.T, result *HarnessResult, step string) {
	t.Helper()

	marker := fmt.Sprintf(" step=%s ", step)
	for _, line := range strings.Split(result.Output, "\n") {
		if strings.Contains(line, "Provisioning step") && strings.Contains(line+" ", marker) {
			require.Fail(t, "step was provisioned", "found a provisioning log line for step %q", step)
		}
	}
}
