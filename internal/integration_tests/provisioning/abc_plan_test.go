package integration_tests

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/specialistvlad/provisiongrid/internal/orchestrator"
	"github.com/specialistvlad/provisiongrid/internal/provision/provisiontest"
	"github.com/specialistvlad/provisiongrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const abcHCL = `
step "CompA" "A" {}

step "CompB" "B" {
  args = [step.A]
}

step "CompC" "C" {
  args = [step.A, step.B]
}
`

type reportDoc struct {
	Outcome    string            `json:"outcome"`
	FailedStep string            `json:"failed_step"`
	Identities map[string]string `json:"identities"`
}

// TestProvisioning_AllStepsSucceed runs A, B(ref A), C(ref A, ref B) and
// expects every identity in the registry.
func TestProvisioning_AllStepsSucceed(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	client := provisiontest.New()

	// --- Act ---
	result := testutil.RunIntegrationTest(t, map[string]string{"main.hcl": abcHCL}, client, testutil.Options{ReportFormat: "json"})

	// --- Assert ---
	require.NoError(t, result.Err)
	assert.Equal(t, []string{"A", "B", "C"}, client.CalledSteps())
	for _, step := range []string{"A", "B", "C"} {
		testutil.AssertStepProvisioned(t, result, step)
	}

	var doc reportDoc
	require.NoError(t, json.Unmarshal(result.Report, &doc))
	assert.Equal(t, "succeeded", doc.Outcome)
	assert.Equal(t, map[string]string{"A": "0xA", "B": "0xB", "C": "0xC"}, doc.Identities)

	calls := client.Calls()
	assert.Equal(t, "0xA", string(calls[2].Args[0].Identity))
	assert.Equal(t, "0xB", string(calls[2].Args[1].Identity))
}

// TestProvisioning_FailureOnB keeps A's identity, names B and never calls C.
func TestProvisioning_FailureOnB(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	client := provisiontest.New().FailOn("B", errors.New("transaction reverted"))

	// --- Act ---
	result := testutil.RunIntegrationTest(t, map[string]string{"main.hcl": abcHCL}, client, testutil.Options{ReportFormat: "json"})

	// --- Assert ---
	require.Error(t, result.Err)
	var failed *orchestrator.ProvisioningFailedError
	require.True(t, errors.As(result.Err, &failed))
	assert.Equal(t, "B", failed.Step)
	assert.Contains(t, result.Err.Error(), "transaction reverted")

	assert.Equal(t, []string{"A", "B"}, client.CalledSteps())
	testutil.AssertStepNotProvisioned(t, result, "C")

	var doc reportDoc
	require.NoError(t, json.Unmarshal(result.Report, &doc))
	assert.Equal(t, "failed", doc.Outcome)
	assert.Equal(t, "B", doc.FailedStep)
	assert.Equal(t, map[string]string{"A": "0xA"}, doc.Identities)
}
