package integration_tests

import (
	"errors"
	"testing"

	"github.com/specialistvlad/provisiongrid/internal/provision/provisiontest"
	"github.com/specialistvlad/provisiongrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestProvisioning_HCLReportSeedsFollowUpPlan exports the identities of a
// partial run as variables and uses them from a follow-up plan.
func TestProvisioning_HCLReportSeedsFollowUpPlan(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	first := provisiontest.New().FailOn("C", errors.New("out of gas"))
	partial := testutil.RunIntegrationTest(t, map[string]string{"main.hcl": abcHCL}, first, testutil.Options{ReportFormat: "hcl"})
	require.Error(t, partial.Err)
	require.NotEmpty(t, partial.Report)

	followUp := `
step "CompC" "C" {
  args = [var.A, var.B]
}
`
	second := provisiontest.New()

	// --- Act ---
	result := testutil.RunIntegrationTest(t, map[string]string{
		"identities.hcl": string(partial.Report),
		"resume.hcl":     followUp,
	}, second, testutil.Options{})

	// --- Assert ---
	require.NoError(t, result.Err)
	require.Equal(t, []string{"C"}, second.CalledSteps())
	args, err := second.Calls()[0].ArgValues()
	require.NoError(t, err)
	assert.Equal(t, []any{"0xA", "0xB"}, args)
}
