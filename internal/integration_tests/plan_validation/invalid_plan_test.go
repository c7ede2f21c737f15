package integration_tests

import (
	"errors"
	"testing"

	"github.com/specialistvlad/provisiongrid/internal/plan"
	"github.com/specialistvlad/provisiongrid/internal/provision/provisiontest"
	"github.com/specialistvlad/provisiongrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPlanValidation_RejectedBeforeAnyCall checks that every structural defect
// is reported as an invalid plan and that the client is never invoked.
func TestPlanValidation_RejectedBeforeAnyCall(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		hcl       string
		step      string
		violation plan.Violation
		reference string
	}{
		{
			name: "self reference",
			hcl: `
step "CompA" "A" {}
step "CompB" "B" {
  args = [step.B]
}
`,
			step:      "B",
			violation: plan.ViolationSelfReference,
			reference: "B",
		},
		{
			name: "forward reference",
			hcl: `
step "CompA" "A" {
  args = [step.B]
}
step "CompB" "B" {}
`,
			step:      "A",
			violation: plan.ViolationForwardReference,
			reference: "B",
		},
		{
			name: "unknown reference",
			hcl: `
step "CompA" "A" {}
step "CompB" "B" {
  args = [step.A, step.Z]
}
`,
			step:      "B",
			violation: plan.ViolationUnknownReference,
			reference: "Z",
		},
		{
			name: "duplicate name",
			hcl: `
step "CompA" "A" {}
step "CompB" "A" {}
`,
			step:      "A",
			violation: plan.ViolationDuplicateName,
		},
		{
			name: "forward depends_on",
			hcl: `
step "CompA" "A" {
  depends_on = [step.B]
}
step "CompB" "B" {}
`,
			step:      "A",
			violation: plan.ViolationForwardReference,
			reference: "B",
		},
		{
			name: "undefined variable",
			hcl: `
step "CompA" "A" {
  args = [var.owner]
}
`,
			step:      "A",
			violation: plan.ViolationUndefinedVariable,
			reference: "owner",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			// --- Arrange ---
			client := provisiontest.New()

			// --- Act ---
			result := testutil.RunIntegrationTest(t, map[string]string{"main.hcl": tc.hcl}, client, testutil.Options{})

			// --- Assert ---
			require.Error(t, result.Err)
			assert.True(t, errors.Is(result.Err, plan.ErrInvalidPlan))

			var invalid *plan.InvalidPlanError
			require.True(t, errors.As(result.Err, &invalid))
			assert.Equal(t, tc.step, invalid.Step)
			assert.Equal(t, tc.violation, invalid.Violation)
			if tc.reference != "" {
				assert.Equal(t, tc.reference, invalid.Reference)
			}

			assert.Empty(t, client.Calls(), "no provisioning call may happen for an invalid plan")
			assert.Nil(t, result.App.Result())
		})
	}
}

// TestPlanValidation_ValidateOnly checks a valid plan without provisioning.
func TestPlanValidation_ValidateOnly(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	client := provisiontest.New()
	planHCL := `
step "CompA" "A" {}
step "CompB" "B" {
  args = [step.A]
}
step "CompC" "C" {
  args = [step.A]
}
`
	// --- Act ---
	result := testutil.RunIntegrationTest(t, map[string]string{"main.hcl": planHCL}, client, testutil.Options{ValidateOnly: true})

	// --- Assert ---
	require.NoError(t, result.Err)
	assert.Empty(t, client.Calls())
	assert.Contains(t, result.Output, "plan is valid: 3 steps in 2 waves")
}
