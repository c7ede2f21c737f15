package integration_tests

import (
	"testing"

	"github.com/specialistvlad/provisiongrid/internal/provision/provisiontest"
	"github.com/specialistvlad/provisiongrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEnvironments_YAMLPlan provisions a YAML plan with references, variables
// and a deferred expression.
func TestEnvironments_YAMLPlan(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	planYAML := `
variables:
  owner:
    default: "0xOWNER"
  fee:
    default: 10
steps:
  - name: permitted
    descriptor: PermittedAddresses
  - name: fund
    descriptor: SmartFundETH
    args:
      - !var owner
      - !ref permitted
      - {ref: permitted}
      - !expr var.fee * 2
`
	client := provisiontest.New()

	// --- Act ---
	result := testutil.RunIntegrationTest(t, map[string]string{"plan.yaml": planYAML}, client, testutil.Options{})

	// --- Assert ---
	require.NoError(t, result.Err)
	require.Equal(t, []string{"permitted", "fund"}, client.CalledSteps())
	args, err := client.Calls()[1].ArgValues()
	require.NoError(t, err)
	assert.Equal(t, []any{"0xOWNER", "0xpermitted", "0xpermitted", int64(20)}, args)
}
