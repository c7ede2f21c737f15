package integration_tests

import (
	"testing"

	"github.com/specialistvlad/provisiongrid/internal/provision/provisiontest"
	"github.com/specialistvlad/provisiongrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fundHCL = `
variable "exchange_portal" {
  description = "Pre-existing exchange portal."
  default     = "0xDEFAULT"
}

variable "platform_fee" {
  default = 1000
}

environment "kovan" {
  variables = {
    exchange_portal = "0xKOVAN"
  }
}

environment "mainnet" {
  variables = {
    exchange_portal = "0xMAINNET"
    platform_fee    = 500
  }
}

step "SmartFundETH" "fund" {
  args = [var.exchange_portal, var.platform_fee]
}
`

// TestEnvironments_VariablePrecedence checks default < environment <
// process environment < -var.
func TestEnvironments_VariablePrecedence(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		opts     testutil.Options
		expected []any
	}{
		{
			name:     "environment block overrides default",
			opts:     testutil.Options{Environment: "kovan"},
			expected: []any{"0xKOVAN", int64(1000)},
		},
		{
			name:     "second environment",
			opts:     testutil.Options{Environment: "mainnet"},
			expected: []any{"0xMAINNET", int64(500)},
		},
		{
			name: "process environment overrides environment block",
			opts: testutil.Options{
				Environment: "kovan",
				Environ:     []string{"PGRID_VAR_exchange_portal=0xENV"},
			},
			expected: []any{"0xENV", int64(1000)},
		},
		{
			name: "flag overrides everything",
			opts: testutil.Options{
				Environment: "mainnet",
				Environ:     []string{"PGRID_VAR_exchange_portal=0xENV"},
				Vars:        []string{"exchange_portal=0xFLAG", "platform_fee=250"},
			},
			expected: []any{"0xFLAG", int64(250)},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			// --- Arrange ---
			client := provisiontest.New()

			// --- Act ---
			result := testutil.RunIntegrationTest(t, map[string]string{"main.hcl": fundHCL}, client, tc.opts)

			// --- Assert ---
			require.NoError(t, result.Err)
			require.Len(t, client.Calls(), 1)
			args, err := client.Calls()[0].ArgValues()
			require.NoError(t, err)
			assert.Equal(t, tc.expected, args)
		})
	}
}

// TestEnvironments_UnknownEnvironment is a configuration error.
func TestEnvironments_UnknownEnvironment(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	client := provisiontest.New()

	// --- Act ---
	result := testutil.RunIntegrationTest(t, map[string]string{"main.hcl": fundHCL}, client, testutil.Options{Environment: "ropsten"})

	// --- Assert ---
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "ropsten")
	assert.Empty(t, client.Calls())
}
