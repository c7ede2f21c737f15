// Package testutil provides a harness that runs the full application against
// plan files written to a temporary directory.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/specialistvlad/provisiongrid/internal/app"
	"github.com/specialistvlad/provisiongrid/internal/provision/provisiontest"
	"github.com/specialistvlad/provisiongrid/internal/registry"
	"github.com/specialistvlad/provisiongrid/modules/httpapi"
	"github.com/stretchr/testify/require"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// Options tweaks the app configuration used by the harness.
type Options struct {
	Environment  string
	Vars         []string
	Environ      []string
	Workers      int
	ValidateOnly bool
	// ReportFormat, when set, makes the app write a report that is returned
	// in HarnessResult.Report.
	ReportFormat string
}

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	Output string
	Err    error
	App    *app.App
	Report []byte
}

// RunIntegrationTest provides a standardized harness for running integration tests
// using a default background context.
func RunIntegrationTest(t *testing.T, files map[string]string, client *provisiontest.Client, opts Options) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithContext(context.Background(), t, files, client, opts)
}

// RunIntegrationTestWithContext writes files below a temporary plan directory
// and runs the app on it. client answers for the "simulated" kind, so plans
// without environment blocks are provisioned through it.
func RunIntegrationTestWithContext(ctx context.Context, t *testing.T, files map[string]string, client *provisiontest.Client, opts Options) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	planDir := filepath.Join(tmpDir, "plan")
	require.NoError(t, os.Mkdir(planDir, 0o755))
	for name, content := range files {
		filePath := filepath.Join(planDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
	}

	cfg := app.Config{
		PlanPaths:    []string{planDir},
		Environment:  opts.Environment,
		Vars:         opts.Vars,
		Environ:      opts.Environ,
		Workers:      opts.Workers,
		ValidateOnly: opts.ValidateOnly,
		LogLevel:     "debug",
		LogFormat:    "text",
	}
	reportPath := ""
	if opts.ReportFormat != "" {
		reportPath = filepath.Join(tmpDir, "report."+opts.ReportFormat)
		cfg.ReportPath = reportPath
		cfg.ReportFormat = opts.ReportFormat
	}
	appConfig, err := app.NewConfig(cfg)
	require.NoError(t, err)

	out := &SafeBuffer{}
	modules := []registry.Module{&ScriptedModule{Kind: "simulated", Client: client}, &httpapi.Module{}}
	testApp := app.NewApp(out, appConfig, modules...)
	runErr := testApp.Run(ctx)

	if os.Getenv("PGRID_TEST_LOGS") == "true" {
		t.Logf("--- Full Output for %s ---\n%s", t.Name(), out.String())
	}

	result := &HarnessResult{Output: out.String(), Err: runErr, App: testApp}
	if reportPath != "" {
		if raw, err := os.ReadFile(reportPath); err == nil {
			result.Report = raw
		}
	}
	return result
}
