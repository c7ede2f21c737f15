package app

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/provisiongrid/internal/hclplan"
	"github.com/specialistvlad/provisiongrid/internal/yamlplan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	cfg, err := NewConfig(Config{PlanPaths: []string{"plan.hcl"}})
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, "json", cfg.ReportFormat)

	testCases := []struct {
		name string
		cfg  Config
	}{
		{name: "no plan", cfg: Config{}},
		{name: "negative workers", cfg: Config{PlanPaths: []string{"p"}, Workers: -1}},
		{name: "bad report format", cfg: Config{PlanPaths: []string{"p"}, ReportFormat: "xml"}},
		{name: "bad port", cfg: Config{PlanPaths: []string{"p"}, HealthcheckPort: 70000}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewConfig(tc.cfg)
			assert.Error(t, err)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger("warn", "json", &buf)
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	buf.Reset()
	newLogger("nonsense", "text", &buf).Info("default level")
	assert.Contains(t, buf.String(), "default level")
}

func TestSelectLoader(t *testing.T) {
	dir := t.TempDir()
	hclFile := filepath.Join(dir, "main.hcl")
	yamlFile := filepath.Join(dir, "plan.yml")
	require.NoError(t, os.WriteFile(hclFile, nil, 0o644))
	require.NoError(t, os.WriteFile(yamlFile, nil, 0o644))

	l, err := selectLoader([]string{hclFile})
	require.NoError(t, err)
	assert.IsType(t, &hclplan.Loader{}, l)

	l, err = selectLoader([]string{yamlFile})
	require.NoError(t, err)
	assert.IsType(t, &yamlplan.Loader{}, l)

	l, err = selectLoader([]string{dir})
	require.NoError(t, err)
	assert.IsType(t, &hclplan.Loader{}, l, "directories with .hcl files load as HCL")

	yamlDir := filepath.Join(dir, "yaml")
	require.NoError(t, os.Mkdir(yamlDir, 0o755))
	l, err = selectLoader([]string{yamlDir})
	require.NoError(t, err)
	assert.IsType(t, &yamlplan.Loader{}, l)

	_, err = selectLoader([]string{filepath.Join(dir, "plan.json")})
	assert.Error(t, err)
}
