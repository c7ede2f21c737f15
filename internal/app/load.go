package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/specialistvlad/provisiongrid/internal/config"
	"github.com/specialistvlad/provisiongrid/internal/ctxlog"
	"github.com/specialistvlad/provisiongrid/internal/fsutil"
	"github.com/specialistvlad/provisiongrid/internal/hclplan"
	"github.com/specialistvlad/provisiongrid/internal/yamlplan"
)

// selectLoader picks the plan format from the first path: its extension for
// a file, or the files it contains for a directory.
func selectLoader(paths []string) (config.Loader, error) {
	path := paths[0]
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("plan path %s: %w", path, err)
	}
	if !info.IsDir() {
		switch filepath.Ext(path) {
		case hclplan.Extension:
			return hclplan.NewLoader(), nil
		case ".yaml", ".yml":
			return yamlplan.NewLoader(), nil
		default:
			return nil, fmt.Errorf("plan file %s: unsupported format, want .hcl, .yaml or .yml", path)
		}
	}
	hclFiles, err := fsutil.FindFilesByExtension(path, hclplan.Extension)
	if err != nil {
		return nil, err
	}
	if len(hclFiles) > 0 {
		return hclplan.NewLoader(), nil
	}
	return yamlplan.NewLoader(), nil
}

// loadModel reads every plan path into one model.
func (a *App) loadModel(ctx context.Context) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading plan...", "paths", a.config.PlanPaths)

	loader, err := selectLoader(a.config.PlanPaths)
	if err != nil {
		return nil, err
	}
	model, err := loader.Load(ctx, a.config.PlanPaths...)
	if err != nil {
		return nil, err
	}
	logger.Info("Plan loaded.", "steps", len(model.Steps), "environments", model.EnvironmentNames())
	return model, nil
}
