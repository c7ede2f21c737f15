package hclplan

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/provisiongrid/internal/config"
	"github.com/specialistvlad/provisiongrid/internal/ctxlog"
	"github.com/specialistvlad/provisiongrid/internal/fsutil"
)

// Extension is the file extension of HCL plan documents.
const Extension = ".hcl"

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a new HCL plan loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file found under paths and merges them into a
// single model.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := fsutil.ResolvePlanFiles(paths, Extension)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s files found in %v", Extension, paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	model := config.NewModel()
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}
		fileModel, err := l.decodeFile(ctx, hclFile)
		if err != nil {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, err)
		}
		if err := model.Merge(fileModel); err != nil {
			return nil, fmt.Errorf("in %s: %w", file, err)
		}
	}

	logger.Debug("HCL loading complete.", "variables", len(model.Variables), "environments", len(model.Environments), "steps", len(model.Steps))
	return model, nil
}

// Parse decodes a single in-memory HCL document. filename is used in
// diagnostics only.
func (l *Loader) Parse(ctx context.Context, src []byte, filename string) (*config.Model, error) {
	hclFile, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL %s: %w", filename, diags)
	}
	return l.decodeFile(ctx, hclFile)
}

func (l *Loader) decodeFile(ctx context.Context, file *hcl.File) (*config.Model, error) {
	content, diags := file.Body.Content(rootSchema)
	if diags.HasErrors() {
		return nil, diags
	}

	model := config.NewModel()
	for _, block := range content.Blocks {
		switch block.Type {
		case "variable":
			v, err := l.translateVariable(block)
			if err != nil {
				return nil, err
			}
			if _, dup := model.Variables[v.Name]; dup {
				return nil, fmt.Errorf("%s: variable %q declared more than once", block.DefRange, v.Name)
			}
			model.Variables[v.Name] = v
		case "environment":
			e, err := l.translateEnvironment(block)
			if err != nil {
				return nil, err
			}
			if _, dup := model.Environments[e.Name]; dup {
				return nil, fmt.Errorf("%s: environment %q declared more than once", block.DefRange, e.Name)
			}
			model.Environments[e.Name] = e
		case "step":
			s, err := l.translateStep(ctx, block)
			if err != nil {
				return nil, err
			}
			model.Steps = append(model.Steps, s)
		}
	}
	return model, nil
}
