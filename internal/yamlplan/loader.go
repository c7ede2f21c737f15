package yamlplan

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/specialistvlad/provisiongrid/internal/config"
	"github.com/specialistvlad/provisiongrid/internal/ctxlog"
	"github.com/specialistvlad/provisiongrid/internal/fsutil"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

// Extensions are the file extensions of YAML plan documents.
var Extensions = []string{".yaml", ".yml"}

type document struct {
	Variables    map[string]variableDoc    `yaml:"variables"`
	Environments map[string]environmentDoc `yaml:"environments"`
	Steps        []yaml.Node               `yaml:"steps"`
}

type variableDoc struct {
	Description string    `yaml:"description"`
	Default     yaml.Node `yaml:"default"`
}

type environmentDoc struct {
	Client             string               `yaml:"client"`
	Endpoint           string               `yaml:"endpoint"`
	Namespace          string               `yaml:"namespace"`
	Timeout            string               `yaml:"timeout"`
	InsecureSkipVerify bool                 `yaml:"insecure_skip_verify"`
	Headers            map[string]string    `yaml:"headers"`
	Variables          map[string]yaml.Node `yaml:"variables"`
}

type stepDoc struct {
	Name        string      `yaml:"name"`
	Descriptor  string      `yaml:"descriptor"`
	Description string      `yaml:"description"`
	Args        []yaml.Node `yaml:"args"`
	DependsOn   []string    `yaml:"depends_on"`
}

var stepKeys = map[string]struct{}{
	"name": {}, "descriptor": {}, "description": {}, "args": {}, "depends_on": {},
}

// Loader is the YAML implementation of the config.Loader interface.
type Loader struct{}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a new YAML plan loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load decodes every YAML plan document under paths into a single model.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("YAML loader started.", "path_count", len(paths))

	files, err := fsutil.ResolvePlanFiles(paths, Extensions...)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no %v files found in %v", Extensions, paths)
	}

	model := config.NewModel()
	for _, file := range files {
		raw, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", file, err)
		}
		fileModel, err := l.Parse(ctx, raw, file)
		if err != nil {
			return nil, err
		}
		if err := model.Merge(fileModel); err != nil {
			return nil, fmt.Errorf("in %s: %w", file, err)
		}
	}

	logger.Debug("YAML loading complete.", "variables", len(model.Variables), "environments", len(model.Environments), "steps", len(model.Steps))
	return model, nil
}

// Parse decodes a single YAML plan document. filename is used in error
// messages and step sources only.
func (l *Loader) Parse(ctx context.Context, src []byte, filename string) (*config.Model, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(src))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode YAML file %s: %w", filename, err)
	}

	model := config.NewModel()
	for name, v := range doc.Variables {
		variable := &config.Variable{Name: name, Description: v.Description}
		if v.Default.Kind != 0 {
			val, err := nodeValue(&v.Default)
			if err != nil {
				return nil, fmt.Errorf("%s: variable %q default: %w", filename, name, err)
			}
			variable.Default = val
		}
		model.Variables[name] = variable
	}

	for name, e := range doc.Environments {
		env, err := translateEnvironment(name, e)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		model.Environments[name] = env
	}

	for i := range doc.Steps {
		step, err := translateStep(&doc.Steps[i], filename)
		if err != nil {
			return nil, err
		}
		ctxlog.FromContext(ctx).Debug("Translated YAML step.", "step_name", step.Name, "args", len(step.Args))
		model.Steps = append(model.Steps, step)
	}
	return model, nil
}

func translateEnvironment(name string, e environmentDoc) (*config.Environment, error) {
	env := &config.Environment{
		Name:               name,
		Client:             e.Client,
		Endpoint:           e.Endpoint,
		Namespace:          e.Namespace,
		InsecureSkipVerify: e.InsecureSkipVerify,
		Headers:            e.Headers,
		Variables:          make(map[string]cty.Value, len(e.Variables)),
	}
	if env.Client == "" {
		env.Client = config.DefaultClient
	}
	if e.Timeout != "" {
		d, err := time.ParseDuration(e.Timeout)
		if err != nil {
			return nil, fmt.Errorf("environment %q: invalid timeout: %w", name, err)
		}
		env.Timeout = d
	}
	for k, n := range e.Variables {
		val, err := nodeValue(&n)
		if err != nil {
			return nil, fmt.Errorf("environment %q variable %q: %w", name, k, err)
		}
		env.Variables[k] = val
	}
	return env, nil
}

func translateStep(n *yaml.Node, filename string) (*config.Step, error) {
	source := fmt.Sprintf("%s:%d", filename, n.Line)
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%s: a step must be a mapping", source)
	}
	for i := 0; i < len(n.Content); i += 2 {
		if _, ok := stepKeys[n.Content[i].Value]; !ok {
			return nil, fmt.Errorf("%s: unsupported step field %q", source, n.Content[i].Value)
		}
	}

	var doc stepDoc
	if err := n.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	s := &config.Step{
		Name:        doc.Name,
		Descriptor:  doc.Descriptor,
		Description: doc.Description,
		DependsOn:   doc.DependsOn,
		Source:      source,
	}
	for i := range doc.Args {
		arg, err := classifyArg(&doc.Args[i])
		if err != nil {
			return nil, fmt.Errorf("%s: step %q: %w", source, s.Name, err)
		}
		s.Args = append(s.Args, arg)
	}
	return s, nil
}
