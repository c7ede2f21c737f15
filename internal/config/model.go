package config

import (
	"fmt"
	"sort"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// DefaultEnvironment is used when a plan declares no environment at all.
const DefaultEnvironment = "local"

// DefaultClient is the client kind of the implicit default environment.
const DefaultClient = "simulated"

// ArgKind tags the variant of a raw argument.
type ArgKind int

const (
	ArgLiteral ArgKind = iota
	ArgReference
	ArgVariable
	// ArgExpression is a deferred HCL expression that may read variables.
	ArgExpression
)

// Arg is a raw step argument as written in the plan document.
type Arg struct {
	Kind  ArgKind
	Value cty.Value
	// Name is the referenced step or variable.
	Name string
	Expr hcl.Expression
}

// Step is the format-agnostic representation of a `step` block.
type Step struct {
	Name        string
	Descriptor  string
	Description string
	Args        []Arg
	DependsOn   []string
	// Source locates the declaration for error messages, e.g. "main.hcl:12".
	Source string
}

// Variable is a named input of the plan, such as the address of a
// pre-existing external service or a fee parameter.
type Variable struct {
	Name        string
	Description string
	// Default is null when the variable must be supplied by the environment
	// or the operator.
	Default cty.Value
}

// HasDefault reports whether the variable carries a usable default.
func (v *Variable) HasDefault() bool {
	return v.Default != cty.NilVal && !v.Default.IsNull()
}

// Environment selects the provisioning transport and per-target variables.
type Environment struct {
	Name               string
	Client             string
	Endpoint           string
	Namespace          string
	Timeout            time.Duration
	InsecureSkipVerify bool
	Headers            map[string]string
	Variables          map[string]cty.Value
}

// Model is the unified, format-agnostic representation of a plan document.
type Model struct {
	Variables    map[string]*Variable
	Environments map[string]*Environment
	Steps        []*Step
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{
		Variables:    make(map[string]*Variable),
		Environments: make(map[string]*Environment),
	}
}

// Merge appends other's steps and adds its variables and environments.
// Declaring the same variable or environment twice is an error.
func (m *Model) Merge(other *Model) error {
	for name, v := range other.Variables {
		if _, dup := m.Variables[name]; dup {
			return fmt.Errorf("variable %q declared more than once", name)
		}
		m.Variables[name] = v
	}
	for name, e := range other.Environments {
		if _, dup := m.Environments[name]; dup {
			return fmt.Errorf("environment %q declared more than once", name)
		}
		m.Environments[name] = e
	}
	m.Steps = append(m.Steps, other.Steps...)
	return nil
}

// EnvironmentNames returns declared environment names, sorted.
func (m *Model) EnvironmentNames() []string {
	names := make([]string, 0, len(m.Environments))
	for n := range m.Environments {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Environment picks the environment to run against. An empty name selects
// the only declared environment, or the implicit local one when none is
// declared.
func (m *Model) Environment(name string) (*Environment, error) {
	if name == "" {
		switch len(m.Environments) {
		case 0:
			return defaultEnvironment(), nil
		case 1:
			for _, e := range m.Environments {
				return e, nil
			}
		}
		return nil, fmt.Errorf("plan declares %d environments %v, select one", len(m.Environments), m.EnvironmentNames())
	}
	if e, ok := m.Environments[name]; ok {
		return e, nil
	}
	if name == DefaultEnvironment {
		return defaultEnvironment(), nil
	}
	return nil, fmt.Errorf("unknown environment %q, declared: %v", name, m.EnvironmentNames())
}

func defaultEnvironment() *Environment {
	return &Environment{
		Name:      DefaultEnvironment,
		Client:    DefaultClient,
		Variables: map[string]cty.Value{},
	}
}
