package plan

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Descriptor names the kind of component a step provisions, e.g. "PoolPortal".
type Descriptor string

// ArgKind tags the variant held by an Arg.
type ArgKind int

const (
	// LiteralArg carries a configuration value known before the run starts.
	LiteralArg ArgKind = iota
	// ReferenceArg points at the identity of another step in the same plan.
	ReferenceArg
)

func (k ArgKind) String() string {
	switch k {
	case LiteralArg:
		return "literal"
	case ReferenceArg:
		return "reference"
	default:
		return fmt.Sprintf("ArgKind(%d)", int(k))
	}
}

// Arg is one constructor argument: Literal(value) or Reference(step).
type Arg struct {
	Kind ArgKind
	// Value is set for literal arguments.
	Value cty.Value
	// Ref is the referenced step name for reference arguments.
	Ref string
}

// Literal builds a literal argument.
func Literal(v cty.Value) Arg {
	return Arg{Kind: LiteralArg, Value: v}
}

// String is shorthand for a string literal argument.
func String(s string) Arg {
	return Literal(cty.StringVal(s))
}

// Number is shorthand for an integer literal argument.
func Number(n int64) Arg {
	return Literal(cty.NumberIntVal(n))
}

// Reference builds an argument resolved to the identity of step name.
func Reference(name string) Arg {
	return Arg{Kind: ReferenceArg, Ref: name}
}

// IsReference reports whether the argument points at another step.
func (a Arg) IsReference() bool {
	return a.Kind == ReferenceArg
}

func (a Arg) String() string {
	if a.IsReference() {
		return "step." + a.Ref
	}
	if a.Value == cty.NilVal {
		return "null"
	}
	if !a.Value.IsKnown() {
		return "(unknown)"
	}
	if a.Value.IsNull() {
		return "null"
	}
	if a.Value.Type() == cty.String {
		return fmt.Sprintf("%q", a.Value.AsString())
	}
	if a.Value.Type() == cty.Number {
		return a.Value.AsBigFloat().Text('f', -1)
	}
	if a.Value.Type() == cty.Bool {
		return fmt.Sprintf("%t", a.Value.True())
	}
	return a.Value.GoString()
}

// Step is one provisioning action.
type Step struct {
	// Name keys the resulting identity and is what other steps reference.
	Name       string
	Descriptor Descriptor
	Args       []Arg
	// DependsOn lists steps that must have committed before this one starts
	// even though none of their identities is passed as an argument.
	DependsOn   []string
	Description string
}

// References returns the distinct names of all steps this step waits for,
// arguments first, then depends_on, in order of first appearance.
func (s *Step) References() []string {
	seen := make(map[string]struct{})
	var refs []string
	add := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		refs = append(refs, name)
	}
	for _, a := range s.Args {
		if a.IsReference() {
			add(a.Ref)
		}
	}
	for _, d := range s.DependsOn {
		add(d)
	}
	return refs
}

func (s *Step) String() string {
	parts := make([]string, len(s.Args))
	for i, a := range s.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s = %s(%s)", s.Name, s.Descriptor, strings.Join(parts, ", "))
}

// Plan is the ordered list of steps supplied by the operator.
type Plan struct {
	Steps []*Step
}

// New builds a plan from steps in execution order.
func New(steps ...*Step) *Plan {
	return &Plan{Steps: steps}
}

// Len returns the number of steps.
func (p *Plan) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Steps)
}

// Index returns the position of the named step, or -1.
func (p *Plan) Index(name string) int {
	for i, s := range p.Steps {
		if s.Name == name {
			return i
		}
	}
	return -1
}

// Step returns the named step.
func (p *Plan) Step(name string) (*Step, bool) {
	if i := p.Index(name); i >= 0 {
		return p.Steps[i], true
	}
	return nil, false
}

// Names returns step names in plan order.
func (p *Plan) Names() []string {
	names := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		names[i] = s.Name
	}
	return names
}
