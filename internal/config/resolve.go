package config

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/provisiongrid/internal/plan"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// EnvVarPrefix marks process environment variables that set plan variables,
// e.g. PGRID_VAR_platform_fee=1000.
const EnvVarPrefix = "PGRID_VAR_"

// functions available to deferred argument expressions.
var functions = map[string]function.Function{
	"format": stdlib.FormatFunc,
	"join":   stdlib.JoinFunc,
	"lower":  stdlib.LowerFunc,
	"upper":  stdlib.UpperFunc,
	"concat": stdlib.ConcatFunc,
	"min":    stdlib.MinFunc,
	"max":    stdlib.MaxFunc,
}

// Values resolves variable values for env, in increasing precedence:
// declared defaults, the environment's variables, then overrides.
func (m *Model) Values(env *Environment, overrides map[string]cty.Value) map[string]cty.Value {
	values := make(map[string]cty.Value)
	for name, v := range m.Variables {
		if v.HasDefault() {
			values[name] = v.Default
		}
	}
	if env != nil {
		for name, v := range env.Variables {
			values[name] = v
		}
	}
	for name, v := range overrides {
		values[name] = v
	}
	return values
}

// Plan resolves every variable and deferred expression for env and returns
// the plan in declaration order. It does not validate the plan structure.
func (m *Model) Plan(env *Environment, overrides map[string]cty.Value) (*plan.Plan, error) {
	values := m.Values(env, overrides)
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{"var": cty.ObjectVal(values)},
		Functions: functions,
	}

	p := plan.New()
	for i, s := range m.Steps {
		ps := &plan.Step{
			Name:        s.Name,
			Descriptor:  plan.Descriptor(s.Descriptor),
			Description: s.Description,
			DependsOn:   s.DependsOn,
			Args:        make([]plan.Arg, 0, len(s.Args)),
		}
		for j, a := range s.Args {
			arg, err := resolveArg(a, values, evalCtx)
			if err != nil {
				if invalid, ok := err.(*plan.InvalidPlanError); ok {
					invalid.Step = s.Name
					invalid.Index = i
					loc := fmt.Sprintf("argument %d", j+1)
					if s.Source != "" {
						loc += " at " + s.Source
					}
					if invalid.Detail != "" {
						loc += ": " + invalid.Detail
					}
					invalid.Detail = loc
					return nil, invalid
				}
				return nil, err
			}
			ps.Args = append(ps.Args, arg)
		}
		p.Steps = append(p.Steps, ps)
	}
	return p, nil
}

func resolveArg(a Arg, values map[string]cty.Value, evalCtx *hcl.EvalContext) (plan.Arg, error) {
	switch a.Kind {
	case ArgLiteral:
		return plan.Literal(a.Value), nil
	case ArgReference:
		return plan.Reference(a.Name), nil
	case ArgVariable:
		v, ok := values[a.Name]
		if !ok {
			return plan.Arg{}, &plan.InvalidPlanError{Violation: plan.ViolationUndefinedVariable, Reference: a.Name}
		}
		return plan.Literal(v), nil
	case ArgExpression:
		for _, tr := range a.Expr.Variables() {
			if tr.RootName() != "var" || len(tr) < 2 {
				continue
			}
			if attr, ok := tr[1].(hcl.TraverseAttr); ok {
				if _, defined := values[attr.Name]; !defined {
					return plan.Arg{}, &plan.InvalidPlanError{Violation: plan.ViolationUndefinedVariable, Reference: attr.Name}
				}
			}
		}
		v, diags := a.Expr.Value(evalCtx)
		if diags.HasErrors() {
			return plan.Arg{}, &plan.InvalidPlanError{Violation: plan.ViolationInvalidArgument, Detail: diags.Error()}
		}
		if !v.IsWhollyKnown() {
			return plan.Arg{}, &plan.InvalidPlanError{Violation: plan.ViolationInvalidArgument, Detail: "value is not known before provisioning"}
		}
		return plan.Literal(v), nil
	default:
		return plan.Arg{}, fmt.Errorf("unsupported argument kind %d", a.Kind)
	}
}

// ParseVarValue interprets an operator-supplied value. Anything that parses
// as an HCL literal (numbers, bools, quoted strings, lists, objects) keeps
// its type; everything else is taken as a raw string.
func ParseVarValue(raw string) cty.Value {
	expr, diags := hclsyntax.ParseExpression([]byte(raw), "<value>", hcl.InitialPos)
	if diags.HasErrors() || len(expr.Variables()) > 0 {
		return cty.StringVal(raw)
	}
	v, diags := expr.Value(nil)
	if diags.HasErrors() || !v.IsWhollyKnown() || v.IsNull() {
		return cty.StringVal(raw)
	}
	return v
}

// ParseAssignments turns "name=value" pairs into variable overrides.
func ParseAssignments(pairs []string) (map[string]cty.Value, error) {
	out := make(map[string]cty.Value, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid variable assignment %q, expected name=value", pair)
		}
		out[name] = ParseVarValue(raw)
	}
	return out, nil
}

// EnvOverrides extracts PGRID_VAR_* entries from an os.Environ()-style list.
func EnvOverrides(environ []string) map[string]cty.Value {
	out := make(map[string]cty.Value)
	for _, kv := range environ {
		key, raw, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, EnvVarPrefix) {
			continue
		}
		name := strings.TrimPrefix(key, EnvVarPrefix)
		if name == "" {
			continue
		}
		out[name] = ParseVarValue(raw)
	}
	return out
}
