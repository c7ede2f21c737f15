// This file translates decoded HCL blocks into the format-agnostic model
// defined in the config package.

package hclplan

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/specialistvlad/provisiongrid/internal/config"
	"github.com/specialistvlad/provisiongrid/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

func (l *Loader) translateVariable(block *hcl.Block) (*config.Variable, error) {
	var body variableBody
	if diags := gohcl.DecodeBody(block.Body, nil, &body); diags.HasErrors() {
		return nil, diags
	}
	v := &config.Variable{
		Name:        block.Labels[0],
		Description: body.Description,
		Default:     cty.NilVal,
	}
	if isExprDefined(body.Default) {
		val, diags := body.Default.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("invalid default for variable %q: %w", v.Name, diags)
		}
		v.Default = val
	}
	return v, nil
}

func (l *Loader) translateEnvironment(block *hcl.Block) (*config.Environment, error) {
	var body environmentBody
	if diags := gohcl.DecodeBody(block.Body, nil, &body); diags.HasErrors() {
		return nil, diags
	}
	e := &config.Environment{
		Name:               block.Labels[0],
		Client:             body.Client,
		Endpoint:           body.Endpoint,
		Namespace:          body.Namespace,
		InsecureSkipVerify: body.InsecureSkipVerify,
		Headers:            body.Headers,
		Variables:          make(map[string]cty.Value),
	}
	if e.Client == "" {
		e.Client = config.DefaultClient
	}
	if body.Timeout != "" {
		d, err := time.ParseDuration(body.Timeout)
		if err != nil {
			return nil, fmt.Errorf("environment %q: invalid timeout: %w", e.Name, err)
		}
		e.Timeout = d
	}
	if isExprDefined(body.Variables) {
		val, diags := body.Variables.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("environment %q: invalid variables: %w", e.Name, diags)
		}
		if !val.IsNull() {
			if !val.Type().IsObjectType() && !val.Type().IsMapType() {
				return nil, fmt.Errorf("environment %q: variables must be an object, got %s", e.Name, val.Type().FriendlyName())
			}
			for name, v := range val.AsValueMap() {
				e.Variables[name] = v
			}
		}
	}
	return e, nil
}

// translateStep converts a step block into the agnostic model.
func (l *Loader) translateStep(ctx context.Context, block *hcl.Block) (*config.Step, error) {
	logger := ctxlog.FromContext(ctx).With("step_descriptor", block.Labels[0], "step_name", block.Labels[1])
	logger.Debug("Translating HCL step to internal config model.")

	var body stepBody
	if diags := gohcl.DecodeBody(block.Body, nil, &body); diags.HasErrors() {
		return nil, diags
	}

	s := &config.Step{
		Descriptor:  block.Labels[0],
		Name:        block.Labels[1],
		Description: body.Description,
		Source:      fmt.Sprintf("%s:%d", block.DefRange.Filename, block.DefRange.Start.Line),
	}

	if isExprDefined(body.Args) {
		exprs, diags := hcl.ExprList(body.Args)
		if diags.HasErrors() {
			return nil, fmt.Errorf("step %q: args must be a list: %w", s.Name, diags)
		}
		for _, expr := range exprs {
			arg, err := classifyArg(expr)
			if err != nil {
				return nil, fmt.Errorf("step %q: %w", s.Name, err)
			}
			s.Args = append(s.Args, arg)
		}
	}

	if isExprDefined(body.DependsOn) {
		exprs, diags := hcl.ExprList(body.DependsOn)
		if diags.HasErrors() {
			return nil, fmt.Errorf("step %q: depends_on must be a list: %w", s.Name, diags)
		}
		for _, expr := range exprs {
			name, err := dependencyName(expr)
			if err != nil {
				return nil, fmt.Errorf("step %q: %w", s.Name, err)
			}
			s.DependsOn = append(s.DependsOn, name)
		}
	}

	logger.Debug("Translated step.", "args", len(s.Args), "depends_on", len(s.DependsOn))
	return s, nil
}

// classifyArg sorts one element of a step's args list into a reference
// (`step.<name>`), a variable (`var.<name>`), a literal, or an expression
// deferred until variables are known.
func classifyArg(expr hcl.Expression) (config.Arg, error) {
	if name, root, ok := twoPartTraversal(expr); ok {
		switch root {
		case "step":
			return config.Arg{Kind: config.ArgReference, Name: name}, nil
		case "var":
			return config.Arg{Kind: config.ArgVariable, Name: name}, nil
		}
	}

	vars := expr.Variables()
	for _, tr := range vars {
		if tr.RootName() == "step" {
			return config.Arg{}, fmt.Errorf("%s: a step reference must be a whole argument of the form step.<name>", expr.Range())
		}
	}
	if len(vars) == 0 {
		if val, diags := expr.Value(nil); !diags.HasErrors() && val.IsWhollyKnown() {
			return config.Arg{Kind: config.ArgLiteral, Value: val}, nil
		}
	}
	return config.Arg{Kind: config.ArgExpression, Expr: expr}, nil
}

// dependencyName accepts `step.<name>` or a plain string.
func dependencyName(expr hcl.Expression) (string, error) {
	if name, root, ok := twoPartTraversal(expr); ok && root == "step" {
		return name, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() || val.Type() != cty.String || val.IsNull() {
		return "", fmt.Errorf("%s: depends_on entries must be step.<name> or a step name string", expr.Range())
	}
	return val.AsString(), nil
}

// twoPartTraversal matches expressions of the form `<root>.<name>`.
func twoPartTraversal(expr hcl.Expression) (name, root string, ok bool) {
	tr, diags := hcl.AbsTraversalForExpr(expr)
	if diags.HasErrors() || len(tr) != 2 {
		return "", "", false
	}
	attr, isAttr := tr[1].(hcl.TraverseAttr)
	if !isAttr {
		return "", "", false
	}
	return attr.Name, tr.RootName(), true
}
