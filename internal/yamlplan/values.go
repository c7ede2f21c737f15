package yamlplan

import (
	"fmt"
	"strconv"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/provisiongrid/internal/config"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

const (
	tagRef  = "!ref"
	tagVar  = "!var"
	tagExpr = "!expr"
)

// classifyArg turns one element of a step's args sequence into a raw
// argument.
func classifyArg(n *yaml.Node) (config.Arg, error) {
	switch n.Tag {
	case tagRef:
		return namedArg(config.ArgReference, n)
	case tagVar:
		return namedArg(config.ArgVariable, n)
	case tagExpr:
		return expressionArg(n)
	}

	if n.Kind == yaml.MappingNode && len(n.Content) == 2 {
		switch n.Content[0].Value {
		case "ref":
			return namedArg(config.ArgReference, n.Content[1])
		case "var":
			return namedArg(config.ArgVariable, n.Content[1])
		}
	}

	val, err := nodeValue(n)
	if err != nil {
		return config.Arg{}, err
	}
	return config.Arg{Kind: config.ArgLiteral, Value: val}, nil
}

func namedArg(kind config.ArgKind, n *yaml.Node) (config.Arg, error) {
	if n.Kind != yaml.ScalarNode || n.Value == "" {
		return config.Arg{}, fmt.Errorf("line %d: expected a name", n.Line)
	}
	return config.Arg{Kind: kind, Name: n.Value}, nil
}

func expressionArg(n *yaml.Node) (config.Arg, error) {
	if n.Kind != yaml.ScalarNode {
		return config.Arg{}, fmt.Errorf("line %d: %s expects a string", n.Line, tagExpr)
	}
	expr, diags := hclsyntax.ParseExpression([]byte(n.Value), fmt.Sprintf("line %d", n.Line), hcl.InitialPos)
	if diags.HasErrors() {
		return config.Arg{}, fmt.Errorf("line %d: %w", n.Line, diags)
	}
	for _, tr := range expr.Variables() {
		if tr.RootName() == "step" {
			return config.Arg{}, fmt.Errorf("line %d: expressions cannot reference steps, use %s", n.Line, tagRef)
		}
	}
	return config.Arg{Kind: config.ArgExpression, Expr: expr}, nil
}

// nodeValue converts a YAML node into a cty value following the node's
// resolved tag.
func nodeValue(n *yaml.Node) (cty.Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return cty.NullVal(cty.DynamicPseudoType), nil
		}
		return nodeValue(n.Content[0])
	case yaml.AliasNode:
		return nodeValue(n.Alias)
	case yaml.ScalarNode:
		return scalarValue(n)
	case yaml.SequenceNode:
		if len(n.Content) == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := nodeValue(c)
			if err != nil {
				return cty.NilVal, err
			}
			elems = append(elems, v)
		}
		return cty.TupleVal(elems), nil
	case yaml.MappingNode:
		if len(n.Content) == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := nodeValue(n.Content[i+1])
			if err != nil {
				return cty.NilVal, err
			}
			attrs[n.Content[i].Value] = v
		}
		return cty.ObjectVal(attrs), nil
	default:
		return cty.NilVal, fmt.Errorf("line %d: unsupported YAML node", n.Line)
	}
}

func scalarValue(n *yaml.Node) (cty.Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return cty.NullVal(cty.DynamicPseudoType), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return cty.NilVal, err
		}
		return cty.BoolVal(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return cty.NumberIntVal(i), nil
		}
		return cty.ParseNumberVal(n.Value)
	case "!!float":
		f, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return cty.NilVal, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return cty.NumberFloatVal(f), nil
	case "!!str":
		return cty.StringVal(n.Value), nil
	default:
		return cty.NilVal, fmt.Errorf("line %d: unsupported tag %s", n.Line, n.Tag)
	}
}
