package hclplan

import "github.com/hashicorp/hcl/v2"

// rootSchema lists the top-level blocks a plan file may contain.
var rootSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "variable", LabelNames: []string{"name"}},
		{Type: "environment", LabelNames: []string{"name"}},
		{Type: "step", LabelNames: []string{"descriptor", "name"}},
	},
}

// variableBody is the body of a `variable "<name>" {}` block.
type variableBody struct {
	Description string         `hcl:"description,optional"`
	Default     hcl.Expression `hcl:"default,optional"`
}

// environmentBody is the body of an `environment "<name>" {}` block.
type environmentBody struct {
	Client             string            `hcl:"client,optional"`
	Endpoint           string            `hcl:"endpoint,optional"`
	Namespace          string            `hcl:"namespace,optional"`
	Timeout            string            `hcl:"timeout,optional"`
	InsecureSkipVerify bool              `hcl:"insecure_skip_verify,optional"`
	Headers            map[string]string `hcl:"headers,optional"`
	Variables          hcl.Expression    `hcl:"variables,optional"`
}

// stepBody is the body of a `step "<descriptor>" "<name>" {}` block.
type stepBody struct {
	Description string         `hcl:"description,optional"`
	Args        hcl.Expression `hcl:"args,optional"`
	DependsOn   hcl.Expression `hcl:"depends_on,optional"`
}
