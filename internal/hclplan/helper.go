package hclplan

import "github.com/hashicorp/hcl/v2"

// isExprDefined reports whether an optional attribute was actually written.
// gohcl fills omitted hcl.Expression fields with a zero-width placeholder,
// so a nil check alone is not enough.
func isExprDefined(expr hcl.Expression) bool {
	if expr == nil {
		return false
	}
	r := expr.Range()
	return r.End.Byte > r.Start.Byte
}
