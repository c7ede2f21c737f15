package report

import (
	"fmt"
	"io"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/specialistvlad/provisiongrid/internal/orchestrator"
	"github.com/zclconf/go-cty/cty"
)

// WriteHCL writes one `variable` block per committed identity, in commit
// order. Loading the file next to a follow-up plan lets that plan refer to
// the identities as var.<step>.
func WriteHCL(w io.Writer, res *orchestrator.Result) error {
	f := hclwrite.NewEmptyFile()
	root := f.Body()

	snapshot := res.Registry.Snapshot()
	for i, name := range res.Registry.Names() {
		if i > 0 {
			root.AppendNewline()
		}
		block := root.AppendNewBlock("variable", []string{name})
		body := block.Body()
		description := fmt.Sprintf("Identity of step %s from run %s.", name, res.RunID)
		if o, ok := res.Outcome(name); ok && o.Descriptor != "" {
			description = fmt.Sprintf("Identity of %s (step %s) from run %s.", o.Descriptor, name, res.RunID)
		}
		body.SetAttributeValue("description", cty.StringVal(description))
		body.SetAttributeValue("default", cty.StringVal(string(snapshot[name])))
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write HCL report: %w", err)
	}
	return nil
}
