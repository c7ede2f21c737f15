package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/specialistvlad/provisiongrid/internal/orchestrator"
)

// WriteSummary writes a human-readable table of step outcomes followed by
// the run verdict.
func WriteSummary(w io.Writer, res *orchestrator.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STEP\tDESCRIPTOR\tSTATUS\tIDENTITY\tDURATION")
	for _, o := range res.Steps {
		id := string(o.Identity)
		if id == "" {
			id = "-"
		}
		dur := "-"
		if d := o.Duration(); d > 0 {
			dur = d.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", o.Name, o.Descriptor, o.Status, id, dur)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	switch outcome := Classify(res); outcome {
	case OutcomeSucceeded:
		_, err := fmt.Fprintf(w, "\nrun %s succeeded: %d identities recorded\n", res.RunID, res.Registry.Len())
		return err
	default:
		_, err := fmt.Fprintf(w, "\nrun %s %s: %v\n%d identities recorded before the run stopped\n",
			res.RunID, outcome, res.Err, res.Registry.Len())
		return err
	}
}
