// Package text renders run reports as plain text
package text

import (
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/omiros/pkg/types"
	"github.com/arthur-debert/omiros/pkg/ui/view"
)

// Renderer writes unstyled output
type Renderer struct {
	output io.Writer
}

// New creates a text renderer.
func New(output io.Writer) *Renderer {
	return &Renderer{output: output}
}

// RenderReport writes one section per domain and a totals line.
func (r *Renderer) RenderReport(report types.RunReport) error {
	var b strings.Builder
	s := view.FromReport(report)

	if s.DryRun {
		b.WriteString("Dry run: nothing was changed\n\n")
	}
	for _, d := range s.Domains {
		b.WriteString(d.Name + "\n")
		switch {
		case d.ProbeError != "":
			fmt.Fprintf(&b, "  probe failed: %s\n", d.ProbeError)
		case len(d.Outcomes) == 0:
			b.WriteString("  up to date\n")
		}
		for _, o := range d.Outcomes {
			line := fmt.Sprintf("  %-8s %s", o.Result, o.Description)
			if detail := o.Detail(); detail != "" {
				line += " (" + detail + ")"
			}
			b.WriteString(line + "\n")
		}
	}
	b.WriteString("\n" + TotalsLine(s.Totals) + "\n")

	_, err := io.WriteString(r.output, b.String())
	return err
}

// RenderError writes the error on one line.
func (r *Renderer) RenderError(err error) error {
	_, werr := fmt.Fprintf(r.output, "Error: %v\n", err)
	return werr
}

// RenderMessage writes msg on its own line.
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, msg)
	return err
}

// TotalsLine summarizes counts, e.g. "2 succeeded, 1 failed, 0 skipped".
// Probe failures are only mentioned when there were some.
func TotalsLine(t types.Totals) string {
	line := fmt.Sprintf("%d succeeded, %d failed, %d skipped", t.Success, t.Failed, t.Skipped)
	switch t.ProbeFailures {
	case 0:
	case 1:
		line += ", 1 domain could not be probed"
	default:
		line += fmt.Sprintf(", %d domains could not be probed", t.ProbeFailures)
	}
	return line
}
