package terminal

import (
	"fmt"
	"io"

	"github.com/arthur-debert/omiros/pkg/types"
	"github.com/arthur-debert/omiros/pkg/ui/styles"
)

// Progress reports each domain as it finishes, for runs long enough that a
// final report alone leaves the user waiting. It satisfies the reconciler's
// observer interface.
type Progress struct {
	output  io.Writer
	styles  *styles.Registry
	applied int
}

// NewProgress creates a progress writer, usually on stderr.
func NewProgress(output io.Writer) *Progress {
	return &Progress{output: output, styles: styles.Default()}
}

func (p *Progress) DomainStarted(d types.Domain) {
	p.applied = 0
	fmt.Fprintf(p.output, "%s %s\n", p.styles.Render("Muted", "checking"), d)
}

func (p *Progress) ActionApplied(o types.RunOutcome) {
	p.applied++
	fmt.Fprintf(p.output, "  %s %s\n", badge(string(o.Result)), o.Action.Describe())
}

func (p *Progress) DomainFinished(r types.DomainReport) {
	switch {
	case r.ProbeErr != nil:
		fmt.Fprintf(p.output, "  %s\n", p.styles.Render("Failed", "probe failed"))
	case p.applied == 0:
		fmt.Fprintf(p.output, "  %s\n", p.styles.Render("Muted", "up to date"))
	}
}
