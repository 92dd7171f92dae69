// Package terminal renders run reports with color and styling
package terminal

import (
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/omiros/pkg/errors"
	"github.com/arthur-debert/omiros/pkg/types"
	"github.com/arthur-debert/omiros/pkg/ui/styles"
	"github.com/arthur-debert/omiros/pkg/ui/text"
	"github.com/arthur-debert/omiros/pkg/ui/view"
	"github.com/pterm/pterm"
)

// Renderer writes styled output
type Renderer struct {
	output io.Writer
	styles *styles.Registry
}

// New creates a terminal renderer using the embedded styles.
func New(output io.Writer) *Renderer {
	return &Renderer{output: output, styles: styles.Default()}
}

// ResultStyle returns the badge style for an action result
func ResultStyle(result string) *pterm.Style {
	switch types.Result(result) {
	case types.ResultSuccess:
		return pterm.NewStyle(pterm.BgGreen, pterm.FgWhite)
	case types.ResultFailed:
		return pterm.NewStyle(pterm.BgRed, pterm.FgWhite, pterm.Bold)
	case types.ResultSkipped:
		return pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	default:
		return pterm.NewStyle(pterm.FgGray)
	}
}

// badge pads the result to a fixed width before styling so columns line up
func badge(result string) string {
	return ResultStyle(result).Sprint(fmt.Sprintf(" %-7s ", result))
}

// RenderReport writes one styled section per domain and a totals line.
func (r *Renderer) RenderReport(report types.RunReport) error {
	var b strings.Builder
	s := view.FromReport(report)

	if s.DryRun {
		b.WriteString(r.styles.Render("DryRun", "Dry run: nothing was changed") + "\n")
	}

	for _, d := range s.Domains {
		b.WriteString(r.styles.Render("Domain", d.Name) + "\n")
		switch {
		case d.ProbeError != "":
			b.WriteString(fmt.Sprintf("  %s %s\n", pterm.Error.Prefix.Text, r.styles.Render("Failed", d.ProbeError)))
		case len(d.Outcomes) == 0:
			b.WriteString("  " + r.styles.Render("Muted", "up to date") + "\n")
		}
		for _, o := range d.Outcomes {
			line := fmt.Sprintf("  %s %s", badge(o.Result), o.Description)
			if detail := o.Detail(); detail != "" {
				line += " " + r.styles.Render(detailStyle(o), detail)
			}
			b.WriteString(line + "\n")
		}
	}

	totals := text.TotalsLine(s.Totals)
	if s.Failed {
		totals = r.styles.Render("Failed", totals)
	} else {
		totals = r.styles.Render("Success", totals)
	}
	b.WriteString("\n" + totals + "\n")

	_, err := io.WriteString(r.output, b.String())
	return err
}

func detailStyle(o view.Outcome) string {
	if o.Result == string(types.ResultFailed) {
		return "ErrorKind"
	}
	return "Muted"
}

// RenderError writes the error with its code highlighted.
func (r *Renderer) RenderError(err error) error {
	msg := err.Error()
	if code := errors.GetErrorCode(err); code != errors.ErrUnknown {
		msg = strings.TrimPrefix(msg, "["+string(code)+"] ")
		msg = pterm.Error.MessageStyle.Sprint(string(code)) + " " + msg
	}
	_, werr := fmt.Fprintf(r.output, "%s %s\n", pterm.Error.Prefix.Text, msg)
	return werr
}

// RenderMessage writes an informational line.
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintf(r.output, "%s %s\n", pterm.Info.Prefix.Text, msg)
	return err
}
