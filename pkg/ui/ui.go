// Package ui renders run reports, messages and errors for people or
// programs. Terminal output is styled, text output is plain and JSON output
// is the view.Summary of the run.
package ui

import (
	"io"
	"os"

	"github.com/arthur-debert/omiros/pkg/errors"
	"github.com/arthur-debert/omiros/pkg/types"
	"github.com/arthur-debert/omiros/pkg/ui/json"
	"github.com/arthur-debert/omiros/pkg/ui/terminal"
	"github.com/arthur-debert/omiros/pkg/ui/text"
)

// Renderer is implemented by every output format
type Renderer interface {
	// RenderReport renders the outcome of a run
	RenderReport(report types.RunReport) error

	// RenderError renders an error that stopped the run
	RenderError(err error) error

	// RenderMessage renders an informational line
	RenderMessage(msg string) error
}

// Resolve turns FormatAuto into a concrete format for output: detected when
// output is a file, plain text otherwise.
func Resolve(format Format, output io.Writer) Format {
	if format != FormatAuto {
		return format
	}
	if file, ok := output.(*os.File); ok {
		return DetectFormat(file)
	}
	return FormatText
}

// NewRenderer creates the renderer for format, resolving FormatAuto first.
func NewRenderer(format Format, output io.Writer) (Renderer, error) {
	switch Resolve(format, output) {
	case FormatTerminal:
		return terminal.New(output), nil
	case FormatText:
		return text.New(output), nil
	case FormatJSON:
		return json.New(output), nil
	default:
		return nil, errors.Newf(errors.ErrInvalidInput, "unknown format: %v", format)
	}
}
