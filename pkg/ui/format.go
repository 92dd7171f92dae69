package ui

import (
	"os"
	"strings"

	"github.com/arthur-debert/omiros/pkg/errors"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Format is an output format
type Format int

const (
	// FormatAuto picks terminal or text output from the output's capabilities
	FormatAuto Format = iota
	// FormatTerminal renders styled output for a color terminal
	FormatTerminal
	// FormatText renders plain text
	FormatText
	// FormatJSON renders the run summary as JSON
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatAuto:
		return "auto"
	case FormatTerminal:
		return "term"
	case FormatText:
		return "text"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// FormatNames lists the accepted --format values.
func FormatNames() []string {
	return []string{"auto", "term", "text", "json"}
}

// ParseFormat parses a --format value.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "auto", "":
		return FormatAuto, nil
	case "term", "terminal":
		return FormatTerminal, nil
	case "text", "plain":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatAuto, errors.Newf(errors.ErrInvalidInput, "unknown format %q (one of %s)",
			s, strings.Join(FormatNames(), ", ")).WithDetail("format", s)
	}
}

// DetectFormat chooses terminal output only for a color-capable terminal
// when NO_COLOR is unset.
func DetectFormat(output *os.File) Format {
	if os.Getenv("NO_COLOR") != "" {
		return FormatText
	}
	if !isatty.IsTerminal(output.Fd()) && !isatty.IsCygwinTerminal(output.Fd()) {
		return FormatText
	}
	if termenv.NewOutput(output).ColorProfile() == termenv.Ascii {
		return FormatText
	}
	return FormatTerminal
}
