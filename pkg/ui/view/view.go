// Package view turns a run report into the flat, display-ready summary every
// renderer works from.
package view

import (
	"time"

	"github.com/arthur-debert/omiros/pkg/errors"
	"github.com/arthur-debert/omiros/pkg/types"
)

// Outcome is one applied action as displayed
type Outcome struct {
	Kind        string `json:"kind"`
	Subject     string `json:"subject"`
	Description string `json:"description"`
	Result      string `json:"result"`
	ErrorKind   string `json:"errorKind,omitempty"`
	Error       string `json:"error,omitempty"`
	Reason      string `json:"reason,omitempty"`
	DurationMs  int64  `json:"durationMs"`
}

// Domain is one domain's section of the summary
type Domain struct {
	Name           string    `json:"domain"`
	ProbeError     string    `json:"probeError,omitempty"`
	ProbeErrorKind string    `json:"probeErrorKind,omitempty"`
	Outcomes       []Outcome `json:"outcomes"`
}

// Summary is the whole run as displayed
type Summary struct {
	DryRun     bool         `json:"dryRun"`
	Failed     bool         `json:"failed"`
	Started    time.Time    `json:"started"`
	DurationMs int64        `json:"durationMs"`
	Totals     types.Totals `json:"totals"`
	Domains    []Domain     `json:"domains"`
}

// FromReport builds the summary of a run, keeping domain and action order.
func FromReport(report types.RunReport) Summary {
	s := Summary{
		DryRun:     report.DryRun,
		Failed:     report.Failed(),
		Started:    report.Started,
		DurationMs: report.Duration.Milliseconds(),
		Totals:     report.Totals(),
		Domains:    make([]Domain, 0, len(report.Domains)),
	}

	for _, dr := range report.Domains {
		d := Domain{Name: string(dr.Domain), Outcomes: make([]Outcome, 0, len(dr.Outcomes))}
		if dr.ProbeErr != nil {
			d.ProbeError = dr.ProbeErr.Error()
			d.ProbeErrorKind = string(errors.GetErrorCode(dr.ProbeErr))
		}
		for _, o := range dr.Outcomes {
			out := Outcome{
				Kind:        string(o.Action.Kind),
				Subject:     o.Action.Subject(),
				Description: o.Action.Describe(),
				Result:      string(o.Result),
				ErrorKind:   string(o.ErrorKind),
				Reason:      o.Reason,
				DurationMs:  o.Duration.Milliseconds(),
			}
			if o.Err != nil {
				out.Error = o.Err.Error()
			}
			d.Outcomes = append(d.Outcomes, out)
		}
		s.Domains = append(s.Domains, d)
	}
	return s
}

// Detail is the short explanation shown next to an outcome's result.
func (o Outcome) Detail() string {
	switch {
	case o.Error != "":
		return o.Error
	case o.Reason != "":
		return o.Reason
	}
	return ""
}
