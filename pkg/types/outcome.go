package types

import (
	"time"

	"github.com/arthur-debert/omiros/pkg/errors"
)

// Result is the final state of an applied action
type Result string

const (
	ResultSuccess Result = "success"
	ResultFailed  Result = "failed"
	ResultSkipped Result = "skipped"
)

// RunOutcome is what happened to one action
type RunOutcome struct {
	Action Action
	Result Result

	// ErrorKind is the error code of a failed or conflict-skipped action
	ErrorKind errors.ErrorCode

	// Err is the underlying error of a failed action
	Err error

	// Reason explains a skipped action
	Reason string

	Duration time.Duration
}

// Succeeded builds a success outcome.
func Succeeded(a Action, d time.Duration) RunOutcome {
	return RunOutcome{Action: a, Result: ResultSuccess, Duration: d}
}

// Failed builds a failure outcome; the error kind is taken from err.
func Failed(a Action, err error, d time.Duration) RunOutcome {
	return RunOutcome{
		Action:    a,
		Result:    ResultFailed,
		ErrorKind: errors.GetErrorCode(err),
		Err:       err,
		Duration:  d,
	}
}

// Skipped builds a skip outcome. kind may be empty.
func Skipped(a Action, reason string, kind errors.ErrorCode) RunOutcome {
	return RunOutcome{Action: a, Result: ResultSkipped, Reason: reason, ErrorKind: kind}
}

// DomainReport collects everything that happened in one domain
type DomainReport struct {
	Domain Domain

	// ProbeErr is set when the domain's actual state could not be read; the
	// domain then has no outcomes
	ProbeErr error

	Outcomes []RunOutcome
}

// Failed reports whether the probe or any action failed.
func (r DomainReport) Failed() bool {
	if r.ProbeErr != nil {
		return true
	}
	for _, o := range r.Outcomes {
		if o.Result == ResultFailed {
			return true
		}
	}
	return false
}

// Totals counts outcomes by result
type Totals struct {
	Success       int `json:"success"`
	Failed        int `json:"failed"`
	Skipped       int `json:"skipped"`
	ProbeFailures int `json:"probeFailures"`
}

// Add counts one domain report into the totals.
func (t *Totals) Add(r DomainReport) {
	if r.ProbeErr != nil {
		t.ProbeFailures++
	}
	for _, o := range r.Outcomes {
		switch o.Result {
		case ResultSuccess:
			t.Success++
		case ResultFailed:
			t.Failed++
		case ResultSkipped:
			t.Skipped++
		}
	}
}

// RunReport is the summary of a full reconciliation run
type RunReport struct {
	Domains  []DomainReport
	DryRun   bool
	Started  time.Time
	Duration time.Duration
}

// Failed reports whether any domain failed. A failed run exits non-zero.
func (r RunReport) Failed() bool {
	for _, d := range r.Domains {
		if d.Failed() {
			return true
		}
	}
	return false
}

// Totals counts outcomes across all domains.
func (r RunReport) Totals() Totals {
	var t Totals
	for _, d := range r.Domains {
		t.Add(d)
	}
	return t
}

// Actions returns the number of actions across all domains.
func (r RunReport) Actions() int {
	n := 0
	for _, d := range r.Domains {
		n += len(d.Outcomes)
	}
	return n
}
