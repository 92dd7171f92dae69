package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/arthur-debert/omiros/pkg/errors"
	"github.com/arthur-debert/omiros/pkg/runner"
)

// FakeResult is a scripted command result
type FakeResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error
}

// FakeRunner implements runner.Runner with scripted results keyed by the full
// command line ("brew list --formula -1"). Unscripted commands of an
// installed program succeed with no output.
type FakeRunner struct {
	mu      sync.Mutex
	results map[string][]FakeResult
	missing map[string]bool
	calls   []string

	// OnRun is called with each command line after it is recorded
	OnRun func(line string)
}

// NewFakeRunner returns a runner where every program is installed.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		results: make(map[string][]FakeResult),
		missing: make(map[string]bool),
	}
}

// On scripts the result of a command line. Results queue up: each call
// consumes one, and the last one repeats.
func (f *FakeRunner) On(line string, res FakeResult) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[line] = append(f.results[line], res)
	return f
}

// Missing marks a program as not installed.
func (f *FakeRunner) Missing(name string) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.missing[name] = true
	return f
}

// Run implements runner.Runner.
func (f *FakeRunner) Run(_ context.Context, name string, args ...string) (runner.Result, error) {
	line := strings.TrimSpace(name + " " + strings.Join(args, " "))

	f.mu.Lock()
	f.calls = append(f.calls, line)
	hook := f.OnRun
	if f.missing[name] {
		f.mu.Unlock()
		return runner.Result{ExitCode: runner.ExitNotFound},
			errors.Newf(errors.ErrBackendMissing, "%s is not installed", name)
	}
	var res FakeResult
	if queue := f.results[line]; len(queue) > 0 {
		res = queue[0]
		if len(queue) > 1 {
			f.results[line] = queue[1:]
		}
	}
	f.mu.Unlock()

	if hook != nil {
		hook(line)
	}

	out := runner.Result{
		Stdout:   []byte(res.Stdout),
		Stderr:   []byte(res.Stderr),
		ExitCode: res.ExitCode,
	}
	if res.Err != nil {
		return out, res.Err
	}
	if res.ExitCode != 0 {
		return out, fmt.Errorf("exit status %d", res.ExitCode)
	}
	return out, nil
}

// LookPath implements runner.Runner.
func (f *FakeRunner) LookPath(name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.missing[name] {
		return "", errors.Newf(errors.ErrBackendMissing, "%s is not on PATH", name)
	}
	return "/usr/local/bin/" + name, nil
}

// Calls returns every command line run so far, in order.
func (f *FakeRunner) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// CallsWithPrefix returns the command lines starting with prefix.
func (f *FakeRunner) CallsWithPrefix(prefix string) []string {
	var out []string
	for _, c := range f.Calls() {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}
