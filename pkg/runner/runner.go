// Package runner abstracts external command execution for the domain backends.
package runner

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	omerrors "github.com/arthur-debert/omiros/pkg/errors"
	"github.com/arthur-debert/omiros/pkg/logging"
)

// ExitNotFound is the exit code reported when the program cannot be started
const ExitNotFound = 127

// Result is the captured output of a finished command
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Lines splits stdout into trimmed, non-empty lines.
func (r Result) Lines() []string {
	var lines []string
	for _, line := range strings.Split(string(r.Stdout), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// Runner executes external programs
type Runner interface {
	// Run executes name with args and waits for it. A non-zero exit returns
	// the captured Result together with an error. A program that cannot be
	// found fails with ErrBackendMissing.
	Run(ctx context.Context, name string, args ...string) (Result, error)

	// LookPath reports where name is on PATH.
	LookPath(name string) (string, error)
}

// ExecRunner executes commands on the local host.
type ExecRunner struct{}

// NewExecRunner returns a Runner backed by os/exec.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	logger := logging.GetLogger("runner")
	logging.LogCommand(name, args)
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		logger.Trace().Str("command", name).Dur("duration", time.Since(start)).Msg("Command finished")
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		logger.Debug().
			Str("command", name).
			Int("exitCode", res.ExitCode).
			Str("stderr", strings.TrimSpace(stderr.String())).
			Msg("Command failed")
		return res, err
	}

	res.ExitCode = 1
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		res.ExitCode = ExitNotFound
		return res, omerrors.Wrapf(err, omerrors.ErrBackendMissing, "%s is not installed", name).
			WithDetail("program", name)
	}
	return res, err
}

// LookPath implements Runner.
func (r *ExecRunner) LookPath(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", omerrors.Wrapf(err, omerrors.ErrBackendMissing, "%s is not on PATH", name).
			WithDetail("program", name)
	}
	return path, nil
}

// Available reports whether a program can be run.
func Available(r Runner, name string) bool {
	_, err := r.LookPath(name)
	return err == nil
}

// Describe formats a failed command for error messages, preferring stderr.
func Describe(name string, args []string, res Result) string {
	msg := strings.TrimSpace(string(res.Stderr))
	if msg == "" {
		msg = strings.TrimSpace(string(res.Stdout))
	}
	line := strings.TrimSpace(name + " " + strings.Join(args, " "))
	if msg == "" {
		return line
	}
	return line + ": " + msg
}
