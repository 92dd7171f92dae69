// Package vscode installs editor extensions with the code command line.
package vscode

import (
	"context"
	"regexp"

	"github.com/arthur-debert/omiros/pkg/backends"
	"github.com/arthur-debert/omiros/pkg/runner"
	"github.com/arthur-debert/omiros/pkg/types"
)

// DefaultProgram is the editor executable looked up on PATH
const DefaultProgram = "code"

// publisher.name, optionally followed by @version
var extensionPattern = regexp.MustCompile(`^[\w-]+\.[\w.-]+(@\S+)?$`)

// Backend implements types.Installer for the extensions domain
type Backend struct {
	runner  runner.Runner
	program string
}

// New returns a Backend running program through r. Forks that share the
// command line (code-insiders, codium) work as program.
func New(r runner.Runner, program string) *Backend {
	if program == "" {
		program = DefaultProgram
	}
	return &Backend{runner: r, program: program}
}

// Installed lists installed extension ids.
func (b *Backend) Installed(ctx context.Context) (types.InstalledSet, error) {
	set := types.NewInstalledSet()

	lines, _, err := backends.Query(ctx, b.runner, b.program, "--list-extensions")
	if err != nil {
		return nil, err
	}
	for _, line := range lines {
		if !extensionPattern.MatchString(line) {
			return nil, backends.Unparseable(b.program, line)
		}
		set.Add(types.KindExtension, line)
	}
	return set, nil
}

// Install runs code --install-extension.
func (b *Backend) Install(ctx context.Context, target types.InstallTarget) error {
	return backends.Install(ctx, b.runner, target, b.program, "--install-extension", target.ID)
}
