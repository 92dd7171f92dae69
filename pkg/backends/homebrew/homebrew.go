// Package homebrew installs formulae and casks with brew.
package homebrew

import (
	"context"
	"strings"

	"github.com/arthur-debert/omiros/pkg/backends"
	"github.com/arthur-debert/omiros/pkg/logging"
	"github.com/arthur-debert/omiros/pkg/runner"
	"github.com/arthur-debert/omiros/pkg/types"
)

// DefaultProgram is the brew executable looked up on PATH
const DefaultProgram = "brew"

// Backend implements types.Installer for the packages domain
type Backend struct {
	runner  runner.Runner
	program string
}

// New returns a Backend running program through r.
func New(r runner.Runner, program string) *Backend {
	if program == "" {
		program = DefaultProgram
	}
	return &Backend{runner: r, program: program}
}

// Installed lists installed formulae and casks. Dependencies pulled in by
// other formulae count as installed.
func (b *Backend) Installed(ctx context.Context) (types.InstalledSet, error) {
	logger := logging.GetLogger("homebrew")
	set := types.NewInstalledSet()

	for _, q := range []struct {
		kind types.InstallKind
		flag string
	}{
		{types.KindFormula, "--formula"},
		{types.KindCask, "--cask"},
	} {
		lines, ok, err := backends.Query(ctx, b.runner, b.program, "list", q.flag, "-1")
		if err != nil {
			return nil, err
		}
		if !ok {
			return set, nil
		}
		for _, line := range lines {
			if strings.ContainsAny(line, " \t") {
				return nil, backends.Unparseable(b.program, line)
			}
			set.Add(q.kind, line)
		}
	}

	logger.Debug().Int("installed", set.Len()).Msg("Probed installed packages")
	return set, nil
}

// Install runs brew install, with --cask for casks.
func (b *Backend) Install(ctx context.Context, target types.InstallTarget) error {
	args := []string{"install"}
	if target.Kind == types.KindCask {
		args = append(args, "--cask")
	}
	args = append(args, target.ID)
	return backends.Install(ctx, b.runner, target, b.program, args...)
}
