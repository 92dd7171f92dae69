// Package backends holds what the command-line backends share: running a
// query and mapping command failures onto the error taxonomy.
//
// Each subpackage implements one domain capability from pkg/types:
//
//	homebrew  Installer for formulae and casks
//	mas       Installer for Mac App Store apps
//	vscode    Installer for editor extensions
//	links     Linker over types.FS
//	defaults  PreferenceStore and Settler over the defaults command
package backends

import (
	"context"

	"github.com/arthur-debert/omiros/pkg/errors"
	"github.com/arthur-debert/omiros/pkg/logging"
	"github.com/arthur-debert/omiros/pkg/runner"
	"github.com/arthur-debert/omiros/pkg/types"
)

// Query runs a read-only listing command. A missing program reports
// ok=false with no error: nothing can be installed through it. Any other
// failure is ErrProbeUnavailable.
func Query(ctx context.Context, r runner.Runner, program string, args ...string) (lines []string, ok bool, err error) {
	logger := logging.GetLogger("backends").With().Str("program", program).Logger()

	if !runner.Available(r, program) {
		logger.Debug().Msg("Backend not found, treating as nothing installed")
		return nil, false, nil
	}

	res, err := r.Run(ctx, program, args...)
	if err != nil {
		if errors.IsErrorCode(err, errors.ErrBackendMissing) {
			logger.Debug().Msg("Backend disappeared, treating as nothing installed")
			return nil, false, nil
		}
		return nil, true, errors.Wrapf(err, errors.ErrProbeUnavailable, "%s", runner.Describe(program, args, res)).
			WithDetail("program", program).
			WithDetail("exitCode", res.ExitCode)
	}
	return res.Lines(), true, nil
}

// Unparseable reports a query line the backend should never have printed.
func Unparseable(program, line string) error {
	return errors.Newf(errors.ErrProbeUnavailable, "unexpected output from %s: %q", program, line).
		WithDetail("program", program).
		WithDetail("line", line)
}

// Install runs an install command for target and maps failures to
// ErrInstallFailed.
func Install(ctx context.Context, r runner.Runner, target types.InstallTarget, program string, args ...string) error {
	logger := logging.GetLogger("backends").With().
		Str("program", program).
		Str("target", target.ID).
		Logger()

	done := logging.LogOperationStart(logger, "install")
	defer done()

	res, err := r.Run(ctx, program, args...)
	if err == nil {
		return nil
	}

	msg := runner.Describe(program, args, res)
	if errors.IsErrorCode(err, errors.ErrBackendMissing) {
		msg = program + " is not installed"
	}
	return errors.Wrapf(err, errors.ErrInstallFailed, "cannot install %s %s: %s", target.Kind, target.ID, msg).
		WithDetail("domain", string(target.Kind.Domain())).
		WithDetail("id", target.ID).
		WithDetail("exitCode", res.ExitCode)
}
