package executor

import (
	"context"
	"time"

	"github.com/arthur-debert/omiros/pkg/errors"
	"github.com/arthur-debert/omiros/pkg/logging"
	"github.com/arthur-debert/omiros/pkg/types"
	"github.com/rs/zerolog"
)

// DryRunReason is the skip reason of every action in a dry run
const DryRunReason = "dry run"

// RaceReason is the skip reason of a link whose path was taken by a real
// file between probing and applying
const RaceReason = "a file appeared at the link path; left untouched"

// Options contains configuration for the executor
type Options struct {
	Capabilities types.Capabilities
	DryRun       bool

	// Logger defaults to the "executor" component logger
	Logger *zerolog.Logger
}

// Executor applies actions one at a time
type Executor struct {
	caps   types.Capabilities
	dryRun bool
	logger zerolog.Logger
}

// New creates a new executor instance
func New(opts Options) *Executor {
	logger := logging.GetLogger("executor")
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &Executor{
		caps:   opts.Capabilities,
		dryRun: opts.DryRun,
		logger: logger,
	}
}

// DryRun reports whether the executor only simulates.
func (e *Executor) DryRun() bool { return e.dryRun }

// Execute applies actions in order and returns one outcome per action.
func (e *Executor) Execute(ctx context.Context, actions []types.Action) []types.RunOutcome {
	outcomes := make([]types.RunOutcome, 0, len(actions))
	for _, a := range actions {
		outcomes = append(outcomes, e.Apply(ctx, a))
	}
	return outcomes
}

// Apply applies a single action.
func (e *Executor) Apply(ctx context.Context, a types.Action) types.RunOutcome {
	start := time.Now()

	e.logger.Debug().
		Str("kind", string(a.Kind)).
		Str("domain", string(a.Domain)).
		Str("description", a.Describe()).
		Bool("dry_run", e.dryRun).
		Msg("Applying action")

	if e.dryRun {
		return types.Skipped(a, DryRunReason, "")
	}

	if a.Kind == types.ActionSkipConflict {
		e.logger.Warn().Str("link", a.Dotfile.Link).Msg("Link path occupied, skipping")
		return types.Skipped(a, a.Reason, errors.ErrFilesystemConflict)
	}

	err := e.apply(ctx, a)
	elapsed := time.Since(start)

	if err != nil {
		if a.Domain == types.DomainDotfiles && errors.GetErrorCode(err) == errors.ErrFilesystemConflict {
			e.logger.Warn().Str("link", a.Dotfile.Link).Msg("Link path taken during the run, skipping")
			return types.Skipped(a, RaceReason, errors.ErrFilesystemConflict)
		}

		e.logger.Error().
			Err(err).
			Str("kind", string(a.Kind)).
			Str("subject", a.Subject()).
			Msg("Action failed")
		return types.Failed(a, err, elapsed)
	}

	e.logger.Info().
		Str("kind", string(a.Kind)).
		Str("subject", a.Subject()).
		Dur("duration", elapsed).
		Msg("Action applied")
	return types.Succeeded(a, elapsed)
}

func (e *Executor) apply(ctx context.Context, a types.Action) error {
	switch a.Kind {
	case types.ActionInstall:
		installer := e.caps.Installer(a.Domain)
		if installer == nil {
			return errors.Newf(errors.ErrInstallFailed, "no installer for %s", a.Domain)
		}
		if err := installer.Install(ctx, a.Target); err != nil {
			return ensureCode(err, errors.ErrInstallFailed, "cannot install %s", a.Target)
		}
		return nil

	case types.ActionCreateSymlink:
		if e.caps.Links == nil {
			return errors.New(errors.ErrSymlinkFailed, "no link capability")
		}
		return ensureCode(e.caps.Links.Create(a.Dotfile.Source, a.Dotfile.Link),
			errors.ErrSymlinkFailed, "cannot link %s", a.Dotfile.Link)

	case types.ActionReplaceSymlink:
		if e.caps.Links == nil {
			return errors.New(errors.ErrSymlinkFailed, "no link capability")
		}
		return ensureCode(e.caps.Links.Replace(a.Dotfile.Source, a.Dotfile.Link),
			errors.ErrSymlinkFailed, "cannot relink %s", a.Dotfile.Link)

	case types.ActionSetPreference:
		p := a.Preference
		if !p.TypeMatches() {
			return errors.Newf(errors.ErrInvalidPreferenceType, "%s expects a %s value, got %s",
				p.Name(), p.Type, p.Value).
				WithDetail("key", p.Key.String())
		}
		if e.caps.Preferences == nil {
			return errors.New(errors.ErrPreferenceWrite, "no preference capability")
		}
		return ensureCode(e.caps.Preferences.Write(ctx, p.Key, p.Value),
			errors.ErrPreferenceWrite, "cannot set %s", p.Name())
	}

	return errors.Newf(errors.ErrInternal, "unknown action kind %q", a.Kind)
}

// ensureCode leaves coded errors alone and wraps uncoded ones with code.
func ensureCode(err error, code errors.ErrorCode, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	if errors.GetErrorCode(err) != errors.ErrUnknown {
		return err
	}
	return errors.Wrapf(err, code, format, args...)
}
