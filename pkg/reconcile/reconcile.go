package reconcile

import (
	"context"
	"time"

	"github.com/arthur-debert/omiros/pkg/diff"
	"github.com/arthur-debert/omiros/pkg/errors"
	"github.com/arthur-debert/omiros/pkg/executor"
	"github.com/arthur-debert/omiros/pkg/logging"
	"github.com/arthur-debert/omiros/pkg/types"
)

// Observer is told about progress as the run happens
type Observer interface {
	DomainStarted(d types.Domain)
	ActionApplied(o types.RunOutcome)
	DomainFinished(r types.DomainReport)
}

type nopObserver struct{}

func (nopObserver) DomainStarted(types.Domain) {}
func (nopObserver) ActionApplied(types.RunOutcome) {}
func (nopObserver) DomainFinished(types.DomainReport) {}

// Options configures a Reconciler
type Options struct {
	Capabilities types.Capabilities

	// Order is the domain visiting order; empty means types.DefaultOrder
	Order []types.Domain

	DryRun bool

	// Settler runs after the preferences domain with the preferences that
	// were written. Optional.
	Settler types.Settler

	// Observer is optional
	Observer Observer

	// Now is the clock; defaults to time.Now
	Now func() time.Time
}

// Reconciler runs reconciliation passes
type Reconciler struct {
	caps     types.Capabilities
	order    []types.Domain
	executor *executor.Executor
	settler  types.Settler
	observer Observer
	now      func() time.Time
}

// New creates a Reconciler.
func New(opts Options) *Reconciler {
	order := opts.Order
	if len(order) == 0 {
		order = types.DefaultOrder()
	}
	observer := opts.Observer
	if observer == nil {
		observer = nopObserver{}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Reconciler{
		caps:     opts.Capabilities,
		order:    order,
		executor: executor.New(executor.Options{Capabilities: opts.Capabilities, DryRun: opts.DryRun}),
		settler:  opts.Settler,
		observer: observer,
		now:      now,
	}
}

// Run reconciles every domain against desired and returns the report.
func (r *Reconciler) Run(ctx context.Context, desired *types.DesiredState) types.RunReport {
	logger := logging.GetLogger("reconcile")
	report := types.RunReport{DryRun: r.executor.DryRun(), Started: r.now()}

	logger.Info().
		Strs("order", domainNames(r.order)).
		Bool("dryRun", report.DryRun).
		Msg("Starting reconciliation")

	for _, d := range r.order {
		r.observer.DomainStarted(d)
		dr := r.domain(ctx, d, desired)
		r.observer.DomainFinished(dr)
		report.Domains = append(report.Domains, dr)
	}

	report.Duration = r.now().Sub(report.Started)
	totals := report.Totals()
	logger.Info().
		Int("success", totals.Success).
		Int("failed", totals.Failed).
		Int("skipped", totals.Skipped).
		Int("probeFailures", totals.ProbeFailures).
		Dur("duration", report.Duration).
		Msg("Reconciliation finished")
	return report
}

func (r *Reconciler) domain(ctx context.Context, d types.Domain, desired *types.DesiredState) types.DomainReport {
	logger := logging.GetLogger("reconcile").With().Str("domain", string(d)).Logger()
	report := types.DomainReport{Domain: d}

	// Step 1: probe actual state and diff it against desired
	planned, err := r.plan(ctx, d, desired)
	if err != nil {
		logger.Error().Err(err).Msg("Probe failed, skipping domain")
		report.ProbeErr = err
		return report
	}
	logger.Debug().Int("actions", len(planned)).Msg("Diff computed")

	// Step 2: apply each action, best effort
	for _, s := range planned {
		var outcome types.RunOutcome
		if s.err != nil {
			logger.Warn().Err(s.err).Str("action", string(s.action.Kind)).Msg("Action failed while planning")
			outcome = types.Failed(s.action, s.err, 0)
		} else {
			outcome = r.executor.Apply(ctx, s.action)
		}
		r.observer.ActionApplied(outcome)
		report.Outcomes = append(report.Outcomes, outcome)
	}

	// Step 3: let the preference store settle what was written
	if d == types.DomainPreferences {
		r.settle(ctx, report.Outcomes)
	}
	return report
}

// step is an action to apply, or one that already failed while planning
type step struct {
	action types.Action
	err    error
}

func steps(actions []types.Action) []step {
	out := make([]step, len(actions))
	for i, a := range actions {
		out[i] = step{action: a}
	}
	return out
}

// plan probes one domain and diffs it. Domains with nothing desired are not
// probed.
func (r *Reconciler) plan(ctx context.Context, d types.Domain, desired *types.DesiredState) ([]step, error) {
	switch d {
	case types.DomainPackages, types.DomainStoreApps, types.DomainExtensions:
		targets := desired.InstallTargets(d)
		if len(targets) == 0 {
			return nil, nil
		}
		installer := r.caps.Installer(d)
		if installer == nil {
			return nil, errors.Newf(errors.ErrProbeUnavailable, "no backend for %s", d)
		}
		installed, err := installer.Installed(ctx)
		if err != nil {
			return nil, probeError(err, d)
		}
		return steps(diff.Installs(targets, installed)), nil

	case types.DomainDotfiles:
		entries := desired.Dotfiles()
		if len(entries) == 0 {
			return nil, nil
		}
		if r.caps.Links == nil {
			return nil, errors.Newf(errors.ErrProbeUnavailable, "no backend for %s", d)
		}
		// Link paths are independent: one that cannot be inspected fails its
		// own entry only.
		var planned []step
		for _, e := range entries {
			state, err := r.caps.Links.Probe(e.Link)
			if err != nil {
				if errors.GetErrorCode(err) != errors.ErrSymlinkFailed {
					err = errors.Wrapf(err, errors.ErrSymlinkFailed, "cannot inspect %s", e.Link).
						WithDetail("link", e.Link)
				}
				planned = append(planned, step{action: types.NewCreateSymlink(e), err: err})
				continue
			}
			one := []types.DotfileEntry{e}
			planned = append(planned, steps(diff.Dotfiles(one, map[string]types.LinkState{e.Link: state}))...)
		}
		return planned, nil

	case types.DomainPreferences:
		prefs := desired.Preferences()
		if len(prefs) == 0 {
			return nil, nil
		}
		if r.caps.Preferences == nil {
			return nil, errors.Newf(errors.ErrProbeUnavailable, "no backend for %s", d)
		}
		keys := make([]types.PreferenceKey, len(prefs))
		for i, p := range prefs {
			keys[i] = p.Key
		}
		current, err := r.caps.Preferences.Values(ctx, keys)
		if err != nil {
			return nil, probeError(err, d)
		}
		return steps(diff.Preferences(prefs, current)), nil
	}

	return nil, errors.Newf(errors.ErrInternal, "unknown domain %q", d)
}

func (r *Reconciler) settle(ctx context.Context, outcomes []types.RunOutcome) {
	if r.settler == nil || r.executor.DryRun() {
		return
	}
	var written []types.Preference
	for _, o := range outcomes {
		if o.Result == types.ResultSuccess && o.Action.Kind == types.ActionSetPreference {
			written = append(written, o.Action.Preference)
		}
	}
	if len(written) == 0 {
		return
	}
	if err := r.settler.Settle(ctx, written); err != nil {
		logger := logging.GetLogger("reconcile")
		logger.Warn().Err(err).Msg("Preferences written but applications not restarted")
	}
}

func probeError(err error, d types.Domain) error {
	if errors.IsErrorCode(err, errors.ErrProbeUnavailable) {
		return err
	}
	return errors.Wrapf(err, errors.ErrProbeUnavailable, "cannot read %s state", d).
		WithDetail("domain", string(d))
}

func domainNames(order []types.Domain) []string {
	out := make([]string, len(order))
	for i, d := range order {
		out[i] = string(d)
	}
	return out
}
