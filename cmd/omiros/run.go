package main

import (
	"context"

	"github.com/arthur-debert/omiros/pkg/backends/defaults"
	"github.com/arthur-debert/omiros/pkg/backends/homebrew"
	"github.com/arthur-debert/omiros/pkg/backends/links"
	"github.com/arthur-debert/omiros/pkg/backends/mas"
	"github.com/arthur-debert/omiros/pkg/backends/vscode"
	"github.com/arthur-debert/omiros/pkg/config"
	"github.com/arthur-debert/omiros/pkg/logging"
	"github.com/arthur-debert/omiros/pkg/metrics"
	"github.com/arthur-debert/omiros/pkg/reconcile"
	"github.com/arthur-debert/omiros/pkg/system"
	"github.com/arthur-debert/omiros/pkg/types"
	"github.com/arthur-debert/omiros/pkg/ui"
	"github.com/arthur-debert/omiros/pkg/ui/terminal"
	"github.com/spf13/cobra"
)

type runOptions struct {
	systemDir   string
	dotfilesDir string
	dryRun      bool
	format      string
	noRestart   bool
	metricsFile string
}

func newRunCmd(env *environment) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:     "run",
		Short:   MsgRunShort,
		Long:    MsgRunLong,
		Example: MsgRunExample,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := make(map[string]interface{})
			if cmd.Flags().Changed("format") {
				overrides["output.format"] = opts.format
			}
			if opts.noRestart {
				overrides["preferences.restart"] = false
			}
			if cmd.Flags().Changed("metrics-textfile") {
				overrides["metrics.textfile"] = opts.metricsFile
			}
			return runSystem(cmd.Context(), env, opts, overrides)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.systemDir, "system-config-dir", "s", "", MsgFlagSystemDir)
	flags.StringVarP(&opts.dotfilesDir, "dotfiles-dir", "d", "", MsgFlagDotfiles)
	flags.BoolVar(&opts.dryRun, "dry-run", false, MsgFlagDryRun)
	flags.StringVar(&opts.format, "format", "", MsgFlagFormat)
	flags.BoolVar(&opts.noRestart, "no-restart", false, MsgFlagNoRestart)
	flags.StringVar(&opts.metricsFile, "metrics-textfile", "", MsgFlagMetrics)

	_ = cmd.MarkFlagRequired("system-config-dir")
	_ = cmd.MarkFlagRequired("dotfiles-dir")
	_ = cmd.MarkFlagDirname("system-config-dir")
	_ = cmd.MarkFlagDirname("dotfiles-dir")
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(ui.FormatNames(), cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

// runSystem loads everything a run needs, reconciles and reports. Errors
// before the document is loaded are returned as is; later ones are rendered
// and reported through errReported.
func runSystem(ctx context.Context, env *environment, opts runOptions, overrides map[string]interface{}) error {
	logger := logging.GetLogger("cmd.run")

	p, err := env.paths(opts.systemDir, opts.dotfilesDir)
	if err != nil {
		return err
	}

	cfg, err := config.Load(config.LoadOptions{SettingsPath: p.SettingsPath(), Overrides: overrides})
	if err != nil {
		return err
	}
	order, err := cfg.DomainOrder()
	if err != nil {
		return err
	}

	format, err := ui.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}
	format = ui.Resolve(format, env.stdout)
	renderer, err := ui.NewRenderer(format, env.stdout)
	if err != nil {
		return err
	}

	desired, err := system.Load(env.fs, p)
	if err != nil {
		if rerr := renderer.RenderError(err); rerr != nil {
			return err
		}
		return errReported
	}

	var restarter defaults.Restarter
	if cfg.Preferences.Restart {
		restarter = env.restarter
	}
	store := defaults.New(env.runner, cfg.Backends.Defaults, defaults.WithRestarter(restarter))

	var observer reconcile.Observer
	if format == ui.FormatTerminal {
		observer = terminal.NewProgress(env.stderr)
	}

	logger.Info().
		Str("systemDir", p.SystemDir()).
		Str("dotfiles", p.DotfilesRoot()).
		Bool("dryRun", opts.dryRun).
		Msg("Starting run")

	reconciler := reconcile.New(reconcile.Options{
		Capabilities: types.Capabilities{
			Packages:    homebrew.New(env.runner, cfg.Backends.Brew),
			StoreApps:   mas.New(env.runner, cfg.Backends.Mas),
			Extensions:  vscode.New(env.runner, cfg.Backends.Code),
			Links:       links.New(env.fs),
			Preferences: store,
		},
		Order:    order,
		DryRun:   opts.dryRun,
		Settler:  store,
		Observer: observer,
	})
	report := reconciler.Run(ctx, desired)

	if err := renderer.RenderReport(report); err != nil {
		return err
	}

	if err := metrics.Export(report, cfg.Metrics.Textfile); err != nil {
		logger.Warn().Err(err).Str("path", cfg.Metrics.Textfile).Msg("Failed to write metrics")
	}

	if report.Failed() {
		return errReported
	}
	return nil
}
