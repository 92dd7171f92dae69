package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/arthur-debert/omiros/internal/version"
	"github.com/arthur-debert/omiros/pkg/backends/defaults"
	"github.com/arthur-debert/omiros/pkg/filesystem"
	"github.com/arthur-debert/omiros/pkg/logging"
	"github.com/arthur-debert/omiros/pkg/paths"
	"github.com/arthur-debert/omiros/pkg/runner"
	"github.com/arthur-debert/omiros/pkg/types"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

// errReported means the failure was already shown to the user and only the
// exit status is left to set.
var errReported = stderrors.New("reported")

// environment is everything a command touches outside the process
type environment struct {
	runner    runner.Runner
	fs        types.FS
	restarter defaults.Restarter

	// home overrides the user's home directory when set
	home string

	stdout io.Writer
	stderr io.Writer

	setupLogging func(verbosity int)
}

func defaultEnvironment() *environment {
	return &environment{
		runner:       runner.NewExecRunner(),
		fs:           filesystem.NewOS(),
		restarter:    defaults.NewProcessRestarter(),
		stdout:       os.Stdout,
		stderr:       os.Stderr,
		setupLogging: logging.SetupLogger,
	}
}

func (e *environment) paths(systemDir, dotfilesDir string) (*paths.Paths, error) {
	if e.home != "" {
		return paths.NewWithHome(e.home, systemDir, dotfilesDir)
	}
	return paths.New(systemDir, dotfilesDir)
}

// execute runs the command line and returns the process exit status.
func execute(env *environment, args []string) int {
	root := newRootCmd(env)
	root.SetArgs(args)
	root.SetOut(env.stdout)
	root.SetErr(env.stderr)

	if err := root.Execute(); err != nil {
		if !stderrors.Is(err, errReported) {
			fmt.Fprintf(env.stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func newRootCmd(env *environment) *cobra.Command {
	var verbosity int

	root := &cobra.Command{
		Use:     "omiros",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			env.setupLogging(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	root.PersistentFlags().CountVarP(&verbosity, "verbose", "v", MsgFlagVerbose)

	root.AddGroup(&cobra.Group{ID: "core", Title: "COMMANDS:"})
	root.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})
	root.SetHelpCommandGroupID("misc")

	root.AddCommand(newRunCmd(env))
	root.AddCommand(newVersionCmd())
	root.AddCommand(newCompletionCmd())
	root.AddCommand(newManCmd())

	installTopics(root)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "omiros %s\n", version.String())
			return err
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		GroupID:               "misc",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

func newManCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:     "man",
		Short:   MsgManShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			header := &doc.GenManHeader{
				Title:   "OMIROS",
				Section: "1",
				Source:  "omiros " + version.Version,
				Manual:  "omiros manual",
			}
			if dir != "" {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return err
				}
				return doc.GenManTree(cmd.Root(), header, dir)
			}
			return doc.GenMan(cmd.Root(), header, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", MsgFlagManDir)
	return cmd
}
