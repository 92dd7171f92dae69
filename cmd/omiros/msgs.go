package main

const (
	MsgRootShort = "A home manager for normies"
	MsgRootLong  = `omiros brings a Mac into agreement with one declarative document:
Homebrew formulae and casks, App Store apps, editor extensions, dotfile
symlinks and macOS preferences.

Each run compares what is installed with system.toml and applies only the
missing pieces. Nothing is ever removed, so running it again is always safe.`

	MsgRunShort = "Bring this machine in line with system.toml"
	MsgRunLong  = `Run reads <system-config-dir>/system.toml, then visits each domain in
order (packages, store-apps, extensions, dotfiles, preferences by default).
For every domain it queries the current state, works out the missing changes
and applies them. A failure never stops the run: every domain is visited and a
summary of every action is printed at the end.

The exit status is 0 when nothing failed and 1 otherwise.`
	MsgRunExample = `  # Converge this machine
  omiros run -s ~/system -d ~/dotfiles

  # See what would change
  omiros run -s ~/system -d ~/dotfiles --dry-run

  # Machine-readable summary for CI
  omiros run -s ~/system -d ~/dotfiles --format json`

	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"
	MsgCompletionLong  = `To load completions:

Bash:
  $ source <(omiros completion bash)

Zsh:
  $ omiros completion zsh > "${fpath[1]}/_omiros"

Fish:
  $ omiros completion fish > ~/.config/fish/completions/omiros.fish

PowerShell:
  PS> omiros completion powershell | Out-String | Invoke-Expression`
	MsgManShort = "Generate the man page"

	MsgFlagVerbose   = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagSystemDir = "Directory containing system.toml"
	MsgFlagDotfiles  = "Directory containing the dotfiles to link"
	MsgFlagDryRun    = "Show what would change without changing anything"
	MsgFlagFormat    = "Output format: auto, term, text or json"
	MsgFlagNoRestart = "Do not restart apps after changing their preferences"
	MsgFlagMetrics   = "Write a Prometheus textfile with the run's metrics"
	MsgFlagManDir    = "Write one man page per command into this directory instead of stdout"
)
