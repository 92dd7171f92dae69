// Package mas installs Mac App Store apps with the mas command line.
package mas

import (
	"context"
	"regexp"
	"strings"

	"github.com/arthur-debert/omiros/pkg/backends"
	"github.com/arthur-debert/omiros/pkg/logging"
	"github.com/arthur-debert/omiros/pkg/runner"
	"github.com/arthur-debert/omiros/pkg/types"
)

// DefaultProgram is the mas executable looked up on PATH
const DefaultProgram = "mas"

// "937984704   Amphetamine  (5.3.2)". App names may contain parentheses;
// the version is the last parenthesized group. Older mas releases omit it.
var listPattern = regexp.MustCompile(`^\s*(\d+)\s+(.+?)(?:\s+\(([^()]*)\))?\s*$`)

const noApps = "No installed apps found"

// App is one line of mas list
type App struct {
	types.AppRef
	Version string
}

// ParseList parses mas list output.
func ParseList(out string) ([]App, error) {
	var apps []App
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), noApps) {
			continue
		}
		m := listPattern.FindStringSubmatch(line)
		if m == nil {
			return nil, backends.Unparseable(DefaultProgram, line)
		}
		apps = append(apps, App{
			AppRef:  types.AppRef{Name: strings.TrimSpace(m[2]), StoreID: m[1]},
			Version: m[3],
		})
	}
	return apps, nil
}

// Backend implements types.Installer for the store-apps domain
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

// Installed lists installed store app ids.
func (b *Backend) Installed(ctx context.Context) (types.InstalledSet, error) {
	logger := logging.GetLogger("mas")
	set := types.NewInstalledSet()

	lines, _, err := backends.Query(ctx, b.runner, b.program, "list")
	if err != nil {
		return nil, err
	}
	apps, err := ParseList(strings.Join(lines, "\n"))
	if err != nil {
		return nil, err
	}
	for _, app := range apps {
		set.Add(types.KindStoreApp, app.StoreID)
		logger.Trace().Str("id", app.StoreID).Str("name", app.Name).Str("version", app.Version).Msg("Installed app")
	}
	return set, nil
}

// Install runs mas install with the store id.
func (b *Backend) Install(ctx context.Context, target types.InstallTarget) error {
	return backends.Install(ctx, b.runner, target, b.program, "install", target.ID)
}
