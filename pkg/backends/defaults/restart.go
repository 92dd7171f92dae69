package defaults

import (
	"context"

	"github.com/arthur-debert/omiros/pkg/logging"
	"github.com/shirou/gopsutil/v3/process"
)

// Restarter makes a running application reload its preferences
type Restarter interface {
	Restart(ctx context.Context, app string) error
}

// ProcessRestarter terminates every process with the application's name.
// launchd relaunches Dock and Finder; other apps stay closed until reopened.
type ProcessRestarter struct {
	// processes lists running processes; replaced in tests
	processes func(ctx context.Context) ([]namedProcess, error)
}

type namedProcess interface {
	NameWithContext(ctx context.Context) (string, error)
	TerminateWithContext(ctx context.Context) error
}

// NewProcessRestarter returns a restarter over the host process table.
func NewProcessRestarter() *ProcessRestarter {
	return &ProcessRestarter{processes: hostProcesses}
}

func hostProcesses(ctx context.Context) ([]namedProcess, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]namedProcess, len(procs))
	for i, p := range procs {
		out[i] = p
	}
	return out, nil
}

// Restart implements Restarter. An application that is not running is left
// alone.
func (r *ProcessRestarter) Restart(ctx context.Context, app string) error {
	logger := logging.GetLogger("defaults").With().Str("app", app).Logger()

	procs, err := r.processes(ctx)
	if err != nil {
		return err
	}

	found := 0
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil || name != app {
			continue
		}
		if err := p.TerminateWithContext(ctx); err != nil {
			return err
		}
		found++
	}

	if found == 0 {
		logger.Debug().Msg("Application not running")
	}
	return nil
}
