// Package links manages dotfile symlinks. Link paths are inspected through
// types.FS; changes run as synthfs operations over the same filesystem.
package links

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	omerrors "github.com/arthur-debert/omiros/pkg/errors"
	"github.com/arthur-debert/omiros/pkg/filesystem"
	"github.com/arthur-debert/omiros/pkg/logging"
	"github.com/arthur-debert/omiros/pkg/paths"
	"github.com/arthur-debert/omiros/pkg/types"
	"github.com/arthur-debert/synthfs/pkg/synthfs"
	synthfsfs "github.com/arthur-debert/synthfs/pkg/synthfs/filesystem"
)

// Linker implements types.Linker
type Linker struct {
	fs     types.FS
	target synthfs.FullFileSystem
	sfs    *synthfs.SynthFS
}

// New returns a Linker operating on fsys.
func New(fsys types.FS) *Linker {
	return &Linker{
		fs:     fsys,
		target: filesystem.Synth(fsys),
		sfs:    synthfs.New(),
	}
}

// Probe reports what occupies link. A path below a regular file is occupied:
// linking there would mean replacing that file.
func (l *Linker) Probe(link string) (types.LinkState, error) {
	info, err := l.fs.Lstat(link)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return types.LinkState{Kind: types.LinkAbsent}, nil
		case errors.Is(err, syscall.ENOTDIR):
			return types.LinkState{Kind: types.LinkOccupied}, nil
		}
		return types.LinkState{}, omerrors.Wrapf(err, omerrors.ErrSymlinkFailed, "cannot inspect %s", link).
			WithDetail("link", link)
	}

	if info.Mode()&os.ModeSymlink == 0 {
		return types.LinkState{Kind: types.LinkOccupied}, nil
	}

	raw, err := l.fs.Readlink(link)
	if err != nil {
		return types.LinkState{}, omerrors.Wrapf(err, omerrors.ErrSymlinkFailed, "cannot read symlink %s", link).
			WithDetail("link", link)
	}

	state := types.LinkState{Kind: types.LinkSymlink, Target: paths.ResolveTarget(link, raw)}
	if _, err := l.fs.Stat(link); err != nil {
		state.Broken = true
	}
	return state, nil
}

// Create makes link point at source. A missing parent directory is created
// in the same run and removed again if the link cannot be made.
func (l *Linker) Create(source, link string) error {
	logger := logging.GetLogger("links").With().Str("link", link).Str("source", source).Logger()

	var ops []synthfs.Operation
	parent := filepath.Dir(link)
	if _, err := l.fs.Stat(parent); err != nil {
		ops = append(ops, l.sfs.CreateDir(parent, 0755))
	}
	ops = append(ops, l.sfs.CreateSymlink(source, link))

	if err := l.run(ops...); err != nil {
		if state, perr := l.Probe(link); perr == nil && state.Kind == types.LinkOccupied {
			return omerrors.Wrapf(err, omerrors.ErrFilesystemConflict, "%s appeared while linking", link).
				WithDetail("link", link)
		}
		return omerrors.Wrapf(err, omerrors.ErrSymlinkFailed, "cannot link %s", link).
			WithDetail("link", link)
	}

	if err := l.verify(source, link); err != nil {
		return err
	}
	logger.Info().Msg("Symlink created")
	return nil
}

// Replace swaps the symlink at link for one pointing at source. The path is
// re-checked first: if it is no longer a symlink nothing is touched.
func (l *Linker) Replace(source, link string) error {
	logger := logging.GetLogger("links").With().Str("link", link).Logger()

	state, err := l.Probe(link)
	if err != nil {
		return err
	}

	switch state.Kind {
	case types.LinkOccupied:
		return omerrors.Newf(omerrors.ErrFilesystemConflict, "%s is no longer a symlink", link).
			WithDetail("link", link)
	case types.LinkAbsent:
		return l.Create(source, link)
	}

	// A delete and a create of the same path cannot share a synthfs run, so
	// the swap is a single operation. Remove acts on the link, never its target.
	swap := l.sfs.CustomOperation("replace-symlink", func(ctx context.Context, fsys synthfsfs.FileSystem) error {
		if err := fsys.Remove(link); err != nil {
			return err
		}
		return fsys.Symlink(source, link)
	})
	if err := l.run(swap); err != nil {
		if _, lerr := l.fs.Lstat(link); lerr == nil {
			return omerrors.Wrapf(err, omerrors.ErrSymlinkFailed, "cannot replace %s", link).
				WithDetail("link", link)
		}
		return omerrors.Wrapf(err, omerrors.ErrSymlinkFailed, "removed %s but could not link it again", link).
			WithDetail("link", link)
	}

	if err := l.verify(source, link); err != nil {
		return err
	}
	logger.Info().Str("previous", state.Target).Msg("Symlink replaced")
	return nil
}

func (l *Linker) run(ops ...synthfs.Operation) error {
	options := synthfs.DefaultPipelineOptions()
	options.RollbackOnError = true

	_, err := synthfs.RunWithOptions(context.Background(), l.target, options, ops...)
	return err
}

// verify checks link points at source and removes it when it does not.
func (l *Linker) verify(source, link string) error {
	if target, err := l.fs.Readlink(link); err == nil && target == source {
		return nil
	}

	logger := logging.GetLogger("links")
	cleanup := l.sfs.CustomOperation("remove-partial-symlink", func(ctx context.Context, fsys synthfsfs.FileSystem) error {
		return fsys.Remove(link)
	})
	if err := l.run(cleanup); err != nil {
		logger.Warn().Err(err).Str("link", link).Msg("Failed to clean up partial symlink")
	}
	return omerrors.Newf(omerrors.ErrSymlinkFailed, "symlink %s does not point at %s after creation", link, source).
		WithDetail("link", link)
}
