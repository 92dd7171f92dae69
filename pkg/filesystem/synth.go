package filesystem

import (
	"io/fs"
	"path/filepath"

	"github.com/arthur-debert/omiros/pkg/types"
	"github.com/arthur-debert/synthfs/pkg/synthfs"
	synthfsfs "github.com/arthur-debert/synthfs/pkg/synthfs/filesystem"
)

// Synth returns fsys as a synthfs filesystem taking absolute paths. The OS
// implementation maps onto synthfs's own OS filesystem rooted at "/"; any
// other types.FS is adapted so synthfs operations run against it.
func Synth(fsys types.FS) *synthfs.PathAwareFileSystem {
	var base synthfsfs.FileSystem
	if _, ok := fsys.(*osFS); ok {
		base = synthfsfs.NewOSFileSystem("/")
	} else {
		base = &typesFS{fs: fsys}
	}
	return synthfs.NewPathAwareFileSystem(base, "/").WithAbsolutePaths()
}

// typesFS adapts types.FS to synthfs, which hands over paths relative to "/".
// Open and Rename are not part of types.FS and always fail.
type typesFS struct {
	fs types.FS
}

func abs(name string) string {
	return filepath.Join("/", name)
}

func (t *typesFS) Open(name string) (fs.File, error) {
	return nil, &fs.PathError{Op: "open", Path: abs(name), Err: fs.ErrInvalid}
}

func (t *typesFS) Stat(name string) (fs.FileInfo, error) {
	return t.fs.Stat(abs(name))
}

func (t *typesFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	return t.fs.WriteFile(abs(name), data, perm)
}

func (t *typesFS) MkdirAll(path string, perm fs.FileMode) error {
	return t.fs.MkdirAll(abs(path), perm)
}

func (t *typesFS) Remove(name string) error {
	return t.fs.Remove(abs(name))
}

func (t *typesFS) RemoveAll(name string) error {
	return t.fs.RemoveAll(abs(name))
}

func (t *typesFS) Symlink(oldname, newname string) error {
	return t.fs.Symlink(abs(oldname), abs(newname))
}

func (t *typesFS) Readlink(name string) (string, error) {
	return t.fs.Readlink(abs(name))
}

func (t *typesFS) Rename(oldpath, newpath string) error {
	return &fs.PathError{Op: "rename", Path: abs(oldpath), Err: fs.ErrInvalid}
}
