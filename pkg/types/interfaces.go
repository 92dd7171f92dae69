package types

import (
	"context"
	"io/fs"
)

// FS is the filesystem interface required for link operations
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error

	// Symlink operations
	Symlink(oldname, newname string) error
	Readlink(name string) (string, error)

	// Other operations
	Remove(name string) error
	RemoveAll(path string) error

	// Lstat does not follow a final symlink
	Lstat(name string) (fs.FileInfo, error)
}

// Installer is the query and apply capability of an install domain
type Installer interface {
	// Installed lists what is installed. A missing backend yields an empty
	// set; a backend returning unreadable output is ErrProbeUnavailable.
	Installed(ctx context.Context) (InstalledSet, error)

	// Install installs one target.
	Install(ctx context.Context, target InstallTarget) error
}

// Linker is the query and apply capability of the dotfiles domain
type Linker interface {
	// Probe reports what occupies a link path. It never mutates.
	Probe(link string) (LinkState, error)

	// Create makes link point at source, creating parent directories.
	Create(source, link string) error

	// Replace swaps the symlink at link for one pointing at source. It fails
	// with ErrFilesystemConflict if link is no longer a symlink.
	Replace(source, link string) error
}

// PreferenceStore is the query and apply capability of the preferences domain
type PreferenceStore interface {
	// Values reads the current values of the keys.
	Values(ctx context.Context, keys []PreferenceKey) (PreferenceSnapshot, error)

	// Write sets one key. The value must already have the backend type.
	Write(ctx context.Context, key PreferenceKey, value PreferenceValue) error
}

// Settler is implemented by preference stores that need a follow-up step
// once a batch of preferences has been written, such as restarting apps.
type Settler interface {
	Settle(ctx context.Context, written []Preference) error
}

// Capabilities bundles the per-domain backends the engine drives
type Capabilities struct {
	Packages    Installer
	StoreApps   Installer
	Extensions  Installer
	Links       Linker
	Preferences PreferenceStore
}

// Installer returns the install capability for an install domain, or nil.
func (c Capabilities) Installer(d Domain) Installer {
	switch d {
	case DomainPackages:
		return c.Packages
	case DomainStoreApps:
		return c.StoreApps
	case DomainExtensions:
		return c.Extensions
	}
	return nil
}
