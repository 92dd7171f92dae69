package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/omiros/pkg/errors"
)

const (
	// EnvConfigDir overrides the XDG settings directory
	EnvConfigDir = "OMIROS_CONFIG_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"

	// AppDirName is the directory name used under XDG base directories
	AppDirName = "omiros"

	// DocumentFile is the desired-state document inside the system directory
	DocumentFile = "system.toml"

	// SettingsFile is the tool settings file inside the config directory
	SettingsFile = "config.toml"
)

// Paths resolves every location a run touches
type Paths struct {
	home         string
	systemDir    string
	dotfilesRoot string
	configDir    string
}

// New resolves the system directory and dotfiles root against the current
// user's home directory.
func New(systemDir, dotfilesRoot string) (*Paths, error) {
	home, err := GetHomeDirectory()
	if err != nil {
		return nil, err
	}
	return NewWithHome(home, systemDir, dotfilesRoot)
}

// NewWithHome is New with an explicit home directory.
func NewWithHome(home, systemDir, dotfilesRoot string) (*Paths, error) {
	if !filepath.IsAbs(home) {
		return nil, errors.Newf(errors.ErrInvalidInput, "home directory %q is not absolute", home)
	}

	p := &Paths{home: filepath.Clean(home)}

	for _, in := range []struct {
		name  string
		value string
		dest  *string
	}{
		{"system directory", systemDir, &p.systemDir},
		{"dotfiles directory", dotfilesRoot, &p.dotfilesRoot},
	} {
		if err := ValidatePath(in.value); err != nil {
			return nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid %s", in.name)
		}
		abs, err := filepath.Abs(ExpandHome(in.value, p.home))
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for %s", in.name)
		}
		*in.dest = abs
	}

	if dir := os.Getenv(EnvConfigDir); dir != "" {
		p.configDir = ExpandHome(dir, p.home)
	} else {
		p.configDir = filepath.Join(xdg.ConfigHome, AppDirName)
	}

	return p, nil
}

// Home returns the home directory.
func (p *Paths) Home() string { return p.home }

// SystemDir returns the directory containing the desired-state document.
func (p *Paths) SystemDir() string { return p.systemDir }

// DocumentPath returns the path of system.toml.
func (p *Paths) DocumentPath() string {
	return filepath.Join(p.systemDir, DocumentFile)
}

// DotfilesRoot returns the root of the dotfiles tree.
func (p *Paths) DotfilesRoot() string { return p.dotfilesRoot }

// ConfigDir returns the tool settings directory.
func (p *Paths) ConfigDir() string { return p.configDir }

// SettingsPath returns the default tool settings file.
func (p *Paths) SettingsPath() string {
	return filepath.Join(p.configDir, SettingsFile)
}

// ResolveLink turns a document link path into an absolute path. "~" and "~/x"
// expand to home, relative paths are joined to home.
func (p *Paths) ResolveLink(link string) (string, error) {
	if err := ValidatePath(link); err != nil {
		return "", err
	}
	link = ExpandHome(link, p.home)
	if !filepath.IsAbs(link) {
		link = filepath.Join(p.home, link)
	}
	return filepath.Clean(link), nil
}

// DefaultLink returns the link path of an original with no explicit link: the
// same relative path under home.
func (p *Paths) DefaultLink(original string) string {
	return filepath.Join(p.home, original)
}

// Source returns the absolute path of a dotfile original, rejecting originals
// that escape the dotfiles root.
func (p *Paths) Source(original string) (string, error) {
	return SafeJoin(p.dotfilesRoot, original)
}

// ExpandHome expands a leading "~" or "~/" against home. "~user" forms are
// returned unchanged.
func ExpandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") || strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		return filepath.Join(home, path[2:])
	}
	return path
}

// GetHomeDirectory returns the user's home directory, falling back to $HOME.
func GetHomeDirectory() (string, error) {
	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return home, nil
	}
	if home = os.Getenv(EnvHome); home != "" {
		return home, nil
	}
	if err == nil {
		return "", errors.New(errors.ErrNotFound, "cannot determine home directory")
	}
	return "", errors.Wrap(err, errors.ErrNotFound, "cannot determine home directory")
}
