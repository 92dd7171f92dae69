// Package paths provides centralized path handling for omiros.
//
// It resolves the two run inputs (the system directory holding system.toml
// and the dotfiles root), the user's home directory, and the XDG locations of
// the tool's own files.
//
// # Environment Variables
//
//   - OMIROS_CONFIG_DIR: Override the settings directory (default: $XDG_CONFIG_HOME/omiros)
//   - HOME: Home directory links are resolved against
//
// # Link paths
//
// Dotfile link paths are written as "~/x", as paths relative to home, or as
// absolute paths. ResolveLink turns all three into absolute paths. Dotfile
// originals are always relative to the dotfiles root and SafeJoin refuses any
// that would escape it.
package paths
