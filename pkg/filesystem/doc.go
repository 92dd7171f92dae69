// Package filesystem provides the OS implementation of types.FS used by the
// dotfiles backend, and Synth, which exposes a types.FS to synthfs so link
// changes run as synthfs operations. Tests use testutil.MemoryFS instead.
package filesystem
