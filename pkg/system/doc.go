// Package system loads the desired-state document, system.toml.
//
// The document is decoded strictly with go-toml, then resolved against the
// dotfiles root and home directory and validated into an immutable
// types.DesiredState. Named macOS settings ([macos.dock] orientation = "left")
// are translated to defaults domain/key pairs through a fixed catalog; raw
// [[defaults]] entries reach any key.
//
// Every error returned here is fatal: a run never starts on a document that
// failed to load. Preference values whose TOML type disagrees with the key's
// type are not rejected here; they fail when applied.
package system
