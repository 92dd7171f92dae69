// Package config handles the tool settings of omiros.
// Settings are layered with koanf: the embedded defaults, then the user's
// config.toml, then OMIROS_* environment variables, then command-line flags.
//
// The desired-state document (system.toml) is not a setting; see pkg/system.
package config
