package config

import (
	"github.com/arthur-debert/omiros/pkg/errors"
	"github.com/arthur-debert/omiros/pkg/types"
)

// Config holds the tool settings
type Config struct {
	Reconcile   Reconcile   `koanf:"reconcile"`
	Backends    Backends    `koanf:"backends"`
	Output      Output      `koanf:"output"`
	Preferences Preferences `koanf:"preferences"`
	Metrics     Metrics     `koanf:"metrics"`
}

// Reconcile holds reconciler settings
type Reconcile struct {
	// Order lists the domains in the order they are reconciled
	Order []string `koanf:"order"`
}

// Backends holds the program names of the external backends
type Backends struct {
	Brew     string `koanf:"brew"`
	Mas      string `koanf:"mas"`
	Code     string `koanf:"code"`
	Defaults string `koanf:"defaults"`
}

// Output holds summary output settings
type Output struct {
	Format string `koanf:"format"`
}

// Preferences holds preference domain settings
type Preferences struct {
	Restart bool `koanf:"restart"`
}

// Metrics holds run metrics settings
type Metrics struct {
	// Textfile is where the Prometheus textfile is written; empty disables it
	Textfile string `koanf:"textfile"`
}

// DomainOrder parses the configured order.
func (c *Config) DomainOrder() ([]types.Domain, error) {
	return types.ParseOrder(c.Reconcile.Order)
}

// Validate checks the settings that can be checked without other packages.
func (c *Config) Validate() error {
	if _, err := c.DomainOrder(); err != nil {
		return errors.Wrap(err, errors.ErrConfigValid, "invalid reconcile.order")
	}

	for name, program := range map[string]string{
		"backends.brew":     c.Backends.Brew,
		"backends.mas":      c.Backends.Mas,
		"backends.code":     c.Backends.Code,
		"backends.defaults": c.Backends.Defaults,
	} {
		if program == "" {
			return errors.Newf(errors.ErrConfigValid, "%s cannot be empty", name).
				WithDetail("key", name)
		}
	}
	return nil
}
