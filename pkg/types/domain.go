package types

import (
	"strings"

	"github.com/arthur-debert/omiros/pkg/errors"
)

// Domain is one of the resource categories the reconciler visits
type Domain string

const (
	// DomainPackages covers package-manager formulae and casks
	DomainPackages Domain = "packages"

	// DomainStoreApps covers app store installs
	DomainStoreApps Domain = "store-apps"

	// DomainExtensions covers editor extensions
	DomainExtensions Domain = "extensions"

	// DomainDotfiles covers dotfile symlinks
	DomainDotfiles Domain = "dotfiles"

	// DomainPreferences covers scalar OS preference values
	DomainPreferences Domain = "preferences"
)

// DefaultOrder is the sequence domains are reconciled in unless configured otherwise.
func DefaultOrder() []Domain {
	return []Domain{
		DomainPackages,
		DomainStoreApps,
		DomainExtensions,
		DomainDotfiles,
		DomainPreferences,
	}
}

func (d Domain) String() string {
	return string(d)
}

// ParseDomain accepts a domain name, case-insensitively, with '_' or '-' separators.
func ParseDomain(s string) (Domain, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	for _, d := range DefaultOrder() {
		if string(d) == name {
			return d, nil
		}
	}
	return "", errors.Newf(errors.ErrInvalidInput, "unknown domain %q", s).
		WithDetail("domain", s)
}

// ParseOrder parses a domain order. The result must name every domain exactly once.
func ParseOrder(names []string) ([]Domain, error) {
	if len(names) == 0 {
		return DefaultOrder(), nil
	}

	seen := make(map[Domain]bool, len(names))
	order := make([]Domain, 0, len(names))
	for _, name := range names {
		d, err := ParseDomain(name)
		if err != nil {
			return nil, err
		}
		if seen[d] {
			return nil, errors.Newf(errors.ErrConfigValid, "domain %q listed twice in order", d)
		}
		seen[d] = true
		order = append(order, d)
	}

	for _, d := range DefaultOrder() {
		if !seen[d] {
			return nil, errors.Newf(errors.ErrConfigValid, "domain %q missing from order", d)
		}
	}
	return order, nil
}
