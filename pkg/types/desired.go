package types

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/omiros/pkg/errors"
)

// InstallKind distinguishes the identifiers the install domains deal in
type InstallKind string

const (
	KindFormula   InstallKind = "formula"
	KindCask      InstallKind = "cask"
	KindStoreApp  InstallKind = "store-app"
	KindExtension InstallKind = "extension"
)

// Domain returns the domain that installs this kind.
func (k InstallKind) Domain() Domain {
	switch k {
	case KindStoreApp:
		return DomainStoreApps
	case KindExtension:
		return DomainExtensions
	default:
		return DomainPackages
	}
}

// Normalize returns the canonical form of an identifier of this kind. Package
// and extension ids are case-insensitive in their backends.
func (k InstallKind) Normalize(id string) string {
	id = strings.TrimSpace(id)
	if k == KindStoreApp {
		return id
	}
	return strings.ToLower(id)
}

// AppRef is an app store application
type AppRef struct {
	Name    string
	StoreID string
}

// InstallTarget is one thing an install domain should have installed
type InstallTarget struct {
	Kind InstallKind
	ID   string
	// Name is a display name, set for store apps
	Name string
}

func (t InstallTarget) String() string {
	if t.Name != "" {
		return t.Name + " (" + t.ID + ")"
	}
	return t.ID
}

// DotfileEntry is a file from the dotfiles tree and the path it is linked at
type DotfileEntry struct {
	// Original is the path relative to the dotfiles root
	Original string
	// Source is the absolute path of Original
	Source string
	// Link is the absolute link path
	Link string
}

// DesiredInput collects the already-parsed document values NewDesiredState validates.
type DesiredInput struct {
	Formulae    []string
	Casks       []string
	StoreApps   []AppRef
	Extensions  []string
	Dotfiles    []DotfileEntry
	Preferences []Preference
}

// DesiredState is the immutable, validated desired-state document.
// Accessors return copies.
type DesiredState struct {
	formulae    []string
	casks       []string
	storeApps   []AppRef
	extensions  []string
	dotfiles    []DotfileEntry
	preferences []Preference
}

// NewDesiredState normalizes identifiers and rejects duplicates, traversing
// dotfile originals, relative link paths and conflicting preference keys.
func NewDesiredState(in DesiredInput) (*DesiredState, error) {
	ds := &DesiredState{}
	var err error

	if ds.formulae, err = normalizeIDs(KindFormula, in.Formulae); err != nil {
		return nil, err
	}
	if ds.casks, err = normalizeIDs(KindCask, in.Casks); err != nil {
		return nil, err
	}
	if ds.extensions, err = normalizeIDs(KindExtension, in.Extensions); err != nil {
		return nil, err
	}
	if ds.storeApps, err = normalizeApps(in.StoreApps); err != nil {
		return nil, err
	}
	if ds.dotfiles, err = validateDotfiles(in.Dotfiles); err != nil {
		return nil, err
	}
	if ds.preferences, err = validatePreferences(in.Preferences); err != nil {
		return nil, err
	}
	return ds, nil
}

func normalizeIDs(kind InstallKind, ids []string) ([]string, error) {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, raw := range ids {
		id := kind.Normalize(raw)
		if id == "" {
			return nil, errors.Newf(errors.ErrDocumentInvalid, "empty %s identifier", kind)
		}
		if seen[id] {
			return nil, errors.Newf(errors.ErrDocumentInvalid, "duplicate %s %q", kind, id).
				WithDetail("id", id)
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

func normalizeApps(apps []AppRef) ([]AppRef, error) {
	seen := make(map[string]bool, len(apps))
	out := make([]AppRef, 0, len(apps))
	for _, app := range apps {
		id := KindStoreApp.Normalize(app.StoreID)
		if id == "" {
			return nil, errors.Newf(errors.ErrDocumentInvalid, "store app %q has no id", app.Name)
		}
		for _, r := range id {
			if r < '0' || r > '9' {
				return nil, errors.Newf(errors.ErrDocumentInvalid, "store app id %q is not numeric", id)
			}
		}
		if seen[id] {
			return nil, errors.Newf(errors.ErrDocumentInvalid, "duplicate store app %q", id).
				WithDetail("id", id)
		}
		seen[id] = true
		out = append(out, AppRef{Name: strings.TrimSpace(app.Name), StoreID: id})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StoreID < out[j].StoreID })
	return out, nil
}

func validateDotfiles(entries []DotfileEntry) ([]DotfileEntry, error) {
	links := make(map[string]string, len(entries))
	out := make([]DotfileEntry, 0, len(entries))
	for _, e := range entries {
		if !filepath.IsLocal(e.Original) {
			return nil, errors.Newf(errors.ErrTraversalRejected, "dotfile %q escapes the dotfiles root", e.Original).
				WithDetail("original", e.Original)
		}
		if !filepath.IsAbs(e.Source) || !filepath.IsAbs(e.Link) {
			return nil, errors.Newf(errors.ErrDocumentInvalid, "dotfile %q must have absolute source and link paths", e.Original)
		}
		link := filepath.Clean(e.Link)
		if prev, ok := links[link]; ok {
			return nil, errors.Newf(errors.ErrDocumentInvalid, "dotfiles %q and %q both link to %s", prev, e.Original, link).
				WithDetail("link", link)
		}
		links[link] = e.Original
		out = append(out, DotfileEntry{
			Original: filepath.Clean(e.Original),
			Source:   filepath.Clean(e.Source),
			Link:     link,
		})
	}
	return out, nil
}

func validatePreferences(prefs []Preference) ([]Preference, error) {
	seen := make(map[PreferenceKey]string, len(prefs))
	out := make([]Preference, 0, len(prefs))
	for _, p := range prefs {
		if p.Key.Domain == "" || p.Key.Key == "" {
			return nil, errors.Newf(errors.ErrDocumentInvalid, "preference %q needs a domain and a key", p.Name())
		}
		if prev, ok := seen[p.Key]; ok {
			return nil, errors.Newf(errors.ErrDocumentInvalid, "preferences %q and %q both set %s", prev, p.Name(), p.Key).
				WithDetail("key", p.Key.String())
		}
		seen[p.Key] = p.Name()
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Key.Less(out[j].Key) })
	return out, nil
}

// Formulae returns the normalized formula names in ascending order.
func (d *DesiredState) Formulae() []string {
	return append([]string(nil), d.formulae...)
}

// Casks returns the normalized cask names in ascending order.
func (d *DesiredState) Casks() []string {
	return append([]string(nil), d.casks...)
}

// StoreApps returns the store apps ordered by id.
func (d *DesiredState) StoreApps() []AppRef {
	return append([]AppRef(nil), d.storeApps...)
}

// Extensions returns the normalized extension ids in ascending order.
func (d *DesiredState) Extensions() []string {
	return append([]string(nil), d.extensions...)
}

// Dotfiles returns the dotfile entries in document order.
func (d *DesiredState) Dotfiles() []DotfileEntry {
	return append([]DotfileEntry(nil), d.dotfiles...)
}

// Preferences returns the preferences ordered by key.
func (d *DesiredState) Preferences() []Preference {
	return append([]Preference(nil), d.preferences...)
}

// InstallTargets returns everything an install domain should have installed.
// It returns nil for the dotfiles and preferences domains.
func (d *DesiredState) InstallTargets(domain Domain) []InstallTarget {
	var targets []InstallTarget
	switch domain {
	case DomainPackages:
		for _, id := range d.formulae {
			targets = append(targets, InstallTarget{Kind: KindFormula, ID: id})
		}
		for _, id := range d.casks {
			targets = append(targets, InstallTarget{Kind: KindCask, ID: id})
		}
	case DomainStoreApps:
		for _, app := range d.storeApps {
			targets = append(targets, InstallTarget{Kind: KindStoreApp, ID: app.StoreID, Name: app.Name})
		}
	case DomainExtensions:
		for _, id := range d.extensions {
			targets = append(targets, InstallTarget{Kind: KindExtension, ID: id})
		}
	}
	return targets
}

// Empty reports whether the document asks for nothing at all.
func (d *DesiredState) Empty() bool {
	return len(d.formulae)+len(d.casks)+len(d.storeApps)+len(d.extensions)+
		len(d.dotfiles)+len(d.preferences) == 0
}
