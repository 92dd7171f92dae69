package types

// InstalledSet is the actual state of an install domain: normalized
// identifiers per kind.
type InstalledSet map[InstallKind]map[string]struct{}

// NewInstalledSet returns an empty set.
func NewInstalledSet() InstalledSet {
	return make(InstalledSet)
}

// Add records an identifier, normalizing it for its kind.
func (s InstalledSet) Add(kind InstallKind, id string) {
	id = kind.Normalize(id)
	if id == "" {
		return
	}
	ids, ok := s[kind]
	if !ok {
		ids = make(map[string]struct{})
		s[kind] = ids
	}
	ids[id] = struct{}{}
}

// Has reports whether the target is installed.
func (s InstalledSet) Has(t InstallTarget) bool {
	_, ok := s[t.Kind][t.Kind.Normalize(t.ID)]
	return ok
}

// Len returns the number of identifiers across kinds.
func (s InstalledSet) Len() int {
	n := 0
	for _, ids := range s {
		n += len(ids)
	}
	return n
}

// LinkKind is what occupies a dotfile link path
type LinkKind string

const (
	// LinkAbsent means nothing exists at the path
	LinkAbsent LinkKind = "absent"

	// LinkSymlink means a symlink exists at the path
	LinkSymlink LinkKind = "symlink"

	// LinkOccupied means a regular file or directory exists at the path
	LinkOccupied LinkKind = "regular"
)

// LinkState is the probed state of one link path
type LinkState struct {
	Kind LinkKind

	// Target is the absolute, cleaned symlink target; relative targets are
	// resolved against the link's directory
	Target string

	// Broken is set when the symlink target does not exist
	Broken bool
}

// PreferenceSnapshot holds the current values of preference keys. Keys
// without a value are absent from the map.
type PreferenceSnapshot map[PreferenceKey]PreferenceValue
