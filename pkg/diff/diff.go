// Package diff computes the actions that move actual state to desired state.
// Every function here is pure: it reads its inputs and returns actions.
package diff

import (
	"sort"

	"github.com/arthur-debert/omiros/pkg/types"
)

// Installs returns one install action per desired target missing from
// installed, ordered by identifier. Installed items that are not desired
// produce nothing.
func Installs(desired []types.InstallTarget, installed types.InstalledSet) []types.Action {
	var missing []types.InstallTarget
	for _, t := range desired {
		if !installed.Has(t) {
			missing = append(missing, t)
		}
	}
	sort.SliceStable(missing, func(i, j int) bool { return missing[i].ID < missing[j].ID })

	actions := make([]types.Action, 0, len(missing))
	for _, t := range missing {
		actions = append(actions, types.NewInstall(t))
	}
	return actions
}

// ConflictReason is the reason recorded when real data occupies a link path
const ConflictReason = "a file or directory that is not a symlink exists at the link path"

// Dotfiles compares each entry with the probed state of its link path, in
// document order. states is keyed by link path; a missing state counts as
// absent.
func Dotfiles(entries []types.DotfileEntry, states map[string]types.LinkState) []types.Action {
	var actions []types.Action
	for _, e := range entries {
		state, ok := states[e.Link]
		if !ok {
			state = types.LinkState{Kind: types.LinkAbsent}
		}

		switch state.Kind {
		case types.LinkAbsent:
			actions = append(actions, types.NewCreateSymlink(e))
		case types.LinkSymlink:
			if state.Target == e.Source {
				continue
			}
			actions = append(actions, types.NewReplaceSymlink(e, state.Target))
		case types.LinkOccupied:
			actions = append(actions, types.NewSkipConflict(e, ConflictReason))
		}
	}
	return actions
}

// Preferences returns a write action for each preference whose current value
// differs from the desired one. A preference whose desired value has the
// wrong type always gets an action so that applying it reports the mismatch.
func Preferences(desired []types.Preference, current types.PreferenceSnapshot) []types.Action {
	var actions []types.Action
	for _, p := range desired {
		if p.TypeMatches() {
			if cur, ok := current[p.Key]; ok && cur.Equal(p.Value) {
				continue
			}
		}
		actions = append(actions, types.NewSetPreference(p))
	}
	return actions
}
