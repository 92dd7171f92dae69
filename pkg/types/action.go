package types

import "fmt"

// ActionKind is the variant tag of an Action
type ActionKind string

const (
	// ActionInstall installs a missing package, app or extension
	ActionInstall ActionKind = "install"

	// ActionCreateSymlink creates a link where nothing exists
	ActionCreateSymlink ActionKind = "create-symlink"

	// ActionReplaceSymlink replaces a symlink pointing elsewhere
	ActionReplaceSymlink ActionKind = "replace-symlink"

	// ActionSkipConflict records a link path occupied by real data
	ActionSkipConflict ActionKind = "skip-conflict"

	// ActionSetPreference writes a preference value
	ActionSetPreference ActionKind = "set-preference"
)

// Action is one change the diff step wants applied. Actions are plain data;
// which fields are set depends on Kind.
type Action struct {
	Kind   ActionKind
	Domain Domain

	// Target is set for ActionInstall
	Target InstallTarget

	// Dotfile is set for the symlink and conflict kinds
	Dotfile DotfileEntry

	// PreviousTarget is the stale target of an ActionReplaceSymlink
	PreviousTarget string

	// Reason explains an ActionSkipConflict
	Reason string

	// Preference is set for ActionSetPreference
	Preference Preference
}

// NewInstall returns an install action for the target's domain.
func NewInstall(target InstallTarget) Action {
	return Action{Kind: ActionInstall, Domain: target.Kind.Domain(), Target: target}
}

// NewCreateSymlink returns a create action for the entry.
func NewCreateSymlink(entry DotfileEntry) Action {
	return Action{Kind: ActionCreateSymlink, Domain: DomainDotfiles, Dotfile: entry}
}

// NewReplaceSymlink returns a replace action for a link currently pointing at previous.
func NewReplaceSymlink(entry DotfileEntry, previous string) Action {
	return Action{Kind: ActionReplaceSymlink, Domain: DomainDotfiles, Dotfile: entry, PreviousTarget: previous}
}

// NewSkipConflict returns a conflict action for the entry.
func NewSkipConflict(entry DotfileEntry, reason string) Action {
	return Action{Kind: ActionSkipConflict, Domain: DomainDotfiles, Dotfile: entry, Reason: reason}
}

// NewSetPreference returns a write action for the preference.
func NewSetPreference(pref Preference) Action {
	return Action{Kind: ActionSetPreference, Domain: DomainPreferences, Preference: pref}
}

// Subject names the thing the action is about: an identifier, a link path or
// a preference.
func (a Action) Subject() string {
	switch a.Kind {
	case ActionInstall:
		return a.Target.String()
	case ActionCreateSymlink, ActionReplaceSymlink, ActionSkipConflict:
		return a.Dotfile.Link
	case ActionSetPreference:
		return a.Preference.Name()
	}
	return ""
}

// Describe returns a one-line human readable description.
func (a Action) Describe() string {
	switch a.Kind {
	case ActionInstall:
		return fmt.Sprintf("install %s %s", a.Target.Kind, a.Target)
	case ActionCreateSymlink:
		return fmt.Sprintf("link %s -> %s", a.Dotfile.Link, a.Dotfile.Source)
	case ActionReplaceSymlink:
		return fmt.Sprintf("relink %s -> %s (was %s)", a.Dotfile.Link, a.Dotfile.Source, a.PreviousTarget)
	case ActionSkipConflict:
		return fmt.Sprintf("skip %s: %s", a.Dotfile.Link, a.Reason)
	case ActionSetPreference:
		return fmt.Sprintf("set %s = %s", a.Preference.Name(), a.Preference.Value)
	}
	return string(a.Kind)
}
