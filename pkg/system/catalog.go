package system

import (
	"sort"

	"github.com/arthur-debert/omiros/pkg/types"
)

// Setting describes a named macOS preference the document can set under
// [macos.<section>].
type Setting struct {
	Domain string
	Key    string
	Type   types.ValueType

	// Values maps accepted document values to the stored value. Nil means any
	// value of Type is accepted as is.
	Values map[string]string

	// Restart is the application to restart after the value changes
	Restart string
}

const (
	globalDomain = "NSGlobalDomain"
	dockDomain   = "com.apple.dock"
	finderDomain = "com.apple.finder"
)

var catalog = map[string]map[string]Setting{
	"dock": {
		"orientation": {
			Domain: dockDomain, Key: "orientation", Type: types.TypeString, Restart: "Dock",
			Values: map[string]string{"left": "left", "bottom": "bottom", "right": "right"},
		},
		"autohide":  {Domain: dockDomain, Key: "autohide", Type: types.TypeBool, Restart: "Dock"},
		"icon-size": {Domain: dockDomain, Key: "tilesize", Type: types.TypeInt, Restart: "Dock"},
	},
	"mission-control": {
		"group-by-app":          {Domain: dockDomain, Key: "expose-group-apps", Type: types.TypeBool, Restart: "Dock"},
		"auto-rearrange-spaces": {Domain: dockDomain, Key: "mru-spaces", Type: types.TypeBool, Restart: "Dock"},
	},
	"safari": {
		"show-full-url": {Domain: "com.apple.Safari", Key: "ShowFullURLInSmartSearchField", Type: types.TypeBool, Restart: "Safari"},
	},
	"system": {
		"show-file-extensions": {Domain: globalDomain, Key: "AppleShowAllExtensions", Type: types.TypeBool, Restart: "Finder"},
		"natural-scrolling":    {Domain: globalDomain, Key: "com.apple.swipescrolldirection", Type: types.TypeBool},
		"weird-mac-scrolling":  {Domain: globalDomain, Key: "com.apple.swipescrolldirection", Type: types.TypeBool},
	},
	"magic-mouse": {
		"secondary-click": {
			Domain: "com.apple.driver.AppleBluetoothMultitouch.mouse", Key: "MouseButtonMode", Type: types.TypeString,
			Values: map[string]string{"one-button": "OneButton", "two-button": "TwoButton"},
		},
	},
	"finder": {
		"show-path-bar":   {Domain: finderDomain, Key: "ShowPathbar", Type: types.TypeBool, Restart: "Finder"},
		"show-status-bar": {Domain: finderDomain, Key: "ShowStatusBar", Type: types.TypeBool, Restart: "Finder"},
		"default-view": {
			Domain: finderDomain, Key: "FXPreferredViewStyle", Type: types.TypeString, Restart: "Finder",
			Values: map[string]string{"icon": "icnv", "list": "Nlsv", "column": "clmv", "gallery": "Flwv"},
		},
	},
}

// Lookup returns the catalog entry for a section and name.
func Lookup(section, name string) (Setting, bool) {
	s, ok := catalog[section][name]
	return s, ok
}

// Sections lists the known [macos.*] sections, sorted.
func Sections() []string {
	out := make([]string, 0, len(catalog))
	for s := range catalog {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Names lists the settings of a section, sorted.
func Names(section string) []string {
	out := make([]string, 0, len(catalog[section]))
	for n := range catalog[section] {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// AllowedValues lists the accepted document values of an enumerated setting, sorted.
func (s Setting) AllowedValues() []string {
	out := make([]string, 0, len(s.Values))
	for v := range s.Values {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
