package system

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/omiros/pkg/errors"
	"github.com/arthur-debert/omiros/pkg/logging"
	"github.com/arthur-debert/omiros/pkg/paths"
	"github.com/arthur-debert/omiros/pkg/types"
)

// Load reads system.toml from the system directory and validates it into a
// DesiredState. Any error is fatal to the run.
func Load(fsys types.FS, p *paths.Paths) (*types.DesiredState, error) {
	logger := logging.GetLogger("system").With().Str("path", p.DocumentPath()).Logger()

	data, err := fsys.ReadFile(p.DocumentPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(err, errors.ErrFileNotFound, "no %s in %s", paths.DocumentFile, p.SystemDir())
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", p.DocumentPath())
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}

	ds, err := Build(doc, fsys, p)
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Int("formulae", len(ds.Formulae())).
		Int("casks", len(ds.Casks())).
		Int("storeApps", len(ds.StoreApps())).
		Int("extensions", len(ds.Extensions())).
		Int("dotfiles", len(ds.Dotfiles())).
		Int("preferences", len(ds.Preferences())).
		Msg("Desired state loaded")
	return ds, nil
}

// Build resolves and validates a parsed document.
func Build(doc *Document, fsys types.FS, p *paths.Paths) (*types.DesiredState, error) {
	logger := logging.GetLogger("system")
	var in types.DesiredInput

	if doc.Brew != nil {
		in.Formulae = doc.Brew.Formulae
		in.Casks = doc.Brew.Casks
	}

	if doc.Mas != nil {
		for _, app := range doc.Mas.Apps {
			id, err := app.storeID()
			if err != nil {
				return nil, err
			}
			in.StoreApps = append(in.StoreApps, types.AppRef{Name: app.Name, StoreID: id})
		}
	}

	if doc.VSCode != nil {
		in.Extensions = doc.VSCode.Extensions
	}

	if doc.Dotfiles != nil {
		entries, err := resolveDotfiles(doc.Dotfiles, fsys, p)
		if err != nil {
			return nil, err
		}
		in.Dotfiles = entries
	}

	prefs, err := catalogPreferences(doc.MacOS)
	if err != nil {
		return nil, err
	}
	raw, err := rawPreferences(doc.Defaults)
	if err != nil {
		return nil, err
	}
	in.Preferences = append(prefs, raw...)

	if doc.ShellInstallers != nil {
		logger.Warn().Msg("[shell-installers] is not supported and will be ignored")
	}

	return types.NewDesiredState(in)
}

func resolveDotfiles(section *DotfilesSection, fsys types.FS, p *paths.Paths) ([]types.DotfileEntry, error) {
	specs, err := section.specs()
	if err != nil {
		return nil, err
	}
	if len(specs) == 0 {
		return nil, nil
	}

	if info, err := fsys.Stat(p.DotfilesRoot()); err != nil || !info.IsDir() {
		return nil, errors.Newf(errors.ErrFileNotFound, "dotfiles directory not found: %s", p.DotfilesRoot()).
			WithDetail("path", p.DotfilesRoot())
	}

	entries := make([]types.DotfileEntry, 0, len(specs))
	for _, spec := range specs {
		source, err := p.Source(spec.Original)
		if err != nil {
			return nil, err
		}
		original := filepath.Clean(spec.Original)

		if _, err := fsys.Stat(source); err != nil {
			if os.IsNotExist(err) {
				return nil, errors.Wrapf(err, errors.ErrFileNotFound, "original dotfile not found: %s", source).
					WithDetail("original", original)
			}
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", source)
		}

		link := p.DefaultLink(original)
		if spec.Link != "" {
			if link, err = p.ResolveLink(spec.Link); err != nil {
				return nil, errors.Wrapf(err, errors.ErrDocumentInvalid, "invalid link for %s", original)
			}
		}

		entries = append(entries, types.DotfileEntry{Original: original, Source: source, Link: link})
	}
	return entries, nil
}

func catalogPreferences(sections map[string]map[string]interface{}) ([]types.Preference, error) {
	names := make([]string, 0, len(sections))
	for name := range sections {
		names = append(names, name)
	}
	sort.Strings(names)

	var prefs []types.Preference
	for _, section := range names {
		if _, ok := catalog[section]; !ok {
			return nil, errors.Newf(errors.ErrDocumentInvalid, "unknown section [macos.%s]; known sections: %s",
				section, strings.Join(Sections(), ", ")).WithDetail("section", section)
		}

		keys := make([]string, 0, len(sections[section]))
		for k := range sections[section] {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, name := range keys {
			setting, ok := Lookup(section, name)
			label := section + "." + name
			if !ok {
				return nil, errors.Newf(errors.ErrDocumentInvalid, "unknown setting macos.%s; known: %s",
					label, strings.Join(Names(section), ", ")).WithDetail("setting", label)
			}

			value := types.ValueOf(sections[section][name])
			if setting.Values != nil && value.Type == types.TypeString {
				stored, ok := setting.Values[value.Str]
				if !ok {
					return nil, errors.Newf(errors.ErrDocumentInvalid, "macos.%s = %q is not one of: %s",
						label, value.Str, strings.Join(setting.AllowedValues(), ", ")).WithDetail("setting", label)
				}
				value = types.StringValue(stored)
			}

			prefs = append(prefs, types.Preference{
				Key:     types.PreferenceKey{Domain: setting.Domain, Key: setting.Key},
				Type:    setting.Type,
				Value:   value,
				Restart: setting.Restart,
				Label:   label,
			})
		}
	}
	return prefs, nil
}

func rawPreferences(defaults []RawDefault) ([]types.Preference, error) {
	prefs := make([]types.Preference, 0, len(defaults))
	for i, d := range defaults {
		if d.Domain == "" || d.Key == "" {
			return nil, errors.Newf(errors.ErrDocumentInvalid, "defaults[%d] needs a domain and a key", i)
		}
		vt, ok := types.ParseValueType(d.Type)
		if !ok {
			return nil, errors.Newf(errors.ErrDocumentInvalid, "defaults[%d] has unsupported type %q (bool, int or string)", i, d.Type)
		}
		if d.Value == nil {
			return nil, errors.Newf(errors.ErrDocumentInvalid, "defaults[%d] has no value", i)
		}
		prefs = append(prefs, types.Preference{
			Key:     types.PreferenceKey{Domain: d.Domain, Key: d.Key},
			Type:    vt,
			Value:   types.ValueOf(d.Value),
			Restart: d.Restart,
		})
	}
	return prefs, nil
}
