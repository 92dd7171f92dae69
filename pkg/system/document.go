package system

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/arthur-debert/omiros/pkg/errors"
	toml "github.com/pelletier/go-toml/v2"
)

// Document is the raw system.toml content. Every section is optional.
type Document struct {
	Brew     *BrewSection                      `toml:"brew"`
	Mas      *MasSection                       `toml:"mas"`
	VSCode   *VSCodeSection                    `toml:"vscode"`
	Dotfiles *DotfilesSection                  `toml:"dotfiles"`
	MacOS    map[string]map[string]interface{} `toml:"macos"`
	Defaults []RawDefault                      `toml:"defaults"`

	// ShellInstallers is accepted for compatibility and ignored
	ShellInstallers interface{} `toml:"shell-installers"`
}

// BrewSection lists Homebrew formulae and casks
type BrewSection struct {
	Formulae []string `toml:"formulae"`
	Casks    []string `toml:"casks"`
}

// MasSection lists Mac App Store apps
type MasSection struct {
	Apps []MasApp `toml:"apps"`
}

// MasApp is one store app. The id may be written as a string or an integer.
type MasApp struct {
	Name string      `toml:"name"`
	ID   interface{} `toml:"id"`
}

// VSCodeSection lists editor extensions
type VSCodeSection struct {
	Extensions []string `toml:"extensions"`
}

// DotfilesSection lists dotfiles. Each entry is either a path string or an
// {original, link} table.
type DotfilesSection struct {
	Files []interface{} `toml:"files"`
}

// RawDefault sets an arbitrary defaults key
type RawDefault struct {
	Domain  string      `toml:"domain"`
	Key     string      `toml:"key"`
	Type    string      `toml:"type"`
	Value   interface{} `toml:"value"`
	Restart string      `toml:"restart"`
}

// Parse decodes system.toml strictly: unknown keys are rejected.
func Parse(data []byte) (*Document, error) {
	var doc Document
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, parseError(err)
	}
	return &doc, nil
}

func parseError(err error) error {
	var decErr *toml.DecodeError
	if stderrors.As(err, &decErr) {
		row, col := decErr.Position()
		return errors.Wrapf(err, errors.ErrDocumentParse, "invalid TOML at line %d, column %d", row, col).
			WithDetail("line", row).
			WithDetail("column", col)
	}

	var strictErr *toml.StrictMissingError
	if stderrors.As(err, &strictErr) {
		keys := make([]string, 0, len(strictErr.Errors))
		for _, e := range strictErr.Errors {
			keys = append(keys, strings.Join(e.Key(), "."))
		}
		return errors.Wrapf(err, errors.ErrDocumentParse, "unknown keys: %s", strings.Join(keys, ", ")).
			WithDetail("keys", keys)
	}

	return errors.Wrap(err, errors.ErrDocumentParse, "cannot decode document")
}

// storeID renders a store app id written as a string or an integer.
func (a MasApp) storeID() (string, error) {
	switch id := a.ID.(type) {
	case string:
		return id, nil
	case int64:
		return strconv.FormatInt(id, 10), nil
	case nil:
		return "", errors.Newf(errors.ErrDocumentInvalid, "store app %q has no id", a.Name)
	default:
		return "", errors.Newf(errors.ErrDocumentInvalid, "store app %q has an id of type %T", a.Name, a.ID)
	}
}

// dotfileSpec is one decoded [dotfiles] entry before path resolution
type dotfileSpec struct {
	Original string
	Link     string
}

func (s *DotfilesSection) specs() ([]dotfileSpec, error) {
	out := make([]dotfileSpec, 0, len(s.Files))
	for i, raw := range s.Files {
		switch entry := raw.(type) {
		case string:
			out = append(out, dotfileSpec{Original: entry})
		case map[string]interface{}:
			spec, err := explicitDotfile(entry)
			if err != nil {
				return nil, errors.Wrapf(err, errors.ErrDocumentInvalid, "dotfiles.files[%d]", i)
			}
			out = append(out, spec)
		default:
			return nil, errors.Newf(errors.ErrDocumentInvalid,
				"dotfiles.files[%d] must be a path or an {original, link} table, got %T", i, raw)
		}
	}
	return out, nil
}

func explicitDotfile(entry map[string]interface{}) (dotfileSpec, error) {
	var spec dotfileSpec
	for k, v := range entry {
		s, ok := v.(string)
		if !ok {
			return spec, fmt.Errorf("%s must be a string", k)
		}
		switch k {
		case "original":
			spec.Original = s
		case "link":
			spec.Link = s
		default:
			return spec, fmt.Errorf("unknown key %q", k)
		}
	}
	if spec.Original == "" || spec.Link == "" {
		return spec, fmt.Errorf("both original and link are required")
	}
	return spec, nil
}
