package config

import (
	_ "embed"
	stderrors "errors"
	"os"
	"reflect"
	"strings"

	"github.com/arthur-debert/omiros/pkg/errors"
	"github.com/arthur-debert/omiros/pkg/logging"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix is the prefix of settings environment variables
	EnvPrefix = "OMIROS_"

	// EnvConfigFile overrides the settings file location
	EnvConfigFile = "OMIROS_CONFIG"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// rawBytesProvider implements koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, stderrors.New("not implemented")
}

// LoadOptions controls where settings come from
type LoadOptions struct {
	// SettingsPath is the user settings file; OMIROS_CONFIG wins over it.
	// A missing file is not an error.
	SettingsPath string

	// Overrides are applied last, keyed by dotted setting name
	Overrides map[string]interface{}
}

// Load builds the settings from every layer and validates them.
func Load(opts LoadOptions) (*Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load built-in defaults")
	}

	path := opts.SettingsPath
	if p := os.Getenv(EnvConfigFile); p != "" {
		path = p
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load settings from %s", path).
					WithDetail("path", path)
			}
			logger.Debug().Str("path", path).Msg("Loaded settings file")
		} else if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "cannot read settings file %s", path)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment settings")
	}

	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply overrides")
		}
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
				trimSliceHookFunc(),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal settings")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Debug().
		Strs("order", cfg.Reconcile.Order).
		Str("format", cfg.Output.Format).
		Bool("restart", cfg.Preferences.Restart).
		Msg("Settings loaded")
	return &cfg, nil
}

// envKey maps OMIROS_OUTPUT_FORMAT to output.format. Variables naming the
// settings file or directory are not settings and are skipped.
func envKey(s string) string {
	if s == EnvConfigFile || strings.HasPrefix(s, EnvConfigFile+"_") {
		return ""
	}
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".")
}

// trimSliceHookFunc trims whitespace around comma-separated list items.
func trimSliceHookFunc() mapstructure.DecodeHookFunc {
	return func(from, to reflect.Value) (interface{}, error) {
		items, ok := from.Interface().([]string)
		if !ok {
			return from.Interface(), nil
		}
		out := make([]string, 0, len(items))
		for _, item := range items {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		return out, nil
	}
}
