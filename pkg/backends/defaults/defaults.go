// Package defaults reads and writes macOS preferences with the defaults
// command. Current values come from "defaults export <domain> -", an XML
// property list read with etree.
package defaults

import (
	"bytes"
	"context"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/arthur-debert/omiros/pkg/errors"
	"github.com/arthur-debert/omiros/pkg/logging"
	"github.com/arthur-debert/omiros/pkg/runner"
	"github.com/arthur-debert/omiros/pkg/types"
	"github.com/beevik/etree"
)

// DefaultProgram is the defaults executable looked up on PATH
const DefaultProgram = "defaults"

// Store implements types.PreferenceStore and types.Settler
type Store struct {
	runner    runner.Runner
	program   string
	restarter Restarter
}

// Option configures a Store
type Option func(*Store)

// WithRestarter replaces the process restarter used by Settle. A nil
// restarter disables restarts.
func WithRestarter(r Restarter) Option {
	return func(s *Store) { s.restarter = r }
}

// New returns a Store running program through r.
func New(r runner.Runner, program string, opts ...Option) *Store {
	if program == "" {
		program = DefaultProgram
	}
	s := &Store{runner: r, program: program, restarter: NewProcessRestarter()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Values exports each domain once and picks out the requested keys. With no
// defaults program every key reads as unset.
func (s *Store) Values(ctx context.Context, keys []types.PreferenceKey) (types.PreferenceSnapshot, error) {
	logger := logging.GetLogger("defaults")
	snapshot := make(types.PreferenceSnapshot, len(keys))

	if !runner.Available(s.runner, s.program) {
		logger.Debug().Str("program", s.program).Msg("Backend not found, treating every preference as unset")
		return snapshot, nil
	}

	wanted := make(map[string][]string)
	for _, k := range keys {
		wanted[k.Domain] = append(wanted[k.Domain], k.Key)
	}
	domains := make([]string, 0, len(wanted))
	for d := range wanted {
		domains = append(domains, d)
	}
	sort.Strings(domains)

	for _, domain := range domains {
		args := []string{"export", domain, "-"}
		res, err := s.runner.Run(ctx, s.program, args...)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrProbeUnavailable, "%s", runner.Describe(s.program, args, res)).
				WithDetail("domain", domain)
		}
		values, err := ParsePlist(res.Stdout)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrProbeUnavailable, "cannot read preferences of %s", domain).
				WithDetail("domain", domain)
		}
		for _, key := range wanted[domain] {
			if v, ok := values[key]; ok {
				snapshot[types.PreferenceKey{Domain: domain, Key: key}] = v
			}
		}
		logger.Trace().Str("domain", domain).Int("keys", len(values)).Msg("Exported domain")
	}
	return snapshot, nil
}

// ParsePlist reads the top-level dictionary of an XML property list.
// Containers, data and dates come back as unsupported values.
func ParsePlist(data []byte) (map[string]types.PreferenceValue, error) {
	out := make(map[string]types.PreferenceValue)
	if len(bytes.TrimSpace(data)) == 0 {
		return out, nil
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, errors.Wrap(err, errors.ErrProbeUnavailable, "invalid property list")
	}
	plist := doc.SelectElement("plist")
	if plist == nil {
		return nil, errors.New(errors.ErrProbeUnavailable, "missing <plist> element")
	}
	dict := plist.SelectElement("dict")
	if dict == nil {
		return out, nil
	}

	children := dict.ChildElements()
	for i := 0; i+1 < len(children); i += 2 {
		key, value := children[i], children[i+1]
		if key.Tag != "key" {
			return nil, errors.Newf(errors.ErrProbeUnavailable, "expected <key>, got <%s>", key.Tag)
		}
		v, err := plistValue(value)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrProbeUnavailable, "key %s", key.Text())
		}
		out[key.Text()] = v
	}
	return out, nil
}

func plistValue(el *etree.Element) (types.PreferenceValue, error) {
	text := strings.TrimSpace(el.Text())
	switch el.Tag {
	case "true":
		return types.BoolValue(true), nil
	case "false":
		return types.BoolValue(false), nil
	case "integer":
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return types.PreferenceValue{}, err
		}
		return types.IntValue(i), nil
	case "real":
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return types.PreferenceValue{}, err
		}
		// Dock writes tilesize as a real
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return types.IntValue(int64(f)), nil
		}
		return types.ValueOf(f), nil
	case "string":
		return types.StringValue(el.Text()), nil
	}
	return types.PreferenceValue{Type: types.TypeUnsupported, Str: "<" + el.Tag + ">"}, nil
}

// Write sets one key with the type flag matching the value.
func (s *Store) Write(ctx context.Context, key types.PreferenceKey, value types.PreferenceValue) error {
	var flag, text string
	switch value.Type {
	case types.TypeBool:
		flag, text = "-bool", strconv.FormatBool(value.Bool)
	case types.TypeInt:
		flag, text = "-int", strconv.FormatInt(value.Int, 10)
	case types.TypeString:
		flag, text = "-string", value.Str
	default:
		return errors.Newf(errors.ErrInvalidPreferenceType, "%s cannot be written as a preference", value).
			WithDetail("key", key.String())
	}

	args := []string{"write", key.Domain, key.Key, flag, text}
	res, err := s.runner.Run(ctx, s.program, args...)
	if err != nil {
		return errors.Wrapf(err, errors.ErrPreferenceWrite, "%s", runner.Describe(s.program, args, res)).
			WithDetail("key", key.String())
	}
	logger := logging.GetLogger("defaults")
	logger.Info().Str("key", key.String()).Str("value", value.String()).Msg("Preference written")
	return nil
}

// Settle restarts each application named by the written preferences once,
// in name order. Failures are logged and joined into the returned error.
func (s *Store) Settle(ctx context.Context, written []types.Preference) error {
	if s.restarter == nil {
		return nil
	}
	logger := logging.GetLogger("defaults")

	apps := make(map[string]bool)
	for _, p := range written {
		if p.Restart != "" {
			apps[p.Restart] = true
		}
	}
	names := make([]string, 0, len(apps))
	for name := range apps {
		names = append(names, name)
	}
	sort.Strings(names)

	var failed []string
	for _, app := range names {
		if err := s.restarter.Restart(ctx, app); err != nil {
			logger.Warn().Err(err).Str("app", app).Msg("Failed to restart application")
			failed = append(failed, app)
			continue
		}
		logger.Info().Str("app", app).Msg("Restarted application")
	}
	if len(failed) > 0 {
		return errors.Newf(errors.ErrInternal, "could not restart %s", strings.Join(failed, ", ")).
			WithDetail("apps", failed)
	}
	return nil
}
