// pkg/backends/defaults/defaults_test.go
// TEST TYPE: Unit Tests
// DEPENDENCIES: FakeRunner
// PURPOSE: Test plist reading, typed writes and application restarts

package defaults

import (
	"context"
	"errors"
	"sort"
	"testing"

	omerrors "github.com/arthur-debert/omiros/pkg/errors"
	"github.com/arthur-debert/omiros/pkg/testutil"
	"github.com/arthur-debert/omiros/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dockPlist = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>autohide</key>
	<true/>
	<key>orientation</key>
	<string>left</string>
	<key>tilesize</key>
	<real>48</real>
	<key>mru-spaces</key>
	<integer>0</integer>
	<key>largesize</key>
	<real>64.5</real>
	<key>persistent-apps</key>
	<array>
		<dict><key>tile-type</key><string>file-tile</string></dict>
	</array>
</dict>
</plist>
`

func key(domain, k string) types.PreferenceKey {
	return types.PreferenceKey{Domain: domain, Key: k}
}

func TestParsePlist(t *testing.T) {
	values, err := ParsePlist([]byte(dockPlist))
	require.NoError(t, err)

	assert.Equal(t, types.BoolValue(true), values["autohide"])
	assert.Equal(t, types.StringValue("left"), values["orientation"])
	assert.Equal(t, types.IntValue(48), values["tilesize"])
	assert.Equal(t, types.IntValue(0), values["mru-spaces"])
	assert.Equal(t, types.TypeUnsupported, values["largesize"].Type)
	assert.Equal(t, types.TypeUnsupported, values["persistent-apps"].Type)
	assert.Len(t, values, 6)
}

func TestParsePlist_Empty(t *testing.T) {
	values, err := ParsePlist([]byte(`<?xml version="1.0"?><plist version="1.0"><dict/></plist>`))
	require.NoError(t, err)
	assert.Empty(t, values)

	values, err = ParsePlist(nil)
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestParsePlist_Invalid(t *testing.T) {
	for _, in := range []string{
		"Domain com.nope does not exist",
		`<plist><dict><string>x</string><true/></dict></plist>`,
		`<plist><dict><key>n</key><integer>many</integer></dict></plist>`,
	} {
		_, err := ParsePlist([]byte(in))
		require.Error(t, err, in)
		assert.True(t, omerrors.IsErrorCode(err, omerrors.ErrProbeUnavailable))
	}
}

func TestValues(t *testing.T) {
	r := testutil.NewFakeRunner().
		On("defaults export com.apple.dock -", testutil.FakeResult{Stdout: dockPlist}).
		On("defaults export com.apple.finder -", testutil.FakeResult{Stdout: `<plist><dict/></plist>`})

	snapshot, err := New(r, "").Values(context.Background(), []types.PreferenceKey{
		key("com.apple.dock", "orientation"),
		key("com.apple.dock", "autohide"),
		key("com.apple.finder", "ShowPathbar"),
	})
	require.NoError(t, err)

	assert.Equal(t, types.PreferenceSnapshot{
		key("com.apple.dock", "orientation"): types.StringValue("left"),
		key("com.apple.dock", "autohide"):    types.BoolValue(true),
	}, snapshot)
	assert.Equal(t, []string{"defaults export com.apple.dock -", "defaults export com.apple.finder -"}, r.Calls())
}

func TestValues_ExportFails(t *testing.T) {
	r := testutil.NewFakeRunner().
		On("defaults export com.apple.dock -", testutil.FakeResult{Stderr: "boom", ExitCode: 1})

	_, err := New(r, "").Values(context.Background(), []types.PreferenceKey{key("com.apple.dock", "autohide")})
	require.Error(t, err)
	assert.True(t, omerrors.IsErrorCode(err, omerrors.ErrProbeUnavailable))
}

func TestValues_NoBackend(t *testing.T) {
	r := testutil.NewFakeRunner().Missing("defaults")

	snapshot, err := New(r, "").Values(context.Background(), []types.PreferenceKey{key("com.apple.dock", "autohide")})
	require.NoError(t, err)
	assert.Empty(t, snapshot)
}

func TestWrite(t *testing.T) {
	tests := []struct {
		name  string
		value types.PreferenceValue
		line  string
	}{
		{"bool", types.BoolValue(false), "defaults write com.apple.dock autohide -bool false"},
		{"int", types.IntValue(48), "defaults write com.apple.dock autohide -int 48"},
		{"string", types.StringValue("left"), "defaults write com.apple.dock autohide -string left"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := testutil.NewFakeRunner()
			require.NoError(t, New(r, "").Write(context.Background(), key("com.apple.dock", "autohide"), tt.value))
			assert.Equal(t, []string{tt.line}, r.Calls())
		})
	}
}

func TestWrite_Errors(t *testing.T) {
	k := key("com.apple.dock", "autohide")

	t.Run("unsupported_type", func(t *testing.T) {
		r := testutil.NewFakeRunner()
		err := New(r, "").Write(context.Background(), k, types.ValueOf(1.5))
		require.Error(t, err)
		assert.Equal(t, omerrors.ErrInvalidPreferenceType, omerrors.GetErrorCode(err))
		assert.Empty(t, r.Calls())
	})

	t.Run("command_fails", func(t *testing.T) {
		r := testutil.NewFakeRunner().
			On("defaults write com.apple.dock autohide -bool true", testutil.FakeResult{Stderr: "Could not write domain", ExitCode: 1})
		err := New(r, "").Write(context.Background(), k, types.BoolValue(true))
		require.Error(t, err)
		assert.Equal(t, omerrors.ErrPreferenceWrite, omerrors.GetErrorCode(err))
	})
}

type fakeRestarter struct {
	restarted []string
	fail      map[string]bool
}

func (f *fakeRestarter) Restart(_ context.Context, app string) error {
	f.restarted = append(f.restarted, app)
	if f.fail[app] {
		return errors.New("no such process")
	}
	return nil
}

func TestSettle(t *testing.T) {
	written := []types.Preference{
		{Key: key("com.apple.finder", "ShowPathbar"), Restart: "Finder"},
		{Key: key("com.apple.dock", "autohide"), Restart: "Dock"},
		{Key: key("com.apple.dock", "tilesize"), Restart: "Dock"},
		{Key: key("NSGlobalDomain", "com.apple.swipescrolldirection")},
	}

	t.Run("each_app_once", func(t *testing.T) {
		fr := &fakeRestarter{}
		require.NoError(t, New(testutil.NewFakeRunner(), "", WithRestarter(fr)).Settle(context.Background(), written))
		assert.Equal(t, []string{"Dock", "Finder"}, fr.restarted)
	})

	t.Run("failures_reported", func(t *testing.T) {
		fr := &fakeRestarter{fail: map[string]bool{"Dock": true}}
		err := New(testutil.NewFakeRunner(), "", WithRestarter(fr)).Settle(context.Background(), written)
		require.Error(t, err)
		assert.Equal(t, []string{"Dock", "Finder"}, fr.restarted)
	})

	t.Run("disabled", func(t *testing.T) {
		assert.NoError(t, New(testutil.NewFakeRunner(), "", WithRestarter(nil)).Settle(context.Background(), written))
	})
}

type fakeProcess struct {
	name       string
	terminated *[]string
}

func (p fakeProcess) NameWithContext(context.Context) (string, error) { return p.name, nil }

func (p fakeProcess) TerminateWithContext(context.Context) error {
	*p.terminated = append(*p.terminated, p.name)
	return nil
}

func TestProcessRestarter(t *testing.T) {
	var terminated []string
	r := &ProcessRestarter{processes: func(context.Context) ([]namedProcess, error) {
		return []namedProcess{
			fakeProcess{"Dock", &terminated},
			fakeProcess{"Finder", &terminated},
			fakeProcess{"Dock", &terminated},
		}, nil
	}}

	require.NoError(t, r.Restart(context.Background(), "Dock"))
	require.NoError(t, r.Restart(context.Background(), "Safari"))

	sort.Strings(terminated)
	assert.Equal(t, []string{"Dock", "Dock"}, terminated)
}
