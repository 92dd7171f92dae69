// pkg/executor/executor_test.go
// TEST TYPE: Unit Tests
// DEPENDENCIES: testify mocks for the domain capabilities
// PURPOSE: Test action dispatch, outcome mapping and dry-run simulation

package executor_test

import (
	"context"
	"errors"
	"testing"

	omerrors "github.com/arthur-debert/omiros/pkg/errors"
	"github.com/arthur-debert/omiros/pkg/executor"
	"github.com/arthur-debert/omiros/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockInstaller struct {
	mock.Mock
}

func (m *MockInstaller) Installed(ctx context.Context) (types.InstalledSet, error) {
	args := m.Called(ctx)
	set, _ := args.Get(0).(types.InstalledSet)
	return set, args.Error(1)
}

func (m *MockInstaller) Install(ctx context.Context, target types.InstallTarget) error {
	return m.Called(ctx, target).Error(0)
}

type MockLinker struct {
	mock.Mock
}

func (m *MockLinker) Probe(link string) (types.LinkState, error) {
	args := m.Called(link)
	return args.Get(0).(types.LinkState), args.Error(1)
}

func (m *MockLinker) Create(source, link string) error {
	return m.Called(source, link).Error(0)
}

func (m *MockLinker) Replace(source, link string) error {
	return m.Called(source, link).Error(0)
}

type MockPreferences struct {
	mock.Mock
}

func (m *MockPreferences) Values(ctx context.Context, keys []types.PreferenceKey) (types.PreferenceSnapshot, error) {
	args := m.Called(ctx, keys)
	snap, _ := args.Get(0).(types.PreferenceSnapshot)
	return snap, args.Error(1)
}

func (m *MockPreferences) Write(ctx context.Context, key types.PreferenceKey, value types.PreferenceValue) error {
	return m.Called(ctx, key, value).Error(0)
}

var (
	fish  = types.InstallTarget{Kind: types.KindFormula, ID: "fish"}
	zshrc = types.DotfileEntry{Original: ".zshrc", Source: "/d/.zshrc", Link: "/h/.zshrc"}
	dock  = types.Preference{
		Key:   types.PreferenceKey{Domain: "com.apple.dock", Key: "autohide"},
		Type:  types.TypeBool,
		Value: types.BoolValue(true),
		Label: "dock.autohide",
	}
)

func TestApply_Install(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		inst := &MockInstaller{}
		inst.On("Install", ctx, fish).Return(nil)
		e := executor.New(executor.Options{Capabilities: types.Capabilities{Packages: inst}})

		out := e.Apply(ctx, types.NewInstall(fish))
		assert.Equal(t, types.ResultSuccess, out.Result)
		inst.AssertExpectations(t)
	})

	t.Run("uncoded_failure_is_install_failed", func(t *testing.T) {
		inst := &MockInstaller{}
		inst.On("Install", ctx, fish).Return(errors.New("network down"))
		e := executor.New(executor.Options{Capabilities: types.Capabilities{Packages: inst}})

		out := e.Apply(ctx, types.NewInstall(fish))
		assert.Equal(t, types.ResultFailed, out.Result)
		assert.Equal(t, omerrors.ErrInstallFailed, out.ErrorKind)
		require.Error(t, out.Err)
	})

	t.Run("no_installer", func(t *testing.T) {
		e := executor.New(executor.Options{})
		out := e.Apply(ctx, types.NewInstall(types.InstallTarget{Kind: types.KindStoreApp, ID: "1"}))
		assert.Equal(t, types.ResultFailed, out.Result)
		assert.Equal(t, omerrors.ErrInstallFailed, out.ErrorKind)
	})
}

func TestApply_Links(t *testing.T) {
	ctx := context.Background()

	t.Run("create", func(t *testing.T) {
		l := &MockLinker{}
		l.On("Create", zshrc.Source, zshrc.Link).Return(nil)
		e := executor.New(executor.Options{Capabilities: types.Capabilities{Links: l}})

		out := e.Apply(ctx, types.NewCreateSymlink(zshrc))
		assert.Equal(t, types.ResultSuccess, out.Result)
		l.AssertExpectations(t)
	})

	t.Run("replace", func(t *testing.T) {
		l := &MockLinker{}
		l.On("Replace", zshrc.Source, zshrc.Link).Return(nil)
		e := executor.New(executor.Options{Capabilities: types.Capabilities{Links: l}})

		out := e.Apply(ctx, types.NewReplaceSymlink(zshrc, "/old/.zshrc"))
		assert.Equal(t, types.ResultSuccess, out.Result)
		l.AssertExpectations(t)
	})

	t.Run("conflict_never_touches_links", func(t *testing.T) {
		l := &MockLinker{}
		e := executor.New(executor.Options{Capabilities: types.Capabilities{Links: l}})

		out := e.Apply(ctx, types.NewSkipConflict(zshrc, "occupied"))
		assert.Equal(t, types.ResultSkipped, out.Result)
		assert.Equal(t, "occupied", out.Reason)
		assert.Equal(t, omerrors.ErrFilesystemConflict, out.ErrorKind)
		l.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		l.AssertNotCalled(t, "Replace", mock.Anything, mock.Anything)
	})

	t.Run("race_becomes_skip", func(t *testing.T) {
		l := &MockLinker{}
		l.On("Replace", zshrc.Source, zshrc.Link).
			Return(omerrors.New(omerrors.ErrFilesystemConflict, "no longer a symlink"))
		e := executor.New(executor.Options{Capabilities: types.Capabilities{Links: l}})

		out := e.Apply(ctx, types.NewReplaceSymlink(zshrc, "/old/.zshrc"))
		assert.Equal(t, types.ResultSkipped, out.Result)
		assert.Equal(t, executor.RaceReason, out.Reason)
		assert.Equal(t, omerrors.ErrFilesystemConflict, out.ErrorKind)
	})

	t.Run("failure", func(t *testing.T) {
		l := &MockLinker{}
		l.On("Create", zshrc.Source, zshrc.Link).Return(errors.New("read-only file system"))
		e := executor.New(executor.Options{Capabilities: types.Capabilities{Links: l}})

		out := e.Apply(ctx, types.NewCreateSymlink(zshrc))
		assert.Equal(t, types.ResultFailed, out.Result)
		assert.Equal(t, omerrors.ErrSymlinkFailed, out.ErrorKind)
	})
}

func TestApply_Preferences(t *testing.T) {
	ctx := context.Background()

	t.Run("write", func(t *testing.T) {
		p := &MockPreferences{}
		p.On("Write", ctx, dock.Key, dock.Value).Return(nil)
		e := executor.New(executor.Options{Capabilities: types.Capabilities{Preferences: p}})

		out := e.Apply(ctx, types.NewSetPreference(dock))
		assert.Equal(t, types.ResultSuccess, out.Result)
		p.AssertExpectations(t)
	})

	t.Run("type_mismatch_is_not_coerced", func(t *testing.T) {
		p := &MockPreferences{}
		e := executor.New(executor.Options{Capabilities: types.Capabilities{Preferences: p}})

		wrong := dock
		wrong.Value = types.StringValue("yes")
		out := e.Apply(ctx, types.NewSetPreference(wrong))

		assert.Equal(t, types.ResultFailed, out.Result)
		assert.Equal(t, omerrors.ErrInvalidPreferenceType, out.ErrorKind)
		p.AssertNotCalled(t, "Write", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("write_failure", func(t *testing.T) {
		p := &MockPreferences{}
		p.On("Write", ctx, dock.Key, dock.Value).
			Return(omerrors.New(omerrors.ErrPreferenceWrite, "Could not write domain"))
		e := executor.New(executor.Options{Capabilities: types.Capabilities{Preferences: p}})

		out := e.Apply(ctx, types.NewSetPreference(dock))
		assert.Equal(t, types.ResultFailed, out.Result)
		assert.Equal(t, omerrors.ErrPreferenceWrite, out.ErrorKind)
	})
}

func TestExecute_BestEffort(t *testing.T) {
	ctx := context.Background()
	git := types.InstallTarget{Kind: types.KindFormula, ID: "git"}

	inst := &MockInstaller{}
	inst.On("Install", ctx, fish).Return(omerrors.New(omerrors.ErrInstallFailed, "boom"))
	inst.On("Install", ctx, git).Return(nil)
	e := executor.New(executor.Options{Capabilities: types.Capabilities{Packages: inst}})

	outcomes := e.Execute(ctx, []types.Action{types.NewInstall(fish), types.NewInstall(git)})
	require.Len(t, outcomes, 2)
	assert.Equal(t, types.ResultFailed, outcomes[0].Result)
	assert.Equal(t, types.ResultSuccess, outcomes[1].Result)
	inst.AssertExpectations(t)
}

func TestExecute_DryRun(t *testing.T) {
	inst := &MockInstaller{}
	l := &MockLinker{}
	p := &MockPreferences{}
	e := executor.New(executor.Options{
		Capabilities: types.Capabilities{Packages: inst, Links: l, Preferences: p},
		DryRun:       true,
	})
	assert.True(t, e.DryRun())

	outcomes := e.Execute(context.Background(), []types.Action{
		types.NewInstall(fish),
		types.NewCreateSymlink(zshrc),
		types.NewSkipConflict(zshrc, "occupied"),
		types.NewSetPreference(dock),
	})

	require.Len(t, outcomes, 4)
	for _, o := range outcomes {
		assert.Equal(t, types.ResultSkipped, o.Result)
		assert.Equal(t, executor.DryRunReason, o.Reason)
	}
	inst.AssertNotCalled(t, "Install", mock.Anything, mock.Anything)
	l.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	p.AssertNotCalled(t, "Write", mock.Anything, mock.Anything, mock.Anything)
}
