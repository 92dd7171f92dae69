package testutil

import (
	"context"
	"sync"

	"github.com/arthur-debert/omiros/pkg/types"
)

// FakeInstaller is an in-memory types.Installer. Successful installs are
// added to the installed set, so a second probe sees them.
type FakeInstaller struct {
	mu sync.Mutex

	Set        types.InstalledSet
	ProbeErr   error
	InstallErr map[string]error

	Probes   int
	Installs []types.InstallTarget
}

// NewFakeInstaller returns an installer reporting the given ids as installed.
func NewFakeInstaller(kind types.InstallKind, installed ...string) *FakeInstaller {
	set := types.NewInstalledSet()
	for _, id := range installed {
		set.Add(kind, id)
	}
	return &FakeInstaller{Set: set, InstallErr: make(map[string]error)}
}

// Installed implements types.Installer.
func (f *FakeInstaller) Installed(context.Context) (types.InstalledSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Probes++
	if f.ProbeErr != nil {
		return nil, f.ProbeErr
	}
	out := types.NewInstalledSet()
	for kind, ids := range f.Set {
		for id := range ids {
			out.Add(kind, id)
		}
	}
	return out, nil
}

// Install implements types.Installer.
func (f *FakeInstaller) Install(_ context.Context, target types.InstallTarget) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Installs = append(f.Installs, target)
	if err := f.InstallErr[target.ID]; err != nil {
		return err
	}
	f.Set.Add(target.Kind, target.ID)
	return nil
}

// FakePreferenceStore is an in-memory types.PreferenceStore and types.Settler
type FakePreferenceStore struct {
	mu sync.Mutex

	Current   types.PreferenceSnapshot
	ReadErr   error
	WriteErr  map[types.PreferenceKey]error
	SettleErr error

	Writes  []types.PreferenceKey
	Settled [][]types.Preference
}

// NewFakePreferenceStore returns an empty store.
func NewFakePreferenceStore() *FakePreferenceStore {
	return &FakePreferenceStore{
		Current:  make(types.PreferenceSnapshot),
		WriteErr: make(map[types.PreferenceKey]error),
	}
}

// Values implements types.PreferenceStore.
func (f *FakePreferenceStore) Values(_ context.Context, keys []types.PreferenceKey) (types.PreferenceSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ReadErr != nil {
		return nil, f.ReadErr
	}
	out := make(types.PreferenceSnapshot, len(keys))
	for _, k := range keys {
		if v, ok := f.Current[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

// Write implements types.PreferenceStore.
func (f *FakePreferenceStore) Write(_ context.Context, key types.PreferenceKey, value types.PreferenceValue) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Writes = append(f.Writes, key)
	if err := f.WriteErr[key]; err != nil {
		return err
	}
	f.Current[key] = value
	return nil
}

// Settle implements types.Settler.
func (f *FakePreferenceStore) Settle(_ context.Context, written []types.Preference) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Settled = append(f.Settled, written)
	return f.SettleErr
}
