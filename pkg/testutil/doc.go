// Package testutil provides utilities for testing omiros components.
//
// Key components:
//   - MemoryFS: In-memory types.FS with real symlink semantics and error injection
//   - FakeRunner: Scripted runner.Runner recording every command
//   - FakeInstaller, FakePreferenceStore: In-memory domain capabilities
//
// Usage guidelines:
//   - Backend and engine tests use MemoryFS and FakeRunner
//   - Only pkg/filesystem, pkg/runner and the links backend integration test touch the real system
//   - All test data should be defined inline, not in external files
package testutil
