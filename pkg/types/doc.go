// Package types defines the data model shared by the reconciliation engine:
// the validated DesiredState, the Action variants produced by the diff step,
// RunOutcome and the per-run reports, plus the capability interfaces each
// domain backend implements.
package types
