// Package executor applies the actions produced by pkg/diff.
//
// Each action is applied on its own through the domain capability in
// types.Capabilities and turned into a types.RunOutcome. Failures are
// captured in the outcome, never returned, so one bad action cannot stop its
// siblings. In dry-run mode nothing is applied and every action is reported
// skipped.
package executor
