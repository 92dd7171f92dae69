// Package reconcile drives a full run: for each domain in order it probes
// actual state, diffs it against the desired state and applies the actions.
//
// Every domain is visited exactly once. A failed action never stops its
// siblings and a failed probe never stops later domains; both are recorded
// in the types.RunReport, which decides the exit status.
package reconcile
