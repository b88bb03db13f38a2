// Package fsops implements the idempotent filesystem primitives the
// deployment pipeline is built from: copy-if-changed, ensure-directory,
// ensure-ownership and atomic symlink reconciliation.
//
// Every operation is safe to re-run: when the observed state already
// matches the desired state the operation reports no change, and
// replacements happen via rename so no observer ever sees a missing
// destination.
package fsops
