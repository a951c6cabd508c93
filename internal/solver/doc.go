// Package solver defines the opaque solving capability the build pipeline
// hands its finished model to, and provides a local exact implementation.
//
// A non-success status (infeasible, unbounded, node limit) is a valid
// result, not an error: it is surfaced to the caller with the matching
// status string and a nil objective. Errors are reserved for models the
// solver cannot process at all.
package solver
