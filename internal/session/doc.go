// Package session pairs a current specification with its cached build and
// solve artifacts and tracks its lifecycle status.
//
// The specification is the only source of truth. The built model handle
// and the solve result are caches: any patch makes them stale and they
// are evicted unconditionally as part of the update transition, so a
// stale artifact can never be observed after a patch.
//
// # Concurrency
//
// The store's own lock covers only map lookup and insert. Each session
// carries its own mutex, held across a whole patch or solve, so
// operations on one id are linearizable while sessions never block one
// another. Two racing solves on the same id serialize; the loser finds
// the winner's freshly cached model and re-solves it instead of
// rebuilding.
package session
