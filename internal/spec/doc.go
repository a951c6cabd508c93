// Package spec defines the typed, immutable data model for a declarative
// optimization problem: index domains, data-backed parameters, override
// hooks, and the aggregate Specification that ties them together.
//
// Values of every type in this package are constructed through validating
// constructors and never mutated afterwards. All updates go through the
// With* helpers on Specification, which return a new value sharing every
// untouched branch with the original. A holder of an old *Specification
// can never observe a later edit.
package spec
