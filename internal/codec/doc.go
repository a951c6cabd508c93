// Package codec parses a textual configuration into a spec.Specification
// and serializes one back out.
//
// Three frontends feed one shared decoder: YAML, JSON, and HCL (the
// house configuration language; its expressions are evaluated to cty
// values and lowered to native Go before decoding). Every index,
// parameter, and source object is dispatched on its "type" discriminator
// to the matching spec constructor; an unknown discriminator is a
// ConfigError naming the offending string.
//
// Serialize is the exact inverse of Parse for every field Parse accepts,
// which makes the round-trip law testable: parse, serialize, re-parse
// must yield a structurally identical Specification.
package codec
