// Package builder assembles a solver-ready model from a specification.
//
// The pipeline is fixed: materialize parameter data through the source
// loader, invoke the template to obtain the base model, apply every
// constraint override in declared order, then apply the first objective
// override. Later objective overrides are ignored; this is long-standing
// documented behavior and is pinned by a regression test rather than
// changed here.
//
// Materialization produces a new Specification value with data populated.
// The caller's specification is never modified; the materialized copy is
// what templates and overrides observe.
package builder
