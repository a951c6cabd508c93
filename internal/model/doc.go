// Package model defines the solver-ready artifact of the build pipeline:
// a linear model with named decision variables, linear constraints, and a
// single objective.
//
// The Handle is opaque to the builder, which only threads it from the
// template through the override capabilities to the solver. Variables are
// tracked in an explicit name registry populated as capabilities create
// them; result extraction never introspects the model by reflection.
package model
