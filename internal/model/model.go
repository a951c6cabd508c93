package model

import (
	"fmt"
	"math"
)

// VarType classifies a decision variable's domain.
type VarType int

const (
	Binary VarType = iota
	Integer
	Continuous
)

// Var is a named decision variable with inclusive bounds.
type Var struct {
	Name  string
	Type  VarType
	Lower float64
	Upper float64
}

// Relation is the comparator of a linear constraint.
type Relation string

const (
	LessEqual    Relation = "<="
	GreaterEqual Relation = ">="
	Equal        Relation = "=="
)

// Term is one coefficient/variable pair of a linear expression.
type Term struct {
	Coef float64
	Var  string
}

// Constraint is a labeled linear constraint: sum(terms) relation rhs.
// Labels let later overrides find and adjust constraints installed by
// earlier ones.
type Constraint struct {
	Label    string
	Terms    []Term
	Relation Relation
	RHS      float64
}

// Sense is the optimization direction.
type Sense int

const (
	Minimize Sense = iota
	Maximize
)

// Objective is a linear objective with an optional constant offset.
type Objective struct {
	Sense    Sense
	Terms    []Term
	Constant float64
}

// Handle is the mutable model under construction. Templates create the
// decision structure; constraint and objective capabilities adjust it in
// place. After the build pipeline returns, the handle is handed to the
// solver and never mutated again.
type Handle struct {
	vars        []*Var
	byName      map[string]*Var
	constraints []*Constraint
	objective   *Objective
}

// NewHandle creates an empty model.
func NewHandle() *Handle {
	return &Handle{byName: make(map[string]*Var)}
}

// AddBinary registers a binary decision variable.
func (h *Handle) AddBinary(name string) (*Var, error) {
	return h.AddVar(&Var{Name: name, Type: Binary, Lower: 0, Upper: 1})
}

// AddVar registers a variable in the model's name registry. Variable
// names must be unique within a model.
func (h *Handle) AddVar(v *Var) (*Var, error) {
	if v.Name == "" {
		return nil, fmt.Errorf("variable requires a name")
	}
	if _, exists := h.byName[v.Name]; exists {
		return nil, fmt.Errorf("variable %q already exists in model", v.Name)
	}
	if v.Upper < v.Lower {
		return nil, fmt.Errorf("variable %q has upper bound %v below lower bound %v", v.Name, v.Upper, v.Lower)
	}
	h.vars = append(h.vars, v)
	h.byName[v.Name] = v
	return v, nil
}

// Var returns the named variable and whether it exists.
func (h *Handle) Var(name string) (*Var, bool) {
	v, ok := h.byName[name]
	return v, ok
}

// Vars returns the variables in registration order.
func (h *Handle) Vars() []*Var {
	return h.vars
}

// VarNames returns every registered variable name in registration order.
func (h *Handle) VarNames() []string {
	names := make([]string, len(h.vars))
	for i, v := range h.vars {
		names[i] = v.Name
	}
	return names
}

// AddConstraint appends a constraint. Every referenced variable must
// already be registered.
func (h *Handle) AddConstraint(c *Constraint) error {
	for _, term := range c.Terms {
		if _, ok := h.byName[term.Var]; !ok {
			return fmt.Errorf("constraint %q references unknown variable %q", c.Label, term.Var)
		}
	}
	h.constraints = append(h.constraints, c)
	return nil
}

// Constraints returns the constraints in insertion order.
func (h *Handle) Constraints() []*Constraint {
	return h.constraints
}

// RemoveConstraints drops every constraint matching the predicate and
// reports how many were removed. Order of the survivors is preserved.
func (h *Handle) RemoveConstraints(match func(*Constraint) bool) int {
	kept := h.constraints[:0]
	removed := 0
	for _, c := range h.constraints {
		if match(c) {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	h.constraints = kept
	return removed
}

// SetObjective replaces the model's objective wholesale.
func (h *Handle) SetObjective(obj *Objective) {
	h.objective = obj
}

// Objective returns the current objective, or nil if none is set.
func (h *Handle) Objective() *Objective {
	return h.objective
}

// Eval computes the value of a linear expression under an assignment.
// Unassigned variables count as zero.
func Eval(terms []Term, values map[string]float64) float64 {
	total := 0.0
	for _, term := range terms {
		total += term.Coef * values[term.Var]
	}
	return total
}

// Satisfied reports whether the constraint holds under the assignment,
// within a small tolerance.
func (c *Constraint) Satisfied(values map[string]float64) bool {
	const eps = 1e-9
	lhs := Eval(c.Terms, values)
	switch c.Relation {
	case LessEqual:
		return lhs <= c.RHS+eps
	case GreaterEqual:
		return lhs >= c.RHS-eps
	case Equal:
		return math.Abs(lhs-c.RHS) <= eps
	default:
		panic(fmt.Sprintf("unhandled relation %q", c.Relation))
	}
}
