package solver

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/vk/optspec/internal/ctxlog"
	"github.com/vk/optspec/internal/model"
)

// BranchBound is an exact depth-first search over the integer variables
// of a model, with relational and objective-bound pruning. It is meant
// for the moderately sized models the reference templates produce; a
// model too large for it hits the node limit and reports that as a
// time-limit status rather than an error.
type BranchBound struct {
	// MaxNodes caps the search tree. Zero means the default.
	MaxNodes int
}

const defaultMaxNodes = 5_000_000

// NewBranchBound creates a solver with the default node limit.
func NewBranchBound() *BranchBound {
	return &BranchBound{MaxNodes: defaultMaxNodes}
}

type search struct {
	vars       []*model.Var
	byName     map[string]*model.Var
	cons       []*model.Constraint
	objective  *model.Objective
	values     map[string]float64
	best       map[string]float64
	bestVal    float64
	found      bool
	nodes      int
	maxNodes   int
	interrupt  bool
	ctx        context.Context
	// consByVar[i] holds the constraints whose last referenced variable
	// (in branch order) is vars[i]; once vars[0..i] are assigned these
	// can be checked exactly.
	exactAfter [][]*model.Constraint
	// constant holds constraints that reference no variable at all.
	constant []*model.Constraint
}

// Solve runs the search. Variables must have finite bounds; a model with
// an unbounded domain is reported as unbounded.
func (b *BranchBound) Solve(ctx context.Context, h *model.Handle) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	start := time.Now()

	vars := h.Vars()
	for _, v := range vars {
		if v.Type == model.Continuous {
			return nil, fmt.Errorf("variable %q is continuous; the local solver handles integer models only", v.Name)
		}
		if math.IsInf(v.Lower, 0) || math.IsInf(v.Upper, 0) {
			return &Result{Status: StatusUnbounded, SolveTime: time.Since(start)}, nil
		}
	}

	maxNodes := b.MaxNodes
	if maxNodes <= 0 {
		maxNodes = defaultMaxNodes
	}
	byName := make(map[string]*model.Var, len(vars))
	for _, v := range vars {
		byName[v.Name] = v
	}
	s := &search{
		vars:      vars,
		byName:    byName,
		cons:      h.Constraints(),
		objective: h.Objective(),
		values:    make(map[string]float64, len(vars)),
		bestVal:   math.Inf(1),
		maxNodes:  maxNodes,
		ctx:       ctx,
	}
	s.indexConstraints()

	// A constraint referencing no variables is a constant fact; if it does
	// not hold the model can never be satisfied.
	for _, c := range s.constant {
		if !c.Satisfied(nil) {
			return &Result{Status: StatusInfeasible, SolveTime: time.Since(start)}, nil
		}
	}

	s.descend(0)

	elapsed := time.Since(start)
	switch {
	case s.interrupt:
		logger.Warn("Solve hit the node limit.", "nodes", s.nodes)
		return &Result{Status: StatusTimeLimit, SolveTime: elapsed}, nil
	case !s.found:
		return &Result{Status: StatusInfeasible, SolveTime: elapsed}, nil
	}

	result := &Result{Status: StatusOptimal, SolveTime: elapsed, Values: s.best}
	if s.objective != nil {
		obj := model.Eval(s.objective.Terms, s.best) + s.objective.Constant
		result.Objective = &obj
	}
	logger.Debug("Solve finished.", "status", result.Status, "nodes", s.nodes)
	return result, nil
}

// indexConstraints assigns each constraint to the deepest variable it
// references so it is checked exactly as soon as all its variables are
// assigned, and bound-checked before that.
func (s *search) indexConstraints() {
	position := make(map[string]int, len(s.vars))
	for i, v := range s.vars {
		position[v.Name] = i
	}
	s.exactAfter = make([][]*model.Constraint, len(s.vars))
	for _, c := range s.cons {
		deepest := -1
		for _, term := range c.Terms {
			if p := position[term.Var]; p > deepest {
				deepest = p
			}
		}
		if deepest >= 0 {
			s.exactAfter[deepest] = append(s.exactAfter[deepest], c)
		} else {
			s.constant = append(s.constant, c)
		}
	}
}

func (s *search) descend(depth int) {
	if s.interrupt {
		return
	}
	s.nodes++
	if s.nodes > s.maxNodes || s.ctx.Err() != nil {
		s.interrupt = true
		return
	}

	if depth == len(s.vars) {
		s.record()
		return
	}
	if s.objectiveBound() >= s.bestVal {
		return
	}

	v := s.vars[depth]
	for val := v.Lower; val <= v.Upper; val++ {
		s.values[v.Name] = val
		if s.feasibleAt(depth) {
			s.descend(depth + 1)
		}
		if s.interrupt {
			break
		}
	}
	delete(s.values, v.Name)
}

// feasibleAt runs the exact checks that became decidable at this depth.
func (s *search) feasibleAt(depth int) bool {
	for _, c := range s.exactAfter[depth] {
		if !c.Satisfied(s.values) {
			return false
		}
	}
	return true
}

// objectiveBound is an optimistic value of the objective given the
// variables assigned so far: assigned terms contribute exactly, the rest
// contribute their best-case bound. Maximization is handled by negation.
func (s *search) objectiveBound() float64 {
	if s.objective == nil {
		// Pure feasibility: stop after the first complete assignment.
		if s.found {
			return 0
		}
		return math.Inf(-1)
	}

	sign := 1.0
	if s.objective.Sense == model.Maximize {
		sign = -1
	}
	bound := sign * s.objective.Constant
	for _, term := range s.objective.Terms {
		coef := sign * term.Coef
		if val, ok := s.values[term.Var]; ok {
			bound += coef * val
			continue
		}
		v := s.byName[term.Var]
		bound += math.Min(coef*v.Lower, coef*v.Upper)
	}
	return bound
}

func (s *search) record() {
	val := 0.0
	if s.objective != nil {
		val = model.Eval(s.objective.Terms, s.values) + s.objective.Constant
		if s.objective.Sense == model.Maximize {
			val = -val
		}
	} else if s.found {
		return
	}
	if !s.found || val < s.bestVal {
		s.found = true
		s.bestVal = val
		s.best = make(map[string]float64, len(s.values))
		for k, v := range s.values {
			s.best[k] = v
		}
	}
}
