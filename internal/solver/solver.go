package solver

import (
	"context"
	"time"

	"github.com/vk/optspec/internal/model"
)

// Status is the solver-reported outcome of a solve.
type Status string

const (
	StatusOptimal    Status = "optimal"
	StatusInfeasible Status = "infeasible"
	StatusUnbounded  Status = "unbounded"
	StatusTimeLimit  Status = "time_limit"
)

// Result is what a solve returns. Objective is nil whenever the status is
// not optimal. Values maps every named decision variable to its assigned
// value.
type Result struct {
	Status    Status             `json:"status"`
	Objective *float64           `json:"objective"`
	SolveTime time.Duration      `json:"solve_time"`
	Values    map[string]float64 `json:"values"`
}

// Solver is the opaque capability that turns a built model into a result.
type Solver interface {
	Solve(ctx context.Context, h *model.Handle) (*Result, error)
}
