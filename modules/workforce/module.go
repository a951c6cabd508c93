package workforce

import (
	"github.com/vk/optspec/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register installs the workforce capabilities.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterTemplate("workforce_scheduling", BuildSchedule)

	r.RegisterConstraint("forbid_assignment", ForbidAssignment)
	r.RegisterConstraint("allow_assignment", AllowAssignment)
	r.RegisterConstraint("max_daily_assignments", MaxDailyAssignments)
	r.RegisterConstraint("time_window", TimeWindow)

	r.RegisterObjective("minimize_cost", MinimizeCost)
	r.RegisterObjective("minimize_headcount", MinimizeHeadcount)
}
