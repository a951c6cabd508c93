package workforce

import (
	"context"

	"github.com/vk/optspec/internal/model"
	"github.com/vk/optspec/internal/spec"
)

// MinimizeCost replaces the objective with the total monthly hiring cost.
// This is also the template's default, so selecting it explicitly is a
// no-op kept for configurations that want to name their objective.
func MinimizeCost(ctx context.Context, h *model.Handle, s *spec.Specification, a map[string]any) error {
	candidates, err := indexMembers(s, "candidates")
	if err != nil {
		return err
	}
	obj, err := costObjective(s, candidates)
	if err != nil {
		return err
	}
	h.SetObjective(obj)
	return nil
}

// MinimizeHeadcount replaces the objective with the plain number of hired
// candidates, ignoring cost.
func MinimizeHeadcount(ctx context.Context, h *model.Handle, s *spec.Specification, a map[string]any) error {
	candidates, err := indexMembers(s, "candidates")
	if err != nil {
		return err
	}
	terms := make([]model.Term, 0, len(candidates))
	for _, c := range candidates {
		terms = append(terms, model.Term{Coef: 1, Var: hireVar(c)})
	}
	h.SetObjective(&model.Objective{Sense: model.Minimize, Terms: terms})
	return nil
}
