package workforce

import (
	"context"
	"fmt"

	"github.com/vk/optspec/internal/args"
	"github.com/vk/optspec/internal/ctxlog"
	"github.com/vk/optspec/internal/model"
	"github.com/vk/optspec/internal/spec"
)

// Variable naming scheme shared by the template and every override.
func hireVar(candidate string) string {
	return fmt.Sprintf("hire[%s]", candidate)
}

func assignVar(candidate, day, skill string) string {
	return fmt.Sprintf("assign[%s,%s,%s]", candidate, day, skill)
}

// BuildSchedule is the workforce_scheduling template. It creates one hire
// decision per candidate and one assignment decision per eligible
// candidate/day/skill combination, links assignments to hiring, covers
// the demand table, and installs the cost-minimizing default objective.
func BuildSchedule(ctx context.Context, s *spec.Specification) (*model.Handle, error) {
	logger := ctxlog.FromContext(ctx)

	candidates, err := indexMembers(s, "candidates")
	if err != nil {
		return nil, err
	}
	skills, err := indexMembers(s, "skills")
	if err != nil {
		return nil, err
	}
	days, err := indexMembers(s, "days")
	if err != nil {
		return nil, err
	}

	eligible, err := eligibleSkills(s)
	if err != nil {
		return nil, err
	}

	h := model.NewHandle()

	for _, c := range candidates {
		if _, err := h.AddBinary(hireVar(c)); err != nil {
			return nil, err
		}
	}

	// Assignment variables exist only for candidate/skill pairs granted by
	// candidate_skills; an ineligible pair has no decision to make.
	for _, c := range candidates {
		for _, sk := range skills {
			if !eligible[c][sk] {
				continue
			}
			for _, d := range days {
				name := assignVar(c, d, sk)
				if _, err := h.AddBinary(name); err != nil {
					return nil, err
				}
				err := h.AddConstraint(&model.Constraint{
					Label:    fmt.Sprintf("link[%s]", name),
					Terms:    []model.Term{{Coef: 1, Var: name}, {Coef: -1, Var: hireVar(c)}},
					Relation: model.LessEqual,
					RHS:      0,
				})
				if err != nil {
					return nil, err
				}
			}
		}
	}

	if err := coverDemand(s, h, candidates, eligible); err != nil {
		return nil, err
	}

	obj, err := costObjective(s, candidates)
	if err != nil {
		return nil, err
	}
	h.SetObjective(obj)

	logger.Debug("Workforce model built.",
		"candidates", len(candidates), "skills", len(skills), "days", len(days),
		"variables", len(h.Vars()), "constraints", len(h.Constraints()))
	return h, nil
}

func indexMembers(s *spec.Specification, name string) ([]string, error) {
	ix, err := s.Index(name)
	if err != nil {
		return nil, err
	}
	return ix.Members(), nil
}

// eligibleSkills reads the candidate_skills table into a candidate -> skill
// set lookup.
func eligibleSkills(s *spec.Specification) (map[string]map[string]bool, error) {
	p, err := s.Parameter("candidate_skills")
	if err != nil {
		return nil, err
	}
	candidateCol, err := column(p, "candidate")
	if err != nil {
		return nil, err
	}
	skillCol, err := column(p, "skill")
	if err != nil {
		return nil, err
	}

	eligible := make(map[string]map[string]bool)
	for i := range p.Rows {
		c, err := cellString(p, i, candidateCol)
		if err != nil {
			return nil, err
		}
		sk, err := cellString(p, i, skillCol)
		if err != nil {
			return nil, err
		}
		if eligible[c] == nil {
			eligible[c] = make(map[string]bool)
		}
		eligible[c][sk] = true
	}
	return eligible, nil
}

// coverDemand adds one covering constraint per demand row: at least count
// eligible candidates assigned to that day and skill. A demanded skill no
// candidate holds yields a constraint with no terms, which the solver
// reports as infeasible rather than ignoring.
func coverDemand(s *spec.Specification, h *model.Handle, candidates []string, eligible map[string]map[string]bool) error {
	p, err := s.Parameter("demand")
	if err != nil {
		return err
	}
	dayCol, err := column(p, "day")
	if err != nil {
		return err
	}
	skillCol, err := column(p, "skill")
	if err != nil {
		return err
	}
	countCol, err := column(p, "count")
	if err != nil {
		return err
	}

	for i := range p.Rows {
		day, err := cellString(p, i, dayCol)
		if err != nil {
			return err
		}
		sk, err := cellString(p, i, skillCol)
		if err != nil {
			return err
		}
		count, err := cellFloat(p, i, countCol)
		if err != nil {
			return err
		}

		var terms []model.Term
		for _, c := range candidates {
			if eligible[c][sk] {
				terms = append(terms, model.Term{Coef: 1, Var: assignVar(c, day, sk)})
			}
		}
		err = h.AddConstraint(&model.Constraint{
			Label:    fmt.Sprintf("demand[%s,%s]", day, sk),
			Terms:    terms,
			Relation: model.GreaterEqual,
			RHS:      count,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// costObjective builds the minimize-total-hiring-cost objective from the
// cost_month mapping. Hiring is a one-time monthly cost per candidate,
// independent of how many days they end up assigned.
func costObjective(s *spec.Specification, candidates []string) (*model.Objective, error) {
	p, err := s.Parameter("cost_month")
	if err != nil {
		return nil, err
	}
	terms := make([]model.Term, 0, len(candidates))
	for _, c := range candidates {
		raw, ok := p.Map[c]
		if !ok {
			return nil, fmt.Errorf("cost_month has no entry for candidate %q", c)
		}
		cost, ok := args.AsFloat(raw)
		if !ok {
			return nil, fmt.Errorf("cost_month entry for %q is not a number (%T)", c, raw)
		}
		terms = append(terms, model.Term{Coef: cost, Var: hireVar(c)})
	}
	return &model.Objective{Sense: model.Minimize, Terms: terms}, nil
}

// column resolves a schema column name to its position.
func column(p *spec.Parameter, name string) (int, error) {
	for i, col := range p.Schema {
		if col == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("table is missing column %q (have %v)", name, p.Schema)
}

func cellString(p *spec.Parameter, row, col int) (string, error) {
	if col >= len(p.Rows[row]) {
		return "", fmt.Errorf("row %d is shorter than the declared schema", row)
	}
	s, ok := p.Rows[row][col].(string)
	if !ok {
		return "", fmt.Errorf("row %d column %q: expected a string, got %T", row, p.Schema[col], p.Rows[row][col])
	}
	return s, nil
}

func cellFloat(p *spec.Parameter, row, col int) (float64, error) {
	if col >= len(p.Rows[row]) {
		return 0, fmt.Errorf("row %d is shorter than the declared schema", row)
	}
	f, ok := args.AsFloat(p.Rows[row][col])
	if !ok {
		return 0, fmt.Errorf("row %d column %q: expected a number, got %T", row, p.Schema[col], p.Rows[row][col])
	}
	return f, nil
}
