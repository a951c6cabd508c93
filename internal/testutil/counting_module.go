package testutil

import (
	"context"
	"sync"

	"github.com/vk/optspec/internal/model"
	"github.com/vk/optspec/internal/registry"
	"github.com/vk/optspec/internal/spec"
)

// CountingModule registers a trivial one-variable template plus recording
// constraint and objective capabilities, so tests can assert how often and
// in which order the build pipeline invoked them.
type CountingModule struct {
	mu             sync.Mutex
	templateBuilds int
	applied        []string
}

// Register installs the counting capabilities under the "counting_"
// prefix.
func (m *CountingModule) Register(r *registry.Registry) {
	r.RegisterTemplate("counting_template", func(ctx context.Context, s *spec.Specification) (*model.Handle, error) {
		m.mu.Lock()
		m.templateBuilds++
		m.mu.Unlock()

		h := model.NewHandle()
		if _, err := h.AddBinary("x"); err != nil {
			return nil, err
		}
		if err := h.AddConstraint(&model.Constraint{
			Label: "pick", Terms: []model.Term{{Coef: 1, Var: "x"}},
			Relation: model.GreaterEqual, RHS: 1,
		}); err != nil {
			return nil, err
		}
		h.SetObjective(&model.Objective{Sense: model.Minimize, Terms: []model.Term{{Coef: 1, Var: "x"}}})
		return h, nil
	})

	record := func(tag string) registry.ApplyFunc {
		return func(ctx context.Context, h *model.Handle, s *spec.Specification, args map[string]any) error {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.applied = append(m.applied, tag)
			return nil
		}
	}
	r.RegisterConstraint("counting_constraint_a", record("a"))
	r.RegisterConstraint("counting_constraint_b", record("b"))
	r.RegisterObjective("counting_objective_a", record("obj_a"))
	r.RegisterObjective("counting_objective_b", record("obj_b"))
}

// TemplateBuilds reports how many times the template ran.
func (m *CountingModule) TemplateBuilds() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.templateBuilds
}

// Applied returns the override invocation order observed so far.
func (m *CountingModule) Applied() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.applied))
	copy(out, m.applied)
	return out
}
