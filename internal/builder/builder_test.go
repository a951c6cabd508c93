package builder

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/optspec/internal/args"
	"github.com/vk/optspec/internal/model"
	"github.com/vk/optspec/internal/registry"
	"github.com/vk/optspec/internal/source"
	"github.com/vk/optspec/internal/spec"
)

func newTestBuilder(t *testing.T, reg *registry.Registry) *Builder {
	t.Helper()
	loader := source.NewLoader(source.NewCallables())
	t.Cleanup(func() { loader.Close() })
	return New(loader, reg)
}

// oneVarTemplate registers a template producing a single binary variable x.
func oneVarTemplate(reg *registry.Registry) {
	reg.RegisterTemplate("one_var", func(ctx context.Context, s *spec.Specification) (*model.Handle, error) {
		h := model.NewHandle()
		if _, err := h.AddBinary("x"); err != nil {
			return nil, err
		}
		return h, nil
	})
}

func buildSpec(t *testing.T, template string, overrides map[spec.Phase][]spec.Override) *spec.Specification {
	t.Helper()
	s, err := spec.New(template, nil, nil, nil, overrides)
	require.NoError(t, err)
	return s
}

func TestBuildMissingTemplate(t *testing.T) {
	reg := registry.New()
	b := newTestBuilder(t, reg)

	_, err := b.Build(context.Background(), buildSpec(t, "ghost", nil))

	var buildErr *BuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Equal(t, KindMissingCapability, buildErr.Kind)

	var nf *registry.NotFoundError
	require.ErrorAs(t, err, &nf, "registry error stays reachable through the wrap")
	assert.Equal(t, "ghost", nf.Name)
}

func TestBuildMissingConstraint(t *testing.T) {
	reg := registry.New()
	oneVarTemplate(reg)
	b := newTestBuilder(t, reg)

	s := buildSpec(t, "one_var", map[spec.Phase][]spec.Override{
		spec.PhaseConstraints: {{Target: "ghost_constraint"}},
	})
	_, err := b.Build(context.Background(), s)

	var buildErr *BuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Equal(t, KindMissingCapability, buildErr.Kind)
	assert.Equal(t, "ghost_constraint", buildErr.Subject)
}

func TestBuildConstraintOrderIsDeclarationOrder(t *testing.T) {
	reg := registry.New()
	oneVarTemplate(reg)
	reg.RegisterConstraint("forbid_x", func(ctx context.Context, h *model.Handle, s *spec.Specification, a map[string]any) error {
		return h.AddConstraint(&model.Constraint{
			Label:    "forbid:x",
			Terms:    []model.Term{{Coef: 1, Var: "x"}},
			Relation: model.Equal,
			RHS:      0,
		})
	})
	reg.RegisterConstraint("allow_x", func(ctx context.Context, h *model.Handle, s *spec.Specification, a map[string]any) error {
		h.RemoveConstraints(func(c *model.Constraint) bool { return c.Label == "forbid:x" })
		return nil
	})
	b := newTestBuilder(t, reg)

	forbidThenAllow := buildSpec(t, "one_var", map[spec.Phase][]spec.Override{
		spec.PhaseConstraints: {{Target: "forbid_x"}, {Target: "allow_x"}},
	})
	h, err := b.Build(context.Background(), forbidThenAllow)
	require.NoError(t, err)
	assert.Empty(t, h.Constraints(), "allow applied after forbid lifts it")

	allowThenForbid := buildSpec(t, "one_var", map[spec.Phase][]spec.Override{
		spec.PhaseConstraints: {{Target: "allow_x"}, {Target: "forbid_x"}},
	})
	h, err = b.Build(context.Background(), allowThenForbid)
	require.NoError(t, err)
	require.Len(t, h.Constraints(), 1, "forbid applied after allow sticks")
	assert.Equal(t, "forbid:x", h.Constraints()[0].Label)
}

func TestBuildOnlyFirstObjectiveApplies(t *testing.T) {
	reg := registry.New()
	oneVarTemplate(reg)
	registerObjective := func(id string, constant float64) {
		reg.RegisterObjective(id, func(ctx context.Context, h *model.Handle, s *spec.Specification, a map[string]any) error {
			h.SetObjective(&model.Objective{Sense: model.Minimize, Constant: constant})
			return nil
		})
	}
	registerObjective("first", 1)
	registerObjective("second", 2)
	b := newTestBuilder(t, reg)

	s := buildSpec(t, "one_var", map[spec.Phase][]spec.Override{
		spec.PhaseObjective: {{Target: "first"}, {Target: "second"}},
	})
	h, err := b.Build(context.Background(), s)
	require.NoError(t, err)

	require.NotNil(t, h.Objective())
	assert.Equal(t, 1.0, h.Objective().Constant, "second objective override must have no effect")
}

func TestBuildInvalidOverrideArgs(t *testing.T) {
	reg := registry.New()
	oneVarTemplate(reg)
	reg.RegisterConstraint("needs_limit", func(ctx context.Context, h *model.Handle, s *spec.Specification, a map[string]any) error {
		_, err := args.Float(a, "limit")
		return err
	})
	b := newTestBuilder(t, reg)

	s := buildSpec(t, "one_var", map[spec.Phase][]spec.Override{
		spec.PhaseConstraints: {{Target: "needs_limit", Args: map[string]any{"limit": "three"}}},
	})
	_, err := b.Build(context.Background(), s)

	var buildErr *BuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Equal(t, KindInvalidOverrideArgs, buildErr.Kind)
	assert.Equal(t, "needs_limit", buildErr.Subject)
}

func TestBuildCapabilityFailure(t *testing.T) {
	reg := registry.New()
	oneVarTemplate(reg)
	reg.RegisterConstraint("boom", func(ctx context.Context, h *model.Handle, s *spec.Specification, a map[string]any) error {
		return fmt.Errorf("kaput")
	})
	b := newTestBuilder(t, reg)

	s := buildSpec(t, "one_var", map[spec.Phase][]spec.Override{
		spec.PhaseConstraints: {{Target: "boom"}},
	})
	_, err := b.Build(context.Background(), s)

	var buildErr *BuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Equal(t, KindCapabilityFailed, buildErr.Kind)
}

func TestMaterializeLeavesInputUntouched(t *testing.T) {
	reg := registry.New()
	b := newTestBuilder(t, reg)

	demand, err := spec.NewTableParameter([]string{"day", "count"},
		spec.NewLiteralSource([]any{map[string]any{"day": "2025-01-01", "count": 1.0}}))
	require.NoError(t, err)
	s, err := spec.New("t", nil, map[string]*spec.Parameter{"demand": demand}, nil, nil)
	require.NoError(t, err)

	materialized, err := b.Materialize(context.Background(), s)
	require.NoError(t, err)

	assert.True(t, materialized.Parameters["demand"].Materialized())
	assert.Equal(t, [][]any{{"2025-01-01", 1.0}}, materialized.Parameters["demand"].Rows)
	assert.False(t, s.Parameters["demand"].Materialized(), "caller's specification gained data")
}

func TestMaterializeSkipsCachedData(t *testing.T) {
	reg := registry.New()
	b := newTestBuilder(t, reg)

	// Source points at a file that does not exist; the cached rows mean
	// it must never be consulted.
	src, err := spec.NewCSVSource(filepath.Join(t.TempDir(), "absent.csv"), nil)
	require.NoError(t, err)
	demand, err := spec.NewTableParameter([]string{"day"}, src)
	require.NoError(t, err)
	s, err := spec.New("t", nil, map[string]*spec.Parameter{"demand": demand}, nil, nil)
	require.NoError(t, err)
	s = s.WithTableRows("demand", [][]any{{"2025-01-01"}})

	materialized, err := b.Materialize(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"2025-01-01"}}, materialized.Parameters["demand"].Rows)
}

func TestMaterializeSourceFailure(t *testing.T) {
	reg := registry.New()
	b := newTestBuilder(t, reg)

	src, err := spec.NewCSVSource(filepath.Join(t.TempDir(), "absent.csv"), nil)
	require.NoError(t, err)
	demand, err := spec.NewTableParameter([]string{"day"}, src)
	require.NoError(t, err)
	s, err := spec.New("t", nil, map[string]*spec.Parameter{"demand": demand}, nil, nil)
	require.NoError(t, err)

	_, err = b.Materialize(context.Background(), s)

	var buildErr *BuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Equal(t, KindSourceLoad, buildErr.Kind)

	var loadErr *source.LoadError
	require.ErrorAs(t, err, &loadErr, "source error stays reachable through the wrap")
	assert.Equal(t, source.KindNotFound, loadErr.Kind)
}
