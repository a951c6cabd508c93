package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/optspec/internal/patch"
	"github.com/vk/optspec/internal/testutil"
)

const countingDoc = `
template: counting_template
overrides:
  constraints:
    - name: first
      target: counting_constraint_a
    - name: second
      target: counting_constraint_b
  objective:
    - name: primary
      target: counting_objective_a
    - name: ignored
      target: counting_objective_b
`

// Test for: constraint overrides run in declared order and only the first
// objective override runs at all.
func TestBuild_OverrideOrdering(t *testing.T) {
	counting := &testutil.CountingModule{}
	h := testutil.SetupHarness(t, counting)
	sess := h.CreateSessionFromYAML(t, countingDoc)

	_, err := h.Store.Solve(h.Ctx, sess.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "obj_a"}, counting.Applied())
}

// Test for: a second solve without an intervening patch reuses the cached
// model instead of rebuilding, and a patch forces the rebuild.
func TestBuild_CachedModelReuse(t *testing.T) {
	counting := &testutil.CountingModule{}
	h := testutil.SetupHarness(t, counting)
	sess := h.CreateSessionFromYAML(t, "template: counting_template\n")
	ctx := h.Ctx

	_, err := h.Store.Solve(ctx, sess.ID)
	require.NoError(t, err)
	_, err = h.Store.Solve(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, counting.TemplateBuilds())

	_, err = h.Store.Patch(ctx, sess.ID, []patch.Patch{
		{Op: patch.OpMerge, Path: []string{"options", "budget"}, Value: 1},
	})
	require.NoError(t, err)
	_, err = h.Store.Solve(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, counting.TemplateBuilds())
}

// Test for: the warning about dropped objective overrides lands in the
// logs.
func TestBuild_IgnoredObjectiveIsLogged(t *testing.T) {
	counting := &testutil.CountingModule{}
	h := testutil.SetupHarness(t, counting)
	sess := h.CreateSessionFromYAML(t, countingDoc)

	_, err := h.Store.Solve(h.Ctx, sess.ID)
	require.NoError(t, err)

	assert.Contains(t, h.Logs.String(), "Ignoring additional objective overrides")
}
