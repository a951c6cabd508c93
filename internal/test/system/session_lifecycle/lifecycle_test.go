package system

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/optspec/internal/patch"
	"github.com/vk/optspec/internal/session"
	"github.com/vk/optspec/internal/solver"
	"github.com/vk/optspec/internal/testutil"
)

const scheduleDoc = `
template: workforce_scheduling
indexes:
  candidates:
    type: list
    values: [Alice, Bob]
  skills:
    type: list
    values: [kitchen]
  days:
    type: date_range
    start: 2025-06-02
    end: 2025-06-03
parameters:
  demand:
    type: table
    columns: [day, skill, count]
    source:
      type: literal
      data:
        - [2025-06-02, kitchen, 1]
        - [2025-06-03, kitchen, 1]
  candidate_skills:
    type: table
    columns: [candidate, skill]
    source:
      type: literal
      data:
        - [Alice, kitchen]
  cost_month:
    type: mapping
    source:
      type: literal
      data:
        Alice: 100
        Bob: 50
overrides:
  objective:
    - name: cost
      target: minimize_cost
`

// Test for: full create/solve cycle through the wired application.
func TestLifecycle_SolveSchedule(t *testing.T) {
	h := testutil.SetupHarness(t)
	sess := h.CreateSessionFromYAML(t, scheduleDoc)
	ctx := context.Background()

	res, err := h.Store.Solve(ctx, sess.ID)
	require.NoError(t, err)

	assert.Equal(t, session.StatusSolved, sess.Status())
	require.Equal(t, solver.StatusOptimal, res.Status)
	require.NotNil(t, res.Objective)
	assert.Equal(t, 100.0, *res.Objective)
	assert.Equal(t, 1.0, res.Values["assign[Alice,2025-06-02,kitchen]"])
	assert.Equal(t, 1.0, res.Values["assign[Alice,2025-06-03,kitchen]"])
	assert.Equal(t, 0.0, res.Values["hire[Bob]"])
}

// Test for: a patch moves the session to updated and drops the cached
// solution until the next solve.
func TestLifecycle_PatchInvalidatesSolution(t *testing.T) {
	h := testutil.SetupHarness(t)
	sess := h.CreateSessionFromYAML(t, scheduleDoc)
	ctx := context.Background()

	_, err := h.Store.Solve(ctx, sess.ID)
	require.NoError(t, err)

	status, err := h.Store.Patch(ctx, sess.ID, []patch.Patch{
		{Op: patch.OpMerge, Path: []string{"options", "max_daily_assignments"}, Value: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, session.StatusUpdated, status)

	_, err = h.Store.Solution(sess.ID)
	var noSol *session.NoSolutionError
	require.ErrorAs(t, err, &noSol)

	res, err := h.Store.Solve(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, solver.StatusOptimal, res.Status)
	assert.Equal(t, session.StatusSolved, sess.Status())
}

// Test for: a what-if patch on demand data changes the solve outcome.
func TestLifecycle_WhatIfDemandPatch(t *testing.T) {
	h := testutil.SetupHarness(t)
	sess := h.CreateSessionFromYAML(t, scheduleDoc)
	ctx := context.Background()

	// Demand two kitchen workers on a day only Alice can cover.
	_, err := h.Store.Patch(ctx, sess.ID, []patch.Patch{
		{Op: patch.OpMerge, Path: []string{"parameters", "demand"}, Value: []any{
			[]any{"2025-06-02", "kitchen", 2},
			[]any{"2025-06-03", "kitchen", 1},
		}},
	})
	require.NoError(t, err)

	res, err := h.Store.Solve(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, solver.StatusInfeasible, res.Status)
	assert.Equal(t, session.StatusSolved, sess.Status(), "an infeasible result is still a completed solve")
}
