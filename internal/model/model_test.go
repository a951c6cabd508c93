package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVarRegistry(t *testing.T) {
	h := NewHandle()
	_, err := h.AddBinary("hire[alice]")
	require.NoError(t, err)
	_, err = h.AddBinary("hire[bob]")
	require.NoError(t, err)

	assert.Equal(t, []string{"hire[alice]", "hire[bob]"}, h.VarNames())

	v, ok := h.Var("hire[alice]")
	require.True(t, ok)
	assert.Equal(t, Binary, v.Type)

	_, err = h.AddBinary("hire[alice]")
	require.Error(t, err, "duplicate names are rejected")
}

func TestAddVarValidatesBounds(t *testing.T) {
	h := NewHandle()
	_, err := h.AddVar(&Var{Name: "x", Type: Integer, Lower: 2, Upper: 1})
	require.Error(t, err)
	_, err = h.AddVar(&Var{Type: Binary, Upper: 1})
	require.Error(t, err, "empty name is rejected")
}

func TestAddConstraintRequiresKnownVars(t *testing.T) {
	h := NewHandle()
	_, err := h.AddBinary("x")
	require.NoError(t, err)

	err = h.AddConstraint(&Constraint{
		Label:    "bad",
		Terms:    []Term{{Coef: 1, Var: "ghost"}},
		Relation: LessEqual,
		RHS:      1,
	})
	require.ErrorContains(t, err, "ghost")
}

func TestRemoveConstraints(t *testing.T) {
	h := NewHandle()
	_, err := h.AddBinary("x")
	require.NoError(t, err)

	for _, label := range []string{"forbid:x", "cover:a", "forbid:y"} {
		require.NoError(t, h.AddConstraint(&Constraint{
			Label: label, Terms: []Term{{Coef: 1, Var: "x"}}, Relation: LessEqual, RHS: 1,
		}))
	}

	removed := h.RemoveConstraints(func(c *Constraint) bool {
		return c.Label == "forbid:x" || c.Label == "forbid:y"
	})
	assert.Equal(t, 2, removed)
	require.Len(t, h.Constraints(), 1)
	assert.Equal(t, "cover:a", h.Constraints()[0].Label)
}

func TestConstraintSatisfied(t *testing.T) {
	c := &Constraint{
		Terms:    []Term{{Coef: 1, Var: "x"}, {Coef: 2, Var: "y"}},
		Relation: GreaterEqual,
		RHS:      3,
	}
	assert.True(t, c.Satisfied(map[string]float64{"x": 1, "y": 1}))
	assert.False(t, c.Satisfied(map[string]float64{"x": 1}))

	eq := &Constraint{Terms: []Term{{Coef: 1, Var: "x"}}, Relation: Equal, RHS: 1}
	assert.True(t, eq.Satisfied(map[string]float64{"x": 1}))
	assert.False(t, eq.Satisfied(map[string]float64{"x": 0}))
}
