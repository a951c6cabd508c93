package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// The "-h" (help) flag should cause cli.Parse to return shouldExit=true.
	out := &bytes.Buffer{}
	err := run(context.Background(), out, []string{"-h"})

	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(context.Background(), out, []string{"--this-is-not-a-valid-flag"})

	require.Error(t, err)
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_SolveOnce(t *testing.T) {
	t.Parallel()

	config := `
template: workforce_scheduling
indexes:
  candidates:
    type: list
    values: [alice]
  skills:
    type: list
    values: [support]
  days:
    type: date_range
    start: 2025-06-02
    end: 2025-06-02
parameters:
  demand:
    type: table
    columns: [day, skill, count]
    source:
      type: literal
      data:
        - [2025-06-02, support, 1]
  candidate_skills:
    type: table
    columns: [candidate, skill]
    source:
      type: literal
      data:
        - [alice, support]
  cost_month:
    type: mapping
    source:
      type: literal
      data:
        alice: 50
`
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "schedule.yaml")
	require.NoError(t, os.WriteFile(filePath, []byte(config), 0o600))

	out := &bytes.Buffer{}
	err := run(context.Background(), out, []string{"--log-level", "error", filePath})
	require.NoError(t, err)

	var result struct {
		Status    string   `json:"status"`
		Objective *float64 `json:"objective"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	require.Equal(t, "optimal", result.Status)
	require.NotNil(t, result.Objective)
	require.Equal(t, 50.0, *result.Objective)
}

func TestRun_SolveOnceMalformedSpec(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "broken.yaml")
	require.NoError(t, os.WriteFile(filePath, []byte("options: {}\n"), 0o600))

	out := &bytes.Buffer{}
	err := run(context.Background(), out, []string{filePath})

	require.Error(t, err)
	require.Contains(t, err.Error(), "template")
}
