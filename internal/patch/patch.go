package patch

import (
	"fmt"
	"strings"

	"github.com/vk/optspec/internal/codec"
	"github.com/vk/optspec/internal/spec"
)

// Op names a patch operation.
type Op string

const (
	OpMerge   Op = "merge"
	OpReplace Op = "replace"
	OpDelete  Op = "delete"
)

// Patch is one structural edit: an operation, a path locating a node in
// the specification tree, and the value to put there.
type Patch struct {
	Op    Op       `json:"op"`
	Path  []string `json:"path"`
	Value any      `json:"value"`
}

// ErrorKind categorizes a patch failure.
type ErrorKind string

const (
	KindInvalidPath    ErrorKind = "invalid_path"
	KindSchemaMismatch ErrorKind = "schema_mismatch"
	KindUnsupportedOp  ErrorKind = "unsupported_op"
)

// Error reports why a patch could not be applied.
type Error struct {
	Kind   ErrorKind
	Path   string
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("patch failed (%s) at %q: %s", e.Kind, e.Path, e.Detail)
}

func newError(kind ErrorKind, path []string, format string, a ...any) *Error {
	return &Error{Kind: kind, Path: strings.Join(path, "."), Detail: fmt.Sprintf(format, a...)}
}

// Apply produces a new Specification with the patch applied. The input is
// never mutated; a holder of s observes no change.
func Apply(s *spec.Specification, p Patch) (*spec.Specification, error) {
	switch p.Op {
	case OpMerge:
	case OpReplace, OpDelete:
		return nil, newError(KindUnsupportedOp, p.Path, "operation %q has no defined semantics yet", p.Op)
	default:
		return nil, newError(KindUnsupportedOp, p.Path, "unknown operation %q", p.Op)
	}

	if len(p.Path) != 2 {
		return nil, newError(KindInvalidPath, p.Path, "path must have exactly two segments (section, name)")
	}
	section, name := p.Path[0], p.Path[1]

	switch section {
	case "parameters":
		return mergeParameter(s, name, p)
	case "options":
		return s.WithOption(name, p.Value), nil
	case "indexes":
		ix, err := codec.DecodeIndex(p.Value, strings.Join(p.Path, "."))
		if err != nil {
			return nil, newError(KindInvalidPath, p.Path, "replacement index is malformed: %v", err)
		}
		return s.WithIndex(name, ix), nil
	case "overrides":
		phase := spec.Phase(name)
		if phase != spec.PhaseConstraints && phase != spec.PhaseObjective {
			return nil, newError(KindInvalidPath, p.Path, "unknown override phase %q", name)
		}
		list, err := codec.DecodeOverrides(p.Value, strings.Join(p.Path, "."))
		if err != nil {
			return nil, newError(KindInvalidPath, p.Path, "replacement overrides are malformed: %v", err)
		}
		return s.WithOverrides(phase, list), nil
	default:
		return nil, newError(KindInvalidPath, p.Path, "section %q is not patchable", section)
	}
}

// mergeParameter injects literal replacement data into a Table or Mapping
// parameter's cache. This is the supported path for what-if data without
// touching the original source; the next build will use the injected data
// instead of re-fetching.
func mergeParameter(s *spec.Specification, name string, p Patch) (*spec.Specification, error) {
	param, ok := s.Parameters[name]
	if !ok {
		return nil, newError(KindInvalidPath, p.Path, "specification has no parameter %q", name)
	}

	switch param.Kind {
	case spec.ParamTable:
		rows, err := asRows(p.Value)
		if err != nil {
			return nil, newError(KindSchemaMismatch, p.Path, "%v", err)
		}
		for i, row := range rows {
			if len(row) != len(param.Schema) {
				return nil, newError(KindSchemaMismatch, p.Path,
					"row %d has %d cells, schema %v has %d columns", i, len(row), param.Schema, len(param.Schema))
			}
		}
		return s.WithTableRows(name, rows), nil
	case spec.ParamMapping:
		m, ok := p.Value.(map[string]any)
		if !ok {
			return nil, newError(KindSchemaMismatch, p.Path,
				"mapping parameter takes a key-to-value object, got %T", p.Value)
		}
		return s.WithMappingData(name, m), nil
	default:
		return nil, newError(KindInvalidPath, p.Path, "parameter %q is a scalar and is not patchable", name)
	}
}

func asRows(v any) ([][]any, error) {
	switch rows := v.(type) {
	case [][]any:
		return rows, nil
	case []any:
		out := make([][]any, 0, len(rows))
		for i, el := range rows {
			row, ok := el.([]any)
			if !ok {
				return nil, fmt.Errorf("row %d is %T, want a list of cells", i, el)
			}
			out = append(out, row)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("table parameter takes an ordered list of rows, got %T", v)
	}
}
