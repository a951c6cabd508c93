// Package args provides typed extraction of override arguments. Capability
// implementations use it so that a wrong or missing argument surfaces as a
// categorized error the builder can report as invalid override args rather
// than an opaque capability failure.
package args

import "fmt"

// Error reports a missing or ill-typed override argument.
type Error struct {
	Key    string
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("override argument %q: %s", e.Key, e.Detail)
}

// String extracts a required string argument.
func String(m map[string]any, key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", &Error{Key: key, Detail: "required argument is missing"}
	}
	s, ok := v.(string)
	if !ok {
		return "", &Error{Key: key, Detail: fmt.Sprintf("expected a string, got %T", v)}
	}
	return s, nil
}

// OptionalString extracts a string argument, falling back to def when the
// key is absent.
func OptionalString(m map[string]any, key, def string) (string, error) {
	if _, ok := m[key]; !ok {
		return def, nil
	}
	return String(m, key)
}

// Float extracts a required numeric argument. JSON, YAML, and HCL
// frontends produce different Go number types, so all of them are
// accepted.
func Float(m map[string]any, key string) (float64, error) {
	v, ok := m[key]
	if !ok {
		return 0, &Error{Key: key, Detail: "required argument is missing"}
	}
	f, ok := asFloat(v)
	if !ok {
		return 0, &Error{Key: key, Detail: fmt.Sprintf("expected a number, got %T", v)}
	}
	return f, nil
}

// OptionalFloat extracts a numeric argument, falling back to def when the
// key is absent.
func OptionalFloat(m map[string]any, key string, def float64) (float64, error) {
	if _, ok := m[key]; !ok {
		return def, nil
	}
	return Float(m, key)
}

// StringSlice extracts a required list-of-strings argument.
func StringSlice(m map[string]any, key string) ([]string, error) {
	v, ok := m[key]
	if !ok {
		return nil, &Error{Key: key, Detail: "required argument is missing"}
	}
	switch list := v.(type) {
	case []string:
		return list, nil
	case []any:
		out := make([]string, 0, len(list))
		for _, el := range list {
			s, ok := el.(string)
			if !ok {
				return nil, &Error{Key: key, Detail: fmt.Sprintf("expected strings, got %T", el)}
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, &Error{Key: key, Detail: fmt.Sprintf("expected a list of strings, got %T", v)}
	}
}

// AsFloat converts any frontend number representation to float64.
func AsFloat(v any) (float64, bool) {
	return asFloat(v)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
