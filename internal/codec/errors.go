package codec

import "fmt"

// ErrorKind categorizes a configuration failure.
type ErrorKind string

const (
	KindSyntax         ErrorKind = "syntax"
	KindMissingField   ErrorKind = "missing_field"
	KindUnknownVariant ErrorKind = "unknown_variant"
	KindInvalidValue   ErrorKind = "invalid_value"
)

// ConfigError is a user-fixable parse or validation failure. Path locates
// the offending node in the configuration tree.
type ConfigError struct {
	Kind   ErrorKind
	Path   string
	Detail string
	Err    error
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config error (%s) at %q: %s", e.Kind, e.Path, e.Detail)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error { return e.Err }

func newConfigError(kind ErrorKind, path, format string, args ...any) *ConfigError {
	return &ConfigError{Kind: kind, Path: path, Detail: fmt.Sprintf(format, args...)}
}
