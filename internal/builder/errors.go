package builder

import "fmt"

// ErrorKind categorizes a build failure.
type ErrorKind string

const (
	KindMissingCapability   ErrorKind = "missing_capability"
	KindInvalidOverrideArgs ErrorKind = "invalid_override_args"
	KindSourceLoad          ErrorKind = "source_load"
	KindCapabilityFailed    ErrorKind = "capability_failed"
)

// BuildError wraps a failure encountered while assembling a model.
// Subject names the parameter, template, or override target involved.
type BuildError struct {
	Kind    ErrorKind
	Subject string
	Err     error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build failed (%s) at %q: %v", e.Kind, e.Subject, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

func newBuildError(kind ErrorKind, subject string, err error) *BuildError {
	return &BuildError{Kind: kind, Subject: subject, Err: err}
}
