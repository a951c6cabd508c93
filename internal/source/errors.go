package source

import "fmt"

// LoadErrorKind categorizes a source resolution failure.
type LoadErrorKind string

const (
	KindNotFound       LoadErrorKind = "not_found"
	KindParseFailure   LoadErrorKind = "parse_failure"
	KindKeyPathMissing LoadErrorKind = "key_path_missing"
	KindUnreachable    LoadErrorKind = "unreachable"
	KindCallableFailed LoadErrorKind = "callable_failed"
)

// LoadError is the typed failure of resolving a data source. Subject names
// the path, URL, or callable id involved so the error is actionable
// without log access.
type LoadError struct {
	Kind    LoadErrorKind
	Subject string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("source load failed (%s) for %q: %v", e.Kind, e.Subject, e.Err)
	}
	return fmt.Sprintf("source load failed (%s) for %q", e.Kind, e.Subject)
}

func (e *LoadError) Unwrap() error { return e.Err }

func newLoadError(kind LoadErrorKind, subject string, err error) *LoadError {
	return &LoadError{Kind: kind, Subject: subject, Err: err}
}
