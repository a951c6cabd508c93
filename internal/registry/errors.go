package registry

import "fmt"

// NotFoundError reports a lookup miss. Registered carries the exact
// sorted id set of the namespace at lookup time so the caller can
// self-diagnose without consulting logs.
type NotFoundError struct {
	Namespace  Namespace
	Name       string
	Registered []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s capability registered as %q (registered: %v)",
		e.Namespace, e.Name, e.Registered)
}
