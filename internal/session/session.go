package session

import (
	"sync"

	"github.com/vk/optspec/internal/model"
	"github.com/vk/optspec/internal/solver"
	"github.com/vk/optspec/internal/spec"
)

// Status is a session's lifecycle state. There is no terminal state; a
// session cycles through updated/solved/error until deleted.
type Status string

const (
	StatusCreated Status = "created"
	StatusUpdated Status = "updated"
	StatusSolved  Status = "solved"
	StatusError   Status = "error"
)

// Session is the unit of external interaction. Two locks split the
// concerns: op serializes patch and solve against each other, while
// state guards the fields and is never held across a build or solve.
// Readers take only state, so a summary of one session is available
// while its own (or any other session's) solve is still running; the
// answer they get is the pre-solve state, which is correct until the
// solve commits.
type Session struct {
	ID string

	op    sync.Mutex
	state sync.Mutex

	current *spec.Specification
	handle  *model.Handle
	result  *solver.Result
	status  Status
	lastErr error
}

// Spec returns the session's current specification.
func (s *Session) Spec() *spec.Specification {
	s.state.Lock()
	defer s.state.Unlock()
	return s.current
}

// Status returns the session's lifecycle state.
func (s *Session) Status() Status {
	s.state.Lock()
	defer s.state.Unlock()
	return s.status
}

// Err returns the retained failure detail of the last build or solve, or
// nil when the session is not in the error state.
func (s *Session) Err() error {
	s.state.Lock()
	defer s.state.Unlock()
	return s.lastErr
}

// summary reads the listing fields in one critical section.
func (s *Session) summary() Summary {
	s.state.Lock()
	defer s.state.Unlock()
	return Summary{ID: s.ID, Template: s.current.Template, Status: s.status}
}

// fail records a build or solve error, moving the session to the error
// state and dropping cached artifacts. Callers hold s.op.
func (s *Session) fail(err error) {
	s.state.Lock()
	defer s.state.Unlock()
	s.status = StatusError
	s.lastErr = err
	s.invalidateLocked()
}

// invalidateLocked drops cached artifacts. Callers hold s.state.
func (s *Session) invalidateLocked() {
	s.handle = nil
	s.result = nil
}
