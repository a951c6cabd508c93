package session

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/vk/optspec/internal/builder"
	"github.com/vk/optspec/internal/ctxlog"
	"github.com/vk/optspec/internal/patch"
	"github.com/vk/optspec/internal/solver"
	"github.com/vk/optspec/internal/spec"
)

// NotFoundError reports an unknown session id.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no session with id %q", e.ID)
}

// NoSolutionError reports that a session has no cached solve result,
// either because it was never solved or because a patch evicted it.
type NoSolutionError struct {
	ID string
}

func (e *NoSolutionError) Error() string {
	return fmt.Sprintf("session %q has no solution; solve it first", e.ID)
}

// Summary is the listing view of a session.
type Summary struct {
	ID       string `json:"id"`
	Template string `json:"template"`
	Status   Status `json:"status"`
}

// Metrics receives lifecycle events from the store. Implementations
// must be safe for concurrent use.
type Metrics interface {
	SessionCreated()
	SessionDeleted()
	PatchApplied()
	PatchRejected()
	ModelBuilt()
	SolveFinished(status string, seconds float64)
}

type nopMetrics struct{}

func (nopMetrics) SessionCreated()               {}
func (nopMetrics) SessionDeleted()               {}
func (nopMetrics) PatchApplied()                 {}
func (nopMetrics) PatchRejected()                {}
func (nopMetrics) ModelBuilt()                   {}
func (nopMetrics) SolveFinished(string, float64) {}

// Store owns every session. It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	builder *builder.Builder
	solver  solver.Solver
	metrics Metrics
}

// NewStore creates an empty store wired to a builder and a solver.
// A nil metrics argument disables instrumentation.
func NewStore(b *builder.Builder, s solver.Solver, m Metrics) *Store {
	if m == nil {
		m = nopMetrics{}
	}
	return &Store{
		sessions: make(map[string]*Session),
		builder:  b,
		solver:   s,
		metrics:  m,
	}
}

// Create registers a new session around a parsed specification.
func (st *Store) Create(ctx context.Context, sp *spec.Specification) *Session {
	s := &Session{
		ID:      uuid.NewString(),
		current: sp,
		status:  StatusCreated,
	}
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()

	st.metrics.SessionCreated()
	ctxlog.FromContext(ctx).Info("Session created.", "session", s.ID, "template", sp.Template)
	return s
}

// Get returns the session with the given id.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return s, nil
}

// List returns a summary per session, ordered by id for stable output.
func (st *Store) List() []Summary {
	st.mu.RLock()
	sessions := make([]*Session, 0, len(st.sessions))
	for _, s := range st.sessions {
		sessions = append(sessions, s)
	}
	st.mu.RUnlock()

	summaries := make([]Summary, 0, len(sessions))
	for _, s := range sessions {
		summaries = append(summaries, s.summary())
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID < summaries[j].ID })
	return summaries
}

// Delete removes the session with the given id.
func (st *Store) Delete(ctx context.Context, id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return &NotFoundError{ID: id}
	}
	delete(st.sessions, id)
	st.metrics.SessionDeleted()
	ctxlog.FromContext(ctx).Info("Session deleted.", "session", id)
	return nil
}

// Patch applies the given patches in order, atomically: either all apply
// and the session moves to updated with its caches evicted, or none
// apply and the session is left exactly as it was. The update transition
// is unconditional from every prior state.
func (st *Store) Patch(ctx context.Context, id string, patches []patch.Patch) (Status, error) {
	s, err := st.Get(id)
	if err != nil {
		return "", err
	}

	s.op.Lock()
	defer s.op.Unlock()

	next := s.Spec()
	for _, p := range patches {
		next, err = patch.Apply(next, p)
		if err != nil {
			st.metrics.PatchRejected()
			return s.Status(), err
		}
	}

	s.state.Lock()
	s.current = next
	s.status = StatusUpdated
	s.lastErr = nil
	s.invalidateLocked()
	s.state.Unlock()

	st.metrics.PatchApplied()
	ctxlog.FromContext(ctx).Info("Session patched.", "session", id, "patches", len(patches))
	return StatusUpdated, nil
}

// Solve builds the session's model if no cached handle is present, then
// solves it and caches the result. Rebuilding the decision structure is
// the expensive step, so a cached handle is re-solved rather than
// rebuilt. A solver Result of any status (including infeasible) moves the
// session to solved; only a build or solver error moves it to error.
func (st *Store) Solve(ctx context.Context, id string) (*solver.Result, error) {
	s, err := st.Get(id)
	if err != nil {
		return nil, err
	}
	logger := ctxlog.FromContext(ctx)

	s.op.Lock()
	defer s.op.Unlock()

	s.state.Lock()
	sp, handle := s.current, s.handle
	s.state.Unlock()

	if handle == nil {
		logger.Debug("Building model.", "session", id, "template", sp.Template)
		handle, err = st.builder.Build(ctx, sp)
		if err != nil {
			s.fail(err)
			return nil, err
		}
		s.state.Lock()
		s.handle = handle
		s.state.Unlock()
		st.metrics.ModelBuilt()
	} else {
		logger.Debug("Reusing cached model.", "session", id)
	}

	result, err := st.solver.Solve(ctx, handle)
	if err != nil {
		s.fail(err)
		return nil, err
	}

	s.state.Lock()
	s.result = result
	s.status = StatusSolved
	s.lastErr = nil
	s.state.Unlock()
	st.metrics.SolveFinished(string(result.Status), result.SolveTime.Seconds())
	logger.Info("Session solved.", "session", id, "status", result.Status, "solve_time", result.SolveTime)
	return result, nil
}

// Solution returns the last cached solve result.
func (st *Store) Solution(id string) (*solver.Result, error) {
	s, err := st.Get(id)
	if err != nil {
		return nil, err
	}
	s.state.Lock()
	defer s.state.Unlock()
	if s.result == nil {
		return nil, &NoSolutionError{ID: id}
	}
	return s.result, nil
}
