package registry

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/vk/optspec/internal/model"
	"github.com/vk/optspec/internal/spec"
)

// TemplateFunc builds the base decision structure for a materialized
// specification: variables, intrinsic constraints, and any default
// objective the template defines.
type TemplateFunc func(ctx context.Context, s *spec.Specification) (*model.Handle, error)

// ApplyFunc is a constraint or objective capability. It mutates the
// handle in place using the caller-supplied override args.
type ApplyFunc func(ctx context.Context, h *model.Handle, s *spec.Specification, args map[string]any) error

// Module is the interface capability packs implement to self-register.
type Module interface {
	Register(r *Registry)
}

// Namespace names one of the registry's three capability tables.
type Namespace string

const (
	NamespaceTemplates   Namespace = "templates"
	NamespaceConstraints Namespace = "constraints"
	NamespaceObjectives  Namespace = "objectives"
)

// Registry holds the three name-to-capability tables for a single
// application instance. It is safe for concurrent use.
type Registry struct {
	mu          sync.RWMutex
	templates   map[string]TemplateFunc
	constraints map[string]ApplyFunc
	objectives  map[string]ApplyFunc
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		templates:   make(map[string]TemplateFunc),
		constraints: make(map[string]ApplyFunc),
		objectives:  make(map[string]ApplyFunc),
	}
}

// RegisterTemplate installs a template builder under id, replacing any
// previous registration.
func (r *Registry) RegisterTemplate(id string, fn TemplateFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.templates[id]; exists {
		slog.Debug("Replacing template registration.", "id", id)
	}
	r.templates[id] = fn
}

// RegisterConstraint installs a constraint capability under id, replacing
// any previous registration.
func (r *Registry) RegisterConstraint(id string, fn ApplyFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.constraints[id]; exists {
		slog.Debug("Replacing constraint registration.", "id", id)
	}
	r.constraints[id] = fn
}

// RegisterObjective installs an objective capability under id, replacing
// any previous registration.
func (r *Registry) RegisterObjective(id string, fn ApplyFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.objectives[id]; exists {
		slog.Debug("Replacing objective registration.", "id", id)
	}
	r.objectives[id] = fn
}

// Template resolves a template id.
func (r *Registry) Template(id string) (TemplateFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.templates[id]
	if !ok {
		return nil, r.notFound(NamespaceTemplates, id)
	}
	return fn, nil
}

// Constraint resolves a constraint capability id.
func (r *Registry) Constraint(id string) (ApplyFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.constraints[id]
	if !ok {
		return nil, r.notFound(NamespaceConstraints, id)
	}
	return fn, nil
}

// Objective resolves an objective capability id.
func (r *Registry) Objective(id string) (ApplyFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.objectives[id]
	if !ok {
		return nil, r.notFound(NamespaceObjectives, id)
	}
	return fn, nil
}

// Registered returns the sorted ids currently present in a namespace.
func (r *Registry) Registered(ns Namespace) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.registeredLocked(ns)
}

// registeredLocked requires at least a read lock to be held.
func (r *Registry) registeredLocked(ns Namespace) []string {
	var table map[string]ApplyFunc
	switch ns {
	case NamespaceTemplates:
		ids := make([]string, 0, len(r.templates))
		for id := range r.templates {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		return ids
	case NamespaceConstraints:
		table = r.constraints
	case NamespaceObjectives:
		table = r.objectives
	}
	ids := make([]string, 0, len(table))
	for id := range table {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *Registry) notFound(ns Namespace, id string) *NotFoundError {
	return &NotFoundError{Namespace: ns, Name: id, Registered: r.registeredLocked(ns)}
}
