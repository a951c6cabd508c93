package builder

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/optspec/internal/args"
	"github.com/vk/optspec/internal/ctxlog"
	"github.com/vk/optspec/internal/model"
	"github.com/vk/optspec/internal/registry"
	"github.com/vk/optspec/internal/source"
	"github.com/vk/optspec/internal/spec"
)

// Builder turns a specification into a solver-ready model handle through
// the registry's capabilities. It holds no per-build state and is safe
// for concurrent use.
type Builder struct {
	loader   *source.Loader
	registry *registry.Registry
}

// New creates a builder backed by the given loader and registry.
func New(loader *source.Loader, reg *registry.Registry) *Builder {
	return &Builder{loader: loader, registry: reg}
}

// Build runs the full pipeline and returns the resulting model handle.
// The returned handle is opaque to the builder; interpreting it is the
// solver's business.
func (b *Builder) Build(ctx context.Context, s *spec.Specification) (*model.Handle, error) {
	logger := ctxlog.FromContext(ctx)

	materialized, err := b.Materialize(ctx, s)
	if err != nil {
		return nil, err
	}

	templateFn, err := b.registry.Template(materialized.Template)
	if err != nil {
		return nil, newBuildError(KindMissingCapability, materialized.Template, err)
	}
	logger.Debug("Invoking template.", "template", materialized.Template)
	handle, err := templateFn(ctx, materialized)
	if err != nil {
		return nil, b.capabilityError(materialized.Template, err)
	}

	// Constraint overrides are cumulative and order sensitive: each one
	// runs against the state left by the previous one.
	for i, ov := range materialized.Overrides[spec.PhaseConstraints] {
		applyFn, err := b.registry.Constraint(ov.Target)
		if err != nil {
			return nil, newBuildError(KindMissingCapability, ov.Target, err)
		}
		logger.Debug("Applying constraint override.", "position", i, "target", ov.Target, "name", ov.Name)
		if err := applyFn(ctx, handle, materialized, ov.Args); err != nil {
			return nil, b.capabilityError(ov.Target, err)
		}
	}

	// Only the first objective override is applied; any later ones are
	// dropped. Documented policy, pinned by tests.
	if objectives := materialized.Overrides[spec.PhaseObjective]; len(objectives) > 0 {
		ov := objectives[0]
		applyFn, err := b.registry.Objective(ov.Target)
		if err != nil {
			return nil, newBuildError(KindMissingCapability, ov.Target, err)
		}
		logger.Debug("Applying objective override.", "target", ov.Target, "name", ov.Name)
		if err := applyFn(ctx, handle, materialized, ov.Args); err != nil {
			return nil, b.capabilityError(ov.Target, err)
		}
		if len(objectives) > 1 {
			logger.Warn("Ignoring additional objective overrides; only the first applies.",
				"ignored", len(objectives)-1)
		}
	}

	return handle, nil
}

// Materialize resolves every unmaterialized Table and Mapping parameter
// through the source loader. The result is a new Specification value;
// s itself is untouched. Parameters that already carry cached data (for
// example after a what-if patch) are not re-resolved.
func (b *Builder) Materialize(ctx context.Context, s *spec.Specification) (*spec.Specification, error) {
	for name, p := range s.Parameters {
		if p.Materialized() {
			continue
		}
		data, err := b.loader.Load(ctx, p.Source)
		if err != nil {
			return nil, newBuildError(KindSourceLoad, name, err)
		}
		switch p.Kind {
		case spec.ParamTable:
			rows, err := source.Rows(data, p.Schema)
			if err != nil {
				return nil, newBuildError(KindSourceLoad, name, err)
			}
			s = s.WithTableRows(name, rows)
		case spec.ParamMapping:
			m, err := source.Mapping(data, p.KeyColumn)
			if err != nil {
				return nil, newBuildError(KindSourceLoad, name, err)
			}
			s = s.WithMappingData(name, m)
		default:
			return nil, newBuildError(KindSourceLoad, name,
				fmt.Errorf("parameter kind %q cannot be materialized", p.Kind))
		}
	}
	return s, nil
}

// capabilityError classifies a capability failure: an args.Error means the
// caller supplied bad override arguments, anything else is an internal
// capability failure.
func (b *Builder) capabilityError(subject string, err error) *BuildError {
	var argErr *args.Error
	if errors.As(err, &argErr) {
		return newBuildError(KindInvalidOverrideArgs, subject, err)
	}
	return newBuildError(KindCapabilityFailed, subject, err)
}
