package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Set holds the application's instruments together with the registry
// they are registered on.
type Set struct {
	registry *prometheus.Registry

	SessionsCreated prometheus.Counter
	SessionsDeleted prometheus.Counter
	PatchesApplied  prometheus.Counter
	PatchesRejected prometheus.Counter
	ModelBuilds     prometheus.Counter
	Solves          *prometheus.CounterVec
	SolveDuration   prometheus.Histogram
}

// NewSet creates a fresh registry with every instrument registered.
func NewSet() *Set {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Set{
		registry: reg,
		SessionsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "optspec_sessions_created_total",
			Help: "Number of sessions created.",
		}),
		SessionsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "optspec_sessions_deleted_total",
			Help: "Number of sessions deleted.",
		}),
		PatchesApplied: factory.NewCounter(prometheus.CounterOpts{
			Name: "optspec_patches_applied_total",
			Help: "Number of patch batches applied successfully.",
		}),
		PatchesRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "optspec_patches_rejected_total",
			Help: "Number of patch batches rejected without effect.",
		}),
		ModelBuilds: factory.NewCounter(prometheus.CounterOpts{
			Name: "optspec_model_builds_total",
			Help: "Number of models built from a specification.",
		}),
		Solves: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "optspec_solves_total",
			Help: "Number of solve calls, partitioned by outcome status.",
		}, []string{"status"}),
		SolveDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "optspec_solve_duration_seconds",
			Help:    "Wall time spent inside the solver.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
	}
}

// SessionCreated counts a new session.
func (s *Set) SessionCreated() { s.SessionsCreated.Inc() }

// SessionDeleted counts a removed session.
func (s *Set) SessionDeleted() { s.SessionsDeleted.Inc() }

// PatchApplied counts a patch batch that committed.
func (s *Set) PatchApplied() { s.PatchesApplied.Inc() }

// PatchRejected counts a patch batch that was refused.
func (s *Set) PatchRejected() { s.PatchesRejected.Inc() }

// ModelBuilt counts a model materialized and built from a specification.
func (s *Set) ModelBuilt() { s.ModelBuilds.Inc() }

// SolveFinished counts a completed solve and records its wall time.
func (s *Set) SolveFinished(status string, seconds float64) {
	s.Solves.WithLabelValues(status).Inc()
	s.SolveDuration.Observe(seconds)
}

// Handler exposes the set's registry in the Prometheus text format.
func (s *Set) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

// Gatherer returns the underlying registry for test assertions.
func (s *Set) Gatherer() prometheus.Gatherer {
	return s.registry
}
