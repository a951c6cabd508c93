// Package metrics defines the Prometheus instruments tracking session
// activity. All instruments live on an explicit registry so tests can
// wire an isolated set without touching global state.
package metrics
