// Package source resolves a spec.DataSource recipe into materialized data.
//
// The loader is the only place in the system that performs I/O for
// parameter data: CSV and JSON files, HTTP fetches, and registered
// callables all funnel through Loader.Load. Failures are categorized into
// LoadError kinds so callers can distinguish a missing file from a
// malformed one or an unreachable endpoint without string matching.
package source
