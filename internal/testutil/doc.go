// Package testutil provides shared helpers for system-level tests: a
// fully wired application harness and stub capability modules that record
// how the build pipeline invokes them.
package testutil
