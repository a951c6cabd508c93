// Package registry provides the central "glue" for the capability system.
//
// The Registry maps the string identifiers used in specifications (a
// template id, an override target) to the compiled Go functions that
// implement them, across three independent namespaces: templates,
// constraints, and objectives. It is an explicit value constructed once
// at startup (or per test) and passed to its consumers by reference;
// there is no package-global state.
//
// Registration is last-write-wins so a capability can be re-registered
// during development without restarting. A lookup miss reports the full
// list of registered ids in its namespace, which makes a typo in a
// specification self-diagnosable from the error alone.
package registry
