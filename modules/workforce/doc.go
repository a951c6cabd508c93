// Package workforce is the reference capability pack: a hiring and daily
// assignment template over candidate, skill and day indexes, plus the
// constraint and objective overrides that adjust it. It doubles as the
// canonical example of how a capability module is written.
package workforce
