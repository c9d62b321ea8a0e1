// Package engine is the page recomputation engine.
//
// Compile turns the declared pages into an immutable Program: selectors are
// expanded, computation functions are bound by name and the precedent graph
// is checked. Every session then gets its own Engine from
// (*Program).NewEngine, which tracks the last input snapshot of each
// computation and re-runs a computation only when one of its inputs changed.
package engine
