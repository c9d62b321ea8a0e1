// Package app contains the core application logic. It loads the calculator
// configuration, and runs it in one of three modes: a single computation
// printed to the output, a replay of the configured scenarios, or an HTTP
// API serving sessions fed by the optional weather feed.
package app
