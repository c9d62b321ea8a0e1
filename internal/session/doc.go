// Package session composes the per-session state of the calculator: the
// field registry, the recomputation engine, the table lookup cache and the
// selected aircraft model.
//
// A Session serialises every public call with a mutex, so one session can
// be shared by the HTTP API and the weather feed. The engine itself stays
// single threaded. Sessions are created by a Factory from the immutable
// program and aircraft catalog of the application, and kept in a Store.
package session
