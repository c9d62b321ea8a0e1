// Package inmemorystore provides an ephemeral, thread-safe, in-memory
// implementation of the session.Store interface.
//
// Sessions are kept in a sync.Map keyed by their UUID. Every session is
// independent and the key space changes only when sessions are created or
// dropped, while lookups happen on every API call, which is the access
// pattern sync.Map is optimised for.
//
// Nothing is persisted: a restart loses every session.
package inmemorystore
