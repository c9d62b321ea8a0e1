package session

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a Store for unknown session ids.
var ErrNotFound = errors.New("session not found")

// Store keeps the live sessions of an application instance.
type Store interface {
	Put(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	// IDs returns the ids of every stored session, in no particular order.
	IDs(ctx context.Context) ([]string, error)
}
