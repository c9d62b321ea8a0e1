package inmemorystore

import (
	"context"
	"fmt"
	"sync"

	"github.com/specialistvlad/pohcalc/internal/session"
)

// Store is an in-memory implementation of session.Store.
type Store struct {
	sessions sync.Map // Key: session ID string, Value: *session.Session
}

// New creates a new, empty in-memory session store.
func New() session.Store {
	return &Store{}
}

// Put stores a session under its ID, replacing any previous one.
func (s *Store) Put(ctx context.Context, sess *session.Session) error {
	if sess == nil {
		return fmt.Errorf("cannot store a nil session")
	}
	s.sessions.Store(sess.ID(), sess)
	return nil
}

// Get retrieves a session by ID.
func (s *Store) Get(ctx context.Context, id string) (*session.Session, error) {
	v, ok := s.sessions.Load(id)
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", session.ErrNotFound, id)
	}
	return v.(*session.Session), nil
}

// Delete removes a session. Deleting an unknown ID is an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, loaded := s.sessions.LoadAndDelete(id); !loaded {
		return fmt.Errorf("%w: '%s'", session.ErrNotFound, id)
	}
	return nil
}

// IDs returns the ids of every stored session.
func (s *Store) IDs(ctx context.Context) ([]string, error) {
	var ids []string
	s.sessions.Range(func(k, _ any) bool {
		ids = append(ids, k.(string))
		return true
	})
	return ids, nil
}
