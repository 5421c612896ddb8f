package connection

import (
	"context"
	"sync"
)

// Store persists the single session record so it survives process restarts.
// Load returns (nil, nil) when no session is stored.
type Store interface {
	Save(ctx context.Context, session *Session) error
	Load(ctx context.Context) (*Session, error)
	Clear(ctx context.Context) error
}

// MemoryStore is the in-process Store, used in tests and single-process runs.
type MemoryStore struct {
	mu      sync.Mutex
	session *Session
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save stores a copy of the session.
func (s *MemoryStore) Save(_ context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *session
	s.session = &cp
	return nil
}

// Load returns a copy of the stored session, or (nil, nil).
func (s *MemoryStore) Load(_ context.Context) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil, nil
	}

	cp := *s.session
	return &cp, nil
}

// Clear drops the stored session.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = nil
	return nil
}
