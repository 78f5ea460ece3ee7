package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps contexts in process memory. It backs the dev harness
// and tests; state does not survive restarts.
type MemoryStore struct {
	mu       sync.RWMutex
	contexts map[string]Context
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{contexts: make(map[string]Context)}
}

func (s *MemoryStore) Get(_ context.Context, userID string) (Context, error) {
	s.mu.RLock()
	sc, ok := s.contexts[userID]
	s.mu.RUnlock()
	if ok {
		return sc.Clone(), nil
	}

	sc = NewContext("")
	s.mu.Lock()
	s.contexts[userID] = sc.Clone()
	s.mu.Unlock()
	return sc, nil
}

func (s *MemoryStore) Put(_ context.Context, userID string, sc Context) error {
	if err := sc.Validate(); err != nil {
		return err
	}
	sc.UpdatedAt = time.Now().UTC()
	s.mu.Lock()
	s.contexts[userID] = sc.Clone()
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	delete(s.contexts, userID)
	s.mu.Unlock()
	return nil
}
