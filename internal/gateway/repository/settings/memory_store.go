package settings

import (
	"context"
	"sync"

	"thedesk/internal/journal"
)

type MemoryStore struct {
	mu     sync.RWMutex
	byUser map[string]journal.Preferences
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byUser: make(map[string]journal.Preferences)}
}

func (s *MemoryStore) Get(_ context.Context, userID string) (journal.Preferences, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return journal.Preferences{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byUser[userID]
	if !ok {
		return journal.Preferences{}, ErrNotFound
	}
	return p, nil
}

func (s *MemoryStore) Put(_ context.Context, userID string, p journal.Preferences) error {
	userID, err := requireUser(userID)
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byUser[userID] = p
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, userID string) error {
	userID, err := requireUser(userID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byUser, userID)
	return nil
}
