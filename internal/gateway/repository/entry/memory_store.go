package entry

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"thedesk/internal/journal"
)

type MemoryStore struct {
	mu     sync.RWMutex
	byUser map[string]map[string]journal.Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byUser: make(map[string]map[string]journal.Entry)}
}

func (s *MemoryStore) ListRecent(_ context.Context, userID string, limit int) ([]journal.Entry, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	userID, err := requireUser(userID)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]journal.Entry, 0, len(s.byUser[userID]))
	for _, e := range s.byUser[userID] {
		out = append(out, e)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].OccurredAt.After(out[j].OccurredAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit = clampLimit(limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, userID, id string) (journal.Entry, error) {
	if s == nil {
		return journal.Entry{}, fmt.Errorf("store is nil")
	}
	userID, err := requireUser(userID)
	if err != nil {
		return journal.Entry{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.byUser[userID][strings.TrimSpace(id)]
	if !ok {
		return journal.Entry{}, ErrNotFound
	}
	return e, nil
}

func (s *MemoryStore) Create(_ context.Context, e journal.Entry) (journal.Entry, error) {
	if s == nil {
		return journal.Entry{}, fmt.Errorf("store is nil")
	}
	e, err := prepareCreate(e)
	if err != nil {
		return journal.Entry{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.byUser[e.UserID]
	if !ok {
		m = make(map[string]journal.Entry)
		s.byUser[e.UserID] = m
	}
	if _, exists := m[e.ID]; exists {
		return journal.Entry{}, fmt.Errorf("entry %s already exists", e.ID)
	}
	m[e.ID] = e
	return e, nil
}

func (s *MemoryStore) Update(_ context.Context, e journal.Entry) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	if err := e.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.byUser[strings.TrimSpace(e.UserID)]
	if _, ok := m[e.ID]; !ok {
		return ErrNotFound
	}
	m[e.ID] = e
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, userID, id string) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.byUser[strings.TrimSpace(userID)]
	if _, ok := m[strings.TrimSpace(id)]; !ok {
		return ErrNotFound
	}
	delete(m, strings.TrimSpace(id))
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, userID string) (int, error) {
	if s == nil {
		return 0, fmt.Errorf("store is nil")
	}
	userID, err := requireUser(userID)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.byUser[userID])
	delete(s.byUser, userID)
	return n, nil
}
