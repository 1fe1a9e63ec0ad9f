package entry

import (
	"context"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	memcache "thedesk/internal/cache/memory"
	entryrepo "thedesk/internal/gateway/repository/entry"
	"thedesk/internal/journal"
)

type Store = entryrepo.Store

type CacheConfig struct {
	ListTTL        time.Duration
	ListMaxEntries int

	EntryTTL        time.Duration
	EntryMaxEntries int
}

func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		ListTTL:         30 * time.Second,
		ListMaxEntries:  512,
		EntryTTL:        5 * time.Minute,
		EntryMaxEntries: 4096,
	}
}

type MetricsSnapshot struct {
	ListHits       uint64 `json:"listHits"`
	ListMisses     uint64 `json:"listMisses"`
	EntryHits      uint64 `json:"entryHits"`
	EntryMisses    uint64 `json:"entryMisses"`
	OriginReads    uint64 `json:"originReads"`
	OriginWrites   uint64 `json:"originWrites"`
	OriginReadErr  uint64 `json:"originReadErr"`
	OriginWriteErr uint64 `json:"originWriteErr"`
}

type Metrics struct {
	listHits       atomic.Uint64
	listMisses     atomic.Uint64
	entryHits      atomic.Uint64
	entryMisses    atomic.Uint64
	originReads    atomic.Uint64
	originWrites   atomic.Uint64
	originReadErr  atomic.Uint64
	originWriteErr atomic.Uint64
}

func (m *Metrics) snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		ListHits:       m.listHits.Load(),
		ListMisses:     m.listMisses.Load(),
		EntryHits:      m.entryHits.Load(),
		EntryMisses:    m.entryMisses.Load(),
		OriginReads:    m.originReads.Load(),
		OriginWrites:   m.originWrites.Load(),
		OriginReadErr:  m.originReadErr.Load(),
		OriginWriteErr: m.originWriteErr.Load(),
	}
}

// CachedStore fronts an entry Store with read caches. Any write for a user
// drops that user's cached lists.
type CachedStore struct {
	origin Store

	listCache  *memcache.LRUTTL[string, []journal.Entry]
	entryCache *memcache.LRUTTL[string, journal.Entry]
	metrics    Metrics
}

func NewCachedStore(origin Store, cfg CacheConfig) *CachedStore {
	def := DefaultCacheConfig()
	if cfg.ListTTL <= 0 {
		cfg.ListTTL = def.ListTTL
	}
	if cfg.ListMaxEntries <= 0 {
		cfg.ListMaxEntries = def.ListMaxEntries
	}
	if cfg.EntryTTL <= 0 {
		cfg.EntryTTL = def.EntryTTL
	}
	if cfg.EntryMaxEntries <= 0 {
		cfg.EntryMaxEntries = def.EntryMaxEntries
	}
	return &CachedStore{
		origin:     origin,
		listCache:  memcache.NewLRUTTL[string, []journal.Entry](cfg.ListMaxEntries, 0, cfg.ListTTL),
		entryCache: memcache.NewLRUTTL[string, journal.Entry](cfg.EntryMaxEntries, 0, cfg.EntryTTL),
	}
}

func listKey(userID string, limit int) string {
	return strings.TrimSpace(userID) + "|" + strconv.Itoa(limit)
}

func entryKey(userID, id string) string {
	return strings.TrimSpace(userID) + "/" + strings.TrimSpace(id)
}

func (s *CachedStore) ListRecent(ctx context.Context, userID string, limit int) ([]journal.Entry, error) {
	key := listKey(userID, limit)
	if list, ok := s.listCache.Get(key); ok {
		s.metrics.listHits.Add(1)
		return append([]journal.Entry(nil), list...), nil
	}
	s.metrics.listMisses.Add(1)
	s.metrics.originReads.Add(1)

	list, err := s.origin.ListRecent(ctx, userID, limit)
	if err != nil {
		s.metrics.originReadErr.Add(1)
		return nil, err
	}
	copied := append([]journal.Entry(nil), list...)
	s.listCache.Set(key, copied, 0)
	return append([]journal.Entry(nil), copied...), nil
}

func (s *CachedStore) Get(ctx context.Context, userID, id string) (journal.Entry, error) {
	key := entryKey(userID, id)
	if e, ok := s.entryCache.Get(key); ok {
		s.metrics.entryHits.Add(1)
		return e, nil
	}
	s.metrics.entryMisses.Add(1)
	s.metrics.originReads.Add(1)

	e, err := s.origin.Get(ctx, userID, id)
	if err != nil {
		s.metrics.originReadErr.Add(1)
		return journal.Entry{}, err
	}
	s.entryCache.Set(key, e, 0)
	return e, nil
}

func (s *CachedStore) Create(ctx context.Context, e journal.Entry) (journal.Entry, error) {
	s.metrics.originWrites.Add(1)
	out, err := s.origin.Create(ctx, e)
	if err != nil {
		s.metrics.originWriteErr.Add(1)
		return journal.Entry{}, err
	}
	s.invalidateLists(out.UserID)
	s.entryCache.Set(entryKey(out.UserID, out.ID), out, 0)
	return out, nil
}

func (s *CachedStore) Update(ctx context.Context, e journal.Entry) error {
	s.metrics.originWrites.Add(1)
	if err := s.origin.Update(ctx, e); err != nil {
		s.metrics.originWriteErr.Add(1)
		return err
	}
	s.invalidateLists(e.UserID)
	s.entryCache.Set(entryKey(e.UserID, e.ID), e, 0)
	return nil
}

func (s *CachedStore) Delete(ctx context.Context, userID, id string) error {
	s.metrics.originWrites.Add(1)
	err := s.origin.Delete(ctx, userID, id)
	s.invalidateLists(userID)
	s.entryCache.Delete(entryKey(userID, id))
	if err != nil {
		s.metrics.originWriteErr.Add(1)
	}
	return err
}

func (s *CachedStore) Clear(ctx context.Context, userID string) (int, error) {
	s.metrics.originWrites.Add(1)
	n, err := s.origin.Clear(ctx, userID)
	s.invalidateLists(userID)
	prefix := strings.TrimSpace(userID) + "/"
	s.entryCache.DeleteFunc(func(k string) bool { return strings.HasPrefix(k, prefix) })
	if err != nil {
		s.metrics.originWriteErr.Add(1)
	}
	return n, err
}

func (s *CachedStore) invalidateLists(userID string) {
	prefix := strings.TrimSpace(userID) + "|"
	s.listCache.DeleteFunc(func(k string) bool { return strings.HasPrefix(k, prefix) })
}

func (s *CachedStore) Metrics() MetricsSnapshot {
	if s == nil {
		return MetricsSnapshot{}
	}
	return s.metrics.snapshot()
}
