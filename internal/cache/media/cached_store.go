package media

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	memcache "thedesk/internal/cache/memory"
	mediarepo "thedesk/internal/gateway/repository/media"
)

type Store = mediarepo.Store

type CacheConfig struct {
	BlobTTL        time.Duration
	BlobMaxEntries int
	BlobMaxBytes   int

	ListTTL        time.Duration
	ListMaxEntries int

	URLTTL        time.Duration
	URLMaxEntries int
}

func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		BlobTTL:        5 * time.Minute,
		BlobMaxEntries: 256,
		BlobMaxBytes:   32 * 1024 * 1024, // 32MiB
		ListTTL:        30 * time.Second,
		ListMaxEntries: 512,
		// Shorter than the presign lifetime so a cached URL is never expired.
		URLTTL:        30 * time.Minute,
		URLMaxEntries: 1024,
	}
}

type MetricsSnapshot struct {
	BlobHits       uint64 `json:"blobHits"`
	BlobMisses     uint64 `json:"blobMisses"`
	ListHits       uint64 `json:"listHits"`
	ListMisses     uint64 `json:"listMisses"`
	URLHits        uint64 `json:"urlHits"`
	URLMisses      uint64 `json:"urlMisses"`
	OriginReadErr  uint64 `json:"originReadErr"`
	OriginWriteErr uint64 `json:"originWriteErr"`
}

type Metrics struct {
	blobHits       atomic.Uint64
	blobMisses     atomic.Uint64
	listHits       atomic.Uint64
	listMisses     atomic.Uint64
	urlHits        atomic.Uint64
	urlMisses      atomic.Uint64
	originReadErr  atomic.Uint64
	originWriteErr atomic.Uint64
}

type CachedStore struct {
	origin Store

	blobCache *memcache.LRUTTL[string, []byte]
	listCache *memcache.LRUTTL[string, []string]
	urlCache  *memcache.LRUTTL[string, string]
	metrics   Metrics
}

func NewCachedStore(origin Store, cfg CacheConfig) *CachedStore {
	def := DefaultCacheConfig()
	if cfg.BlobTTL <= 0 {
		cfg.BlobTTL = def.BlobTTL
	}
	if cfg.BlobMaxEntries <= 0 {
		cfg.BlobMaxEntries = def.BlobMaxEntries
	}
	if cfg.BlobMaxBytes < 0 {
		cfg.BlobMaxBytes = def.BlobMaxBytes
	}
	if cfg.ListTTL <= 0 {
		cfg.ListTTL = def.ListTTL
	}
	if cfg.ListMaxEntries <= 0 {
		cfg.ListMaxEntries = def.ListMaxEntries
	}
	if cfg.URLTTL <= 0 {
		cfg.URLTTL = def.URLTTL
	}
	if cfg.URLMaxEntries <= 0 {
		cfg.URLMaxEntries = def.URLMaxEntries
	}
	return &CachedStore{
		origin:    origin,
		blobCache: memcache.NewLRUTTL[string, []byte](cfg.BlobMaxEntries, cfg.BlobMaxBytes, cfg.BlobTTL),
		listCache: memcache.NewLRUTTL[string, []string](cfg.ListMaxEntries, 0, cfg.ListTTL),
		urlCache:  memcache.NewLRUTTL[string, string](cfg.URLMaxEntries, 0, cfg.URLTTL),
	}
}

func blobKey(owner, path string) string {
	return strings.TrimSpace(owner) + "/" + strings.TrimLeft(strings.TrimSpace(path), "/")
}

func (s *CachedStore) Put(ctx context.Context, owner, path string, content []byte) error {
	if err := s.origin.Put(ctx, owner, path, content); err != nil {
		s.metrics.originWriteErr.Add(1)
		return err
	}
	key := blobKey(owner, path)
	copied := append([]byte(nil), content...)
	s.blobCache.Set(key, copied, len(copied))
	s.listCache.Delete(strings.TrimSpace(owner))
	s.urlCache.Delete(key)
	return nil
}

func (s *CachedStore) Get(ctx context.Context, owner, path string) ([]byte, error) {
	key := blobKey(owner, path)
	if raw, ok := s.blobCache.Get(key); ok {
		s.metrics.blobHits.Add(1)
		return append([]byte(nil), raw...), nil
	}
	s.metrics.blobMisses.Add(1)

	raw, err := s.origin.Get(ctx, owner, path)
	if err != nil {
		s.metrics.originReadErr.Add(1)
		return nil, err
	}
	copied := append([]byte(nil), raw...)
	s.blobCache.Set(key, copied, len(copied))
	return append([]byte(nil), copied...), nil
}

func (s *CachedStore) GetURL(ctx context.Context, owner, path string) (string, error) {
	key := blobKey(owner, path)
	if cached, ok := s.urlCache.Get(key); ok {
		s.metrics.urlHits.Add(1)
		return cached, nil
	}
	s.metrics.urlMisses.Add(1)

	url, err := s.origin.GetURL(ctx, owner, path)
	if err != nil {
		s.metrics.originReadErr.Add(1)
		return "", err
	}
	if strings.TrimSpace(url) != "" {
		s.urlCache.Set(key, url, len(url))
	}
	return url, nil
}

func (s *CachedStore) List(ctx context.Context, owner string) ([]string, error) {
	owner = strings.TrimSpace(owner)
	if list, ok := s.listCache.Get(owner); ok {
		s.metrics.listHits.Add(1)
		return append([]string(nil), list...), nil
	}
	s.metrics.listMisses.Add(1)

	list, err := s.origin.List(ctx, owner)
	if err != nil {
		s.metrics.originReadErr.Add(1)
		return nil, err
	}
	copied := append([]string(nil), list...)
	s.listCache.Set(owner, copied, 0)
	return append([]string(nil), copied...), nil
}

func (s *CachedStore) Delete(ctx context.Context, owner, path string) error {
	err := s.origin.Delete(ctx, owner, path)
	key := blobKey(owner, path)
	s.blobCache.Delete(key)
	s.urlCache.Delete(key)
	s.listCache.Delete(strings.TrimSpace(owner))
	if err != nil {
		s.metrics.originWriteErr.Add(1)
	}
	return err
}

func (s *CachedStore) Metrics() MetricsSnapshot {
	if s == nil {
		return MetricsSnapshot{}
	}
	return MetricsSnapshot{
		BlobHits:       s.metrics.blobHits.Load(),
		BlobMisses:     s.metrics.blobMisses.Load(),
		ListHits:       s.metrics.listHits.Load(),
		ListMisses:     s.metrics.listMisses.Load(),
		URLHits:        s.metrics.urlHits.Load(),
		URLMisses:      s.metrics.urlMisses.Load(),
		OriginReadErr:  s.metrics.originReadErr.Load(),
		OriginWriteErr: s.metrics.originWriteErr.Load(),
	}
}
