package app

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	entrycache "thedesk/internal/cache/entry"
	mediacache "thedesk/internal/cache/media"
	"thedesk/internal/gateway/config"
	"thedesk/internal/gateway/handler"
	entryrepo "thedesk/internal/gateway/repository/entry"
	mediarepo "thedesk/internal/gateway/repository/media"
	settingsrepo "thedesk/internal/gateway/repository/settings"
)

type gatewayStores struct {
	entries    entryrepo.Store
	media      mediarepo.Store
	settings   settingsrepo.Store
	entryCache *entrycache.CachedStore
	mediaCache *mediacache.CachedStore
	db         *sql.DB
}

// cacheSources exposes the read caches to the debug route.
func (s *gatewayStores) cacheSources() map[string]handler.CacheSource {
	return map[string]handler.CacheSource{
		"entries": func() any { return s.entryCache.Metrics() },
		"media":   func() any { return s.mediaCache.Metrics() },
	}
}

func (s *gatewayStores) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func initStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (*gatewayStores, error) {
	stores := &gatewayStores{}

	var origin entryrepo.Store
	if dsn := strings.TrimSpace(cfg.DatabaseURL); dsn != "" {
		db, err := entryrepo.OpenPostgres(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open db: %w", err)
		}
		stores.db = db
		origin = entryrepo.NewPostgresStore(db)
		stores.settings = settingsrepo.NewPostgresStore(db)
		log.Info("entry store: postgres")
	} else {
		origin = entryrepo.NewMemoryStore()
		stores.settings = settingsrepo.NewMemoryStore()
		log.Info("entry store: in-memory")
	}
	stores.entryCache = entrycache.NewCachedStore(origin, entrycache.DefaultCacheConfig())
	stores.entries = stores.entryCache

	media, err := chooseMediaStore(cfg, log)
	if err != nil {
		_ = stores.Close()
		return nil, err
	}
	stores.mediaCache = mediacache.NewCachedStore(media, mediacache.DefaultCacheConfig())
	stores.media = stores.mediaCache
	return stores, nil
}

func chooseMediaStore(cfg *config.Config, log *zap.Logger) (mediarepo.Store, error) {
	if !cfg.Media.CanUseS3() {
		if cfg.Media.Enabled {
			log.Warn("media store: using in-memory fallback (s3 config incomplete)")
		}
		return mediarepo.NewMemoryStore(), nil
	}
	s3Cfg := mediarepo.S3Config{
		Endpoint:  cfg.Media.Endpoint,
		Region:    cfg.Media.Region,
		AccessKey: cfg.Media.AccessKey,
		SecretKey: cfg.Media.SecretKey,
		Bucket:    cfg.Media.Bucket,
		UseSSL:    cfg.Media.UseSSL,
	}
	store, err := mediarepo.NewS3Store(s3Cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize media s3 store: %w", err)
	}
	log.Info("media store: s3", zap.String("bucket", s3Cfg.Bucket), zap.String("endpoint", s3Cfg.Endpoint))
	return store, nil
}
