package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"thedesk/internal/gateway/config"
	"thedesk/internal/gateway/entity"
	"thedesk/internal/gateway/handler"
	"thedesk/internal/gateway/handler/rpc"
	"thedesk/internal/gateway/server"
	entrysvc "thedesk/internal/gateway/service/entry"
	insightsvc "thedesk/internal/gateway/service/insight"
	settingssvc "thedesk/internal/gateway/service/settings"
)

type App struct {
	server *server.Server
	stores *gatewayStores
	engine *Engine
	log    *zap.Logger
}

func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	// Dependencies
	stores, err := initStores(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	engine, err := BuildEngine(ctx, cfg.Insight, EngineOptions{Logger: log})
	if err != nil {
		_ = stores.Close()
		return nil, err
	}

	entrySvc := entrysvc.New(entrysvc.Options{
		Entries:  stores.entries,
		Media:    stores.media,
		Settings: stores.settings,
		Logger:   log.Named("entry"),
	})
	insightSvc, err := insightsvc.New(insightsvc.Options{
		Entries:     stores.entries,
		Engine:      engine,
		HistorySize: cfg.Insight.HistorySize,
		Logger:      log.Named("insight"),
	})
	if err != nil {
		_ = engine.Close()
		_ = stores.Close()
		return nil, err
	}

	handlers := server.Handlers{
		Entries:      handler.NewEntryHandler(entrySvc, log),
		Insights:     handler.NewInsightHandler(insightSvc, log),
		InsightRPC:   rpc.NewInsightHandler(insightSvc, log),
		InsightWatch: rpc.NewInsightWatchHandler(insightSvc, log),
		Settings:     handler.NewSettingsHandler(settingssvc.New(stores.settings, log.Named("settings")), log),
		Debug:        handler.NewDebugHandler(stores.cacheSources()),
	}

	// Routing & Server
	var fallbackUser entity.UserID
	if cfg.IsLocal() {
		fallbackUser = entity.LocalUserID
	}
	mux := server.NewMux(handlers, fallbackUser, log.Named("http"))
	srv := server.New(cfg.Port, mux, log)

	return &App{
		server: srv,
		stores: stores,
		engine: engine,
		log:    log,
	}, nil
}

func (a *App) Start() error {
	return a.server.Start()
}

// Shutdown stops the server and releases stores and model clients.
func (a *App) Shutdown(ctx context.Context) error {
	return errors.Join(
		a.server.Shutdown(ctx),
		a.engine.Close(),
		a.stores.Close(),
	)
}
