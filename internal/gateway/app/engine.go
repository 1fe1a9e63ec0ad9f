package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"thedesk/internal/gateway/config"
	"thedesk/internal/insight"
	"thedesk/internal/llm"
	llmclient "thedesk/internal/llmClient"
)

// Engine bundles the insight engine with the model clients it owns.
type Engine struct {
	*insight.Engine
	clients []llmclient.LLMClient
}

func (e *Engine) Close() error {
	var firstErr error
	for _, c := range e.clients {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

type EngineOptions struct {
	// Registry defaults to the built-in providers.
	Registry *llmclient.Registry
	// Rand drives the rule-based fallback.
	Rand   insight.Rand
	Logger *zap.Logger
}

// BuildEngine instantiates the remote model chain from cfg. Models without a
// credential are skipped; with none left the engine runs rule-based only.
func BuildEngine(ctx context.Context, cfg config.InsightConfig, eo EngineOptions) (*Engine, error) {
	log := eo.Logger
	if log == nil {
		log = zap.NewNop()
	}
	registry := eo.Registry
	if registry == nil {
		registry = llmclient.NewRegistry()
	}

	built, err := registry.Build(ctx, cfg.Models, cfg.APIKeys, llmclient.Options{
		ResponseSchema: insight.ResponseSchema(),
		SchemaName:     insight.ResponseSchemaName,
	})
	if err != nil {
		return nil, fmt.Errorf("build llm clients: %w", err)
	}
	for _, spec := range built.Skipped {
		log.Debug("insight model skipped (no credential)", zap.String("model", spec.String()))
	}

	clients := llm.WrapAll(built.Clients,
		llm.WithLogging(log.Named("llm")),
		llm.RateLimit(cfg.RPS, cfg.Burst),
	)

	opts := insight.Options{Rand: eo.Rand, Logger: log.Named("insight")}
	if len(clients) > 0 {
		remote := insight.NewRemote(insight.RemoteConfig{
			Clients:        clients,
			AttemptTimeout: cfg.AttemptTimeout,
			Logger:         log.Named("insight"),
		})
		opts.Remote = remote
		log.Info("remote insight enabled", zap.Strings("models", remote.Models()))
	} else {
		log.Info("remote insight not configured; using rule-based insight only")
	}
	return &Engine{Engine: insight.New(opts), clients: clients}, nil
}
