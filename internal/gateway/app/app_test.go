package app

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thedesk/internal/gateway/config"
	"thedesk/internal/journal"
	llmclient "thedesk/internal/llmClient"
)

func sessions(n int) []journal.Entry {
	base := time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)
	out := make([]journal.Entry, n)
	for i := range out {
		out[i] = journal.Entry{
			ID:         fmt.Sprintf("e%d", i),
			Kind:       journal.KindWriting,
			Title:      fmt.Sprintf("Page %d", i),
			Body:       "garden notes",
			OccurredAt: base.Add(-time.Duration(i) * time.Hour),
		}
	}
	return out
}

func TestBuildEngineWithoutCredentials(t *testing.T) {
	eng, err := BuildEngine(context.Background(), config.InsightConfig{Models: llmclient.DefaultChain}, EngineOptions{})
	require.NoError(t, err)
	defer eng.Close()

	assert.False(t, eng.RemoteConfigured())
	in, err := eng.Produce(context.Background(), sessions(4))
	require.NoError(t, err)
	assert.Equal(t, journal.StrategyRuleBased, in.StrategyUsed)
}

func TestBuildEngineUsesRegisteredProvider(t *testing.T) {
	reply := `{"themes":["Quiet Focus","Seasonal Change","Patient Craft"],"summary":"You keep returning to slow work.","mood":"Settled and curious."}`
	registry := llmclient.NewRegistry()
	var gotOpts llmclient.Options
	registry.Register("scripted", func(_ context.Context, opts llmclient.Options) (llmclient.LLMClient, error) {
		gotOpts = opts
		return llmclient.NewScriptedClient(opts.Model, llmclient.Reply{Text: reply}), nil
	})

	cfg := config.InsightConfig{
		Models:         []llmclient.ModelSpec{{Provider: "scripted", Model: "m1"}, {Provider: "gemini", Model: "g"}},
		APIKeys:        map[string]string{"scripted": "k"},
		AttemptTimeout: time.Second,
	}
	eng, err := BuildEngine(context.Background(), cfg, EngineOptions{Registry: registry})
	require.NoError(t, err)
	defer eng.Close()

	assert.Equal(t, "k", gotOpts.APIKey)
	assert.NotEmpty(t, gotOpts.ResponseSchema)
	assert.True(t, eng.RemoteConfigured())

	in, err := eng.Produce(context.Background(), sessions(5))
	require.NoError(t, err)
	assert.Equal(t, journal.StrategyRemote, in.StrategyUsed)
	assert.Equal(t, []string{"Quiet Focus", "Seasonal Change", "Patient Craft"}, in.Themes)
}

func TestNewLocalApp(t *testing.T) {
	cfg := &config.Config{Port: "127.0.0.1:0", Env: "local", Insight: config.InsightConfig{Models: llmclient.DefaultChain}}
	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.NotNil(t, a.stores.settings)
	assert.Contains(t, a.stores.cacheSources(), "entries")
	assert.Contains(t, a.stores.cacheSources(), "media")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, a.Shutdown(ctx))
}
