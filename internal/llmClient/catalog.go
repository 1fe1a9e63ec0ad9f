package llmclient

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
)

const (
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"
)

// DefaultChain is tried in order: a fast model first, then a differently
// versioned one, then other providers.
var DefaultChain = []ModelSpec{
	{Provider: ProviderGemini, Model: "gemini-2.5-flash"},
	{Provider: ProviderGemini, Model: "gemini-2.0-flash"},
	{Provider: ProviderGroq, Model: "llama-3.3-70b-versatile"},
	{Provider: ProviderOpenAI, Model: "gpt-4o-mini"},
}

// Options configures a single client.
type Options struct {
	APIKey string
	Model  string
	// BaseURL overrides the provider endpoint (Groq, OpenAI).
	BaseURL    string
	HTTPClient *http.Client
	// Temperature defaults to 0.8 when zero.
	Temperature float32
	// ResponseSchema constrains providers that support structured output.
	ResponseSchema map[string]any
	SchemaName     string
}

func (o Options) temperature() float32 {
	if o.Temperature <= 0 {
		return 0.8
	}
	return o.Temperature
}

// ModelSpec names one entry of a fallback chain.
type ModelSpec struct {
	Provider string `yaml:"provider" json:"provider"`
	Model    string `yaml:"model" json:"model"`
}

func (m ModelSpec) String() string { return m.Provider + ":" + m.Model }

// ParseChain parses "provider:model,provider:model". Order is preserved and
// exact duplicates are dropped so no model is attempted twice.
func ParseChain(s string) ([]ModelSpec, error) {
	var out []ModelSpec
	seen := map[ModelSpec]bool{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		provider, model, ok := strings.Cut(part, ":")
		provider = strings.ToLower(strings.TrimSpace(provider))
		model = strings.TrimSpace(model)
		if !ok || provider == "" || model == "" {
			return nil, fmt.Errorf("invalid model spec %q (want provider:model)", part)
		}
		spec := ModelSpec{Provider: provider, Model: model}
		if seen[spec] {
			continue
		}
		seen[spec] = true
		out = append(out, spec)
	}
	return out, nil
}

// ClientFactory builds a client for one model.
type ClientFactory func(ctx context.Context, opts Options) (LLMClient, error)

// Registry maps provider names to client factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]ClientFactory
}

// NewRegistry returns a registry with the Gemini, Groq and OpenAI providers.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]ClientFactory)}
	r.Register(ProviderGemini, func(ctx context.Context, opts Options) (LLMClient, error) {
		return NewGeminiClient(ctx, opts)
	})
	r.Register(ProviderGroq, func(_ context.Context, opts Options) (LLMClient, error) {
		return NewGroqClient(opts)
	})
	r.Register(ProviderOpenAI, func(_ context.Context, opts Options) (LLMClient, error) {
		return NewOpenAIClient(opts)
	})
	return r
}

func (r *Registry) Register(provider string, f ClientFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[strings.ToLower(strings.TrimSpace(provider))] = f
}

func (r *Registry) Providers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.factories))
	for p := range r.factories {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// BuildResult is the outcome of building a chain.
type BuildResult struct {
	Clients []LLMClient
	// Skipped lists models whose provider had no credential.
	Skipped []ModelSpec
}

// Build instantiates every model of chain whose provider has a key in keys.
// base supplies the shared options (schema, HTTP client); APIKey and Model are
// filled per entry.
func (r *Registry) Build(ctx context.Context, chain []ModelSpec, keys map[string]string, base Options) (BuildResult, error) {
	var res BuildResult
	for _, spec := range chain {
		key := strings.TrimSpace(keys[spec.Provider])
		if key == "" {
			res.Skipped = append(res.Skipped, spec)
			continue
		}
		r.mu.RLock()
		f, ok := r.factories[spec.Provider]
		r.mu.RUnlock()
		if !ok {
			closeAll(res.Clients)
			return BuildResult{}, fmt.Errorf("unknown llm provider %q", spec.Provider)
		}
		opts := base
		opts.APIKey = key
		opts.Model = spec.Model
		cli, err := f(ctx, opts)
		if err != nil {
			closeAll(res.Clients)
			return BuildResult{}, fmt.Errorf("build %s: %w", spec, err)
		}
		res.Clients = append(res.Clients, cli)
	}
	return res, nil
}

func closeAll(clients []LLMClient) {
	for _, c := range clients {
		_ = c.Close()
	}
}
