package llm

import (
	"context"
	"time"

	"go.uber.org/zap"

	llmclient "thedesk/internal/llmClient"
)

// Middleware decorates an LLMClient to inject cross-cutting concerns
// (rate limiting, logging, etc.).
type Middleware func(llmclient.LLMClient) llmclient.LLMClient

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner llmclient.LLMClient, mws ...Middleware) llmclient.LLMClient {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] != nil {
			out = mws[i](out)
		}
	}
	return out
}

// WrapAll applies the same middleware stack to every client.
func WrapAll(clients []llmclient.LLMClient, mws ...Middleware) []llmclient.LLMClient {
	out := make([]llmclient.LLMClient, len(clients))
	for i, c := range clients {
		out[i] = Wrap(c, mws...)
	}
	return out
}

// -------- Rate Limiting --------

// RateLimit paces insight attempts per model. Each wrapped client gets its
// own bucket; rps <= 0 returns the client unchanged.
func RateLimit(rps float64, burst int) Middleware {
	return func(next llmclient.LLMClient) llmclient.LLMClient {
		rl := newAttemptBucket(rps, burst)
		if rl == nil {
			return next
		}
		return &rateLimited{next: next, rl: rl}
	}
}

type rateLimited struct {
	next llmclient.LLMClient
	rl   *attemptBucket
}

func (c *rateLimited) Name() string  { return c.next.Name() }
func (c *rateLimited) Model() string { return c.next.Model() }
func (c *rateLimited) Close() error {
	c.rl.Stop()
	return c.next.Close()
}

func (c *rateLimited) GenerateText(ctx context.Context, prompt string) (string, error) {
	if err := c.rl.Take(ctx); err != nil {
		return "", err
	}
	return c.next.GenerateText(ctx, prompt)
}

// -------- Logging --------

// WithLogging logs request size, latency and errors. A nil logger disables it.
func WithLogging(logger *zap.Logger) Middleware {
	return func(next llmclient.LLMClient) llmclient.LLMClient {
		if logger == nil {
			return next
		}
		return &logging{next: next, log: logger.With(zap.String("client", next.Name()))}
	}
}

type logging struct {
	next llmclient.LLMClient
	log  *zap.Logger
}

func (l *logging) Name() string  { return l.next.Name() }
func (l *logging) Model() string { return l.next.Model() }
func (l *logging) Close() error  { return l.next.Close() }

func (l *logging) GenerateText(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	l.log.Debug("llm request", zap.Int("prompt_bytes", len(prompt)))
	out, err := l.next.GenerateText(ctx, prompt)
	if err != nil {
		l.log.Warn("llm error", zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return out, err
	}
	l.log.Debug("llm response", zap.Duration("elapsed", time.Since(start)), zap.Int("response_bytes", len(out)))
	return out, nil
}
