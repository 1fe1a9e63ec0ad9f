package insight

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"thedesk/internal/journal"
	llmclient "thedesk/internal/llmClient"
)

// DefaultAttemptTimeout bounds a single model attempt.
const DefaultAttemptTimeout = 20 * time.Second

// RemoteConfig configures a Remote generator. Clients are tried in order.
type RemoteConfig struct {
	Clients        []llmclient.LLMClient
	AttemptTimeout time.Duration
	SampleSize     int
	EntryChars     int
	Logger         *zap.Logger
}

// Remote delegates synthesis to a chain of text-generation models, one
// attempt per model.
type Remote struct {
	clients    []llmclient.LLMClient
	timeout    time.Duration
	sampleSize int
	entryChars int
	log        *zap.Logger
}

func NewRemote(cfg RemoteConfig) *Remote {
	r := &Remote{
		clients:    append([]llmclient.LLMClient(nil), cfg.Clients...),
		timeout:    cfg.AttemptTimeout,
		sampleSize: cfg.SampleSize,
		entryChars: cfg.EntryChars,
		log:        cfg.Logger,
	}
	if r.timeout <= 0 {
		r.timeout = DefaultAttemptTimeout
	}
	if r.sampleSize <= 0 || r.sampleSize > DefaultSampleSize {
		r.sampleSize = DefaultSampleSize
	}
	if r.entryChars <= 0 || r.entryChars > DefaultEntryChars {
		r.entryChars = DefaultEntryChars
	}
	if r.log == nil {
		r.log = zap.NewNop()
	}
	return r
}

func (r *Remote) Strategy() journal.Strategy { return journal.StrategyRemote }

// Configured reports whether at least one model is available.
func (r *Remote) Configured() bool { return r != nil && len(r.clients) > 0 }

// Models lists the model identifiers in attempt order.
func (r *Remote) Models() []string {
	out := make([]string, len(r.clients))
	for i, c := range r.clients {
		out[i] = c.Model()
	}
	return out
}

// Generate tries each model once. A canceled ctx aborts the chain and
// returns ctx.Err() unwrapped.
func (r *Remote) Generate(ctx context.Context, recent, past []journal.Entry) (journal.Insight, error) {
	if !r.Configured() {
		return journal.Insight{}, newGenErr(KindNotConfigured, "", nil)
	}
	prompt, err := buildPrompt(sample(recent, past, r.sampleSize), r.entryChars)
	if err != nil {
		return journal.Insight{}, newGenErr(KindMalformedResponse, "", err)
	}

	var errs []error
	for _, c := range r.clients {
		if err := ctx.Err(); err != nil {
			return journal.Insight{}, err
		}
		in, err := r.attempt(ctx, c, prompt)
		if err == nil {
			return in, nil
		}
		if ctx.Err() != nil {
			return journal.Insight{}, ctx.Err()
		}
		r.log.Warn("remote insight attempt failed",
			zap.String("model", c.Model()),
			zap.String("kind", string(KindOf(err))),
			zap.Bool("permanent", llmclient.IsPermanent(err)),
			zap.Error(err))
		errs = append(errs, err)
	}
	return journal.Insight{}, newGenErr(KindAllModelsExhausted, "", errors.Join(errs...))
}

func (r *Remote) attempt(ctx context.Context, c llmclient.LLMClient, prompt string) (journal.Insight, error) {
	actx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	model := c.Model()
	raw, err := c.GenerateText(actx, prompt)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(actx.Err(), context.DeadlineExceeded) {
			return journal.Insight{}, newGenErr(KindTimeout, model, err)
		}
		if errors.Is(err, llmclient.ErrEmptyResponse) {
			return journal.Insight{}, newGenErr(KindMalformedResponse, model, err)
		}
		return journal.Insight{}, newGenErr(KindModelUnavailable, model, err)
	}
	return parseResponse(model, raw)
}
