package insight

import (
	"context"
	"time"

	"go.uber.org/zap"

	"thedesk/internal/journal"
)

const (
	// MinEntries is the smallest history an insight can be produced from.
	MinEntries = 2
	// MaxEntries bounds the history considered by one call.
	MaxEntries = 50
	// RecentWindow is the preferred size of the recent window.
	RecentWindow = 6
)

// Options configures an Engine.
type Options struct {
	// Remote is tried first when it is non-nil and configured.
	Remote Generator
	// Fallback defaults to a RuleBased generator over Rand.
	Fallback Generator
	Rand     Rand
	Logger   *zap.Logger
	Now      func() time.Time
}

// Engine picks a generation strategy and returns a complete Insight. It holds
// no per-call state and is safe for concurrent use when its generators are.
type Engine struct {
	remote   Generator
	fallback Generator
	log      *zap.Logger
	now      func() time.Time
}

func New(opts Options) *Engine {
	e := &Engine{
		remote:   opts.Remote,
		fallback: opts.Fallback,
		log:      opts.Logger,
		now:      opts.Now,
	}
	if e.fallback == nil {
		e.fallback = NewRuleBased(opts.Rand)
	}
	if e.log == nil {
		e.log = zap.NewNop()
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// RemoteConfigured reports whether Produce will try the remote strategy.
func (e *Engine) RemoteConfigured() bool { return configured(e.remote) }

func configured(g Generator) bool {
	if g == nil {
		return false
	}
	if c, ok := g.(interface{ Configured() bool }); ok {
		return c.Configured()
	}
	return true
}

// Split divides most-recent-first entries into the recent and past windows.
// At most MaxEntries are considered and past is never empty when there are
// at least MinEntries.
func Split(entries []journal.Entry) (recent, past []journal.Entry) {
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}
	n := min(RecentWindow, len(entries)-1)
	if n < 1 {
		return entries, nil
	}
	return entries[:n], entries[n:]
}

// Produce returns an Insight for entries, ordered most-recent-first. The only
// error callers see besides a canceled ctx is ErrInsufficientHistory.
func (e *Engine) Produce(ctx context.Context, entries []journal.Entry) (journal.Insight, error) {
	if len(entries) < MinEntries {
		return journal.Insight{}, ErrInsufficientHistory
	}
	recent, past := Split(entries)

	if configured(e.remote) {
		in, err := e.remote.Generate(ctx, recent, past)
		if err == nil && in.Complete() {
			return e.stamp(in, e.remote.Strategy()), nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return journal.Insight{}, ctxErr
		}
		if err == nil {
			err = malformed(in.Model, "incomplete insight")
		}
		e.log.Info("falling back to rule-based insight",
			zap.String("kind", string(KindOf(err))),
			zap.Error(err))
	}

	in, err := e.fallback.Generate(ctx, recent, past)
	if err != nil {
		return journal.Insight{}, err
	}
	return e.stamp(in, e.fallback.Strategy()), nil
}

func (e *Engine) stamp(in journal.Insight, s journal.Strategy) journal.Insight {
	in.StrategyUsed = s
	in.GeneratedAt = e.now()
	return in
}
