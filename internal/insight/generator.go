package insight

import (
	"context"
	"math/rand/v2"

	"thedesk/internal/journal"
)

// Generator turns a recent and a past window of entries into an Insight.
// Both windows are ordered most-recent-first.
type Generator interface {
	Generate(ctx context.Context, recent, past []journal.Entry) (journal.Insight, error)
	Strategy() journal.Strategy
}

// Rand is the randomness used for template and theme selection.
type Rand interface {
	// Intn returns a value in [0, n). n is always > 0.
	Intn(n int) int
}

type globalRand struct{}

func (globalRand) Intn(n int) int { return rand.IntN(n) }

// DefaultRand uses the goroutine-safe global source.
func DefaultRand() Rand { return globalRand{} }

// SeededRand returns a deterministic source. Not safe for concurrent use.
func SeededRand(seed uint64) Rand {
	return &seeded{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

type seeded struct{ r *rand.Rand }

func (s *seeded) Intn(n int) int { return s.r.IntN(n) }
