package llm

import (
	"context"
	"sync"
	"time"
)

// attemptBucket paces insight attempts against one model. Providers bill and
// throttle per model, so every client in the chain owns its bucket and a slow
// refill on the first model never delays a fallback to the next one.
type attemptBucket struct {
	tokens   chan struct{}
	stopCh   chan struct{}
	stopOnce sync.Once
}

// newAttemptBucket allows perSecond attempts on average with up to burst
// back-to-back attempts. A non-positive rate means unlimited and yields nil,
// which every method accepts.
func newAttemptBucket(perSecond float64, burst int) *attemptBucket {
	if perSecond <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}

	b := &attemptBucket{
		tokens: make(chan struct{}, burst),
		stopCh: make(chan struct{}),
	}
	for i := 0; i < burst; i++ {
		b.tokens <- struct{}{}
	}

	every := time.Duration(float64(time.Second) / perSecond)
	if every <= 0 {
		every = time.Millisecond
	}
	go b.refill(every)
	return b
}

func (b *attemptBucket) refill(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			select {
			case b.tokens <- struct{}{}:
			default:
			}
		case <-b.stopCh:
			return
		}
	}
}

// Take waits for an attempt slot. It gives up when the insight request is
// canceled or when the client was closed during shutdown.
func (b *attemptBucket) Take(ctx context.Context) error {
	if b == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.stopCh:
		return context.Canceled
	case <-b.tokens:
		return nil
	}
}

// Stop ends the refill loop; the engine calls it through Close on shutdown.
func (b *attemptBucket) Stop() {
	if b == nil {
		return
	}
	b.stopOnce.Do(func() { close(b.stopCh) })
}
