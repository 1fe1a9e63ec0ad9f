package llmclient

import (
	"context"
	"sync"
)

// Reply is one scripted response: either text or an error. A non-nil Delay
// runs before the reply is returned.
type Reply struct {
	Text  string
	Err   error
	Delay interface{ Wait(ctx context.Context) error }
}

// ScriptedClient replays a fixed sequence of replies for offline runs and
// tests. After the script is exhausted the last reply repeats.
type ScriptedClient struct {
	model string

	mu      sync.Mutex
	replies []Reply
	calls   int
	prompts []string
}

func NewScriptedClient(model string, replies ...Reply) *ScriptedClient {
	return &ScriptedClient{model: model, replies: replies}
}

func (s *ScriptedClient) Name() string  { return "Scripted:" + s.model }
func (s *ScriptedClient) Model() string { return s.model }
func (s *ScriptedClient) Close() error  { return nil }

func (s *ScriptedClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	var r Reply
	if n := len(s.replies); n > 0 {
		idx := s.calls
		if idx >= n {
			idx = n - 1
		}
		r = s.replies[idx]
	}
	s.calls++
	s.mu.Unlock()

	if r.Delay != nil {
		if err := r.Delay.Wait(ctx); err != nil {
			return "", err
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if r.Err != nil {
		return "", r.Err
	}
	if r.Text == "" {
		return "", ErrEmptyResponse
	}
	return r.Text, nil
}

// Calls returns how many times GenerateText ran.
func (s *ScriptedClient) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Prompts returns a copy of every prompt received.
func (s *ScriptedClient) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}

// BlockUntilDone is a Delay that never finishes on its own.
type BlockUntilDone struct{}

func (BlockUntilDone) Wait(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}
