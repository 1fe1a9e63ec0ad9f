package insight

import (
	"context"
	"errors"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"thedesk/internal/gateway/entity"
	entryrepo "thedesk/internal/gateway/repository/entry"
	"thedesk/internal/insight"
	"thedesk/internal/journal"
)

// ErrInFlight is returned when the user already has a generation running.
var ErrInFlight = errors.New("insight generation already in flight")

const (
	DefaultHistorySize = 20
	DefaultMaxUsers    = 1024
)

// Producer is the engine entry point the service drives.
type Producer interface {
	Produce(ctx context.Context, entries []journal.Entry) (journal.Insight, error)
}

type Options struct {
	Entries entryrepo.Store
	Engine  Producer
	// HistorySize is how many insights are kept per user.
	HistorySize int
	// MaxUsers bounds how many users have a history at once.
	MaxUsers int
	Logger   *zap.Logger
}

type Service struct {
	entries     entryrepo.Store
	engine      Producer
	log         *zap.Logger
	historySize int

	mu       sync.Mutex
	inflight map[string]struct{}
	history  *lru.Cache[string, []journal.Insight]
}

func New(opts Options) (*Service, error) {
	if opts.Entries == nil {
		return nil, fmt.Errorf("entry store is required")
	}
	if opts.Engine == nil {
		return nil, fmt.Errorf("engine is required")
	}
	if opts.HistorySize <= 0 {
		opts.HistorySize = DefaultHistorySize
	}
	if opts.MaxUsers <= 0 {
		opts.MaxUsers = DefaultMaxUsers
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	cache, err := lru.New[string, []journal.Insight](opts.MaxUsers)
	if err != nil {
		return nil, fmt.Errorf("init insight history: %w", err)
	}
	return &Service{
		entries:     opts.Entries,
		engine:      opts.Engine,
		log:         opts.Logger,
		historySize: opts.HistorySize,
		inflight:    make(map[string]struct{}),
		history:     cache,
	}, nil
}

// Generate produces an insight over the user's most recent entries. A result
// that arrives after ctx ended is dropped without being recorded.
func (s *Service) Generate(ctx context.Context, user entity.UserID) (journal.Insight, error) {
	key := user.String()
	if key == "" {
		return journal.Insight{}, fmt.Errorf("user is required")
	}
	if !s.begin(key) {
		return journal.Insight{}, ErrInFlight
	}
	defer s.end(key)

	entries, err := s.entries.ListRecent(ctx, key, insight.MaxEntries)
	if err != nil {
		return journal.Insight{}, fmt.Errorf("load entries: %w", err)
	}
	out, err := s.engine.Produce(ctx, entries)
	if err != nil {
		return journal.Insight{}, err
	}
	if err := ctx.Err(); err != nil {
		s.log.Info("insight discarded after cancellation", zap.String("user_id", key))
		return journal.Insight{}, err
	}
	s.record(key, out)
	return out, nil
}

// InFlight reports whether the user has a generation running.
func (s *Service) InFlight(user entity.UserID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inflight[user.String()]
	return ok
}

// History returns the user's kept insights, newest first.
func (s *Service) History(user entity.UserID) []journal.Insight {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, ok := s.history.Get(user.String())
	if !ok {
		return []journal.Insight{}
	}
	return append([]journal.Insight(nil), list...)
}

// ClearHistory forgets the user's insights.
func (s *Service) ClearHistory(user entity.UserID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history.Remove(user.String())
}

func (s *Service) begin(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[key]; busy {
		return false
	}
	s.inflight[key] = struct{}{}
	return true
}

func (s *Service) end(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, key)
}

func (s *Service) record(key string, in journal.Insight) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, _ := s.history.Get(key)
	next := make([]journal.Insight, 0, min(len(prev)+1, s.historySize))
	next = append(next, in)
	for _, p := range prev {
		if len(next) >= s.historySize {
			break
		}
		next = append(next, p)
	}
	s.history.Add(key, next)
}
