package settings

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"thedesk/internal/gateway/entity"
	settingsrepo "thedesk/internal/gateway/repository/settings"
	"thedesk/internal/journal"
)

// ErrInvalid marks a preferences document the caller must fix.
var ErrInvalid = errors.New("invalid settings")

type Service struct {
	store settingsrepo.Store
	log   *zap.Logger
}

func New(store settingsrepo.Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, log: log}
}

// Get returns the stored preferences, or the defaults when the user never
// saved any.
func (s *Service) Get(ctx context.Context, user entity.UserID) (journal.Preferences, error) {
	if user.IsZero() {
		return journal.Preferences{}, fmt.Errorf("%w: user is required", ErrInvalid)
	}
	p, err := s.store.Get(ctx, user.String())
	if errors.Is(err, settingsrepo.ErrNotFound) {
		return journal.DefaultPreferences(), nil
	}
	if err != nil {
		return journal.Preferences{}, fmt.Errorf("load settings: %w", err)
	}
	return p, nil
}

// Put replaces the user's preferences after normalizing them.
func (s *Service) Put(ctx context.Context, user entity.UserID, p journal.Preferences) (journal.Preferences, error) {
	if user.IsZero() {
		return journal.Preferences{}, fmt.Errorf("%w: user is required", ErrInvalid)
	}
	p = p.Normalize()
	if err := p.Validate(); err != nil {
		return journal.Preferences{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := s.store.Put(ctx, user.String(), p); err != nil {
		return journal.Preferences{}, fmt.Errorf("save settings: %w", err)
	}
	s.log.Debug("settings saved", zap.String("user_id", user.String()))
	return p, nil
}
