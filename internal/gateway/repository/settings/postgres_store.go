package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"

	"thedesk/internal/journal"
)

// PostgresStore shares the entry store's database handle.
type PostgresStore struct {
	db         *sql.DB
	schemaOnce sync.Once
	schemaErr  error
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("db is nil")
	}
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS user_settings (
    user_id TEXT PRIMARY KEY,
    name TEXT NOT NULL DEFAULT '',
    email TEXT NOT NULL DEFAULT '',
    theme TEXT NOT NULL DEFAULT 'light',
    font_size TEXT NOT NULL DEFAULT 'medium',
    auto_zen BOOLEAN NOT NULL DEFAULT FALSE,
    notifications BOOLEAN NOT NULL DEFAULT TRUE,
    updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);
`)
	})
	return s.schemaErr
}

func (s *PostgresStore) Get(ctx context.Context, userID string) (journal.Preferences, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return journal.Preferences{}, err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return journal.Preferences{}, err
	}
	var p journal.Preferences
	err = s.db.QueryRowContext(ctx,
		`SELECT name, email, theme, font_size, auto_zen, notifications FROM user_settings WHERE user_id=$1`, userID).
		Scan(&p.Name, &p.Email, &p.Theme, &p.FontSize, &p.AutoZen, &p.Notifications)
	if errors.Is(err, sql.ErrNoRows) {
		return journal.Preferences{}, ErrNotFound
	}
	return p, err
}

func (s *PostgresStore) Put(ctx context.Context, userID string, p journal.Preferences) error {
	userID, err := requireUser(userID)
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO user_settings (user_id, name, email, theme, font_size, auto_zen, notifications, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
ON CONFLICT (user_id) DO UPDATE SET
    name = EXCLUDED.name,
    email = EXCLUDED.email,
    theme = EXCLUDED.theme,
    font_size = EXCLUDED.font_size,
    auto_zen = EXCLUDED.auto_zen,
    notifications = EXCLUDED.notifications,
    updated_at = NOW()
`, userID, p.Name, p.Email, p.Theme, p.FontSize, p.AutoZen, p.Notifications)
	return err
}

func (s *PostgresStore) Delete(ctx context.Context, userID string) error {
	userID, err := requireUser(userID)
	if err != nil {
		return err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `DELETE FROM user_settings WHERE user_id=$1`, userID)
	return err
}
