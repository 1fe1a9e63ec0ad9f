package entry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"thedesk/internal/journal"
)

type PostgresStore struct {
	db         *sql.DB
	schemaOnce sync.Once
	schemaErr  error
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// OpenPostgres opens and pings a pgx-backed database handle.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("db is nil")
	}
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS journal_entries (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    kind TEXT NOT NULL,
    title TEXT NOT NULL DEFAULT '',
    author TEXT NOT NULL DEFAULT '',
    body TEXT NOT NULL DEFAULT '',
    pages INTEGER NOT NULL DEFAULT 0,
    minutes_spent INTEGER NOT NULL DEFAULT 0,
    word_count INTEGER NOT NULL DEFAULT 0,
    char_count INTEGER NOT NULL DEFAULT 0,
    mood TEXT NOT NULL DEFAULT '',
    image_key TEXT NOT NULL DEFAULT '',
    occurred_at TIMESTAMP WITH TIME ZONE NOT NULL,
    logged_date TEXT NOT NULL DEFAULT '',
    updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_journal_entries_user_time ON journal_entries(user_id, occurred_at DESC);
`)
	})
	return s.schemaErr
}

const entryColumns = `id, user_id, kind, title, author, body, pages, minutes_spent, word_count, char_count, mood, image_key, occurred_at, logged_date`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(r rowScanner) (journal.Entry, error) {
	var e journal.Entry
	var kind string
	err := r.Scan(&e.ID, &e.UserID, &kind, &e.Title, &e.Author, &e.Body, &e.Pages, &e.MinutesSpent,
		&e.WordCount, &e.CharCount, &e.Mood, &e.ImageKey, &e.OccurredAt, &e.LoggedDate)
	e.Kind = journal.Kind(kind)
	return e, err
}

func (s *PostgresStore) ListRecent(ctx context.Context, userID string, limit int) ([]journal.Entry, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM journal_entries WHERE user_id=$1 ORDER BY occurred_at DESC, id DESC LIMIT $2`,
		userID, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []journal.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Get(ctx context.Context, userID, id string) (journal.Entry, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return journal.Entry{}, err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return journal.Entry{}, err
	}
	e, err := scanEntry(s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM journal_entries WHERE user_id=$1 AND id=$2`, userID, strings.TrimSpace(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return journal.Entry{}, ErrNotFound
	}
	return e, err
}

func (s *PostgresStore) Create(ctx context.Context, e journal.Entry) (journal.Entry, error) {
	e, err := prepareCreate(e)
	if err != nil {
		return journal.Entry{}, err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return journal.Entry{}, err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO journal_entries (`+entryColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
`, e.ID, e.UserID, string(e.Kind), e.Title, e.Author, e.Body, e.Pages, e.MinutesSpent,
		e.WordCount, e.CharCount, e.Mood, e.ImageKey, e.OccurredAt, e.LoggedDate)
	if err != nil {
		return journal.Entry{}, err
	}
	return e, nil
}

func (s *PostgresStore) Update(ctx context.Context, e journal.Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
UPDATE journal_entries SET kind=$3, title=$4, author=$5, body=$6, pages=$7, minutes_spent=$8,
    word_count=$9, char_count=$10, mood=$11, image_key=$12, occurred_at=$13, logged_date=$14, updated_at=$15
WHERE user_id=$1 AND id=$2
`, e.UserID, e.ID, string(e.Kind), e.Title, e.Author, e.Body, e.Pages, e.MinutesSpent,
		e.WordCount, e.CharCount, e.Mood, e.ImageKey, e.OccurredAt, e.LoggedDate, time.Now())
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *PostgresStore) Delete(ctx context.Context, userID, id string) error {
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM journal_entries WHERE user_id=$1 AND id=$2`,
		strings.TrimSpace(userID), strings.TrimSpace(id))
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *PostgresStore) Clear(ctx context.Context, userID string) (int, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return 0, err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM journal_entries WHERE user_id=$1`, userID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
