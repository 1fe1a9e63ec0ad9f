package entry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"thedesk/internal/journal"
)

// Store persists journal entries per user. List results are ordered by
// OccurredAt descending and are copies the caller may keep.
type Store interface {
	ListRecent(ctx context.Context, userID string, limit int) ([]journal.Entry, error)
	Get(ctx context.Context, userID, id string) (journal.Entry, error)
	// Create assigns an ID when e.ID is empty and returns the stored value.
	Create(ctx context.Context, e journal.Entry) (journal.Entry, error)
	// Update replaces an existing entry.
	Update(ctx context.Context, e journal.Entry) error
	Delete(ctx context.Context, userID, id string) error
	// Clear removes every entry of the user and returns how many were removed.
	Clear(ctx context.Context, userID string) (int, error)
}

var ErrNotFound = errors.New("entry not found")

// MaxListLimit caps ListRecent regardless of the requested limit.
const MaxListLimit = 500

func clampLimit(limit int) int {
	if limit <= 0 || limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

func requireUser(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", fmt.Errorf("user_id is required")
	}
	return userID, nil
}

func prepareCreate(e journal.Entry) (journal.Entry, error) {
	uid, err := requireUser(e.UserID)
	if err != nil {
		return e, err
	}
	e.UserID = uid
	if strings.TrimSpace(e.ID) == "" {
		e.ID = uuid.NewString()
	}
	return e, e.Validate()
}
