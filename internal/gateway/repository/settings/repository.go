package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"thedesk/internal/journal"
)

// Store keeps one preferences document per user.
type Store interface {
	Get(ctx context.Context, userID string) (journal.Preferences, error)
	// Put replaces the user's document.
	Put(ctx context.Context, userID string, p journal.Preferences) error
	// Delete removes the document; a missing document is not an error.
	Delete(ctx context.Context, userID string) error
}

var ErrNotFound = errors.New("settings not found")

func requireUser(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", fmt.Errorf("user_id is required")
	}
	return userID, nil
}
