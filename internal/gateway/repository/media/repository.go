package media

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Store is an opaque blob store for entry attachments. Objects are addressed
// by owner (the user) and a path below it.
type Store interface {
	Put(ctx context.Context, owner, path string, content []byte) error
	Get(ctx context.Context, owner, path string) ([]byte, error)
	// GetURL returns a time-limited download URL, or "" when the backend
	// cannot produce one.
	GetURL(ctx context.Context, owner, path string) (string, error)
	List(ctx context.Context, owner string) ([]string, error)
	Delete(ctx context.Context, owner, path string) error
}

var ErrNotFound = errors.New("media not found")

func objectKey(owner, path string) string {
	return strings.TrimSpace(owner) + "/" + strings.TrimLeft(strings.TrimSpace(path), "/")
}

func validate(owner, path string) (string, string, error) {
	owner = strings.TrimSpace(owner)
	path = strings.TrimSpace(path)
	if owner == "" {
		return "", "", fmt.Errorf("owner is required")
	}
	if path == "" {
		return "", "", fmt.Errorf("path is required")
	}
	if strings.Contains(path, "..") {
		return "", "", fmt.Errorf("invalid path %q", path)
	}
	return owner, path, nil
}
