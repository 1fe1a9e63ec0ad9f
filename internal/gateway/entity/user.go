package entity

import (
	"context"
	"strings"
)

// LocalUserID is used when no identity header is present in local mode.
const LocalUserID UserID = "local-user"

// UserID identifies the owner of entries, media and insights.
type UserID string

func NormalizeUserID(raw string) UserID {
	return UserID(strings.TrimSpace(raw))
}

func (id UserID) String() string {
	return strings.TrimSpace(string(id))
}

func (id UserID) IsZero() bool {
	return id.String() == ""
}

type userKey struct{}

// WithUser attaches the caller's identity to ctx.
func WithUser(ctx context.Context, id UserID) context.Context {
	return context.WithValue(ctx, userKey{}, id)
}

// UserFrom returns the identity attached by WithUser.
func UserFrom(ctx context.Context) (UserID, bool) {
	id, ok := ctx.Value(userKey{}).(UserID)
	if !ok || id.IsZero() {
		return "", false
	}
	return id, true
}
