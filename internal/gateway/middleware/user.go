package middleware

import (
	"net/http"
	"strings"

	"thedesk/internal/gateway/entity"
)

// UserHeader carries the caller identity set by the hosted auth layer.
const UserHeader = "X-User-ID"

// User attaches the caller identity to the request context. When fallback is
// non-zero it is used for requests without the header; otherwise those
// requests are rejected.
func User(fallback entity.UserID) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := entity.NormalizeUserID(r.Header.Get(UserHeader))
			if id.IsZero() {
				// Browsers cannot set headers on websocket upgrades.
				id = entity.NormalizeUserID(r.URL.Query().Get("user_id"))
			}
			if id.IsZero() {
				id = fallback
			}
			if id.IsZero() || strings.ContainsAny(id.String(), "/\\") {
				http.Error(w, "missing or invalid "+UserHeader, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(entity.WithUser(r.Context(), id)))
		})
	}
}
