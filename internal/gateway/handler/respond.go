package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"thedesk/internal/gateway/entity"
	entryrepo "thedesk/internal/gateway/repository/entry"
	mediarepo "thedesk/internal/gateway/repository/media"
	entrysvc "thedesk/internal/gateway/service/entry"
	insightsvc "thedesk/internal/gateway/service/insight"
	settingssvc "thedesk/internal/gateway/service/settings"
	"thedesk/internal/insight"
	"thedesk/internal/util/jsonutil"
)

const (
	maxJSONBody  = 1 << 20
	maxImageBody = 10 << 20

	// statusClientClosed is logged when the caller went away mid-request.
	statusClientClosed = 499
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// StatusFor maps service errors onto HTTP statuses and stable codes.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, insight.ErrInsufficientHistory):
		return http.StatusUnprocessableEntity, "insufficient_history"
	case errors.Is(err, insightsvc.ErrInFlight):
		return http.StatusConflict, "in_flight"
	case errors.Is(err, entryrepo.ErrNotFound), errors.Is(err, mediarepo.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, entrysvc.ErrInvalid), errors.Is(err, settingssvc.ErrInvalid):
		return http.StatusBadRequest, "invalid_argument"
	case errors.Is(err, context.Canceled):
		return statusClientClosed, "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "deadline_exceeded"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// writeJSON leaves entry markup unescaped so bodies round-trip as written.
func writeJSON(w http.ResponseWriter, status int, v any) {
	raw, err := jsonutil.MarshalNoEscape(v)
	if err != nil {
		http.Error(w, `{"error":"encode response","code":"internal"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(raw)
}

func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	status, code := StatusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, errorBody{Error: err.Error(), Code: code})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: msg, Code: "invalid_argument"})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		badRequest(w, "invalid json body")
		return false
	}
	return true
}

func userOf(w http.ResponseWriter, r *http.Request) (entity.UserID, bool) {
	id, ok := entity.UserFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "user is required", Code: "unauthenticated"})
		return "", false
	}
	return id, true
}
