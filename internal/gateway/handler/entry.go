package handler

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	entrysvc "thedesk/internal/gateway/service/entry"
)

// EntryHandler serves the journal REST surface.
type EntryHandler struct {
	svc *entrysvc.Service
	log *zap.Logger
}

func NewEntryHandler(svc *entrysvc.Service, log *zap.Logger) *EntryHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &EntryHandler{svc: svc, log: log}
}

func (h *EntryHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/entries", h.HandleList)
	mux.HandleFunc("POST /api/v1/entries", h.HandleCreate)
	mux.HandleFunc("DELETE /api/v1/entries", h.HandleClear)
	mux.HandleFunc("GET /api/v1/entries/{id}", h.HandleGet)
	mux.HandleFunc("PUT /api/v1/entries/{id}", h.HandleUpdate)
	mux.HandleFunc("DELETE /api/v1/entries/{id}", h.HandleDelete)
	mux.HandleFunc("PUT /api/v1/entries/{id}/image", h.HandleUploadImage)
	mux.HandleFunc("GET /api/v1/entries/{id}/image", h.HandleImage)
	mux.HandleFunc("GET /api/v1/stats", h.HandleStats)
	mux.HandleFunc("GET /api/v1/ambient", h.HandleAmbient)
}

func (h *EntryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, ok := userOf(w, r)
	if !ok {
		return
	}
	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	list, err := h.svc.List(r.Context(), user, limit)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": list})
}

func (h *EntryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := userOf(w, r)
	if !ok {
		return
	}
	var in entrysvc.Input
	if !decodeJSON(w, r, &in) {
		return
	}
	e, err := h.svc.Create(r.Context(), user, in)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (h *EntryHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := userOf(w, r)
	if !ok {
		return
	}
	e, err := h.svc.Get(r.Context(), user, r.PathValue("id"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *EntryHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := userOf(w, r)
	if !ok {
		return
	}
	var in entrysvc.Input
	if !decodeJSON(w, r, &in) {
		return
	}
	e, err := h.svc.Update(r.Context(), user, r.PathValue("id"), in)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *EntryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := userOf(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), user, r.PathValue("id")); err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *EntryHandler) HandleClear(w http.ResponseWriter, r *http.Request) {
	user, ok := userOf(w, r)
	if !ok {
		return
	}
	n, err := h.svc.Clear(r.Context(), user)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": n})
}

// HandleUploadImage takes the raw image as the request body and its file
// name from the name query parameter.
func (h *EntryHandler) HandleUploadImage(w http.ResponseWriter, r *http.Request) {
	user, ok := userOf(w, r)
	if !ok {
		return
	}
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		badRequest(w, "name is required")
		return
	}
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImageBody))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "image too large", Code: "too_large"})
		return
	}
	e, err := h.svc.AttachImage(r.Context(), user, r.PathValue("id"), name, raw)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// HandleImage redirects to a presigned URL when the store provides one and
// streams the bytes otherwise.
func (h *EntryHandler) HandleImage(w http.ResponseWriter, r *http.Request) {
	user, ok := userOf(w, r)
	if !ok {
		return
	}
	raw, url, err := h.svc.Image(r.Context(), user, r.PathValue("id"))
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if url != "" && r.URL.Query().Get("inline") == "" {
		http.Redirect(w, r, url, http.StatusFound)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(raw))
	w.Header().Set("Content-Length", strconv.Itoa(len(raw)))
	_, _ = w.Write(raw)
}

func (h *EntryHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	user, ok := userOf(w, r)
	if !ok {
		return
	}
	sum, err := h.svc.Stats(r.Context(), user)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (h *EntryHandler) HandleAmbient(w http.ResponseWriter, r *http.Request) {
	user, ok := userOf(w, r)
	if !ok {
		return
	}
	a, found, err := h.svc.Ambient(r.Context(), user)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if !found {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, a)
}
