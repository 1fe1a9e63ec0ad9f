package handler

import (
	"net/http"
)

// CacheSource returns a point-in-time snapshot of one cache's counters.
type CacheSource func() any

// DebugHandler exposes process-local cache counters for operators.
type DebugHandler struct {
	caches map[string]CacheSource
}

func NewDebugHandler(caches map[string]CacheSource) *DebugHandler {
	return &DebugHandler{caches: caches}
}

func (h *DebugHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/debug/cache", h.HandleCache)
}

func (h *DebugHandler) HandleCache(w http.ResponseWriter, _ *http.Request) {
	out := make(map[string]any, len(h.caches))
	for name, src := range h.caches {
		if src != nil {
			out[name] = src()
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"caches": out})
}
