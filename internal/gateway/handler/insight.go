package handler

import (
	"net/http"

	"go.uber.org/zap"

	insightsvc "thedesk/internal/gateway/service/insight"
)

type InsightHandler struct {
	svc *insightsvc.Service
	log *zap.Logger
}

func NewInsightHandler(svc *insightsvc.Service, log *zap.Logger) *InsightHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &InsightHandler{svc: svc, log: log}
}

func (h *InsightHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/insights", h.HandleGenerate)
	mux.HandleFunc("GET /api/v1/insights", h.HandleHistory)
	mux.HandleFunc("DELETE /api/v1/insights", h.HandleClearHistory)
}

func (h *InsightHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	user, ok := userOf(w, r)
	if !ok {
		return
	}
	in, err := h.svc.Generate(r.Context(), user)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, in)
}

func (h *InsightHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := userOf(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"insights": h.svc.History(user),
		"inFlight": h.svc.InFlight(user),
	})
}

func (h *InsightHandler) HandleClearHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := userOf(w, r)
	if !ok {
		return
	}
	h.svc.ClearHistory(user)
	w.WriteHeader(http.StatusNoContent)
}
