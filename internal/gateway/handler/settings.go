package handler

import (
	"net/http"

	"go.uber.org/zap"

	settingssvc "thedesk/internal/gateway/service/settings"
)

// SettingsHandler serves the per-user preferences document.
type SettingsHandler struct {
	svc *settingssvc.Service
	log *zap.Logger
}

func NewSettingsHandler(svc *settingssvc.Service, log *zap.Logger) *SettingsHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &SettingsHandler{svc: svc, log: log}
}

func (h *SettingsHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/settings", h.HandleGet)
	mux.HandleFunc("PUT /api/v1/settings", h.HandlePut)
}

func (h *SettingsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := userOf(w, r)
	if !ok {
		return
	}
	p, err := h.svc.Get(r.Context(), user)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandlePut overlays the request body on the current document, so fields
// the client leaves out keep their saved values.
func (h *SettingsHandler) HandlePut(w http.ResponseWriter, r *http.Request) {
	user, ok := userOf(w, r)
	if !ok {
		return
	}
	p, err := h.svc.Get(r.Context(), user)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if !decodeJSON(w, r, &p) {
		return
	}
	saved, err := h.svc.Put(r.Context(), user, p)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}
