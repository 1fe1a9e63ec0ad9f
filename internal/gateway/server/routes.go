package server

import (
	"net/http"

	"go.uber.org/zap"

	"thedesk/internal/gateway/entity"
	"thedesk/internal/gateway/handler"
	"thedesk/internal/gateway/handler/rpc"
	"thedesk/internal/gateway/middleware"
)

type Handlers struct {
	Entries      *handler.EntryHandler
	Insights     *handler.InsightHandler
	InsightRPC   *rpc.InsightHandler
	InsightWatch *rpc.InsightWatchHandler
	Settings     *handler.SettingsHandler
	// Debug is optional.
	Debug *handler.DebugHandler
}

// NewMux mounts every route. fallbackUser is applied to requests without an
// identity header and should only be set for local runs.
func NewMux(h Handlers, fallbackUser entity.UserID, log *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	api := http.NewServeMux()
	// RPC Handlers
	api.Handle(rpc.NewInsightServiceHandler(h.InsightRPC))
	api.HandleFunc("GET /api/v1/insights/watch", h.InsightWatch.HandleWatch)

	// REST Handlers
	h.Entries.Register(api)
	h.Insights.Register(api)
	h.Settings.Register(api)
	if h.Debug != nil {
		h.Debug.Register(api)
	}

	mux.Handle("/", middleware.User(fallbackUser)(api))

	// Middleware
	return middleware.CORS(middleware.AccessLog(log)(mux))
}
