package rpc

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"thedesk/internal/gateway/entity"
	insightsvc "thedesk/internal/gateway/service/insight"
	"thedesk/internal/insight"
	"thedesk/internal/journal"
)

const (
	watchWSWriteWait = 10 * time.Second
	watchWSPongWait  = 60 * time.Second
	watchWSPingEvery = (watchWSPongWait * 9) / 10
)

var watchWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type watchWSInbound struct {
	Type string `json:"type"`
}

type watchWSOutbound struct {
	Type    string           `json:"type"`
	Insight *journal.Insight `json:"insight,omitempty"`
	Code    string           `json:"code,omitempty"`
	Message string           `json:"message,omitempty"`
}

// InsightWatchHandler streams generation progress over a websocket. Closing
// the socket cancels whatever generation it started.
type InsightWatchHandler struct {
	svc *insightsvc.Service
	log *zap.Logger
}

func NewInsightWatchHandler(svc *insightsvc.Service, log *zap.Logger) *InsightWatchHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &InsightWatchHandler{svc: svc, log: log}
}

func (h *InsightWatchHandler) HandleWatch(w http.ResponseWriter, r *http.Request) {
	user, ok := entity.UserFrom(r.Context())
	if !ok {
		http.Error(w, "user is required", http.StatusUnauthorized)
		return
	}

	conn, err := watchWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(watchWSPongWait)); err != nil {
		h.log.Debug("watch ws set read deadline failed", zap.Error(err))
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(watchWSPongWait))
	})

	writeCh := make(chan watchWSOutbound, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(watchWSPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(watchWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(watchWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
		<-writerDone
	}()

	for {
		var in watchWSInbound
		if err := conn.ReadJSON(&in); err != nil {
			return
		}
		switch strings.ToLower(strings.TrimSpace(in.Type)) {
		case "ping":
			pushWatchWS(writeCh, watchWSOutbound{Type: "pong"})
		case "generate":
			wg.Add(1)
			go func() {
				defer wg.Done()
				h.generate(ctx, user, writeCh)
			}()
		case "":
			pushWatchWS(writeCh, watchWSOutbound{Type: "error", Code: "invalid_argument", Message: "type is required"})
		default:
			pushWatchWS(writeCh, watchWSOutbound{Type: "error", Code: "invalid_argument", Message: "unsupported type: " + in.Type})
		}
	}
}

func (h *InsightWatchHandler) generate(ctx context.Context, user entity.UserID, writeCh chan watchWSOutbound) {
	pushWatchWS(writeCh, watchWSOutbound{Type: "started"})
	in, err := h.svc.Generate(ctx, user)
	if err != nil {
		if ctx.Err() != nil {
			h.log.Debug("watch generation canceled", zap.String("user_id", user.String()))
			return
		}
		pushWatchWS(writeCh, watchWSOutbound{Type: "error", Code: watchErrorCode(err), Message: err.Error()})
		return
	}
	pushWatchWS(writeCh, watchWSOutbound{Type: "insight", Insight: &in})
}

func watchErrorCode(err error) string {
	switch {
	case errors.Is(err, insight.ErrInsufficientHistory):
		return "insufficient_history"
	case errors.Is(err, insightsvc.ErrInFlight):
		return "in_flight"
	default:
		return "internal"
	}
}

func pushWatchWS(writeCh chan watchWSOutbound, out watchWSOutbound) {
	if writeCh == nil {
		return
	}
	select {
	case writeCh <- out:
		return
	default:
	}
	select {
	case <-writeCh:
	default:
	}
	select {
	case writeCh <- out:
	default:
	}
}
