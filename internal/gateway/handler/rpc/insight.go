package rpc

import (
	"context"
	"errors"
	"net/http"

	"connectrpc.com/connect"
	"go.uber.org/zap"

	"thedesk/internal/gateway/entity"
	insightsvc "thedesk/internal/gateway/service/insight"
	"thedesk/internal/insight"
	"thedesk/internal/journal"
)

const (
	InsightServiceName = "thedesk.v1.InsightService"

	InsightServiceGenerateProcedure = "/thedesk.v1.InsightService/Generate"
	InsightServiceHistoryProcedure  = "/thedesk.v1.InsightService/History"
)

type GenerateRequest struct{}

type GenerateResponse struct {
	Insight journal.Insight `json:"insight"`
}

type HistoryRequest struct{}

type HistoryResponse struct {
	Insights []journal.Insight `json:"insights"`
}

// InsightHandler serves InsightService over Connect with a JSON codec.
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

func (h *InsightHandler) Generate(ctx context.Context, _ *connect.Request[GenerateRequest]) (*connect.Response[GenerateResponse], error) {
	user, ok := entity.UserFrom(ctx)
	if !ok {
		return nil, connect.NewError(connect.CodeUnauthenticated, errors.New("user is required"))
	}
	in, err := h.svc.Generate(ctx, user)
	if err != nil {
		return nil, h.toConnectError(err)
	}
	return connect.NewResponse(&GenerateResponse{Insight: in}), nil
}

func (h *InsightHandler) History(ctx context.Context, _ *connect.Request[HistoryRequest]) (*connect.Response[HistoryResponse], error) {
	user, ok := entity.UserFrom(ctx)
	if !ok {
		return nil, connect.NewError(connect.CodeUnauthenticated, errors.New("user is required"))
	}
	return connect.NewResponse(&HistoryResponse{Insights: h.svc.History(user)}), nil
}

func (h *InsightHandler) toConnectError(err error) error {
	switch {
	case errors.Is(err, insight.ErrInsufficientHistory):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, insightsvc.ErrInFlight):
		return connect.NewError(connect.CodeAborted, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		h.log.Error("insight rpc failed", zap.Error(err))
		return connect.NewError(connect.CodeInternal, err)
	}
}

// NewInsightServiceHandler builds the path prefix and handler for mounting
// InsightService on a mux.
func NewInsightServiceHandler(h *InsightHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)
	generate := connect.NewUnaryHandler(InsightServiceGenerateProcedure, h.Generate, opts...)
	history := connect.NewUnaryHandler(InsightServiceHistoryProcedure, h.History, opts...)

	mux := http.NewServeMux()
	mux.Handle(InsightServiceGenerateProcedure, generate)
	mux.Handle(InsightServiceHistoryProcedure, history)
	return "/" + InsightServiceName + "/", mux
}

// NewInsightServiceClient returns Connect clients for both procedures.
func NewInsightServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) (*connect.Client[GenerateRequest, GenerateResponse], *connect.Client[HistoryRequest, HistoryResponse]) {
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)
	return connect.NewClient[GenerateRequest, GenerateResponse](httpClient, baseURL+InsightServiceGenerateProcedure, opts...),
		connect.NewClient[HistoryRequest, HistoryResponse](httpClient, baseURL+InsightServiceHistoryProcedure, opts...)
}
