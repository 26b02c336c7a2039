package api

import (
	"net/http"

	models "RugPull/internal/domain/models"
	"RugPull/internal/service/ratelimit"
	"RugPull/internal/services/prediction"
	"RugPull/internal/usecase"
	xhttp "RugPull/pkg/http"
	xlogger "RugPull/pkg/logger"

	"github.com/labstack/echo/v4"
)

// PredictionsHandler exposes the engine and round history over HTTP.
type PredictionsHandler struct {
	logger    *xlogger.Logger
	engine    *prediction.Engine
	history   *usecase.HistoryService
	collector *usecase.EventCollector
	rl        *ratelimit.Limiter
}

func NewPredictionsHandler(
	logger *xlogger.Logger,
	engine *prediction.Engine,
	history *usecase.HistoryService,
	collector *usecase.EventCollector,
) *PredictionsHandler {
	return &PredictionsHandler{
		logger:    logger,
		engine:    engine,
		history:   history,
		collector: collector,
		rl:        ratelimit.New(),
	}
}

func (h *PredictionsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/health", h.Health)
	g.GET("/status", h.Status)
	g.GET("/prediction", h.Prediction)
	g.GET("/recommendation", h.Recommendation)
	g.GET("/history", h.History)
	g.GET("/metrics-summary", h.MetricsSummary)
}

func (h *PredictionsHandler) Health(c echo.Context) error {
	connected := h.collector != nil && h.collector.IsConnected()
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"status":         "ok",
		"feed_connected": connected,
	})
}

func (h *PredictionsHandler) Status(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.engine.Status())
}

func (h *PredictionsHandler) Prediction(c echo.Context) error {
	req := &models.PredictionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	record, ok := h.engine.LastPrediction()
	if !ok {
		return xhttp.NotFoundResponse(c, "no active round")
	}
	if req.RoundID != "" && req.RoundID != record.RoundID {
		return xhttp.NotFoundResponse(c, "round not active")
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return xhttp.SuccessResponse(c, record)
}

func (h *PredictionsHandler) Recommendation(c echo.Context) error {
	rec, ok := h.engine.LastRecommendation()
	if !ok {
		return xhttp.NotFoundResponse(c, "no active round")
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return xhttp.SuccessResponse(c, rec)
}

func (h *PredictionsHandler) History(c echo.Context) error {
	if !h.rl.Allow(c.RealIP()+":history", 10, 2) {
		return xhttp.DataResponse(c, http.StatusTooManyRequests, "rate limit exceeded")
	}

	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	outcomes, err := h.history.RecentOutcomes(c.Request().Context(), req.Limit)
	if err != nil {
		h.logger.Error("history usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, outcomes, int64(len(outcomes)))
}

// MetricsSummary is a compact view of calibration health for
// dashboards that do not scrape Prometheus.
func (h *PredictionsHandler) MetricsSummary(c echo.Context) error {
	status := h.engine.Status()
	summary := map[string]interface{}{
		"rounds_completed":  status.RoundsCompleted,
		"accuracy":          status.Accuracy,
		"realized_coverage": status.RealizedCoverage,
		"target_coverage":   status.TargetCoverage,
		"drift_events":      status.DriftEvents,
		"quantile_used":     status.QuantileUsed,
	}
	if record, ok := h.engine.LastPrediction(); ok {
		summary["predicted_tick"] = record.PredictedTick
		summary["confidence"] = record.Confidence
	}
	return xhttp.SuccessResponse(c, summary)
}
