package api

import (
	"errors"
	"fmt"
	"net/http"

	"SmartDCA/internal/domain/models"
	domrepo "SmartDCA/internal/domain/repository"
	"SmartDCA/internal/service/ratelimit"
	"SmartDCA/internal/usecase"
	xhttp "SmartDCA/pkg/http"
	applogger "SmartDCA/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Default per-client token bucket for the analysis endpoint. Simulations are
// CPU-bound and fan out to upstream price APIs, so the bucket is small.
const (
	defaultRLCapacity = 5
	defaultRLRefill   = 1
)

// DCAEchoHandler exposes the Smart DCA analyzer over HTTP.
type DCAEchoHandler struct {
	logger   *applogger.Logger
	analyzer *usecase.Analyzer
	eval     usecase.EvalPolicy
	rl       *ratelimit.Limiter
	rlCap    float64
	rlRefill float64
}

func NewDCAEchoHandler(logger *applogger.Logger, analyzer *usecase.Analyzer) *DCAEchoHandler {
	return &DCAEchoHandler{
		logger:   logger,
		analyzer: analyzer,
		rl:       ratelimit.New(),
		rlCap:    defaultRLCapacity,
		rlRefill: defaultRLRefill,
	}
}

// SetEvalPolicy overrides how the buy day is picked within each month.
func (h *DCAEchoHandler) SetEvalPolicy(p usecase.EvalPolicy) { h.eval = p }

// SetRateLimit overrides the per-client token bucket parameters.
func (h *DCAEchoHandler) SetRateLimit(capacity, refillPerSec float64) {
	if capacity > 0 {
		h.rlCap = capacity
	}
	if refillPerSec > 0 {
		h.rlRefill = refillPerSec
	}
}

func (h *DCAEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/analyze", h.Analyze)
	g.GET("", h.Info)
	e.GET("/health", h.Health)
}

func (h *DCAEchoHandler) Analyze(c echo.Context) error {
	if !h.rl.Allow(c.RealIP(), h.rlCap, h.rlRefill) {
		if h.logger != nil {
			h.logger.Warn("analyze rate_limited", applogger.String("remote", c.RealIP()))
		}
		return xhttp.DataResponse(c, http.StatusTooManyRequests, "rate limited")
	}

	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	params := usecase.BatchParams{
		MonthlyAmount:     req.MonthlyAmount,
		Months:            req.Months,
		Profile:           domrepo.NormalizeProfile(req.StrategyProfile),
		AllocationMode:    domrepo.NormalizeAllocationMode(req.AllocationMode),
		MinSignalStrength: req.MinSignalStrength,
		Eval:              h.eval,
	}
	if req.MinTradeAmount != nil {
		params.MinTradeAmount = *req.MinTradeAmount
	}

	batch, err := h.analyzer.Analyze(c.Request().Context(), req.Symbols, params)
	if err != nil {
		if errors.Is(err, models.ErrInvalidConfig) {
			return xhttp.BadRequestResponse(c, xhttp.BadRequestError(err.Error()))
		}
		h.logger.Error("analyze usecase error", applogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}

	if len(batch.Results) == 0 {
		resp := &models.AnalyzeResponse{
			Success: false,
			Results: []models.Result{},
			Errors:  batch.Failed,
			Message: "no symbols could be analyzed",
		}
		return xhttp.BadRequestResponse(c, resp)
	}

	resp := &models.AnalyzeResponse{
		Success: true,
		Results: batch.Results,
		Summary: usecase.Summarize(batch.Results),
		Errors:  batch.Failed,
	}
	if len(batch.Failed) > 0 {
		resp.Message = fmt.Sprintf("%d of %d symbols failed", len(batch.Failed), len(req.Symbols))
	}
	return xhttp.SuccessResponse(c, resp)
}

// Info describes the service and its endpoints.
func (h *DCAEchoHandler) Info(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"service": "smart-dca-analyzer",
		"endpoints": map[string]string{
			"analyze": "POST /api/analyze",
			"health":  "GET /health",
			"metrics": "GET /metrics",
		},
	})
}

func (h *DCAEchoHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}
