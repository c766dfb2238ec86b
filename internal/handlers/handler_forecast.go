package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/atelierhq/atelier_finance_app/internal/apperrors"
	portssvc "github.com/atelierhq/atelier_finance_app/internal/core/ports/services"
	"github.com/atelierhq/atelier_finance_app/internal/dto"
	"github.com/atelierhq/atelier_finance_app/internal/middleware"
)

// forecastHandler handles HTTP requests for earned-value and cash-flow analytics.
type forecastHandler struct {
	forecastService portssvc.ForecastSvcFacade
}

// newForecastHandler creates a new forecastHandler.
func newForecastHandler(forecastService portssvc.ForecastSvcFacade) *forecastHandler {
	return &forecastHandler{
		forecastService: forecastService,
	}
}

func registerForecastRoutes(rg *gin.RouterGroup, forecastService portssvc.ForecastSvcFacade) {
	h := newForecastHandler(forecastService)

	forecast := rg.Group("/forecast")
	{
		forecast.POST("/projects/:projectID/earned-value", h.computeEarnedValue)
		forecast.POST("/cash-flow", h.projectCashFlow)
		forecast.POST("/scenarios", h.compareScenarios)
		forecast.POST("/dashboard", h.forecastFromDashboard)
	}
}

func (h *forecastHandler) computeEarnedValue(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	projectID := c.Param("projectID")

	var req dto.EarnedValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	asOf := time.Now().UTC()
	if asOfStr := c.Query("asOf"); asOfStr != "" {
		parsed, err := time.Parse(time.RFC3339, asOfStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid asOf parameter, expected RFC3339"})
			return
		}
		asOf = parsed
	}

	metrics, err := h.forecastService.ComputeEarnedValue(c.Request.Context(), projectID, req.ActualPctComplete, asOf)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		case errors.Is(err, apperrors.ErrComputationUndefined):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrInsufficientData):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to compute earned value", slog.String("error", err.Error()), slog.String("project_id", projectID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute earned value"})
		}
		return
	}

	c.JSON(http.StatusOK, metrics)
}

func (h *forecastHandler) projectCashFlow(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CashFlowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	periods, err := h.forecastService.ProjectCashFlow(req)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to project cash flow", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to project cash flow"})
		return
	}

	threshold := decimal.Zero
	if req.MinimumCashThreshold != nil {
		threshold = *req.MinimumCashThreshold
	}
	alerts := h.forecastService.DetectAlerts(periods, threshold)

	c.JSON(http.StatusOK, dto.CashFlowResponse{Periods: periods, Alerts: alerts})
}

func (h *forecastHandler) compareScenarios(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ScenarioComparisonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	projections, err := h.forecastService.CompareScenarios(req)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to compare scenarios", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compare scenarios"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"scenarios": projections})
}

func (h *forecastHandler) forecastFromDashboard(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CashFlowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	resp, err := h.forecastService.ForecastFromDashboard(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to build dashboard forecast", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build dashboard forecast"})
		return
	}

	c.JSON(http.StatusOK, resp)
}
