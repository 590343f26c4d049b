package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"medbill/internal/common"
	"medbill/internal/services"
)

// MetricsHandlers handles HTTP requests for billing dashboard metrics
type MetricsHandlers struct {
	metricsService services.MetricsServiceInterface
}

// NewMetricsHandlers creates a new metrics handlers instance
func NewMetricsHandlers(metricsService services.MetricsServiceInterface) *MetricsHandlers {
	return &MetricsHandlers{metricsService: metricsService}
}

// GetDashboardMetrics handles GET /bills/metrics
func (h *MetricsHandlers) GetDashboardMetrics(c echo.Context) error {
	ctx := c.Request().Context()

	startParam := c.QueryParam("startDate")
	endParam := c.QueryParam("endDate")

	// Default to today when no range is requested.
	now := time.Now()
	startDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	endDate := startDate.Add(24*time.Hour - time.Nanosecond)

	if startParam != "" {
		if err := common.ValidateDateFormat(startParam, "startDate"); err != nil {
			return common.SendValidationError(c, "startDate", err.Error())
		}
		startDate, _ = time.Parse("2006-01-02", startParam)
	}
	if endParam != "" {
		if err := common.ValidateDateFormat(endParam, "endDate"); err != nil {
			return common.SendValidationError(c, "endDate", err.Error())
		}
		parsed, _ := time.Parse("2006-01-02", endParam)
		endDate = parsed.Add(24*time.Hour - time.Nanosecond)
	}

	if err := common.ValidateDateRange(startDate, endDate); err != nil {
		return common.SendValidationError(c, "dateRange", err.Error())
	}

	metrics, err := h.metricsService.DashboardMetrics(ctx, startDate, endDate)
	if err != nil {
		return sendBillingError(c, err)
	}
	return c.JSON(http.StatusOK, metrics)
}

// JobStatusReporter reports the background jobs currently registered.
type JobStatusReporter interface {
	GetJobStatus() map[string]interface{}
}

// Health handles GET /health, reporting liveness and the scheduled jobs
func Health(jobs JobStatusReporter) echo.HandlerFunc {
	return func(c echo.Context) error {
		resp := map[string]interface{}{
			"status": "ok",
		}
		if jobs != nil {
			resp["jobs"] = jobs.GetJobStatus()
		}
		return c.JSON(http.StatusOK, resp)
	}
}
