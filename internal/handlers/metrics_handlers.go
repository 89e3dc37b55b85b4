package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"occupancy_backend/internal/models"
	"occupancy_backend/internal/occupancy"
	"occupancy_backend/internal/services"
	"occupancy_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// MetricsHandler serves the occupancy and commission reports.
type MetricsHandler struct {
	reportService services.ReportService
	now           func() time.Time
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(rs services.ReportService) *MetricsHandler {
	return &MetricsHandler{reportService: rs, now: time.Now}
}

// respondServiceError maps service errors onto API errors.
func respondServiceError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, services.ErrPropertyNotFound):
		utils.RespondNotFound(c, "Property not found.", err.Error())
	case errors.Is(err, services.ErrNoBookingData):
		utils.RespondNotFound(c, "No booking data for property.", err.Error())
	case errors.Is(err, services.ErrNotHostel):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Property has no individual rooms.", err.Error()))
	case errors.Is(err, services.ErrInvalidPeriod), errors.Is(err, services.ErrInvalidFilter):
		utils.RespondValidationFailed(c, err.Error())
	default:
		utils.LogError(err, action, map[string]interface{}{"request_id": c.GetString(utils.RequestIDKey)})
		utils.RespondInternalError(c, "Failed to "+action+".")
	}
}

// queryInt reads a required integer query parameter.
func queryInt(c *gin.Context, key string) (int, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		utils.RespondValidationFailed(c, key+" is required")
		return 0, false
	}
	value, err := utils.StrToInt(raw)
	if err != nil {
		utils.RespondValidationFailed(c, "Invalid "+key+" format: "+raw)
		return 0, false
	}
	return value, true
}

// yearMonth reads year and month, defaulting both to the current month when absent.
func (h *MetricsHandler) yearMonth(c *gin.Context) (int, int, bool) {
	if c.Query("year") == "" && c.Query("month") == "" {
		now := h.now()
		return now.Year(), int(now.Month()), true
	}
	year, ok := queryInt(c, "year")
	if !ok {
		return 0, 0, false
	}
	month, ok := queryInt(c, "month")
	if !ok {
		return 0, 0, false
	}
	return year, month, true
}

// GetPortfolioMetrics handles GET /metrics/portfolio.
func (h *MetricsHandler) GetPortfolioMetrics(c *gin.Context) {
	year, month, ok := h.yearMonth(c)
	if !ok {
		return
	}
	var filter models.RoomFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	var filterPtr *models.RoomFilter
	if !utils.IsEmpty(filter.Room) || !utils.IsEmpty(filter.PropertyName) {
		filterPtr = &filter
	}
	report, err := h.reportService.GetPortfolioMetrics(c.Request.Context(), year, month, filterPtr)
	if err != nil {
		respondServiceError(c, err, "compute portfolio metrics")
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetPropertyMetrics handles GET /metrics/properties/:name.
func (h *MetricsHandler) GetPropertyMetrics(c *gin.Context) {
	year, month, ok := h.yearMonth(c)
	if !ok {
		return
	}
	var params models.ReportRequestParams
	if err := c.ShouldBindQuery(&params); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	metrics, err := h.reportService.GetPropertyMetrics(c.Request.Context(), c.Param("name"), year, month, params.Room)
	if err != nil {
		respondServiceError(c, err, "compute property metrics")
		return
	}
	c.JSON(http.StatusOK, metrics)
}

// GetPropertyRoomMetrics handles GET /metrics/properties/:name/rooms.
func (h *MetricsHandler) GetPropertyRoomMetrics(c *gin.Context) {
	year, month, ok := h.yearMonth(c)
	if !ok {
		return
	}
	rooms, err := h.reportService.GetPropertyRoomMetrics(c.Request.Context(), c.Param("name"), year, month)
	if err != nil {
		respondServiceError(c, err, "compute room metrics")
		return
	}
	c.JSON(http.StatusOK, gin.H{"property_name": c.Param("name"), "year": year, "month": month, "rooms": rooms})
}

// GetYearlyMetrics handles GET /metrics/properties/:name/yearly.
func (h *MetricsHandler) GetYearlyMetrics(c *gin.Context) {
	year := h.now().Year()
	if c.Query("year") != "" {
		var ok bool
		if year, ok = queryInt(c, "year"); !ok {
			return
		}
	}
	yearly, err := h.reportService.GetYearlyMetrics(c.Request.Context(), c.Param("name"), year)
	if err != nil {
		respondServiceError(c, err, "compute yearly metrics")
		return
	}
	c.JSON(http.StatusOK, yearly)
}

// CompareYears handles GET /metrics/properties/:name/compare.
func (h *MetricsHandler) CompareYears(c *gin.Context) {
	year1, ok := queryInt(c, "year1")
	if !ok {
		return
	}
	year2, ok := queryInt(c, "year2")
	if !ok {
		return
	}
	comparison, err := h.reportService.CompareYears(c.Request.Context(), c.Param("name"), year1, year2)
	if err != nil {
		respondServiceError(c, err, "compare years")
		return
	}
	c.JSON(http.StatusOK, comparison)
}

// GetCleaningSchedule handles GET /metrics/properties/:name/cleanings.
func (h *MetricsHandler) GetCleaningSchedule(c *gin.Context) {
	year, month, ok := h.yearMonth(c)
	if !ok {
		return
	}
	schedule, err := h.reportService.GetCleaningSchedule(c.Request.Context(), c.Param("name"), year, month)
	if err != nil {
		respondServiceError(c, err, "compute cleaning schedule")
		return
	}
	c.JSON(http.StatusOK, schedule)
}

// Get180DayLimitReport handles GET /metrics/limit-180.
func (h *MetricsHandler) Get180DayLimitReport(c *gin.Context) {
	report, err := h.reportService.Get180DayLimitReport(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "compute 180-day limit report")
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetSnapshots handles GET /metrics/snapshots?date=YYYY-MM-DD (default: yesterday).
func (h *MetricsHandler) GetSnapshots(c *gin.Context) {
	date := occupancy.DateOf(h.now()).AddDate(0, 0, -1)
	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		parsed, err := occupancy.ParseDate(raw)
		if err != nil {
			utils.RespondValidationFailed(c, "Invalid date format, expected YYYY-MM-DD: "+raw)
			return
		}
		date = parsed
	}
	snapshots, err := h.reportService.GetSnapshots(c.Request.Context(), date)
	if err != nil {
		respondServiceError(c, err, "load snapshots")
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date.Format(occupancy.DateLayout), "count": len(snapshots), "snapshots": snapshots})
}
