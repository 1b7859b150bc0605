package api

import (
	"alcyxob/workout-scheduler/internal/domain"
	"alcyxob/workout-scheduler/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type CalendarHandler struct {
	calendarService service.CalendarService
	exportService   service.ExportService // nil when no object storage is configured
}

func NewCalendarHandler(calendarService service.CalendarService, exportService service.ExportService) *CalendarHandler {
	return &CalendarHandler{
		calendarService: calendarService,
		exportService:   exportService,
	}
}

type ExportCalendarRequest struct {
	Start string `json:"start" binding:"required"` // YYYY-MM-DD
	End   string `json:"end" binding:"required"`
}

func (h *CalendarHandler) exportConfigured(c *gin.Context) bool {
	if h.exportService == nil {
		abortWithError(c, http.StatusServiceUnavailable, "Calendar export is not configured.")
		return false
	}
	return true
}

// parseDayRange reads two YYYY-MM-DD values, aborting with 400 on failure.
func parseDayRange(c *gin.Context, rawStart, rawEnd string) (time.Time, time.Time, bool) {
	start, err := time.Parse(domain.DayLayout, rawStart)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "start must be YYYY-MM-DD.")
		return time.Time{}, time.Time{}, false
	}
	end, err := time.Parse(domain.DayLayout, rawEnd)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "end must be YYYY-MM-DD.")
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// GetCalendarEvents godoc
// @Summary Calendar view
// @Description Workouts in [start, end] grouped by day, annotated with template name and exercise count.
// @Tags Calendar
// @Produce json
// @Security BearerAuth
// @Param start query string true "First day, YYYY-MM-DD"
// @Param end query string true "Last day, YYYY-MM-DD"
// @Success 200 {array} domain.CalendarDay
// @Failure 400 {object} gin.H "Invalid range"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /calendar [get]
func (h *CalendarHandler) GetCalendarEvents(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	start, end, ok := parseDayRange(c, c.Query("start"), c.Query("end"))
	if !ok {
		return
	}

	days, err := h.calendarService.GetCalendarEvents(c.Request.Context(), userID, start, end)
	if err != nil {
		abortWithServiceError(c, err, "Failed to build calendar.")
		return
	}
	if days == nil {
		days = []domain.CalendarDay{}
	}
	c.JSON(http.StatusOK, days)
}

// GetWorkoutStats godoc
// @Summary Completion statistics
// @Tags Calendar
// @Produce json
// @Security BearerAuth
// @Param start query string true "First day, YYYY-MM-DD"
// @Param end query string true "Last day, YYYY-MM-DD"
// @Success 200 {object} domain.WorkoutStats
// @Failure 400 {object} gin.H "Invalid range"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /calendar/stats [get]
func (h *CalendarHandler) GetWorkoutStats(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	start, end, ok := parseDayRange(c, c.Query("start"), c.Query("end"))
	if !ok {
		return
	}

	stats, err := h.calendarService.GetWorkoutStats(c.Request.Context(), userID, start, end)
	if err != nil {
		abortWithServiceError(c, err, "Failed to compute statistics.")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ExportCalendar godoc
// @Summary Export calendar as iCalendar
// @Description Uploads an .ics file for the range and returns a temporary download URL.
// @Tags Calendar
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ExportCalendarRequest true "Range"
// @Success 201 {object} service.ExportResult
// @Failure 400 {object} gin.H "Invalid range"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Failure 503 {object} gin.H "Export not configured"
// @Router /calendar/export [post]
func (h *CalendarHandler) ExportCalendar(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	if !h.exportConfigured(c) {
		return
	}

	var req ExportCalendarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	start, end, ok := parseDayRange(c, req.Start, req.End)
	if !ok {
		return
	}

	result, err := h.exportService.ExportCalendar(c.Request.Context(), userID, start, end)
	if err != nil {
		abortWithServiceError(c, err, "Failed to export calendar.")
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ListExports godoc
// @Summary List calendar exports
// @Tags Calendar
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.CalendarExport
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 503 {object} gin.H "Export not configured"
// @Router /calendar/exports [get]
func (h *CalendarHandler) ListExports(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok || !h.exportConfigured(c) {
		return
	}

	exports, err := h.exportService.ListExports(c.Request.Context(), userID)
	if err != nil {
		abortWithServiceError(c, err, "Failed to list exports.")
		return
	}
	if exports == nil {
		exports = []domain.CalendarExport{}
	}
	c.JSON(http.StatusOK, exports)
}

// GetExportURL godoc
// @Summary Fresh download URL for an export
// @Tags Calendar
// @Produce json
// @Security BearerAuth
// @Param exportId path string true "Export ID"
// @Success 200 {object} service.ExportResult
// @Failure 400 {object} gin.H "Invalid ID"
// @Failure 404 {object} gin.H "Not found"
// @Failure 503 {object} gin.H "Export not configured"
// @Router /calendar/exports/{exportId}/url [get]
func (h *CalendarHandler) GetExportURL(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok || !h.exportConfigured(c) {
		return
	}
	exportID, ok := pathObjectID(c, "exportId")
	if !ok {
		return
	}

	result, err := h.exportService.GetExportURL(c.Request.Context(), userID, exportID)
	if err != nil {
		abortWithServiceError(c, err, "Failed to generate download URL.")
		return
	}
	c.JSON(http.StatusOK, result)
}

// DeleteExport godoc
// @Summary Delete a calendar export
// @Tags Calendar
// @Security BearerAuth
// @Param exportId path string true "Export ID"
// @Success 204 "No Content"
// @Failure 400 {object} gin.H "Invalid ID"
// @Failure 404 {object} gin.H "Not found"
// @Failure 503 {object} gin.H "Export not configured"
// @Router /calendar/exports/{exportId} [delete]
func (h *CalendarHandler) DeleteExport(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok || !h.exportConfigured(c) {
		return
	}
	exportID, ok := pathObjectID(c, "exportId")
	if !ok {
		return
	}

	if err := h.exportService.DeleteExport(c.Request.Context(), userID, exportID); err != nil {
		abortWithServiceError(c, err, "Failed to delete export.")
		return
	}
	c.Status(http.StatusNoContent)
}
