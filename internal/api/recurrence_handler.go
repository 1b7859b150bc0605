package api

import (
	"alcyxob/workout-scheduler/internal/domain"
	"alcyxob/workout-scheduler/internal/service"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type RecurrenceHandler struct {
	recurrenceService service.RecurrenceService
}

func NewRecurrenceHandler(recurrenceService service.RecurrenceService) *RecurrenceHandler {
	return &RecurrenceHandler{recurrenceService: recurrenceService}
}

// ListRecurrences godoc
// @Summary List recurrence rules
// @Tags Recurrences
// @Produce json
// @Security BearerAuth
// @Param active query bool false "Only active rules"
// @Success 200 {array} domain.RecurrenceRule
// @Failure 400 {object} gin.H "Invalid filter"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /recurrences [get]
func (h *RecurrenceHandler) ListRecurrences(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	activeOnly := false
	if raw := c.Query("active"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "active must be true or false.")
			return
		}
		activeOnly = v
	}

	rules, err := h.recurrenceService.ListRecurrences(c.Request.Context(), userID, activeOnly)
	if err != nil {
		abortWithServiceError(c, err, "Failed to list recurrences.")
		return
	}
	if rules == nil {
		rules = []domain.RecurrenceRule{}
	}
	c.JSON(http.StatusOK, rules)
}

// RefreshRecurrence godoc
// @Summary Generate further occurrences of a rule
// @Tags Recurrences
// @Produce json
// @Security BearerAuth
// @Param id path string true "Recurrence rule ObjectID Hex"
// @Param cap query int false "Max new occurrences (default from config)"
// @Success 200 {object} service.GenerateResult
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 404 {object} gin.H "Rule not found"
// @Failure 409 {object} gin.H "Rule is inactive"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /recurrences/{id}/refresh [post]
func (h *RecurrenceHandler) RefreshRecurrence(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	ruleID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	maxNew := 0
	if raw := c.Query("cap"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "cap must be an integer.")
			return
		}
		maxNew = n
	}

	result, err := h.recurrenceService.RefreshRecurrence(c.Request.Context(), userID, ruleID, maxNew)
	if err != nil {
		if result != nil && result.Created > 0 {
			abortWithPartialResult(c, err, "Failed to refresh recurrence.", result)
			return
		}
		abortWithServiceError(c, err, "Failed to refresh recurrence.")
		return
	}
	c.JSON(http.StatusOK, result)
}

// DeactivateRecurrence godoc
// @Summary Stop a recurrence
// @Description Existing occurrences are kept.
// @Tags Recurrences
// @Produce json
// @Security BearerAuth
// @Param id path string true "Recurrence rule ObjectID Hex"
// @Success 200 {object} domain.RecurrenceRule
// @Failure 400 {object} gin.H "Invalid ID"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 404 {object} gin.H "Rule not found"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /recurrences/{id} [delete]
func (h *RecurrenceHandler) DeactivateRecurrence(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	ruleID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	rule, err := h.recurrenceService.DeactivateRecurrence(c.Request.Context(), userID, ruleID)
	if err != nil {
		abortWithServiceError(c, err, "Failed to deactivate recurrence.")
		return
	}
	c.JSON(http.StatusOK, rule)
}
