package api

import (
	"alcyxob/workout-scheduler/internal/domain"
	"alcyxob/workout-scheduler/internal/service"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WorkoutHandler struct {
	scheduleService service.ScheduleService
}

func NewWorkoutHandler(scheduleService service.ScheduleService) *WorkoutHandler {
	return &WorkoutHandler{scheduleService: scheduleService}
}

// --- DTOs ---

type RecurrenceRequest struct {
	Type       string     `json:"type" binding:"required,oneof=daily weekly monthly"`
	Interval   int        `json:"interval" binding:"omitempty,min=1"`
	EndDate    *time.Time `json:"endDate" binding:"omitempty"`
	DaysOfWeek []int      `json:"daysOfWeek" binding:"omitempty,dive,min=0,max=6"` // 0 = Sunday
}

type ScheduleWorkoutRequest struct {
	TemplateID  string             `json:"templateId" binding:"required"`
	ScheduledAt time.Time          `json:"scheduledAt" binding:"required"` // RFC3339
	Recurrence  *RecurrenceRequest `json:"recurrence" binding:"omitempty"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type RescheduleRequest struct {
	ScheduledAt time.Time `json:"scheduledAt" binding:"required"`
}

// --- Handler Methods ---

// ScheduleWorkout godoc
// @Summary Schedule a workout
// @Description Assigns a workout template to the authenticated user, once or on a recurring pattern.
// @Tags Workouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ScheduleWorkoutRequest true "Template, time and optional recurrence"
// @Success 201 {object} service.ScheduleResult "Scheduled workout (and rule, if recurring)"
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 404 {object} gin.H "Template not found"
// @Failure 500 {object} gin.H "Internal Server Error; for recurrences, partial holds the stored rule and created count"
// @Router /workouts [post]
func (h *WorkoutHandler) ScheduleWorkout(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req ScheduleWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	templateID, err := primitive.ObjectIDFromHex(req.TemplateID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid templateId format.")
		return
	}

	var rec *service.RecurrenceOptions
	if req.Recurrence != nil {
		rec = &service.RecurrenceOptions{
			Type:       domain.RecurrenceType(req.Recurrence.Type),
			Interval:   req.Recurrence.Interval,
			EndDate:    req.Recurrence.EndDate,
			DaysOfWeek: req.Recurrence.DaysOfWeek,
		}
	}

	result, err := h.scheduleService.ScheduleWorkout(c.Request.Context(), userID, templateID, req.ScheduledAt, rec)
	if err != nil {
		if result != nil && result.Recurrence != nil {
			abortWithPartialResult(c, err, "Failed to schedule all occurrences; refresh the recurrence to continue.", result)
			return
		}
		abortWithServiceError(c, err, "Failed to schedule workout.")
		return
	}
	c.JSON(http.StatusCreated, result)
}

// GetUpcomingWorkouts godoc
// @Summary Upcoming workouts
// @Description Pending and in-progress workouts from now on, soonest first.
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Max results (default 5, capped at 50)"
// @Success 200 {array} domain.AssignedWorkout
// @Failure 400 {object} gin.H "Invalid limit"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /workouts/upcoming [get]
func (h *WorkoutHandler) GetUpcomingWorkouts(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			abortWithError(c, http.StatusBadRequest, "limit must be a non-negative integer.")
			return
		}
		limit = n
	}

	workouts, err := h.scheduleService.GetUpcomingWorkouts(c.Request.Context(), userID, limit)
	if err != nil {
		abortWithServiceError(c, err, "Failed to retrieve upcoming workouts.")
		return
	}
	if workouts == nil {
		workouts = []domain.AssignedWorkout{}
	}
	c.JSON(http.StatusOK, workouts)
}

// GetWorkoutsForDate godoc
// @Summary Workouts on a day
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param date path string true "Day as YYYY-MM-DD (UTC)"
// @Success 200 {array} domain.AssignedWorkout
// @Failure 400 {object} gin.H "Invalid date"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /workouts/date/{date} [get]
func (h *WorkoutHandler) GetWorkoutsForDate(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	date, err := time.Parse(domain.DayLayout, c.Param("date"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "date must be YYYY-MM-DD.")
		return
	}

	workouts, err := h.scheduleService.GetWorkoutsForDate(c.Request.Context(), userID, date)
	if err != nil {
		abortWithServiceError(c, err, "Failed to retrieve workouts.")
		return
	}
	if workouts == nil {
		workouts = []domain.AssignedWorkout{}
	}
	c.JSON(http.StatusOK, workouts)
}

// UpdateWorkoutStatus godoc
// @Summary Change a workout's status
// @Description pending -> in_progress|completed|skipped, in_progress -> completed|skipped.
// @Tags Workouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assigned workout ObjectID Hex"
// @Param request body UpdateStatusRequest true "Target status"
// @Success 200 {object} domain.AssignedWorkout
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 404 {object} gin.H "Workout not found"
// @Failure 409 {object} gin.H "Transition not allowed"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /workouts/{id}/status [patch]
func (h *WorkoutHandler) UpdateWorkoutStatus(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	workoutID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	updated, err := h.scheduleService.UpdateWorkoutStatus(c.Request.Context(), userID, workoutID, domain.WorkoutStatus(req.Status))
	if err != nil {
		abortWithServiceError(c, err, "Failed to update workout status.")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// RescheduleWorkout godoc
// @Summary Move a workout to another time
// @Tags Workouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assigned workout ObjectID Hex"
// @Param request body RescheduleRequest true "New time (RFC3339)"
// @Success 200 {object} domain.AssignedWorkout
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 404 {object} gin.H "Workout not found"
// @Failure 409 {object} gin.H "Another occurrence of the rule is already on that day"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /workouts/{id}/reschedule [patch]
func (h *WorkoutHandler) RescheduleWorkout(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	workoutID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	var req RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	updated, err := h.scheduleService.RescheduleWorkout(c.Request.Context(), userID, workoutID, req.ScheduledAt)
	if err != nil {
		abortWithServiceError(c, err, "Failed to reschedule workout.")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteWorkout godoc
// @Summary Delete one workout occurrence
// @Description The recurrence rule, if any, stays active.
// @Tags Workouts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assigned workout ObjectID Hex"
// @Success 200 {object} gin.H "{deleted: true}"
// @Failure 400 {object} gin.H "Invalid ID"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 404 {object} gin.H "Workout not found"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /workouts/{id} [delete]
func (h *WorkoutHandler) DeleteWorkout(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	workoutID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	deleted, err := h.scheduleService.DeleteWorkout(c.Request.Context(), userID, workoutID)
	if err != nil {
		abortWithServiceError(c, err, "Failed to delete workout.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}
