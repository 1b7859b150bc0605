package api

import (
	"alcyxob/workout-scheduler/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	scheduleService service.ScheduleService,
	calendarService service.CalendarService,
	recurrenceService service.RecurrenceService,
	exportService service.ExportService, // may be nil
) {
	workoutHandler := NewWorkoutHandler(scheduleService)
	calendarHandler := NewCalendarHandler(calendarService, exportService)
	recurrenceHandler := NewRecurrenceHandler(recurrenceService)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	protected := apiV1.Group("")
	protected.Use(AuthMiddleware(jwtSecret))
	{
		protected.GET("/me", func(c *gin.Context) {
			userID, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			c.JSON(http.StatusOK, gin.H{"userId": userID.Hex()})
		})

		workoutGroup := protected.Group("/workouts")
		{
			workoutGroup.POST("", workoutHandler.ScheduleWorkout)
			workoutGroup.GET("/upcoming", workoutHandler.GetUpcomingWorkouts)
			workoutGroup.GET("/date/:date", workoutHandler.GetWorkoutsForDate)
			workoutGroup.PATCH("/:id/status", workoutHandler.UpdateWorkoutStatus)
			workoutGroup.PATCH("/:id/reschedule", workoutHandler.RescheduleWorkout)
			workoutGroup.DELETE("/:id", workoutHandler.DeleteWorkout)
		}

		calendarGroup := protected.Group("/calendar")
		{
			calendarGroup.GET("", calendarHandler.GetCalendarEvents)
			calendarGroup.GET("/stats", calendarHandler.GetWorkoutStats)
			calendarGroup.POST("/export", calendarHandler.ExportCalendar)
			calendarGroup.GET("/exports", calendarHandler.ListExports)
			calendarGroup.GET("/exports/:exportId/url", calendarHandler.GetExportURL)
			calendarGroup.DELETE("/exports/:exportId", calendarHandler.DeleteExport)
		}

		recurrenceGroup := protected.Group("/recurrences")
		{
			recurrenceGroup.GET("", recurrenceHandler.ListRecurrences)
			recurrenceGroup.POST("/:id/refresh", recurrenceHandler.RefreshRecurrence)
			recurrenceGroup.DELETE("/:id", recurrenceHandler.DeactivateRecurrence)
		}
	}
}
