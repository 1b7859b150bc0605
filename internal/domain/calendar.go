package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

// TemplateInfo is what the external template catalog tells us about a template.
type TemplateInfo struct {
	ID            primitive.ObjectID `json:"id"`
	Name          string             `json:"name"`
	ExerciseCount int                `json:"exerciseCount"`
}

// CalendarWorkout is an AssignedWorkout annotated with catalog data.
type CalendarWorkout struct {
	AssignedWorkout
	TemplateName  string `json:"templateName"`
	ExerciseCount int    `json:"exerciseCount"`
}

// CalendarDay groups one calendar date's workouts, ordered by time of day.
type CalendarDay struct {
	Date     string            `json:"date"` // YYYY-MM-DD
	Workouts []CalendarWorkout `json:"workouts"`
}

// WorkoutStats are completion metrics over a date range. InProgress workouts
// count toward Total only, so Pending+Completed+Skipped may be below Total.
type WorkoutStats struct {
	Total          int     `json:"total"`
	Completed      int     `json:"completed"`
	Pending        int     `json:"pending"`
	Skipped        int     `json:"skipped"`
	CompletionRate float64 `json:"completionRate"`
}
