package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DayLayout is the canonical calendar key format.
const DayLayout = "2006-01-02"

// WorkoutStatus type for the assigned workout lifecycle
type WorkoutStatus string

const (
	StatusPending    WorkoutStatus = "pending"
	StatusInProgress WorkoutStatus = "in_progress"
	StatusCompleted  WorkoutStatus = "completed" // terminal
	StatusSkipped    WorkoutStatus = "skipped"   // terminal
)

func (s WorkoutStatus) String() string {
	return string(s)
}

func (s WorkoutStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusSkipped:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no transition may leave s.
func (s WorkoutStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusSkipped
}

// CanTransitionTo encodes the status state machine:
//
//	pending     -> in_progress | completed | skipped
//	in_progress -> completed | skipped
//
// completed and skipped are terminal.
func (s WorkoutStatus) CanTransitionTo(next WorkoutStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusInProgress || next == StatusCompleted || next == StatusSkipped
	case StatusInProgress:
		return next == StatusCompleted || next == StatusSkipped
	default:
		return false
	}
}

// AssignedWorkout is one concrete, dated occurrence of a workout template for a user.
type AssignedWorkout struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID  `bson:"userId" json:"userId"`
	TemplateID   primitive.ObjectID  `bson:"templateId" json:"templateId"` // reference into the template catalog, not owned
	ScheduledAt  time.Time           `bson:"scheduledAt" json:"scheduledAt"`
	ScheduledDay string              `bson:"scheduledDay" json:"scheduledDay"` // UTC YYYY-MM-DD of ScheduledAt, part of the unique index
	Status       WorkoutStatus       `bson:"status" json:"status"`
	CompletedAt  *time.Time          `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	RecurrenceID *primitive.ObjectID `bson:"recurrenceId,omitempty" json:"recurrenceId,omitempty"` // lookup only, never ownership
	CreatedAt    time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// DayKey returns the UTC calendar date of t in DayLayout.
func DayKey(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
