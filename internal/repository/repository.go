package repository

import (
	"alcyxob/workout-scheduler/internal/domain"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound        = RepositoryError("not found")
	ErrDuplicate       = RepositoryError("duplicate occurrence")
	ErrStatusMismatch  = RepositoryError("status changed concurrently")
	ErrInvalidDocument = RepositoryError("invalid document")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// InsertResult reports what a batch insert did. Duplicates are occurrences that
// already existed for the same (user, template, day, recurrence) tuple.
type InsertResult struct {
	Inserted   []primitive.ObjectID
	Duplicates int
}

// TimeRange is inclusive on From and exclusive on To.
type TimeRange struct {
	From time.Time
	To   time.Time
}

// AssignedWorkoutRepository defines access to concrete scheduled occurrences.
type AssignedWorkoutRepository interface {
	Create(ctx context.Context, workout *domain.AssignedWorkout) (primitive.ObjectID, error)
	// CreateMany inserts all workouts in one batch. Unique-index violations are
	// counted as duplicates, not returned as errors. On any other failure the
	// result still lists the rows that were written.
	CreateMany(ctx context.Context, workouts []*domain.AssignedWorkout) (InsertResult, error)
	GetByID(ctx context.Context, userID, id primitive.ObjectID) (*domain.AssignedWorkout, error)
	ExistsForDay(ctx context.Context, userID, templateID primitive.ObjectID, day string, recurrenceID primitive.ObjectID) (bool, error)
	ListInRange(ctx context.Context, userID primitive.ObjectID, r TimeRange) ([]domain.AssignedWorkout, error)
	ListUpcoming(ctx context.Context, userID primitive.ObjectID, from time.Time, limit int) ([]domain.AssignedWorkout, error)
	ListByRecurrence(ctx context.Context, userID, recurrenceID primitive.ObjectID, limit int) ([]domain.AssignedWorkout, error)
	// UpdateStatus applies a transition only if the stored status still equals from.
	UpdateStatus(ctx context.Context, userID, id primitive.ObjectID, from, to domain.WorkoutStatus, completedAt *time.Time) (*domain.AssignedWorkout, error)
	Reschedule(ctx context.Context, userID, id primitive.ObjectID, scheduledAt time.Time) (*domain.AssignedWorkout, error)
	Delete(ctx context.Context, userID, id primitive.ObjectID) error
}

// RecurrenceRuleRepository defines access to recurrence rules.
type RecurrenceRuleRepository interface {
	Create(ctx context.Context, rule *domain.RecurrenceRule) (primitive.ObjectID, error)
	GetByID(ctx context.Context, userID, id primitive.ObjectID) (*domain.RecurrenceRule, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID, activeOnly bool) ([]domain.RecurrenceRule, error)
	ListActive(ctx context.Context) ([]domain.RecurrenceRule, error)
	Deactivate(ctx context.Context, userID, id primitive.ObjectID) (*domain.RecurrenceRule, error)
}

// CalendarExportRepository defines the interface for interacting with export metadata.
type CalendarExportRepository interface {
	Create(ctx context.Context, export *domain.CalendarExport) (primitive.ObjectID, error)
	GetByID(ctx context.Context, userID, id primitive.ObjectID) (*domain.CalendarExport, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.CalendarExport, error)
	Delete(ctx context.Context, userID, id primitive.ObjectID) error
}
