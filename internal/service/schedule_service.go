package service

import (
	"alcyxob/workout-scheduler/internal/catalog"
	"alcyxob/workout-scheduler/internal/domain"
	"alcyxob/workout-scheduler/internal/recurrence"
	"alcyxob/workout-scheduler/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultUpcomingLimit = 5
	MaxUpcomingLimit     = 50
)

// RecurrenceOptions is the optional repeat pattern of a scheduling request.
// The rule starts at the request's scheduledAt.
type RecurrenceOptions struct {
	Type       domain.RecurrenceType
	Interval   int
	EndDate    *time.Time
	DaysOfWeek []int
}

// ScheduleResult is the outcome of ScheduleWorkout. For recurring requests
// Workout is the earliest generated occurrence and may be nil when the rule's
// window has no date left from today on.
type ScheduleResult struct {
	Workout    *domain.AssignedWorkout `json:"workout"`
	Recurrence *domain.RecurrenceRule  `json:"recurrence,omitempty"`
	Generated  *GenerateResult         `json:"generated,omitempty"`
}

// --- Service Interface ---
type ScheduleService interface {
	ScheduleWorkout(ctx context.Context, userID, templateID primitive.ObjectID, scheduledAt time.Time, rec *RecurrenceOptions) (*ScheduleResult, error)
	GetWorkoutsForDate(ctx context.Context, userID primitive.ObjectID, date time.Time) ([]domain.AssignedWorkout, error)
	UpdateWorkoutStatus(ctx context.Context, userID, workoutID primitive.ObjectID, status domain.WorkoutStatus) (*domain.AssignedWorkout, error)
	RescheduleWorkout(ctx context.Context, userID, workoutID primitive.ObjectID, newDate time.Time) (*domain.AssignedWorkout, error)
	DeleteWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) (bool, error)
	GetUpcomingWorkouts(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.AssignedWorkout, error)
}

// --- Service Implementation ---

// ScheduleOptions tunes the limits of scheduleService.
type ScheduleOptions struct {
	UpcomingLimit int
	UpcomingMax   int
	Now           func() time.Time
}

type scheduleService struct {
	workouts      repository.AssignedWorkoutRepository
	rules         repository.RecurrenceRuleRepository
	catalog       catalog.TemplateCatalog
	generator     *Generator
	now           func() time.Time
	upcomingLimit int
	upcomingMax   int
}

// NewScheduleService creates a new instance of scheduleService.
func NewScheduleService(
	workouts repository.AssignedWorkoutRepository,
	rules repository.RecurrenceRuleRepository,
	templates catalog.TemplateCatalog,
	generator *Generator,
	opts ScheduleOptions,
) ScheduleService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.UpcomingLimit <= 0 {
		opts.UpcomingLimit = DefaultUpcomingLimit
	}
	if opts.UpcomingMax <= 0 {
		opts.UpcomingMax = MaxUpcomingLimit
	}
	return &scheduleService{
		workouts:      workouts,
		rules:         rules,
		catalog:       templates,
		generator:     generator,
		now:           opts.Now,
		upcomingLimit: opts.UpcomingLimit,
		upcomingMax:   opts.UpcomingMax,
	}
}

// ScheduleWorkout assigns a template to the user. Without recurrence a single
// occurrence is created at scheduledAt; with recurrence a rule is stored and
// the generator runs synchronously with its default cap.
func (s *scheduleService) ScheduleWorkout(ctx context.Context, userID, templateID primitive.ObjectID, scheduledAt time.Time, rec *RecurrenceOptions) (*ScheduleResult, error) {
	// 1. Validate everything before any mutation
	if userID == primitive.NilObjectID {
		return nil, ErrUnauthorized
	}
	if templateID == primitive.NilObjectID {
		return nil, invalidArgument("templateId is required")
	}
	if scheduledAt.IsZero() {
		return nil, invalidArgument("scheduledAt is required")
	}

	var rule *domain.RecurrenceRule
	if rec != nil {
		rule = &domain.RecurrenceRule{
			UserID:         userID,
			TemplateID:     templateID,
			RecurrenceType: rec.Type,
			Interval:       rec.Interval,
			StartDate:      scheduledAt.UTC(),
			EndDate:        rec.EndDate,
			DaysOfWeek:     rec.DaysOfWeek,
		}
		if err := recurrence.Validate(rule); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidArgument, err)
		}
	}

	// 2. Template must exist in the catalog
	if _, err := s.lookupTemplate(ctx, templateID); err != nil {
		return nil, err
	}

	// 3a. One-off
	if rule == nil {
		workout := &domain.AssignedWorkout{
			UserID:      userID,
			TemplateID:  templateID,
			ScheduledAt: scheduledAt,
			Status:      domain.StatusPending,
		}
		id, err := s.workouts.Create(ctx, workout)
		if err != nil {
			return nil, err
		}
		workout.ID = id
		return &ScheduleResult{Workout: workout}, nil
	}

	// 3b. Recurring
	ruleID, err := s.rules.Create(ctx, rule)
	if err != nil {
		return nil, err
	}
	rule.ID = ruleID

	generated, err := s.generator.Generate(ctx, rule, s.generator.DefaultCap())
	if err != nil {
		// The rule is stored and active. Callers get it back so they can
		// refresh it instead of scheduling the same recurrence again.
		log.WithFields(log.Fields{
			"rule_id": ruleID.Hex(),
			"user_id": userID.Hex(),
			"created": generated.Created,
		}).Warnf("recurring workout partially scheduled: %s", err)
		return &ScheduleResult{Recurrence: rule, Generated: &generated}, err
	}
	log.WithFields(log.Fields{
		"rule_id": ruleID.Hex(),
		"user_id": userID.Hex(),
		"type":    rule.RecurrenceType,
		"created": generated.Created,
	}).Info("recurring workout scheduled")

	result := &ScheduleResult{Recurrence: rule, Generated: &generated}
	first, err := s.workouts.ListByRecurrence(ctx, userID, ruleID, 1)
	if err != nil {
		return nil, err
	}
	if len(first) > 0 {
		result.Workout = &first[0]
	}
	return result, nil
}

func (s *scheduleService) lookupTemplate(ctx context.Context, templateID primitive.ObjectID) (*domain.TemplateInfo, error) {
	info, err := s.catalog.Lookup(ctx, templateID)
	if err != nil {
		if errors.Is(err, catalog.ErrTemplateNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return info, nil
}

// GetWorkoutsForDate lists the user's workouts on the UTC calendar day of date.
func (s *scheduleService) GetWorkoutsForDate(ctx context.Context, userID primitive.ObjectID, date time.Time) ([]domain.AssignedWorkout, error) {
	if userID == primitive.NilObjectID {
		return nil, ErrUnauthorized
	}
	if date.IsZero() {
		return nil, invalidArgument("date is required")
	}
	return s.workouts.ListInRange(ctx, userID, dayRange(date, date))
}

// UpdateWorkoutStatus routes a status change through the state machine.
// Moving to completed stamps completedAt; nothing ever clears it.
func (s *scheduleService) UpdateWorkoutStatus(ctx context.Context, userID, workoutID primitive.ObjectID, status domain.WorkoutStatus) (*domain.AssignedWorkout, error) {
	if userID == primitive.NilObjectID {
		return nil, ErrUnauthorized
	}
	if !status.IsValid() {
		return nil, invalidArgument("unrecognized status %q", status)
	}

	current, err := s.workouts.GetByID(ctx, userID, workoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}

	if !current.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, current.Status, status)
	}

	var completedAt *time.Time
	if status == domain.StatusCompleted {
		now := s.now().UTC()
		completedAt = &now
	}

	updated, err := s.workouts.UpdateStatus(ctx, userID, workoutID, current.Status, status, completedAt)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, ErrWorkoutNotFound
	case errors.Is(err, repository.ErrStatusMismatch):
		return nil, fmt.Errorf("%w: status is no longer %s", ErrInvalidStatusTransition, current.Status)
	case err != nil:
		return nil, err
	}
	return updated, nil
}

// RescheduleWorkout moves an occurrence to newDate. Siblings of the same rule are
// not re-checked here; the storage unique index rejects same-day collisions.
func (s *scheduleService) RescheduleWorkout(ctx context.Context, userID, workoutID primitive.ObjectID, newDate time.Time) (*domain.AssignedWorkout, error) {
	if userID == primitive.NilObjectID {
		return nil, ErrUnauthorized
	}
	if newDate.IsZero() {
		return nil, invalidArgument("new date is required")
	}

	updated, err := s.workouts.Reschedule(ctx, userID, workoutID, newDate)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, ErrWorkoutNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return nil, ErrDuplicateOccurrence
	case err != nil:
		return nil, err
	}
	return updated, nil
}

// DeleteWorkout removes one occurrence; its rule is left alone and nothing regenerates it
// until the rule is refreshed.
func (s *scheduleService) DeleteWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) (bool, error) {
	if userID == primitive.NilObjectID {
		return false, ErrUnauthorized
	}
	if err := s.workouts.Delete(ctx, userID, workoutID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, ErrWorkoutNotFound
		}
		return false, err
	}
	return true, nil
}

// GetUpcomingWorkouts returns pending/in-progress workouts from now on, soonest first.
func (s *scheduleService) GetUpcomingWorkouts(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.AssignedWorkout, error) {
	if userID == primitive.NilObjectID {
		return nil, ErrUnauthorized
	}
	if limit <= 0 {
		limit = s.upcomingLimit
	}
	if limit > s.upcomingMax {
		limit = s.upcomingMax
	}
	return s.workouts.ListUpcoming(ctx, userID, s.now().UTC(), limit)
}

// dayRange covers the calendar days start..end inclusive.
func dayRange(start, end time.Time) repository.TimeRange {
	return repository.TimeRange{
		From: domain.StartOfDay(start),
		To:   domain.StartOfDay(end).AddDate(0, 0, 1),
	}
}
