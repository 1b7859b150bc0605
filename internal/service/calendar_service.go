package service

import (
	"alcyxob/workout-scheduler/internal/catalog"
	"alcyxob/workout-scheduler/internal/domain"
	"alcyxob/workout-scheduler/internal/repository"
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CalendarService interface {
	GetCalendarEvents(ctx context.Context, userID primitive.ObjectID, startDate, endDate time.Time) ([]domain.CalendarDay, error)
	GetWorkoutStats(ctx context.Context, userID primitive.ObjectID, startDate, endDate time.Time) (*domain.WorkoutStats, error)
}

type calendarService struct {
	workouts repository.AssignedWorkoutRepository
	catalog  catalog.TemplateCatalog
}

// NewCalendarService creates a new instance of calendarService.
func NewCalendarService(workouts repository.AssignedWorkoutRepository, templates catalog.TemplateCatalog) CalendarService {
	return &calendarService{
		workouts: workouts,
		catalog:  templates,
	}
}

func validateRange(userID primitive.ObjectID, startDate, endDate time.Time) error {
	if userID == primitive.NilObjectID {
		return ErrUnauthorized
	}
	if startDate.IsZero() || endDate.IsZero() {
		return invalidArgument("start and end dates are required")
	}
	if domain.StartOfDay(endDate).Before(domain.StartOfDay(startDate)) {
		return invalidArgument("end date is before start date")
	}
	return nil
}

// GetCalendarEvents groups the user's workouts in [startDate, endDate] by
// calendar day. Days are ascending, workouts within a day by time of day.
// An empty range yields an empty slice.
func (s *calendarService) GetCalendarEvents(ctx context.Context, userID primitive.ObjectID, startDate, endDate time.Time) ([]domain.CalendarDay, error) {
	if err := validateRange(userID, startDate, endDate); err != nil {
		return nil, err
	}

	workouts, err := s.workouts.ListInRange(ctx, userID, dayRange(startDate, endDate))
	if err != nil {
		return nil, err
	}

	memo := newTemplateMemo(s.catalog)
	days := make([]domain.CalendarDay, 0)
	for _, w := range workouts {
		info, err := memo.lookup(ctx, w.TemplateID)
		if err != nil {
			return nil, err
		}

		entry := domain.CalendarWorkout{AssignedWorkout: w}
		if info != nil {
			entry.TemplateName = info.Name
			entry.ExerciseCount = info.ExerciseCount
		}

		key := domain.DayKey(w.ScheduledAt)
		if n := len(days); n == 0 || days[n-1].Date != key {
			days = append(days, domain.CalendarDay{Date: key})
		}
		days[len(days)-1].Workouts = append(days[len(days)-1].Workouts, entry)
	}
	return days, nil
}

// GetWorkoutStats tallies the user's workouts in [startDate, endDate].
// in_progress counts toward Total only.
func (s *calendarService) GetWorkoutStats(ctx context.Context, userID primitive.ObjectID, startDate, endDate time.Time) (*domain.WorkoutStats, error) {
	if err := validateRange(userID, startDate, endDate); err != nil {
		return nil, err
	}

	workouts, err := s.workouts.ListInRange(ctx, userID, dayRange(startDate, endDate))
	if err != nil {
		return nil, err
	}
	return computeStats(workouts), nil
}

func computeStats(workouts []domain.AssignedWorkout) *domain.WorkoutStats {
	stats := &domain.WorkoutStats{Total: len(workouts)}
	for _, w := range workouts {
		switch w.Status {
		case domain.StatusCompleted:
			stats.Completed++
		case domain.StatusPending:
			stats.Pending++
		case domain.StatusSkipped:
			stats.Skipped++
		}
	}
	if stats.Total > 0 {
		stats.CompletionRate = float64(stats.Completed) * 100 / float64(stats.Total)
	}
	return stats
}

// templateMemo caches catalog lookups for the duration of one aggregation call.
// Templates the catalog no longer knows are remembered as nil.
type templateMemo struct {
	catalog catalog.TemplateCatalog
	entries map[primitive.ObjectID]*domain.TemplateInfo
}

func newTemplateMemo(c catalog.TemplateCatalog) *templateMemo {
	return &templateMemo{
		catalog: c,
		entries: make(map[primitive.ObjectID]*domain.TemplateInfo),
	}
}

func (m *templateMemo) lookup(ctx context.Context, templateID primitive.ObjectID) (*domain.TemplateInfo, error) {
	if info, ok := m.entries[templateID]; ok {
		return info, nil
	}
	info, err := m.catalog.Lookup(ctx, templateID)
	if err != nil {
		if !errors.Is(err, catalog.ErrTemplateNotFound) {
			return nil, err
		}
		log.Warnf("calendar: template %s no longer in catalog", templateID.Hex())
	}
	m.entries[templateID] = info
	return info, nil
}
