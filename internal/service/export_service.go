package service

import (
	"alcyxob/workout-scheduler/internal/domain"
	"alcyxob/workout-scheduler/internal/ical"
	"alcyxob/workout-scheduler/internal/repository"
	"alcyxob/workout-scheduler/internal/storage"
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	icsContentType         = "text/calendar; charset=utf-8"
	defaultExportPrefix    = "exports"
	defaultWorkoutDuration = time.Hour
	maxListedExports       = 50
)

var (
	ErrExportFailed   = errors.New("failed to export calendar")
	ErrExportNotFound = fmt.Errorf("calendar export %w", ErrNotFound)
)

// ExportResult points at an uploaded .ics file.
type ExportResult struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	ObjectKey string    `json:"objectKey"`
	Events    int       `json:"events"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type ExportService interface {
	ExportCalendar(ctx context.Context, userID primitive.ObjectID, startDate, endDate time.Time) (*ExportResult, error)
	ListExports(ctx context.Context, userID primitive.ObjectID) ([]domain.CalendarExport, error)
	GetExportURL(ctx context.Context, userID, exportID primitive.ObjectID) (*ExportResult, error)
	DeleteExport(ctx context.Context, userID, exportID primitive.ObjectID) error
}

// ExportOptions configures exportService.
type ExportOptions struct {
	Prefix          string
	URLExpiry       time.Duration
	WorkoutDuration time.Duration
	ReminderMinutes int
	Now             func() time.Time
}

type exportService struct {
	calendar    CalendarService
	exports     repository.CalendarExportRepository
	fileStorage storage.FileStorage
	opts        ExportOptions
}

func NewExportService(calendar CalendarService, exports repository.CalendarExportRepository, fileStorage storage.FileStorage, opts ExportOptions) ExportService {
	if opts.Prefix == "" {
		opts.Prefix = defaultExportPrefix
	}
	if opts.URLExpiry <= 0 {
		opts.URLExpiry = storage.DefaultPresignedURLExpiry
	}
	if opts.WorkoutDuration <= 0 {
		opts.WorkoutDuration = defaultWorkoutDuration
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &exportService{
		calendar:    calendar,
		exports:     exports,
		fileStorage: fileStorage,
		opts:        opts,
	}
}

// ExportCalendar renders the calendar range as iCalendar, uploads it, records
// the upload and returns a presigned download URL.
func (s *exportService) ExportCalendar(ctx context.Context, userID primitive.ObjectID, startDate, endDate time.Time) (*ExportResult, error) {
	days, err := s.calendar.GetCalendarEvents(ctx, userID, startDate, endDate)
	if err != nil {
		return nil, err
	}

	events := make([]ical.Event, 0)
	for _, day := range days {
		for _, w := range day.Workouts {
			events = append(events, s.toEvent(w))
		}
	}

	now := s.opts.Now().UTC()
	body := ical.Render("Workouts", events, now)
	objectKey := path.Join(s.opts.Prefix, userID.Hex(), fmt.Sprintf("%s.ics", uuid.NewString()))

	if err := s.fileStorage.PutObject(ctx, objectKey, icsContentType, []byte(body)); err != nil {
		log.Errorf("export calendar for user %s: %s", userID.Hex(), err)
		return nil, fmt.Errorf("%w: upload: %s", ErrExportFailed, err)
	}

	record := &domain.CalendarExport{
		UserID:      userID,
		ObjectKey:   objectKey,
		RangeStart:  domain.DayKey(startDate),
		RangeEnd:    domain.DayKey(endDate),
		Events:      len(events),
		ContentType: icsContentType,
		Size:        int64(len(body)),
	}
	if _, err := s.exports.Create(ctx, record); err != nil {
		// don't leave an orphaned object behind
		if delErr := s.fileStorage.DeleteObject(ctx, objectKey); delErr != nil {
			log.Warnf("export calendar: cleanup of %s failed: %s", objectKey, delErr)
		}
		return nil, fmt.Errorf("%w: record: %s", ErrExportFailed, err)
	}

	return s.presign(ctx, record, now)
}

func (s *exportService) presign(ctx context.Context, record *domain.CalendarExport, now time.Time) (*ExportResult, error) {
	url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, record.ObjectKey, s.opts.URLExpiry)
	if err != nil {
		return nil, fmt.Errorf("%w: presign: %s", ErrExportFailed, err)
	}

	return &ExportResult{
		ID:        record.ID.Hex(),
		URL:       url,
		ObjectKey: record.ObjectKey,
		Events:    record.Events,
		ExpiresAt: now.Add(s.opts.URLExpiry),
	}, nil
}

// ListExports returns the user's most recent exports.
func (s *exportService) ListExports(ctx context.Context, userID primitive.ObjectID) ([]domain.CalendarExport, error) {
	if userID == primitive.NilObjectID {
		return nil, ErrUnauthorized
	}
	return s.exports.ListByUser(ctx, userID, maxListedExports)
}

// GetExportURL issues a fresh download URL for an earlier export.
func (s *exportService) GetExportURL(ctx context.Context, userID, exportID primitive.ObjectID) (*ExportResult, error) {
	if userID == primitive.NilObjectID {
		return nil, ErrUnauthorized
	}
	record, err := s.exports.GetByID(ctx, userID, exportID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExportNotFound
		}
		return nil, err
	}
	return s.presign(ctx, record, s.opts.Now().UTC())
}

// DeleteExport removes the stored file and its metadata.
func (s *exportService) DeleteExport(ctx context.Context, userID, exportID primitive.ObjectID) error {
	if userID == primitive.NilObjectID {
		return ErrUnauthorized
	}
	record, err := s.exports.GetByID(ctx, userID, exportID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExportNotFound
		}
		return err
	}

	if err := s.fileStorage.DeleteObject(ctx, record.ObjectKey); err != nil {
		return fmt.Errorf("delete export object: %w", err)
	}
	if err := s.exports.Delete(ctx, userID, exportID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return nil
}

func (s *exportService) toEvent(w domain.CalendarWorkout) ical.Event {
	summary := w.TemplateName
	if summary == "" {
		summary = "Workout"
	}

	status := "CONFIRMED"
	switch w.Status {
	case domain.StatusSkipped:
		status = "CANCELLED"
	case domain.StatusPending:
		status = "TENTATIVE"
	}

	event := ical.Event{
		UID:         w.ID.Hex() + "@workout-scheduler",
		Summary:     summary,
		Description: fmt.Sprintf("%d exercises, status: %s", w.ExerciseCount, w.Status),
		StartTime:   w.ScheduledAt,
		EndTime:     w.ScheduledAt.Add(s.opts.WorkoutDuration),
		Status:      status,
	}
	if w.Status == domain.StatusPending {
		event.Reminder = s.opts.ReminderMinutes
	}
	return event
}
