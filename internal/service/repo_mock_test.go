package service_test

import (
	"alcyxob/workout-scheduler/internal/domain"
	"alcyxob/workout-scheduler/internal/repository"
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// workoutRepoMock is an in-memory AssignedWorkoutRepository that enforces the
// same unique occurrence constraint as the mongo index.
type workoutRepoMock struct {
	mu       sync.Mutex
	workouts map[primitive.ObjectID]*domain.AssignedWorkout

	// failCreateManyAfter > 0 makes CreateMany write that many rows and then fail.
	failCreateManyAfter int
	createManyErr       error
	createManyCalls     int
}

func newWorkoutRepoMock() *workoutRepoMock {
	return &workoutRepoMock{workouts: make(map[primitive.ObjectID]*domain.AssignedWorkout)}
}

func occurrenceKey(w *domain.AssignedWorkout) string {
	if w.RecurrenceID == nil {
		return ""
	}
	return w.UserID.Hex() + "|" + w.TemplateID.Hex() + "|" + w.ScheduledDay + "|" + w.RecurrenceID.Hex()
}

func (r *workoutRepoMock) collides(w *domain.AssignedWorkout) bool {
	key := occurrenceKey(w)
	if key == "" {
		return false
	}
	for _, existing := range r.workouts {
		if existing.ID != w.ID && occurrenceKey(existing) == key {
			return true
		}
	}
	return false
}

func (r *workoutRepoMock) insert(w *domain.AssignedWorkout) error {
	now := time.Now().UTC()
	w.ID = primitive.NewObjectID()
	w.ScheduledAt = w.ScheduledAt.UTC()
	w.ScheduledDay = domain.DayKey(w.ScheduledAt)
	w.CreatedAt, w.UpdatedAt = now, now
	if w.Status == "" {
		w.Status = domain.StatusPending
	}
	if r.collides(w) {
		return repository.ErrDuplicate
	}
	stored := *w
	r.workouts[w.ID] = &stored
	return nil
}

func (r *workoutRepoMock) Create(_ context.Context, workout *domain.AssignedWorkout) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.insert(workout); err != nil {
		return primitive.NilObjectID, err
	}
	return workout.ID, nil
}

func (r *workoutRepoMock) CreateMany(_ context.Context, workouts []*domain.AssignedWorkout) (repository.InsertResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createManyCalls++

	var res repository.InsertResult
	for i, w := range workouts {
		if r.createManyErr != nil && i >= r.failCreateManyAfter {
			return res, r.createManyErr
		}
		if err := r.insert(w); err != nil {
			res.Duplicates++
			continue
		}
		res.Inserted = append(res.Inserted, w.ID)
	}
	return res, nil
}

func (r *workoutRepoMock) GetByID(_ context.Context, userID, id primitive.ObjectID) (*domain.AssignedWorkout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workouts[id]
	if !ok || w.UserID != userID {
		return nil, repository.ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (r *workoutRepoMock) ExistsForDay(_ context.Context, userID, templateID primitive.ObjectID, day string, recurrenceID primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.workouts {
		if w.UserID == userID && w.TemplateID == templateID && w.ScheduledDay == day &&
			w.RecurrenceID != nil && *w.RecurrenceID == recurrenceID {
			return true, nil
		}
	}
	return false, nil
}

func (r *workoutRepoMock) list(match func(w *domain.AssignedWorkout) bool, limit int) []domain.AssignedWorkout {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.AssignedWorkout
	for _, w := range r.workouts {
		if match(w) {
			out = append(out, *w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (r *workoutRepoMock) ListInRange(_ context.Context, userID primitive.ObjectID, tr repository.TimeRange) ([]domain.AssignedWorkout, error) {
	return r.list(func(w *domain.AssignedWorkout) bool {
		return w.UserID == userID && !w.ScheduledAt.Before(tr.From) && w.ScheduledAt.Before(tr.To)
	}, 0), nil
}

func (r *workoutRepoMock) ListUpcoming(_ context.Context, userID primitive.ObjectID, from time.Time, limit int) ([]domain.AssignedWorkout, error) {
	return r.list(func(w *domain.AssignedWorkout) bool {
		return w.UserID == userID && !w.ScheduledAt.Before(from) &&
			(w.Status == domain.StatusPending || w.Status == domain.StatusInProgress)
	}, limit), nil
}

func (r *workoutRepoMock) ListByRecurrence(_ context.Context, userID, recurrenceID primitive.ObjectID, limit int) ([]domain.AssignedWorkout, error) {
	return r.list(func(w *domain.AssignedWorkout) bool {
		return w.UserID == userID && w.RecurrenceID != nil && *w.RecurrenceID == recurrenceID
	}, limit), nil
}

func (r *workoutRepoMock) UpdateStatus(_ context.Context, userID, id primitive.ObjectID, from, to domain.WorkoutStatus, completedAt *time.Time) (*domain.AssignedWorkout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workouts[id]
	if !ok || w.UserID != userID {
		return nil, repository.ErrNotFound
	}
	if w.Status != from {
		return nil, repository.ErrStatusMismatch
	}
	w.Status = to
	if completedAt != nil {
		w.CompletedAt = completedAt
	}
	w.UpdatedAt = time.Now().UTC()
	cp := *w
	return &cp, nil
}

func (r *workoutRepoMock) Reschedule(_ context.Context, userID, id primitive.ObjectID, scheduledAt time.Time) (*domain.AssignedWorkout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workouts[id]
	if !ok || w.UserID != userID {
		return nil, repository.ErrNotFound
	}
	moved := *w
	moved.ScheduledAt = scheduledAt.UTC()
	moved.ScheduledDay = domain.DayKey(scheduledAt)
	if r.collides(&moved) {
		return nil, repository.ErrDuplicate
	}
	*w = moved
	cp := *w
	return &cp, nil
}

func (r *workoutRepoMock) Delete(_ context.Context, userID, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workouts[id]
	if !ok || w.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.workouts, id)
	return nil
}

// seed stores w as-is, bypassing the unique check.
func (r *workoutRepoMock) seed(w domain.AssignedWorkout) primitive.ObjectID {
	r.mu.Lock()
	defer r.mu.Unlock()
	if w.ID == primitive.NilObjectID {
		w.ID = primitive.NewObjectID()
	}
	w.ScheduledDay = domain.DayKey(w.ScheduledAt)
	r.workouts[w.ID] = &w
	return w.ID
}

func (r *workoutRepoMock) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workouts)
}

type ruleRepoMock struct {
	mu    sync.Mutex
	rules map[primitive.ObjectID]*domain.RecurrenceRule
}

func newRuleRepoMock() *ruleRepoMock {
	return &ruleRepoMock{rules: make(map[primitive.ObjectID]*domain.RecurrenceRule)}
}

func (r *ruleRepoMock) Create(_ context.Context, rule *domain.RecurrenceRule) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rule.ID = primitive.NewObjectID()
	rule.IsActive = true
	stored := *rule
	r.rules[rule.ID] = &stored
	return rule.ID, nil
}

func (r *ruleRepoMock) GetByID(_ context.Context, userID, id primitive.ObjectID) (*domain.RecurrenceRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rule, ok := r.rules[id]
	if !ok || rule.UserID != userID {
		return nil, repository.ErrNotFound
	}
	cp := *rule
	return &cp, nil
}

func (r *ruleRepoMock) ListByUser(_ context.Context, userID primitive.ObjectID, activeOnly bool) ([]domain.RecurrenceRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.RecurrenceRule
	for _, rule := range r.rules {
		if rule.UserID == userID && (!activeOnly || rule.IsActive) {
			out = append(out, *rule)
		}
	}
	return out, nil
}

func (r *ruleRepoMock) ListActive(_ context.Context) ([]domain.RecurrenceRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.RecurrenceRule
	for _, rule := range r.rules {
		if rule.IsActive {
			out = append(out, *rule)
		}
	}
	return out, nil
}

func (r *ruleRepoMock) Deactivate(_ context.Context, userID, id primitive.ObjectID) (*domain.RecurrenceRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rule, ok := r.rules[id]
	if !ok || rule.UserID != userID {
		return nil, repository.ErrNotFound
	}
	rule.IsActive = false
	cp := *rule
	return &cp, nil
}

type exportRepoMock struct {
	mu        sync.Mutex
	exports   map[primitive.ObjectID]*domain.CalendarExport
	createErr error
}

func newExportRepoMock() *exportRepoMock {
	return &exportRepoMock{exports: make(map[primitive.ObjectID]*domain.CalendarExport)}
}

func (r *exportRepoMock) Create(_ context.Context, export *domain.CalendarExport) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return primitive.NilObjectID, r.createErr
	}
	export.ID = primitive.NewObjectID()
	export.CreatedAt = time.Now().UTC()
	stored := *export
	r.exports[export.ID] = &stored
	return export.ID, nil
}

func (r *exportRepoMock) GetByID(_ context.Context, userID, id primitive.ObjectID) (*domain.CalendarExport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	export, ok := r.exports[id]
	if !ok || export.UserID != userID {
		return nil, repository.ErrNotFound
	}
	cp := *export
	return &cp, nil
}

func (r *exportRepoMock) ListByUser(_ context.Context, userID primitive.ObjectID, limit int) ([]domain.CalendarExport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.CalendarExport, 0)
	for _, export := range r.exports {
		if export.UserID == userID {
			out = append(out, *export)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *exportRepoMock) Delete(_ context.Context, userID, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	export, ok := r.exports[id]
	if !ok || export.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.exports, id)
	return nil
}
