package mongo_test

import (
	"alcyxob/workout-scheduler/internal/domain"
	"alcyxob/workout-scheduler/internal/repository"
	repomongo "alcyxob/workout-scheduler/internal/repository/mongo"
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// testDB connects to MONGO_TEST_URI and returns a throwaway database.
func testDB(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	client, err := repomongo.ConnectDB(uri)
	require.NoError(t, err)

	db := client.Database(fmt.Sprintf("scheduler_test_%d", time.Now().UnixNano()))
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, repomongo.EnsureIndexes(ctx, db))

	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = repomongo.DisconnectDB(client)
	})
	return db
}

func occurrence(userID, templateID, ruleID primitive.ObjectID, at time.Time) *domain.AssignedWorkout {
	return &domain.AssignedWorkout{
		UserID:       userID,
		TemplateID:   templateID,
		ScheduledAt:  at,
		RecurrenceID: &ruleID,
	}
}

func TestAssignedWorkoutRepository_UniqueOccurrence(t *testing.T) {
	db := testDB(t)
	repo := repomongo.NewMongoAssignedWorkoutRepository(db)
	ctx := context.Background()

	userID, templateID, ruleID := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	day1 := time.Date(2024, time.January, 1, 7, 30, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	res, err := repo.CreateMany(ctx, []*domain.AssignedWorkout{
		occurrence(userID, templateID, ruleID, day1),
		occurrence(userID, templateID, ruleID, day2),
	})
	require.NoError(t, err)
	assert.Len(t, res.Inserted, 2)

	// same day at a different time collides, the new day does not
	res, err = repo.CreateMany(ctx, []*domain.AssignedWorkout{
		occurrence(userID, templateID, ruleID, day1.Add(5*time.Hour)),
		occurrence(userID, templateID, ruleID, day2.AddDate(0, 0, 1)),
	})
	require.NoError(t, err)
	assert.Len(t, res.Inserted, 1)
	assert.Equal(t, 1, res.Duplicates)

	exists, err := repo.ExistsForDay(ctx, userID, templateID, "2024-01-01", ruleID)
	require.NoError(t, err)
	assert.True(t, exists)

	// one-off workouts are not constrained
	for i := 0; i < 2; i++ {
		_, err = repo.Create(ctx, &domain.AssignedWorkout{UserID: userID, TemplateID: templateID, ScheduledAt: day1})
		require.NoError(t, err)
	}

	all, err := repo.ListInRange(ctx, userID, repository.TimeRange{From: day1.AddDate(0, 0, -1), To: day1.AddDate(0, 0, 10)})
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestAssignedWorkoutRepository_ConditionalStatusAndReschedule(t *testing.T) {
	db := testDB(t)
	repo := repomongo.NewMongoAssignedWorkoutRepository(db)
	ctx := context.Background()

	userID, templateID, ruleID := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	day1 := time.Date(2024, time.January, 1, 7, 30, 0, 0, time.UTC)
	res, err := repo.CreateMany(ctx, []*domain.AssignedWorkout{
		occurrence(userID, templateID, ruleID, day1),
		occurrence(userID, templateID, ruleID, day1.AddDate(0, 0, 7)),
	})
	require.NoError(t, err)
	first := res.Inserted[0]

	completedAt := time.Now().UTC().Truncate(time.Millisecond)
	updated, err := repo.UpdateStatus(ctx, userID, first, domain.StatusPending, domain.StatusCompleted, &completedAt)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, updated.Status)
	require.NotNil(t, updated.CompletedAt)
	assert.True(t, completedAt.Equal(*updated.CompletedAt))

	_, err = repo.UpdateStatus(ctx, userID, first, domain.StatusPending, domain.StatusSkipped, nil)
	assert.ErrorIs(t, err, repository.ErrStatusMismatch)

	_, err = repo.UpdateStatus(ctx, primitive.NewObjectID(), first, domain.StatusCompleted, domain.StatusSkipped, nil)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.Reschedule(ctx, userID, first, day1.AddDate(0, 0, 7).Add(time.Hour))
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	moved, err := repo.Reschedule(ctx, userID, first, day1.AddDate(0, 0, 2))
	require.NoError(t, err)
	assert.Equal(t, "2024-01-03", moved.ScheduledDay)

	require.NoError(t, repo.Delete(ctx, userID, first))
	assert.ErrorIs(t, repo.Delete(ctx, userID, first), repository.ErrNotFound)
}

func TestRecurrenceRuleRepository(t *testing.T) {
	db := testDB(t)
	repo := repomongo.NewMongoRecurrenceRuleRepository(db)
	ctx := context.Background()

	userID := primitive.NewObjectID()
	rule := &domain.RecurrenceRule{
		UserID:         userID,
		TemplateID:     primitive.NewObjectID(),
		RecurrenceType: domain.RecurrenceWeekly,
		Interval:       1,
		StartDate:      time.Date(2024, time.January, 1, 7, 30, 0, 0, time.UTC),
		DaysOfWeek:     []int{1, 3, 5},
	}
	id, err := repo.Create(ctx, rule)
	require.NoError(t, err)

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, []int{1, 3, 5}, active[0].DaysOfWeek)

	deactivated, err := repo.Deactivate(ctx, userID, id)
	require.NoError(t, err)
	assert.False(t, deactivated.IsActive)

	listed, err := repo.ListByUser(ctx, userID, true)
	require.NoError(t, err)
	assert.Empty(t, listed)

	_, err = repo.GetByID(ctx, primitive.NewObjectID(), id)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCalendarExportRepository(t *testing.T) {
	db := testDB(t)
	repo := repomongo.NewMongoCalendarExportRepository(db)
	ctx := context.Background()

	userID := primitive.NewObjectID()
	_, err := repo.Create(ctx, &domain.CalendarExport{UserID: userID})
	assert.ErrorIs(t, err, repository.ErrInvalidDocument)

	older := &domain.CalendarExport{UserID: userID, ObjectKey: "exports/a.ics", RangeStart: "2024-01-01", RangeEnd: "2024-01-31"}
	_, err = repo.Create(ctx, older)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	newer := &domain.CalendarExport{UserID: userID, ObjectKey: "exports/b.ics", RangeStart: "2024-02-01", RangeEnd: "2024-02-29"}
	_, err = repo.Create(ctx, newer)
	require.NoError(t, err)

	listed, err := repo.ListByUser(ctx, userID, 10)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, newer.ID, listed[0].ID)

	got, err := repo.GetByID(ctx, userID, older.ID)
	require.NoError(t, err)
	assert.Equal(t, "exports/a.ics", got.ObjectKey)

	_, err = repo.GetByID(ctx, primitive.NewObjectID(), older.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, userID, older.ID))
	assert.ErrorIs(t, repo.Delete(ctx, userID, older.ID), repository.ErrNotFound)
}
