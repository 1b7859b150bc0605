package mongo

import (
	"alcyxob/workout-scheduler/internal/domain"
	"alcyxob/workout-scheduler/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	assignedWorkoutCollectionName = "assigned_workouts"
	uniqueOccurrenceIndexName     = "uniq_user_template_day_recurrence"
	duplicateKeyCode              = 11000
)

// mongoAssignedWorkoutRepository implements repository.AssignedWorkoutRepository
type mongoAssignedWorkoutRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

// NewMongoAssignedWorkoutRepository creates a new AssignedWorkout repository backed by MongoDB.
func NewMongoAssignedWorkoutRepository(db *mongo.Database) repository.AssignedWorkoutRepository {
	return &mongoAssignedWorkoutRepository{
		collection: db.Collection(assignedWorkoutCollectionName),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (r *mongoAssignedWorkoutRepository) prepare(workout *domain.AssignedWorkout, now time.Time) error {
	if workout.UserID == primitive.NilObjectID || workout.TemplateID == primitive.NilObjectID {
		return fmt.Errorf("%w: assigned workout requires userId and templateId", repository.ErrInvalidDocument)
	}
	if workout.ScheduledAt.IsZero() {
		return fmt.Errorf("%w: assigned workout requires scheduledAt", repository.ErrInvalidDocument)
	}
	workout.ID = primitive.NewObjectID()
	workout.ScheduledAt = workout.ScheduledAt.UTC()
	workout.ScheduledDay = domain.DayKey(workout.ScheduledAt)
	workout.CreatedAt = now
	workout.UpdatedAt = now
	if workout.Status == "" {
		workout.Status = domain.StatusPending
	}
	return nil
}

// Create inserts a single assigned workout.
func (r *mongoAssignedWorkoutRepository) Create(ctx context.Context, workout *domain.AssignedWorkout) (primitive.ObjectID, error) {
	if err := r.prepare(workout, r.now()); err != nil {
		return primitive.NilObjectID, err
	}

	result, err := r.collection.InsertOne(ctx, workout)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted assigned workout ID")
	}
	return insertedID, nil
}

// CreateMany inserts the batch unordered so one duplicate does not stop the rest.
func (r *mongoAssignedWorkoutRepository) CreateMany(ctx context.Context, workouts []*domain.AssignedWorkout) (repository.InsertResult, error) {
	var res repository.InsertResult
	if len(workouts) == 0 {
		return res, nil
	}

	now := r.now()
	docs := make([]interface{}, 0, len(workouts))
	for _, w := range workouts {
		if err := r.prepare(w, now); err != nil {
			return res, err
		}
		docs = append(docs, w)
	}

	_, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err == nil {
		for _, w := range workouts {
			res.Inserted = append(res.Inserted, w.ID)
		}
		return res, nil
	}

	var bwe mongo.BulkWriteException
	if !errors.As(err, &bwe) {
		return res, err
	}

	failed := make(map[int]struct{}, len(bwe.WriteErrors))
	var otherErr error
	for _, we := range bwe.WriteErrors {
		failed[we.Index] = struct{}{}
		if we.Code == duplicateKeyCode {
			res.Duplicates++
			continue
		}
		if otherErr == nil {
			otherErr = fmt.Errorf("insert assigned workout %d: %s", we.Index, we.Message)
		}
	}
	for i, w := range workouts {
		if _, ok := failed[i]; !ok {
			res.Inserted = append(res.Inserted, w.ID)
		}
	}

	if otherErr != nil {
		return res, otherErr
	}
	if bwe.WriteConcernError != nil {
		return res, fmt.Errorf("insert assigned workouts: %s", bwe.WriteConcernError.Message)
	}
	return res, nil
}

// GetByID retrieves an assigned workout owned by userID.
func (r *mongoAssignedWorkoutRepository) GetByID(ctx context.Context, userID, id primitive.ObjectID) (*domain.AssignedWorkout, error) {
	var workout domain.AssignedWorkout
	filter := bson.M{"_id": id, "userId": userID}

	err := r.collection.FindOne(ctx, filter).Decode(&workout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &workout, nil
}

// ExistsForDay reports whether the rule already materialised this template on day.
func (r *mongoAssignedWorkoutRepository) ExistsForDay(ctx context.Context, userID, templateID primitive.ObjectID, day string, recurrenceID primitive.ObjectID) (bool, error) {
	filter := bson.M{
		"userId":       userID,
		"templateId":   templateID,
		"scheduledDay": day,
		"recurrenceId": recurrenceID,
	}
	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListInRange returns the user's workouts with From <= scheduledAt < To, oldest first.
func (r *mongoAssignedWorkoutRepository) ListInRange(ctx context.Context, userID primitive.ObjectID, tr repository.TimeRange) ([]domain.AssignedWorkout, error) {
	filter := bson.M{
		"userId":      userID,
		"scheduledAt": bson.M{"$gte": tr.From, "$lt": tr.To},
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "scheduledAt", Value: 1}})
	return r.find(ctx, filter, findOptions)
}

// ListUpcoming returns pending or in-progress workouts scheduled at or after from.
func (r *mongoAssignedWorkoutRepository) ListUpcoming(ctx context.Context, userID primitive.ObjectID, from time.Time, limit int) ([]domain.AssignedWorkout, error) {
	filter := bson.M{
		"userId":      userID,
		"status":      bson.M{"$in": bson.A{domain.StatusPending, domain.StatusInProgress}},
		"scheduledAt": bson.M{"$gte": from},
	}
	findOptions := options.Find().
		SetSort(bson.D{{Key: "scheduledAt", Value: 1}}).
		SetLimit(int64(limit))
	return r.find(ctx, filter, findOptions)
}

// ListByRecurrence returns occurrences generated by a rule, oldest first.
func (r *mongoAssignedWorkoutRepository) ListByRecurrence(ctx context.Context, userID, recurrenceID primitive.ObjectID, limit int) ([]domain.AssignedWorkout, error) {
	filter := bson.M{"userId": userID, "recurrenceId": recurrenceID}
	findOptions := options.Find().SetSort(bson.D{{Key: "scheduledAt", Value: 1}})
	if limit > 0 {
		findOptions.SetLimit(int64(limit))
	}
	return r.find(ctx, filter, findOptions)
}

func (r *mongoAssignedWorkoutRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.AssignedWorkout, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	workouts := make([]domain.AssignedWorkout, 0)
	if err = cursor.All(ctx, &workouts); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return workouts, nil
}

// UpdateStatus is a conditional update: it only matches while status == from.
func (r *mongoAssignedWorkoutRepository) UpdateStatus(ctx context.Context, userID, id primitive.ObjectID, from, to domain.WorkoutStatus, completedAt *time.Time) (*domain.AssignedWorkout, error) {
	filter := bson.M{"_id": id, "userId": userID, "status": from}
	set := bson.M{
		"status":    to,
		"updatedAt": r.now(),
	}
	if completedAt != nil {
		set["completedAt"] = completedAt.UTC()
	}

	updated, err := r.findOneAndSet(ctx, filter, set)
	if errors.Is(err, repository.ErrNotFound) {
		// Tell "gone" apart from "someone else moved it first".
		if _, getErr := r.GetByID(ctx, userID, id); getErr != nil {
			return nil, getErr
		}
		return nil, repository.ErrStatusMismatch
	}
	return updated, err
}

// Reschedule moves the workout to scheduledAt. Collisions with the unique
// occurrence index surface as repository.ErrDuplicate.
func (r *mongoAssignedWorkoutRepository) Reschedule(ctx context.Context, userID, id primitive.ObjectID, scheduledAt time.Time) (*domain.AssignedWorkout, error) {
	filter := bson.M{"_id": id, "userId": userID}
	set := bson.M{
		"scheduledAt":  scheduledAt.UTC(),
		"scheduledDay": domain.DayKey(scheduledAt),
		"updatedAt":    r.now(),
	}
	return r.findOneAndSet(ctx, filter, set)
}

func (r *mongoAssignedWorkoutRepository) findOneAndSet(ctx context.Context, filter, set bson.M) (*domain.AssignedWorkout, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var workout domain.AssignedWorkout
	err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&workout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, repository.ErrDuplicate
		}
		return nil, err
	}
	return &workout, nil
}

// Delete removes the occurrence. The parent rule is not touched.
func (r *mongoAssignedWorkoutRepository) Delete(ctx context.Context, userID, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureAssignedWorkoutIndexes creates the indexes for the assigned_workouts collection.
func EnsureAssignedWorkoutIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// Calendar, stats and upcoming queries
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "scheduledAt", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "recurrenceId", Value: 1}, {Key: "scheduledAt", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
		{
			// At most one generated occurrence per (user, template, day, rule).
			// One-off workouts carry no recurrenceId and are not constrained.
			Keys: bson.D{
				{Key: "userId", Value: 1},
				{Key: "templateId", Value: 1},
				{Key: "scheduledDay", Value: 1},
				{Key: "recurrenceId", Value: 1},
			},
			Options: options.Index().
				SetName(uniqueOccurrenceIndexName).
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"recurrenceId": bson.M{"$exists": true}}),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("create indexes for %s: %w", collection.Name(), err)
	}
	return nil
}
