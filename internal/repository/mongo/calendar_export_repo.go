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

const calendarExportCollectionName = "calendar_exports"

// mongoCalendarExportRepository implements repository.CalendarExportRepository
type mongoCalendarExportRepository struct {
	collection *mongo.Collection
}

// NewMongoCalendarExportRepository creates a new CalendarExport repository backed by MongoDB.
func NewMongoCalendarExportRepository(db *mongo.Database) repository.CalendarExportRepository {
	return &mongoCalendarExportRepository{
		collection: db.Collection(calendarExportCollectionName),
	}
}

// Create inserts new export metadata into the database.
func (r *mongoCalendarExportRepository) Create(ctx context.Context, export *domain.CalendarExport) (primitive.ObjectID, error) {
	if export.UserID == primitive.NilObjectID || export.ObjectKey == "" {
		return primitive.NilObjectID, fmt.Errorf("%w: calendar export requires userId and objectKey", repository.ErrInvalidDocument)
	}

	export.ID = primitive.NewObjectID()
	export.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, export)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted calendar export ID")
	}
	return insertedID, nil
}

// GetByID retrieves export metadata owned by userID.
func (r *mongoCalendarExportRepository) GetByID(ctx context.Context, userID, id primitive.ObjectID) (*domain.CalendarExport, error) {
	var export domain.CalendarExport
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "userId": userID}).Decode(&export)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &export, nil
}

// ListByUser returns the user's exports, newest first.
func (r *mongoCalendarExportRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.CalendarExport, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		findOptions.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	exports := make([]domain.CalendarExport, 0)
	if err = cursor.All(ctx, &exports); err != nil {
		return nil, err
	}
	return exports, nil
}

// Delete removes export metadata. The S3 object is the caller's concern.
func (r *mongoCalendarExportRepository) Delete(ctx context.Context, userID, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureCalendarExportIndexes creates necessary indexes for the calendar_exports collection.
func EnsureCalendarExportIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "objectKey", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("create indexes for %s: %w", collection.Name(), err)
	}
	return nil
}
