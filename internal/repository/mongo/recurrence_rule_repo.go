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

const recurrenceRuleCollectionName = "recurrence_rules"

// mongoRecurrenceRuleRepository implements repository.RecurrenceRuleRepository
type mongoRecurrenceRuleRepository struct {
	collection *mongo.Collection
}

// NewMongoRecurrenceRuleRepository creates a new RecurrenceRule repository.
func NewMongoRecurrenceRuleRepository(db *mongo.Database) repository.RecurrenceRuleRepository {
	return &mongoRecurrenceRuleRepository{
		collection: db.Collection(recurrenceRuleCollectionName),
	}
}

// Create inserts a new rule. New rules are always active.
func (r *mongoRecurrenceRuleRepository) Create(ctx context.Context, rule *domain.RecurrenceRule) (primitive.ObjectID, error) {
	if rule.UserID == primitive.NilObjectID || rule.TemplateID == primitive.NilObjectID {
		return primitive.NilObjectID, fmt.Errorf("%w: recurrence rule requires userId and templateId", repository.ErrInvalidDocument)
	}
	rule.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	rule.CreatedAt = now
	rule.UpdatedAt = now
	rule.IsActive = true

	result, err := r.collection.InsertOne(ctx, rule)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted recurrence rule ID")
	}
	return insertedID, nil
}

// GetByID retrieves a rule owned by userID.
func (r *mongoRecurrenceRuleRepository) GetByID(ctx context.Context, userID, id primitive.ObjectID) (*domain.RecurrenceRule, error) {
	var rule domain.RecurrenceRule
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "userId": userID}).Decode(&rule)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &rule, nil
}

// ListByUser returns the user's rules, newest first.
func (r *mongoRecurrenceRuleRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, activeOnly bool) ([]domain.RecurrenceRule, error) {
	filter := bson.M{"userId": userID}
	if activeOnly {
		filter["isActive"] = true
	}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

// ListActive returns every active rule across users, used by the refresher.
func (r *mongoRecurrenceRuleRepository) ListActive(ctx context.Context) ([]domain.RecurrenceRule, error) {
	return r.find(ctx, bson.M{"isActive": true}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

func (r *mongoRecurrenceRuleRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.RecurrenceRule, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	rules := make([]domain.RecurrenceRule, 0)
	if err = cursor.All(ctx, &rules); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return rules, nil
}

// Deactivate flips isActive off. Deactivating an inactive rule is a no-op.
func (r *mongoRecurrenceRuleRepository) Deactivate(ctx context.Context, userID, id primitive.ObjectID) (*domain.RecurrenceRule, error) {
	filter := bson.M{"_id": id, "userId": userID}
	update := bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var rule domain.RecurrenceRule
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&rule); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &rule, nil
}

// EnsureRecurrenceRuleIndexes creates the indexes for the recurrence_rules collection.
func EnsureRecurrenceRuleIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "isActive", Value: 1}},
			Options: options.Index(),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("create indexes for %s: %w", collection.Name(), err)
	}
	return nil
}
