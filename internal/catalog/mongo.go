package catalog

import (
	"alcyxob/workout-scheduler/internal/domain"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const DefaultCollectionName = "workout_templates"

// mongoCatalog reads templates from the catalog's collection. It never writes.
type mongoCatalog struct {
	collection *mongo.Collection
}

// NewMongoCatalog creates a read-only catalog over collectionName.
func NewMongoCatalog(db *mongo.Database, collectionName string) TemplateCatalog {
	if collectionName == "" {
		collectionName = DefaultCollectionName
	}
	return &mongoCatalog{collection: db.Collection(collectionName)}
}

type templateDocument struct {
	ID            primitive.ObjectID `bson:"_id"`
	Name          string             `bson:"name"`
	ExerciseCount int                `bson:"exerciseCount"`
}

// Lookup fetches name and exercise count; the exercise list itself is not loaded.
func (c *mongoCatalog) Lookup(ctx context.Context, templateID primitive.ObjectID) (*domain.TemplateInfo, error) {
	projection := bson.M{
		"name":          1,
		"exerciseCount": bson.M{"$size": bson.M{"$ifNull": bson.A{"$exercises", bson.A{}}}},
	}

	var doc templateDocument
	err := c.collection.
		FindOne(ctx, bson.M{"_id": templateID}, options.FindOne().SetProjection(projection)).
		Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}

	return &domain.TemplateInfo{
		ID:            doc.ID,
		Name:          doc.Name,
		ExerciseCount: doc.ExerciseCount,
	}, nil
}
