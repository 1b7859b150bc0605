// Package catalog resolves workout templates owned by the external template catalog.
package catalog

import (
	"alcyxob/workout-scheduler/internal/domain"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrTemplateNotFound = errors.New("workout template not found")

//go:generate mockgen -source=$GOFILE -destination=../service/catalog_mocks_test.go -package=service_test

// TemplateCatalog answers whether a template exists and what it looks like.
type TemplateCatalog interface {
	Lookup(ctx context.Context, templateID primitive.ObjectID) (*domain.TemplateInfo, error)
}
