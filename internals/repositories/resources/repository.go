package resources

import (
	"context"

	"Resource-Library/internals/models"
)

type Repository interface {
	// List returns resources whose title or description contains query,
	// newest first. An empty query matches everything.
	List(ctx context.Context, query string) ([]models.Resource, error)
	ListByCreator(ctx context.Context, userID int64) ([]models.Resource, error)
	Get(ctx context.Context, id int64) (*models.Resource, error)
	GetDetail(ctx context.Context, id int64) (*models.ResourceDetail, error)
	Create(ctx context.Context, in models.ResourceInput, createdBy *int64) (int64, error)
	// Update and Delete report whether a row matched.
	Update(ctx context.Context, id int64, in models.ResourceInput) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int, error)
}
