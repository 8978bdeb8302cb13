package services

import (
	"context"
	"database/sql"

	"Resource-Library/internals/models"
	"Resource-Library/internals/repositories/resources"
)

// Publisher receives catalog change events.
type Publisher interface {
	Publish(ev models.ResourceEvent)
}

type CatalogService struct {
	db     *sql.DB
	events Publisher
}

// NewCatalogService returns a catalog bound to db. events may be nil.
func NewCatalogService(db *sql.DB, events Publisher) *CatalogService {
	return &CatalogService{db: db, events: events}
}

func (s *CatalogService) repo() resources.Repository {
	return resources.NewSQLiteRepository(s.db)
}

func (s *CatalogService) publish(ev models.ResourceEvent) {
	if s.events != nil {
		s.events.Publish(ev)
	}
}

func (s *CatalogService) List(ctx context.Context, query string) ([]models.Resource, error) {
	return s.repo().List(ctx, query)
}

// Get returns common.ErrNotFound for unknown ids.
func (s *CatalogService) Get(ctx context.Context, id int64) (*models.Resource, error) {
	return s.repo().Get(ctx, id)
}

func (s *CatalogService) Detail(ctx context.Context, id int64) (*models.ResourceDetail, error) {
	return s.repo().GetDetail(ctx, id)
}

func (s *CatalogService) Create(ctx context.Context, in models.ResourceInput, creatorID int64) (int64, error) {
	id, err := s.repo().Create(ctx, in, &creatorID)
	if err != nil {
		return 0, err
	}
	s.publish(models.ResourceEvent{Type: models.EventResourceCreated, ID: id, Title: in.Title})
	return id, nil
}

// Update edits any resource regardless of who created it. Updating an
// unknown id is not an error.
func (s *CatalogService) Update(ctx context.Context, id int64, in models.ResourceInput) error {
	found, err := s.repo().Update(ctx, id, in)
	if err != nil {
		return err
	}
	if found {
		s.publish(models.ResourceEvent{Type: models.EventResourceUpdated, ID: id, Title: in.Title})
	}
	return nil
}

// Delete removes any resource regardless of who created it. Deleting an
// unknown id is not an error.
func (s *CatalogService) Delete(ctx context.Context, id int64) error {
	found, err := s.repo().Delete(ctx, id)
	if err != nil {
		return err
	}
	if found {
		s.publish(models.ResourceEvent{Type: models.EventResourceDeleted, ID: id})
	}
	return nil
}

// Fanout delivers each event to every publisher in order.
type Fanout []Publisher

func (f Fanout) Publish(ev models.ResourceEvent) {
	for _, p := range f {
		p.Publish(ev)
	}
}
