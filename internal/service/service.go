// Package service contains the business logic.
//
// It sits between the handler and repository layers: handlers pass in
// validated payloads, services assign identity and call the repository.
package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/deppfellow/go-kv-crud/internal/model"
	"github.com/deppfellow/go-kv-crud/internal/repository"
)

// ItemService implements create, read, replace and delete for one
// resource.
type ItemService[T any] struct {
	repo *repository.ItemRepository[T]
}

// NewItemService builds a service over repo.
func NewItemService[T any](repo *repository.ItemRepository[T]) *ItemService[T] {
	return &ItemService[T]{repo: repo}
}

// Create stores data under a fresh random UUID.
func (s *ItemService[T]) Create(ctx context.Context, data T) (*model.Item[T], error) {
	item := &model.Item[T]{ID: uuid.NewString(), Data: data}
	if err := s.repo.Put(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Get returns the item at id. A missing item yields an error matching
// kv.ErrNotFound.
func (s *ItemService[T]) Get(ctx context.Context, id string) (*model.Item[T], error) {
	return s.repo.Get(ctx, id)
}

// List returns every item of the resource, ordered by id.
func (s *ItemService[T]) List(ctx context.Context) ([]model.Item[T], error) {
	return s.repo.List(ctx)
}

// Replace overwrites the item at id, creating it when absent.
func (s *ItemService[T]) Replace(ctx context.Context, id string, data T) (*model.Item[T], error) {
	item := &model.Item[T]{ID: id, Data: data}
	if err := s.repo.Put(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes the item at id. Deleting a missing item succeeds.
func (s *ItemService[T]) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
