// Package repository persists resource items in the key-value store.
//
// Each resource gets its own namespace: an item with id X under "tasks"
// lives at key ["tasks", X] and is stored as JSON.
package repository

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/deppfellow/go-kv-crud/internal/kv"
	"github.com/deppfellow/go-kv-crud/internal/model"
)

// ItemRepository stores model.Item[T] values under one namespace.
type ItemRepository[T any] struct {
	store     kv.Store
	namespace string
}

// NewItemRepository scopes store to namespace.
func NewItemRepository[T any](store kv.Store, namespace string) *ItemRepository[T] {
	return &ItemRepository[T]{store: store, namespace: namespace}
}

// Namespace returns the first key part used for every item.
func (r *ItemRepository[T]) Namespace() string {
	return r.namespace
}

func (r *ItemRepository[T]) key(id string) kv.Key {
	return kv.Key{r.namespace, id}
}

// Put writes item at its id, replacing whatever was there.
func (r *ItemRepository[T]) Put(ctx context.Context, item *model.Item[T]) error {
	value, err := json.Marshal(item)
	if err != nil {
		return errors.Wrapf(err, "encoding %s item %s", r.namespace, item.ID)
	}

	if err := r.store.Set(ctx, r.key(item.ID), value); err != nil {
		return errors.Wrapf(err, "writing %s item %s", r.namespace, item.ID)
	}
	return nil
}

// Get returns the item with id, or an error matching kv.ErrNotFound.
func (r *ItemRepository[T]) Get(ctx context.Context, id string) (*model.Item[T], error) {
	value, err := r.store.Get(ctx, r.key(id))
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s item %s", r.namespace, id)
	}

	var item model.Item[T]
	if err := json.Unmarshal(value, &item); err != nil {
		return nil, errors.Wrapf(err, "decoding %s item %s", r.namespace, id)
	}
	return &item, nil
}

// List returns every item in the namespace in key order. The result is
// never nil.
func (r *ItemRepository[T]) List(ctx context.Context) ([]model.Item[T], error) {
	entries, err := r.store.List(ctx, kv.Key{r.namespace})
	if err != nil {
		return nil, errors.Wrapf(err, "listing %s", r.namespace)
	}

	items := make([]model.Item[T], 0, len(entries))
	for _, e := range entries {
		var item model.Item[T]
		if err := json.Unmarshal(e.Value, &item); err != nil {
			return nil, errors.Wrapf(err, "decoding %s", e.Key)
		}
		items = append(items, item)
	}
	return items, nil
}

// Delete removes the item with id. A missing item is not an error.
func (r *ItemRepository[T]) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, r.key(id)); err != nil {
		return errors.Wrapf(err, "deleting %s item %s", r.namespace, id)
	}
	return nil
}
