// Package repository is the typed facade over the blob store. Each
// Collection serializes its read-modify-write cycles with a mutex, so
// concurrent mutations of the same collection never interleave; the
// workflow layer adds pair-level ordering across collections on top.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go-dental-review/internal/store"
)

// Collection provides typed CRUD over one store collection.
type Collection[T any] struct {
	store store.Store
	name  store.Collection
	id    func(*T) string
	mu    sync.Mutex
}

// NewCollection creates a typed view of one collection. The id func
// extracts a record's identity for lookups.
func NewCollection[T any](s store.Store, name store.Collection, id func(*T) string) *Collection[T] {
	return &Collection[T]{store: s, name: name, id: id}
}

func (c *Collection[T]) load(ctx context.Context) ([]T, error) {
	raw, err := c.store.Get(ctx, c.name)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", c.name, err)
	}
	items := make([]T, 0, len(raw))
	for _, r := range raw {
		var item T
		if err := json.Unmarshal(r, &item); err != nil {
			return nil, fmt.Errorf("corrupt record in %s: %w", c.name, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func (c *Collection[T]) save(ctx context.Context, items []T) error {
	raw := make([]json.RawMessage, 0, len(items))
	for i := range items {
		data, err := json.Marshal(&items[i])
		if err != nil {
			return fmt.Errorf("failed to encode record for %s: %w", c.name, err)
		}
		raw = append(raw, data)
	}
	if err := c.store.Put(ctx, c.name, raw); err != nil {
		return fmt.Errorf("failed to save %s: %w", c.name, err)
	}
	return nil
}

// List returns all records in insertion order.
func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

// Filter returns the records matching pred, in insertion order.
func (c *Collection[T]) Filter(ctx context.Context, pred func(*T) bool) ([]T, error) {
	items, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []T
	for i := range items {
		if pred(&items[i]) {
			out = append(out, items[i])
		}
	}
	return out, nil
}

// Find returns the record with the given id, or ErrNotFound.
func (c *Collection[T]) Find(ctx context.Context, id string) (*T, error) {
	items, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if c.id(&items[i]) == id {
			return &items[i], nil
		}
	}
	return nil, ErrNotFound
}

// Insert appends a new record. The id must not already be present.
func (c *Collection[T]) Insert(ctx context.Context, item T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load(ctx)
	if err != nil {
		return err
	}
	newID := c.id(&item)
	for i := range items {
		if c.id(&items[i]) == newID {
			return ErrDuplicateID
		}
	}
	return c.save(ctx, append(items, item))
}

// Update applies fn to the record with the given id and persists the
// result. Returns ErrNotFound without writing when the id is absent;
// when fn fails nothing is written.
func (c *Collection[T]) Update(ctx context.Context, id string, fn func(*T) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load(ctx)
	if err != nil {
		return err
	}
	for i := range items {
		if c.id(&items[i]) == id {
			if err := fn(&items[i]); err != nil {
				return err
			}
			return c.save(ctx, items)
		}
	}
	return ErrNotFound
}

// Delete removes the record with the given id. Reports whether a
// record was removed; deleting an absent id is not an error.
func (c *Collection[T]) Delete(ctx context.Context, id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load(ctx)
	if err != nil {
		return false, err
	}
	kept := items[:0]
	removed := false
	for i := range items {
		if c.id(&items[i]) == id {
			removed = true
			continue
		}
		kept = append(kept, items[i])
	}
	if !removed {
		return false, nil
	}
	return true, c.save(ctx, kept)
}

// DeleteWhere removes every record matching pred and returns how many
// were removed.
func (c *Collection[T]) DeleteWhere(ctx context.Context, pred func(*T) bool) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load(ctx)
	if err != nil {
		return 0, err
	}
	kept := items[:0]
	removed := 0
	for i := range items {
		if pred(&items[i]) {
			removed++
			continue
		}
		kept = append(kept, items[i])
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, c.save(ctx, kept)
}
