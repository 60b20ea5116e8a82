package schema

import (
	"context"
	"sync"

	"explorer/internal/domain"
)

// RowSource supplies the raw dataset. *dataset.Store implements it.
type RowSource interface {
	Rows(ctx context.Context) ([]domain.RawRow, error)
}

// Cache derives the schema once the dataset is available and keeps it for
// the life of the process. A failed dataset fetch leaves the cache empty.
type Cache struct {
	rows RowSource

	mu     sync.Mutex
	fields []domain.Field
}

// NewCache creates a Cache over rows.
func NewCache(rows RowSource) *Cache {
	return &Cache{rows: rows}
}

// Fields returns the cached schema, deriving it on first use.
func (c *Cache) Fields(ctx context.Context) ([]domain.Field, error) {
	c.mu.Lock()
	fields := c.fields
	c.mu.Unlock()
	if fields != nil {
		return fields, nil
	}

	rows, err := c.rows.Rows(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fields == nil {
		c.fields = DeriveFields(rows)
	}
	return c.fields, nil
}
