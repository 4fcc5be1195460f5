package cache

import (
	"context"
	"time"

	"bar_pos_backend/internal/models"
)

// ProductCache is a read cache for the product catalog list. The catalog is
// read on every cart mutation for the advisory stock check, so the list is
// cached with a short TTL and invalidated on any product write.
type ProductCache interface {
	Get(ctx context.Context) ([]models.Product, bool, error)
	Set(ctx context.Context, products []models.Product, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

// NoopProductCache satisfies ProductCache without caching anything. Used when
// no Redis address is configured and in tests.
type NoopProductCache struct{}

func (NoopProductCache) Get(_ context.Context) ([]models.Product, bool, error) {
	return nil, false, nil
}

func (NoopProductCache) Set(_ context.Context, _ []models.Product, _ time.Duration) error {
	return nil
}

func (NoopProductCache) Invalidate(_ context.Context) error {
	return nil
}
