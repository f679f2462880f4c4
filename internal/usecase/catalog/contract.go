package catalog

import (
	"context"

	"github.com/kailas-cloud/storeassist/internal/domain/product"
)

// ProductStore is the catalog persistence.
type ProductStore interface {
	Search(ctx context.Context, query string, limit int) ([]product.Product, error)
	GetBySKU(ctx context.Context, sku string) (product.Product, error)
	Get(ctx context.Context, id string) (product.Product, error)
	Delete(ctx context.Context, id string) error
	UpsertMany(ctx context.Context, items []product.Product) (int, error)
}

// BackfillPublisher enqueues supplier backfill requests.
type BackfillPublisher interface {
	Publish(ctx context.Context, sku, missingVendor string) (string, error)
}
