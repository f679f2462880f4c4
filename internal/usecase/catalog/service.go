// Package catalog manages the product catalog and supplier backfill requests.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/storeassist/internal/domain"
	"github.com/kailas-cloud/storeassist/internal/domain/product"
	"github.com/kailas-cloud/storeassist/internal/logger"
	"github.com/kailas-cloud/storeassist/internal/metrics"
)

// DefaultSearchLimit applies when the caller passes no positive limit.
const DefaultSearchLimit = 10

// Service handles catalog operations.
type Service struct {
	store    ProductStore
	backfill BackfillPublisher
}

// New creates a catalog service. backfill can be nil, in which case
// RequestBackfill returns ErrNotImplemented.
func New(store ProductStore, backfill BackfillPublisher) *Service {
	return &Service{store: store, backfill: backfill}
}

// Search runs a full-text product search.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]product.Product, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidRequest)
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	items, err := s.store.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return items, nil
}

// GetBySKU returns the product with the given SKU.
func (s *Service) GetBySKU(ctx context.Context, sku string) (product.Product, error) {
	if sku == "" {
		return product.Product{}, fmt.Errorf("%w: sku is required", domain.ErrInvalidRequest)
	}
	p, err := s.store.GetBySKU(ctx, sku)
	if err != nil {
		return product.Product{}, fmt.Errorf("get product %s: %w", sku, err)
	}
	return p, nil
}

// GetByID returns the product stored under id.
func (s *Service) GetByID(ctx context.Context, id string) (product.Product, error) {
	if id == "" {
		return product.Product{}, fmt.Errorf("%w: id is required", domain.ErrInvalidRequest)
	}
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return product.Product{}, fmt.Errorf("get product %s: %w", id, err)
	}
	return p, nil
}

// Delete removes the product stored under id.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: id is required", domain.ErrInvalidRequest)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	logger.FromContext(ctx).Info("Product deleted", zap.String("id", id))
	return nil
}

// UpsertMany replaces products by id and returns how many were written.
func (s *Service) UpsertMany(ctx context.Context, items []product.Product) (int, error) {
	if len(items) == 0 {
		return 0, fmt.Errorf("%w: at least one product is required", domain.ErrInvalidRequest)
	}
	for i, p := range items {
		if p.ID() == "" {
			return 0, fmt.Errorf("%w: product %d: id is required", domain.ErrInvalidRequest, i)
		}
		if p.Title() == "" {
			return 0, fmt.Errorf("%w: product %s: title is required", domain.ErrInvalidRequest, p.ID())
		}
	}

	n, err := s.store.UpsertMany(ctx, items)
	if err != nil {
		return 0, fmt.Errorf("upsert products: %w", err)
	}
	logger.FromContext(ctx).Debug("Products upserted", zap.Int("count", n))
	return n, nil
}

// RequestBackfill asks the ingestion pipeline to fetch a vendor's offer for a SKU.
func (s *Service) RequestBackfill(ctx context.Context, sku, missingVendor string) error {
	if sku == "" || missingVendor == "" {
		return fmt.Errorf("%w: sku and missingVendor are required", domain.ErrInvalidRequest)
	}
	if s.backfill == nil {
		return fmt.Errorf("backfill queue: %w", domain.ErrNotImplemented)
	}

	id, err := s.backfill.Publish(ctx, sku, missingVendor)
	if err != nil {
		metrics.BackfillRequestsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("request backfill: %w", err)
	}
	metrics.BackfillRequestsTotal.WithLabelValues("ok").Inc()

	logger.FromContext(ctx).Info("Backfill requested",
		zap.String("sku", sku),
		zap.String("vendor", missingVendor),
		zap.String("message_id", id),
	)
	return nil
}
