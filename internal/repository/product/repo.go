// Package product stores catalog items as JSON documents and serves
// full-text candidate lookups over a search index.
package product

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/storeassist/internal/db"
	"github.com/kailas-cloud/storeassist/internal/domain"
	domprod "github.com/kailas-cloud/storeassist/internal/domain/product"
)

// store is the consumer interface for products (ISP).
type store interface {
	JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
}

// Repo implements the catalog candidate source on Redis JSON + FT.
type Repo struct {
	store  store
	prefix string
}

// New creates a product repository. An empty prefix falls back to domain.KeyPrefix.
func New(s store, prefix string) *Repo {
	if prefix == "" {
		prefix = domain.KeyPrefix
	}
	return &Repo{store: s, prefix: prefix}
}

// IndexDefinition returns the FT schema for the product documents.
func (r *Repo) IndexDefinition() *db.IndexDefinition {
	return db.NewIndex(r.indexName()).
		Prefix(r.keyPrefix()).
		TextAs("$.title", "title", 2).
		TextAs("$.description", "description", 0).
		TagAs("$.sku", "sku").
		TagAs("$.tags[*]", "tags").
		MustBuild()
}

// EnsureIndex creates the product index if it is missing.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, r.indexName())
	if err != nil {
		return fmt.Errorf("check product index: %w", err)
	}
	if exists {
		return nil
	}
	// Another replica may create it between FT.INFO and FT.CREATE.
	if err := r.store.CreateIndex(ctx, r.IndexDefinition()); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create product index: %w", err)
	}
	return nil
}

// RebuildIndex drops the product index and creates it again from the current
// schema. Documents are kept and re-indexed by the server.
func (r *Repo) RebuildIndex(ctx context.Context) error {
	if err := r.store.DropIndex(ctx, r.indexName()); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop product index: %w", err)
	}
	if err := r.store.CreateIndex(ctx, r.IndexDefinition()); err != nil {
		return fmt.Errorf("create product index: %w", err)
	}
	return nil
}

// Search returns up to limit products whose title or description match any query word.
func (r *Repo) Search(ctx context.Context, query string, limit int) ([]domprod.Product, error) {
	if strings.TrimSpace(query) == "" || limit <= 0 {
		return nil, nil
	}

	result, err := r.store.SearchText(ctx, &db.TextQuery{
		IndexName:    r.indexName(),
		Query:        query,
		Fields:       []string{"title", "description"},
		Limit:        limit,
		ReturnFields: []string{"$"},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: search products: %w", domain.ErrCandidateStore, err)
	}

	return r.decodeEntries(result)
}

// GetBySKU returns the first product carrying the given SKU.
func (r *Repo) GetBySKU(ctx context.Context, sku string) (domprod.Product, error) {
	result, err := r.store.SearchList(ctx, r.indexName(), db.TagQuery("sku", sku), 0, 1, []string{"$"})
	if err != nil {
		return domprod.Product{}, fmt.Errorf("%w: lookup sku %s: %w", domain.ErrCandidateStore, sku, err)
	}
	items, err := r.decodeEntries(result)
	if err != nil {
		return domprod.Product{}, err
	}
	if len(items) == 0 {
		return domprod.Product{}, domain.ErrProductNotFound
	}
	return items[0], nil
}

// Get returns a product by ID.
func (r *Repo) Get(ctx context.Context, id string) (domprod.Product, error) {
	key := r.docKey(id)
	raw, err := r.store.JSONGet(ctx, key, "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domprod.Product{}, domain.ErrProductNotFound
		}
		return domprod.Product{}, fmt.Errorf("%w: get product %s: %w", domain.ErrCandidateStore, id, err)
	}
	p, ok, err := parseJSONGetResult(raw)
	if err != nil {
		return domprod.Product{}, err
	}
	if !ok {
		return domprod.Product{}, domain.ErrProductNotFound
	}
	return p, nil
}

// Delete removes a product by ID. A missing product is ErrProductNotFound.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := r.docKey(id)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("%w: check product %s: %w", domain.ErrCandidateStore, id, err)
	}
	if !exists {
		return domain.ErrProductNotFound
	}
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("%w: delete product %s: %w", domain.ErrCandidateStore, id, err)
	}
	return nil
}

// UpsertMany writes every product by ID in a single pipeline and returns how many were stored.
func (r *Repo) UpsertMany(ctx context.Context, items []domprod.Product) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	batch := make([]db.JSONSetItem, 0, len(items))
	for i := range items {
		data, err := json.Marshal(toDoc(&items[i]))
		if err != nil {
			return 0, fmt.Errorf("marshal product %s: %w", items[i].ID(), err)
		}
		batch = append(batch, db.JSONSetItem{Key: r.docKey(items[i].ID()), Path: "$", Data: data})
	}

	if err := r.store.JSONSetMulti(ctx, batch); err != nil {
		return 0, fmt.Errorf("upsert products: %w", err)
	}
	return len(batch), nil
}

func (r *Repo) decodeEntries(result *db.SearchResult) ([]domprod.Product, error) {
	if result == nil || len(result.Entries) == 0 {
		return nil, nil
	}
	out := make([]domprod.Product, 0, len(result.Entries))
	for _, entry := range result.Entries {
		raw := entry.Fields["$"]
		if raw == "" {
			continue
		}
		p, err := parseDoc(raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", entry.Key, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *Repo) keyPrefix() string { return r.prefix + "product:" }

func (r *Repo) docKey(id string) string { return r.keyPrefix() + id }

func (r *Repo) indexName() string { return r.prefix + "products:idx" }
