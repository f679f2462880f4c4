package main

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/storeassist/internal/domain/product"
)

type fakeUpserter struct {
	mu      sync.Mutex
	batches [][]product.Product
	err     error
}

func (f *fakeUpserter) UpsertMany(_ context.Context, items []product.Product) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.batches = append(f.batches, items)
	return len(items), nil
}

func (f *fakeUpserter) ids() map[string]bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]bool{}
	for _, b := range f.batches {
		for _, p := range b {
			out[p.ID()] = true
		}
	}
	return out
}

const catalog = `{"id":"p-1","sku":"TS-1","title":"Cargador Tesla","suppliers":[{"name":"Lowes","price":199.5,"inStock":true}]}
{"id":"p-2","sku":"TS-2","title":"Cable J1772","imageUrl":"https://img.example/j.png"}

{"id":"p-3","sku":"TS-3","title":"Adaptador NEMA"}
not json
{"id":"p-4","sku":"TS-4","title":""}
{"id":"p-5","sku":"TS-5","title":"Soporte de pared"}
`

func TestIngester_Run(t *testing.T) {
	store := &fakeUpserter{}
	reg := prometheus.NewRegistry()
	ing := &ingester{
		store:     store,
		workers:   2,
		batchSize: 2,
		metrics:   newSeedMetrics(reg),
		logger:    zap.NewNop(),
	}

	res, err := ing.Run(context.Background(), strings.NewReader(catalog), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Processed != 4 {
		t.Errorf("processed = %d, want 4", res.Processed)
	}
	if res.Failed != 2 {
		t.Errorf("failed = %d, want 2", res.Failed)
	}

	ids := store.ids()
	for _, id := range []string{"p-1", "p-2", "p-3", "p-5"} {
		if !ids[id] {
			t.Errorf("product %s not upserted", id)
		}
	}
	for _, b := range store.batches {
		if len(b) > 2 {
			t.Errorf("batch size %d exceeds limit", len(b))
		}
	}

	if got := testutil.ToFloat64(ing.metrics.rowsProcessed); got != 4 {
		t.Errorf("rows_processed_total = %v, want 4", got)
	}
	if got := testutil.ToFloat64(ing.metrics.rowsFailed.WithLabelValues("bad_record")); got != 2 {
		t.Errorf("rows_failed_total{bad_record} = %v, want 2", got)
	}
}

func TestIngester_MaxRows(t *testing.T) {
	store := &fakeUpserter{}
	ing := &ingester{store: store, workers: 1, batchSize: 10, logger: zap.NewNop()}

	res, err := ing.Run(context.Background(), strings.NewReader(catalog), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Processed != 2 {
		t.Errorf("processed = %d, want 2", res.Processed)
	}
	ids := store.ids()
	if !ids["p-1"] || !ids["p-2"] || len(ids) != 2 {
		t.Errorf("ids = %v, want p-1 and p-2", ids)
	}
}

func TestIngester_BatchError(t *testing.T) {
	store := &fakeUpserter{err: errors.New("store down")}
	ing := &ingester{store: store, workers: 1, batchSize: 10, logger: zap.NewNop()}

	res, err := ing.Run(context.Background(), strings.NewReader(catalog), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Processed != 0 {
		t.Errorf("processed = %d, want 0", res.Processed)
	}
	// 4 valid products lost in the failed batch plus 2 bad records.
	if res.Failed != 6 {
		t.Errorf("failed = %d, want 6", res.Failed)
	}
}

func TestIngester_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ing := &ingester{store: &fakeUpserter{}, workers: 1, batchSize: 1, logger: zap.NewNop()}
	_, err := ing.Run(ctx, strings.NewReader(catalog), 0)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestProductRecord_ToDomain(t *testing.T) {
	rec := productRecord{
		ID: "p-9", SKU: "X", Title: "Thing", ImageURL: "https://img.example/x.png",
		Tags:      []string{"a"},
		Suppliers: []supplierRecord{{Name: "HD", Price: 10, InStock: true}},
	}
	p, err := rec.toDomain()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ImageURL() != rec.ImageURL {
		t.Errorf("image url = %q", p.ImageURL())
	}
	if len(p.Suppliers()) != 1 || p.Suppliers()[0].Name() != "HD" {
		t.Errorf("suppliers = %+v", p.Suppliers())
	}

	if _, err := (productRecord{ID: "x"}).toDomain(); err == nil {
		t.Error("expected error for missing title")
	}
}
