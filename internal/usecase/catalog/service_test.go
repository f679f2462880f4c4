package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/storeassist/internal/domain"
	"github.com/kailas-cloud/storeassist/internal/domain/product"
)

// --- Mocks ---

type mockStore struct {
	searchFn   func(ctx context.Context, query string, limit int) ([]product.Product, error)
	getBySKUFn func(ctx context.Context, sku string) (product.Product, error)
	getFn      func(ctx context.Context, id string) (product.Product, error)
	deleteFn   func(ctx context.Context, id string) error
	upsertFn   func(ctx context.Context, items []product.Product) (int, error)
}

func (m *mockStore) Search(ctx context.Context, query string, limit int) ([]product.Product, error) {
	return m.searchFn(ctx, query, limit)
}

func (m *mockStore) GetBySKU(ctx context.Context, sku string) (product.Product, error) {
	return m.getBySKUFn(ctx, sku)
}

func (m *mockStore) Get(ctx context.Context, id string) (product.Product, error) {
	return m.getFn(ctx, id)
}

func (m *mockStore) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

func (m *mockStore) UpsertMany(ctx context.Context, items []product.Product) (int, error) {
	return m.upsertFn(ctx, items)
}

type mockPublisher struct {
	publishFn func(ctx context.Context, sku, vendor string) (string, error)
}

func (m *mockPublisher) Publish(ctx context.Context, sku, vendor string) (string, error) {
	return m.publishFn(ctx, sku, vendor)
}

func mustProduct(t *testing.T, id, title string) product.Product {
	t.Helper()
	p, err := product.New(id, "SKU-"+id, title, "", nil, nil)
	if err != nil {
		t.Fatalf("product.New: %v", err)
	}
	return p
}

// --- Search ---

func TestSearch_DefaultLimit(t *testing.T) {
	var gotLimit int
	store := &mockStore{searchFn: func(_ context.Context, _ string, limit int) ([]product.Product, error) {
		gotLimit = limit
		return nil, nil
	}}
	if _, err := New(store, nil).Search(context.Background(), "drill", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLimit != DefaultSearchLimit {
		t.Errorf("limit = %d, want %d", gotLimit, DefaultSearchLimit)
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	_, err := New(&mockStore{}, nil).Search(context.Background(), "  ", 5)
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestSearch_StoreError(t *testing.T) {
	store := &mockStore{searchFn: func(context.Context, string, int) ([]product.Product, error) {
		return nil, domain.ErrCandidateStore
	}}
	_, err := New(store, nil).Search(context.Background(), "drill", 5)
	if !errors.Is(err, domain.ErrCandidateStore) {
		t.Fatalf("expected ErrCandidateStore, got %v", err)
	}
}

// --- GetBySKU ---

func TestGetBySKU(t *testing.T) {
	want := mustProduct(t, "1", "Drill")
	store := &mockStore{getBySKUFn: func(_ context.Context, sku string) (product.Product, error) {
		if sku != "SKU-1" {
			return product.Product{}, domain.ErrProductNotFound
		}
		return want, nil
	}}
	svc := New(store, nil)

	got, err := svc.GetBySKU(context.Background(), "SKU-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID() != "1" {
		t.Errorf("id = %q", got.ID())
	}

	_, err = svc.GetBySKU(context.Background(), "SKU-404")
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound, got %v", err)
	}
}

func TestGetBySKU_Empty(t *testing.T) {
	_, err := New(&mockStore{}, nil).GetBySKU(context.Background(), "")
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

// --- GetByID / Delete ---

func TestGetByID(t *testing.T) {
	want := mustProduct(t, "1", "Drill")
	store := &mockStore{getFn: func(_ context.Context, id string) (product.Product, error) {
		if id != "1" {
			return product.Product{}, domain.ErrProductNotFound
		}
		return want, nil
	}}
	svc := New(store, nil)

	got, err := svc.GetByID(context.Background(), "1")
	if err != nil || got.Title() != "Drill" {
		t.Fatalf("got %+v, %v", got, err)
	}
	if _, err := svc.GetByID(context.Background(), "2"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound, got %v", err)
	}
	if _, err := svc.GetByID(context.Background(), ""); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	var deleted []string
	store := &mockStore{deleteFn: func(_ context.Context, id string) error {
		if id == "missing" {
			return domain.ErrProductNotFound
		}
		deleted = append(deleted, id)
		return nil
	}}
	svc := New(store, nil)

	if err := svc.Delete(context.Background(), "1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(deleted) != 1 || deleted[0] != "1" {
		t.Errorf("deleted = %v", deleted)
	}
	if err := svc.Delete(context.Background(), "missing"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound, got %v", err)
	}
	if err := svc.Delete(context.Background(), ""); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}

// --- UpsertMany ---

func TestUpsertMany(t *testing.T) {
	store := &mockStore{upsertFn: func(_ context.Context, items []product.Product) (int, error) {
		return len(items), nil
	}}
	n, err := New(store, nil).UpsertMany(context.Background(), []product.Product{
		mustProduct(t, "1", "Drill"),
		mustProduct(t, "2", "Saw"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("n = %d, want 2", n)
	}
}

func TestUpsertMany_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		items []product.Product
	}{
		{"empty batch", nil},
		{"missing id", []product.Product{product.Reconstruct("", "S", "Drill", "", "", nil, nil, time.Time{})}},
		{"missing title", []product.Product{product.Reconstruct("1", "S", "", "", "", nil, nil, time.Time{})}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &mockStore{upsertFn: func(context.Context, []product.Product) (int, error) {
				t.Fatal("store must not be called")
				return 0, nil
			}}
			_, err := New(store, nil).UpsertMany(context.Background(), tc.items)
			if !errors.Is(err, domain.ErrInvalidRequest) {
				t.Fatalf("expected ErrInvalidRequest, got %v", err)
			}
		})
	}
}

// --- RequestBackfill ---

func TestRequestBackfill(t *testing.T) {
	var gotSKU, gotVendor string
	pub := &mockPublisher{publishFn: func(_ context.Context, sku, vendor string) (string, error) {
		gotSKU, gotVendor = sku, vendor
		return "1-0", nil
	}}
	if err := New(&mockStore{}, pub).RequestBackfill(context.Background(), "SKU-1", "Grainger"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotSKU != "SKU-1" || gotVendor != "Grainger" {
		t.Errorf("published %q/%q", gotSKU, gotVendor)
	}
}

func TestRequestBackfill_MissingFields(t *testing.T) {
	pub := &mockPublisher{publishFn: func(context.Context, string, string) (string, error) {
		t.Fatal("publisher must not be called")
		return "", nil
	}}
	svc := New(&mockStore{}, pub)
	for _, args := range [][2]string{{"", "Grainger"}, {"SKU-1", ""}} {
		err := svc.RequestBackfill(context.Background(), args[0], args[1])
		if !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("%v: expected ErrInvalidRequest, got %v", args, err)
		}
	}
}

func TestRequestBackfill_NoQueue(t *testing.T) {
	err := New(&mockStore{}, nil).RequestBackfill(context.Background(), "SKU-1", "Grainger")
	if !errors.Is(err, domain.ErrNotImplemented) {
		t.Fatalf("expected ErrNotImplemented, got %v", err)
	}
}

func TestRequestBackfill_PublishError(t *testing.T) {
	pub := &mockPublisher{publishFn: func(context.Context, string, string) (string, error) {
		return "", errors.New("stream down")
	}}
	err := New(&mockStore{}, pub).RequestBackfill(context.Background(), "SKU-1", "Grainger")
	if err == nil {
		t.Fatal("expected error")
	}
}
