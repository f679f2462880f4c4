package product

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/kailas-cloud/storeassist/internal/db"
	domprod "github.com/kailas-cloud/storeassist/internal/domain/product"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	jsonSetMultiFn func(ctx context.Context, items []db.JSONSetItem) error
	jsonGetFn      func(ctx context.Context, key string, paths ...string) ([]byte, error)
	delFn          func(ctx context.Context, key string) error
	existsFn       func(ctx context.Context, key string) (bool, error)
	createIndexFn  func(ctx context.Context, def *db.IndexDefinition) error
	dropIndexFn    func(ctx context.Context, name string) error
	indexExistsFn  func(ctx context.Context, name string) (bool, error)
	searchTextFn   func(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	searchListFn   func(
		ctx context.Context, index, query string, offset, limit int, fields []string,
	) (*db.SearchResult, error)
}

func (m *mockStore) JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error {
	if m.jsonSetMultiFn != nil {
		return m.jsonSetMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	if m.jsonGetFn != nil {
		return m.jsonGetFn(ctx, key, paths...)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

func (m *mockStore) DropIndex(ctx context.Context, name string) error {
	if m.dropIndexFn != nil {
		return m.dropIndexFn(ctx, name)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	if m.searchTextFn != nil {
		return m.searchTextFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchList(
	ctx context.Context, index, query string, offset, limit int, fields []string,
) (*db.SearchResult, error) {
	if m.searchListFn != nil {
		return m.searchListFn(ctx, index, query, offset, limit, fields)
	}
	return &db.SearchResult{}, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, ""), ms
}

var testTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func testProduct(t *testing.T) domprod.Product {
	t.Helper()
	return domprod.Reconstruct(
		"p-1", "TS-1516", "Cargador Automático Tesla 1516", "Carga rápida",
		"https://img.example/ts.png",
		[]string{"ev", "charger"},
		[]domprod.Supplier{domprod.NewSupplier("Lowes", "https://lowes.example/ts", true, 199.5, testTime)},
		testTime,
	)
}

func testProductJSON(t *testing.T) string {
	t.Helper()
	p := testProduct(t)
	data, err := json.Marshal(toDoc(&p))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(data)
}
