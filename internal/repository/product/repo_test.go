package product

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/storeassist/internal/db"
	"github.com/kailas-cloud/storeassist/internal/domain"
	domprod "github.com/kailas-cloud/storeassist/internal/domain/product"
)

// --- EnsureIndex ---

func TestEnsureIndex_Creates(t *testing.T) {
	repo, ms := newTestRepo(t)

	var got *db.IndexDefinition
	ms.createIndexFn = func(_ context.Context, def *db.IndexDefinition) error {
		got = def
		return nil
	}

	if err := repo.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Fatal("CreateIndex not called")
	}
	if got.Name != "storeassist:products:idx" {
		t.Errorf("index name = %q", got.Name)
	}
	if !strings.HasPrefix(got.String(), "FT.CREATE storeassist:products:idx ON JSON ") {
		t.Errorf("definition = %s", got)
	}
	if len(got.Prefixes) != 1 || got.Prefixes[0] != "storeassist:product:" {
		t.Errorf("prefixes = %v", got.Prefixes)
	}
}

func TestEnsureIndex_PresentSkipsCreate(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.indexExistsFn = func(_ context.Context, name string) (bool, error) {
		return name == "storeassist:products:idx", nil
	}
	ms.createIndexFn = func(_ context.Context, _ *db.IndexDefinition) error {
		t.Error("CreateIndex called for an existing index")
		return nil
	}

	if err := repo.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEnsureIndex_CreatedConcurrently(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.createIndexFn = func(_ context.Context, _ *db.IndexDefinition) error { return db.ErrIndexExists }

	if err := repo.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("expected nil for existing index, got %v", err)
	}
}

func TestEnsureIndex_InfoError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.indexExistsFn = func(_ context.Context, _ string) (bool, error) { return false, errors.New("LOADING") }

	if err := repo.EnsureIndex(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestEnsureIndex_Error(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.createIndexFn = func(_ context.Context, _ *db.IndexDefinition) error { return errors.New("OOM") }

	if err := repo.EnsureIndex(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestRebuildIndex(t *testing.T) {
	tests := []struct {
		name    string
		dropErr error
		wantErr bool
	}{
		{"existing index", nil, false},
		{"missing index", db.ErrIndexNotFound, false},
		{"drop fails", errors.New("READONLY"), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo, ms := newTestRepo(t)
			var calls []string
			ms.dropIndexFn = func(_ context.Context, name string) error {
				calls = append(calls, "drop "+name)
				return tc.dropErr
			}
			ms.createIndexFn = func(_ context.Context, def *db.IndexDefinition) error {
				calls = append(calls, "create "+def.Name)
				return nil
			}

			err := repo.RebuildIndex(context.Background())
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
			if tc.wantErr {
				return
			}
			want := "drop storeassist:products:idx,create storeassist:products:idx"
			if got := strings.Join(calls, ","); got != want {
				t.Errorf("calls = %s, want %s", got, want)
			}
		})
	}
}

func TestCustomPrefix(t *testing.T) {
	repo := New(&mockStore{}, "shop:")
	def := repo.IndexDefinition()
	if def.Name != "shop:products:idx" || def.Prefixes[0] != "shop:product:" {
		t.Errorf("unexpected definition: %s", def)
	}
}

// --- Search ---

func TestSearch_Success(t *testing.T) {
	repo, ms := newTestRepo(t)
	doc := testProductJSON(t)

	ms.searchTextFn = func(_ context.Context, q *db.TextQuery) (*db.SearchResult, error) {
		if q.IndexName != "storeassist:products:idx" {
			t.Errorf("index = %q", q.IndexName)
		}
		if q.Query != "Cargador Tesla" {
			t.Errorf("query = %q", q.Query)
		}
		if q.Limit != 50 {
			t.Errorf("limit = %d, want 50", q.Limit)
		}
		if strings.Join(q.Fields, ",") != "title,description" {
			t.Errorf("fields = %v", q.Fields)
		}
		return &db.SearchResult{Total: 1, Entries: []db.SearchEntry{
			{Key: "storeassist:product:p-1", Score: 1.2, Fields: map[string]string{"$": doc}},
		}}, nil
	}

	items, err := repo.Search(context.Background(), "Cargador Tesla", 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	p := items[0]
	if p.ID() != "p-1" || p.SKU() != "TS-1516" || p.Title() != "Cargador Automático Tesla 1516" {
		t.Errorf("unexpected product: %+v", p)
	}
	if len(p.Suppliers()) != 1 || p.Suppliers()[0].Name() != "Lowes" || !p.Suppliers()[0].InStock() {
		t.Errorf("unexpected suppliers: %+v", p.Suppliers())
	}
	if !p.IndexedAt().Equal(testTime) {
		t.Errorf("indexedAt = %v, want %v", p.IndexedAt(), testTime)
	}
}

func TestSearch_BlankQuery(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchTextFn = func(_ context.Context, _ *db.TextQuery) (*db.SearchResult, error) {
		t.Fatal("store must not be called for blank query")
		return nil, nil
	}

	items, err := repo.Search(context.Background(), "   ", 10)
	if err != nil || items != nil {
		t.Fatalf("expected nil, nil; got %v, %v", items, err)
	}
}

func TestSearch_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchTextFn = func(_ context.Context, _ *db.TextQuery) (*db.SearchResult, error) {
		return nil, &db.Error{Op: db.OpSearch, Err: errors.New("connection refused")}
	}

	_, err := repo.Search(context.Background(), "tesla", 10)
	if !errors.Is(err, domain.ErrCandidateStore) {
		t.Fatalf("expected ErrCandidateStore, got %v", err)
	}
}

func TestSearch_BadDocument(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchTextFn = func(_ context.Context, _ *db.TextQuery) (*db.SearchResult, error) {
		return &db.SearchResult{Total: 1, Entries: []db.SearchEntry{
			{Key: "storeassist:product:x", Fields: map[string]string{"$": "{not json"}},
		}}, nil
	}

	if _, err := repo.Search(context.Background(), "tesla", 10); err == nil {
		t.Fatal("expected decode error")
	}
}

// --- GetBySKU ---

func TestGetBySKU_Found(t *testing.T) {
	repo, ms := newTestRepo(t)
	doc := testProductJSON(t)

	ms.searchListFn = func(
		_ context.Context, index, query string, offset, limit int, fields []string,
	) (*db.SearchResult, error) {
		if query != `@sku:{TS\-1516}` {
			t.Errorf("query = %q", query)
		}
		if offset != 0 || limit != 1 {
			t.Errorf("offset/limit = %d/%d", offset, limit)
		}
		return &db.SearchResult{Total: 1, Entries: []db.SearchEntry{
			{Key: "storeassist:product:p-1", Fields: map[string]string{"$": doc}},
		}}, nil
	}

	p, err := repo.GetBySKU(context.Background(), "TS-1516")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID() != "p-1" {
		t.Errorf("id = %q", p.ID())
	}
}

func TestGetBySKU_NotFound(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.GetBySKU(context.Background(), "missing")
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

// --- Get ---

func TestGet_Found(t *testing.T) {
	repo, ms := newTestRepo(t)
	doc := testProductJSON(t)

	ms.jsonGetFn = func(_ context.Context, key string, _ ...string) ([]byte, error) {
		if key != "storeassist:product:p-1" {
			t.Errorf("key = %q", key)
		}
		return []byte("[" + doc + "]"), nil
	}

	p, err := repo.Get(context.Background(), "p-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Description() != "Carga rápida" {
		t.Errorf("description = %q", p.Description())
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.Get(context.Background(), "nope")
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestGet_EmptyArray(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.jsonGetFn = func(_ context.Context, _ string, _ ...string) ([]byte, error) {
		return []byte("[]"), nil
	}

	_, err := repo.Get(context.Background(), "p-1")
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestGet_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.jsonGetFn = func(_ context.Context, _ string, _ ...string) ([]byte, error) {
		return nil, context.DeadlineExceeded
	}

	_, err := repo.Get(context.Background(), "p-1")
	if !errors.Is(err, domain.ErrCandidateStore) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected candidate store error keeping its cause, got %v", err)
	}
}

// --- Delete ---

func TestDelete_Found(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.existsFn = func(_ context.Context, _ string) (bool, error) { return true, nil }
	var deleted string
	ms.delFn = func(_ context.Context, key string) error {
		deleted = key
		return nil
	}

	if err := repo.Delete(context.Background(), "p-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != "storeassist:product:p-1" {
		t.Errorf("deleted %q", deleted)
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.delFn = func(_ context.Context, _ string) error {
		t.Error("Del called for a missing product")
		return nil
	}

	if err := repo.Delete(context.Background(), "nope"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestDelete_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.existsFn = func(_ context.Context, _ string) (bool, error) { return true, nil }
	ms.delFn = func(_ context.Context, _ string) error { return errors.New("READONLY") }

	if err := repo.Delete(context.Background(), "p-1"); !errors.Is(err, domain.ErrCandidateStore) {
		t.Fatalf("expected ErrCandidateStore, got %v", err)
	}
}

// --- UpsertMany ---

func TestUpsertMany_Success(t *testing.T) {
	repo, ms := newTestRepo(t)
	p1 := testProduct(t)
	p2, err := domprod.New("p-2", "", "Cable USB-C", "1m", nil, nil)
	if err != nil {
		t.Fatalf("new product: %v", err)
	}

	ms.jsonSetMultiFn = func(_ context.Context, items []db.JSONSetItem) error {
		if len(items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(items))
		}
		if items[0].Key != "storeassist:product:p-1" || items[1].Key != "storeassist:product:p-2" {
			t.Errorf("keys = %q, %q", items[0].Key, items[1].Key)
		}
		var d productDoc
		if err := json.Unmarshal(items[1].Data, &d); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if d.Tags == nil {
			t.Error("expected empty tags array, got null")
		}
		return nil
	}

	n, err := repo.UpsertMany(context.Background(), []domprod.Product{p1, p2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("n = %d, want 2", n)
	}
}

func TestUpsertMany_Empty(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.jsonSetMultiFn = func(_ context.Context, _ []db.JSONSetItem) error {
		t.Fatal("store must not be called")
		return nil
	}

	n, err := repo.UpsertMany(context.Background(), nil)
	if err != nil || n != 0 {
		t.Fatalf("expected 0, nil; got %d, %v", n, err)
	}
}

func TestUpsertMany_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.jsonSetMultiFn = func(_ context.Context, _ []db.JSONSetItem) error { return errors.New("READONLY") }

	if _, err := repo.UpsertMany(context.Background(), []domprod.Product{testProduct(t)}); err == nil {
		t.Fatal("expected error")
	}
}
