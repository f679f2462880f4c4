package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/storeassist/internal/domain"
)

func newTestRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(HTTPMiddleware)
	return r
}

func TestHTTPMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := newTestRouter()
	r.Get("/api/products/{sku}", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	counter := HTTPRequestsTotal.WithLabelValues("GET", "/api/products/{sku}", "200")
	before := testutil.ToFloat64(counter)

	for _, sku := range []string{"A-1", "B-2"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/products/"+sku, http.NoBody))
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d", rr.Code)
		}
	}

	if got := testutil.ToFloat64(counter) - before; got != 2 {
		t.Errorf("requests under route pattern = %v, want 2", got)
	}
}

func TestHTTPMiddleware_Statuses(t *testing.T) {
	r := newTestRouter()
	r.Get("/ok", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/gone", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Post("/fail", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	tests := []struct {
		method, path, status string
	}{
		{http.MethodGet, "/ok", "200"},
		{http.MethodGet, "/gone", "404"},
		{http.MethodPost, "/fail", "502"},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			counter := HTTPRequestsTotal.WithLabelValues(tc.method, tc.path, tc.status)
			before := testutil.ToFloat64(counter)

			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(tc.method, tc.path, http.NoBody))

			if got := testutil.ToFloat64(counter) - before; got != 1 {
				t.Errorf("%s %s status %s counted %v times", tc.method, tc.path, tc.status, got)
			}
		})
	}
}

func TestHTTPMiddleware_UnmatchedRoute(t *testing.T) {
	r := newTestRouter()
	counter := HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")
	before := testutil.ToFloat64(counter)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope/123", http.NoBody))

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("unmatched requests = %v, want 1", got)
	}
}

func TestHTTPMiddleware_GenerationTokensPerRoute(t *testing.T) {
	r := newTestRouter()
	r.Post("/api/chat", func(w http.ResponseWriter, req *http.Request) {
		ctx, usage := domain.UsageContext(req.Context())
		if domain.UsageFromContext(ctx) != usage {
			t.Error("handler got a fresh collector instead of the middleware's")
		}
		usage.AddTokens(30)
		usage.AddTokens(12)
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	chat := HTTPGenerationTokens.WithLabelValues("/api/chat")
	before := testutil.ToFloat64(chat)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/chat", http.NoBody))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

	if got := testutil.ToFloat64(chat) - before; got != 42 {
		t.Errorf("chat tokens = %v, want 42", got)
	}
	if got := testutil.ToFloat64(HTTPGenerationTokens.WithLabelValues("/health")); got != 0 {
		t.Errorf("health tokens = %v, want 0", got)
	}
}

func TestHTTPMiddleware_InFlightSettles(t *testing.T) {
	r := newTestRouter()
	var during float64
	r.Get("/slow", func(w http.ResponseWriter, _ *http.Request) {
		during = testutil.ToFloat64(HTTPRequestsInFlight)
		w.WriteHeader(http.StatusOK)
	})

	before := testutil.ToFloat64(HTTPRequestsInFlight)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/slow", http.NoBody))

	if during != before+1 {
		t.Errorf("in flight during request = %v, want %v", during, before+1)
	}
	if after := testutil.ToFloat64(HTTPRequestsInFlight); after != before {
		t.Errorf("in flight after request = %v, want %v", after, before)
	}
}
