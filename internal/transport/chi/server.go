// Package chi exposes the assistant over HTTP using the chi router.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kailas-cloud/storeassist/internal/domain"
	"github.com/kailas-cloud/storeassist/internal/domain/product"
	"github.com/kailas-cloud/storeassist/internal/domain/profile"
	domusage "github.com/kailas-cloud/storeassist/internal/domain/usage"
	chatuc "github.com/kailas-cloud/storeassist/internal/usecase/chat"
	healthuc "github.com/kailas-cloud/storeassist/internal/usecase/health"
	"github.com/kailas-cloud/storeassist/internal/version"
)

const (
	maxBodyBytes   = 1 << 20
	maxUpsertBatch = 500
	maxListLimit   = 100
)

// ChatService answers questions about the catalog.
type ChatService interface {
	Ask(ctx context.Context, query string, p profile.Profile, mode string) (chatuc.Result, error)
}

// CatalogService manages catalog products.
type CatalogService interface {
	Search(ctx context.Context, query string, limit int) ([]product.Product, error)
	GetBySKU(ctx context.Context, sku string) (product.Product, error)
	GetByID(ctx context.Context, id string) (product.Product, error)
	Delete(ctx context.Context, id string) error
	UpsertMany(ctx context.Context, items []product.Product) (int, error)
	RequestBackfill(ctx context.Context, sku, missingVendor string) error
}

// RecommendService finds similar products.
type RecommendService interface {
	Similar(ctx context.Context, term string, k int) ([]product.Product, error)
}

// UsageService reports generation token usage.
type UsageService interface {
	GetReport(ctx context.Context, period domusage.Period) domusage.Report
}

// HealthService aggregates dependency health.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

// Server holds the HTTP handlers.
type Server struct {
	chat      ChatService
	catalog   CatalogService
	recommend RecommendService
	usage     UsageService
	health    HealthService
}

// NewServer creates an HTTP API server.
func NewServer(
	chat ChatService,
	catalog CatalogService,
	recommend RecommendService,
	usage UsageService,
	health HealthService,
) *Server {
	return &Server{
		chat:      chat,
		catalog:   catalog,
		recommend: recommend,
		usage:     usage,
		health:    health,
	}
}

// Register mounts all routes on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", s.Chat)
		r.Get("/usage", s.GetUsage)

		r.Route("/products", func(r chi.Router) {
			r.Get("/search", s.SearchProducts)
			r.Put("/", s.UpsertProducts)
			r.Post("/backfill", s.RequestBackfill)
			r.Get("/id/{id}", s.GetProductByID)
			r.Delete("/id/{id}", s.DeleteProduct)
			r.Get("/{sku}", s.GetProduct)
		})

		r.Get("/recommendations/similar", s.SimilarProducts)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorCodeBadRequest, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorCodeBadRequest, "method not allowed")
	})
}

// Chat handles POST /api/chat.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx, usage := domain.UsageContext(r.Context())
	res, err := s.chat.Ask(ctx, req.Prompt, req.User.toDomain(), req.Mode)
	setGenerationHeaders(w, usage)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{
		Answer:  res.Answer,
		Sources: sourcesToDTO(res.Sources),
	})
}

// SearchProducts handles GET /api/products/search.
func (s *Server) SearchProducts(w http.ResponseWriter, r *http.Request) {
	q, ok := optionalQuery[string](w, r, "q")
	if !ok {
		return
	}
	limit, ok := limitQuery(w, r, "limit")
	if !ok {
		return
	}
	items, err := s.catalog.Search(r.Context(), q, limit)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, productsToDTO(items))
}

// GetProduct handles GET /api/products/{sku}.
func (s *Server) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.catalog.GetBySKU(r.Context(), chi.URLParam(r, "sku"))
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, productToDTO(p))
}

// GetProductByID handles GET /api/products/id/{id}.
func (s *Server) GetProductByID(w http.ResponseWriter, r *http.Request) {
	p, err := s.catalog.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, productToDTO(p))
}

// DeleteProduct handles DELETE /api/products/id/{id}.
func (s *Server) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpsertProducts handles PUT /api/products.
func (s *Server) UpsertProducts(w http.ResponseWriter, r *http.Request) {
	var req []ProductDTO
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req) > maxUpsertBatch {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed,
			"batch exceeds "+strconv.Itoa(maxUpsertBatch)+" products")
		return
	}

	items := make([]product.Product, 0, len(req))
	for _, d := range req {
		p, err := productFromDTO(d)
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		items = append(items, p)
	}

	n, err := s.catalog.UpsertMany(r.Context(), items)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, UpsertResponse{Upserted: n})
}

// RequestBackfill handles POST /api/products/backfill.
func (s *Server) RequestBackfill(w http.ResponseWriter, r *http.Request) {
	sku, ok := optionalQuery[string](w, r, "sku")
	if !ok {
		return
	}
	vendor, ok := optionalQuery[string](w, r, "missingVendor")
	if !ok {
		return
	}
	if err := s.catalog.RequestBackfill(r.Context(), sku, vendor); err != nil {
		handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// SimilarProducts handles GET /api/recommendations/similar.
func (s *Server) SimilarProducts(w http.ResponseWriter, r *http.Request) {
	term, ok := optionalQuery[string](w, r, "term")
	if !ok {
		return
	}
	k, ok := limitQuery(w, r, "k")
	if !ok {
		return
	}
	items, err := s.recommend.Similar(r.Context(), term, k)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, productsToDTO(items))
}

// GetUsage handles GET /api/usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	period, ok := optionalQuery[string](w, r, "period")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, usageToDTO(s.usage.GetReport(r.Context(), domusage.ParsePeriod(period))))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, HealthResponse{
		Status:  string(report.Status),
		Version: version.Get().Version,
		Checks:  checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func setGenerationHeaders(w http.ResponseWriter, usage *domain.GenerationUsage) {
	if usage != nil && usage.Used {
		w.Header().Set("X-Generation-Tokens", strconv.Itoa(usage.TotalTokens))
	}
}

// decodeBody decodes a size-limited JSON body. On failure it writes a 400 and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrorCodeBadRequest, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// optionalQuery binds a form-style query parameter into T. A missing
// parameter yields T's zero value. On a malformed value it writes a 400 and returns false.
func optionalQuery[T any](w http.ResponseWriter, r *http.Request, name string) (T, bool) {
	var v *T
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &v); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "invalid query parameter "+name+": "+err.Error())
		var zero T
		return zero, false
	}
	if v == nil {
		var zero T
		return zero, true
	}
	return *v, true
}

// limitQuery binds an optional integer in [0, maxListLimit]. Missing yields 0.
func limitQuery(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v, ok := optionalQuery[int](w, r, name)
	if !ok {
		return 0, false
	}
	if v < 0 || v > maxListLimit {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed,
			name+" must be an integer between 0 and "+strconv.Itoa(maxListLimit))
		return 0, false
	}
	return v, true
}
