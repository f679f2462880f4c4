package chi

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/storeassist/internal/domain"
	"github.com/kailas-cloud/storeassist/internal/domain/product"
	"github.com/kailas-cloud/storeassist/internal/domain/profile"
	"github.com/kailas-cloud/storeassist/internal/domain/ranking"
	domusage "github.com/kailas-cloud/storeassist/internal/domain/usage"
)

// ErrorCode is a machine-readable error identifier.
type ErrorCode string

// Error codes returned in ErrorResponse.Code.
const (
	ErrorCodeBadRequest        ErrorCode = "bad_request"
	ErrorCodeValidationFailed  ErrorCode = "validation_failed"
	ErrorCodeUnauthorized      ErrorCode = "unauthorized"
	ErrorCodeProductNotFound   ErrorCode = "product_not_found"
	ErrorCodeDimensionMismatch ErrorCode = "dimension_mismatch"
	ErrorCodeQuotaExceeded     ErrorCode = "generation_quota_exceeded"
	ErrorCodeGenerationFailed  ErrorCode = "generation_failed"
	ErrorCodeStoreUnavailable  ErrorCode = "candidate_store_unavailable"
	ErrorCodeTimeout           ErrorCode = "timeout"
	ErrorCodeNotImplemented    ErrorCode = "not_implemented"
	ErrorCodeInternalError     ErrorCode = "internal_error"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// UserRequest is the caller profile sent with a chat question.
type UserRequest struct {
	ID               string   `json:"id"`
	Email            string   `json:"email"`
	PreferredVendors []string `json:"preferredVendors"`
	BlockedVendors   []string `json:"blockedVendors"`
	FavoriteTags     []string `json:"favoriteTags"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	User   *UserRequest `json:"user"`
	Prompt string       `json:"prompt"`
	Mode   string       `json:"mode"`
}

// SourceResponse is one ranked item the answer was grounded on.
type SourceResponse struct {
	ID    string  `json:"id"`
	SKU   string  `json:"sku"`
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

// ChatResponse is the body returned by POST /api/chat.
type ChatResponse struct {
	Answer  string           `json:"answer"`
	Sources []SourceResponse `json:"sources"`
}

// SupplierDTO is a vendor offer.
type SupplierDTO struct {
	Name        string    `json:"name"`
	URL         string    `json:"url,omitempty"`
	InStock     bool      `json:"inStock"`
	Price       float64   `json:"price"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// ProductDTO is the wire form of a catalog product.
type ProductDTO struct {
	ID          string        `json:"id"`
	SKU         string        `json:"sku"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	ImageURL    string        `json:"imageUrl,omitempty"`
	Tags        []string      `json:"tags"`
	Suppliers   []SupplierDTO `json:"suppliers"`
	IndexedAt   *time.Time    `json:"indexedAt,omitempty"`
}

// ProductListResponse wraps product lists.
type ProductListResponse struct {
	Items []ProductDTO `json:"items"`
}

// UpsertResponse is the body returned by PUT /api/products.
type UpsertResponse struct {
	Upserted int `json:"upserted"`
}

// BudgetResponse is the token budget part of a usage report.
type BudgetResponse struct {
	TokensLimit     int64 `json:"tokensLimit"`
	TokensRemaining int64 `json:"tokensRemaining"`
	IsExhausted     bool  `json:"isExhausted"`
	ResetsAt        int64 `json:"resetsAt,omitempty"`
}

// UsageResponse is the body returned by GET /api/usage.
type UsageResponse struct {
	Period      string         `json:"period"`
	PeriodStart int64          `json:"periodStart,omitempty"`
	PeriodEnd   int64          `json:"periodEnd,omitempty"`
	Provider    string         `json:"provider,omitempty"`
	TokensUsed  int64          `json:"tokensUsed"`
	Budget      BudgetResponse `json:"budget"`
}

// HealthResponse is the body returned by GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks"`
}

func (u *UserRequest) toDomain() profile.Profile {
	if u == nil {
		return profile.Profile{}
	}
	return profile.New(u.ID, u.Email, u.PreferredVendors, u.BlockedVendors, u.FavoriteTags)
}

func sourcesToDTO(ranked []ranking.Scored) []SourceResponse {
	out := make([]SourceResponse, len(ranked))
	for i, r := range ranked {
		p := r.Product()
		out[i] = SourceResponse{ID: p.ID(), SKU: p.SKU(), Title: p.Title(), Score: r.Score()}
	}
	return out
}

func productToDTO(p product.Product) ProductDTO {
	suppliers := make([]SupplierDTO, len(p.Suppliers()))
	for i, s := range p.Suppliers() {
		suppliers[i] = SupplierDTO{
			Name:        s.Name(),
			URL:         s.URL(),
			InStock:     s.InStock(),
			Price:       s.Price(),
			LastUpdated: s.LastUpdated(),
		}
	}
	tags := p.Tags()
	if tags == nil {
		tags = []string{}
	}
	dto := ProductDTO{
		ID:          p.ID(),
		SKU:         p.SKU(),
		Title:       p.Title(),
		Description: p.Description(),
		ImageURL:    p.ImageURL(),
		Tags:        tags,
		Suppliers:   suppliers,
	}
	if at := p.IndexedAt(); !at.IsZero() {
		dto.IndexedAt = &at
	}
	return dto
}

func productsToDTO(items []product.Product) ProductListResponse {
	out := make([]ProductDTO, len(items))
	for i, p := range items {
		out[i] = productToDTO(p)
	}
	return ProductListResponse{Items: out}
}

func productFromDTO(d ProductDTO) (product.Product, error) {
	suppliers := make([]product.Supplier, len(d.Suppliers))
	for i, s := range d.Suppliers {
		suppliers[i] = product.NewSupplier(s.Name, s.URL, s.InStock, s.Price, s.LastUpdated)
	}
	p, err := product.New(d.ID, d.SKU, d.Title, d.Description, d.Tags, suppliers)
	if err != nil {
		return product.Product{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	if d.ImageURL != "" {
		p = p.WithImageURL(d.ImageURL)
	}
	return p, nil
}

func usageToDTO(r domusage.Report) UsageResponse {
	b := r.Budget()
	return UsageResponse{
		Period:      string(r.Period()),
		PeriodStart: r.PeriodStart(),
		PeriodEnd:   r.PeriodEnd(),
		Provider:    r.Provider(),
		TokensUsed:  r.TokensUsed(),
		Budget: BudgetResponse{
			TokensLimit:     b.TokensLimit(),
			TokensRemaining: b.TokensRemaining(),
			IsExhausted:     b.IsExhausted(),
			ResetsAt:        b.ResetsAt(),
		},
	}
}
