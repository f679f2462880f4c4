package storeassist

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/storeassist/internal/domain"
	"github.com/kailas-cloud/storeassist/internal/domain/product"
	"github.com/kailas-cloud/storeassist/internal/domain/profile"
)

// Supplier is a vendor offer for a product.
type Supplier struct {
	Name        string
	URL         string
	InStock     bool
	Price       float64
	LastUpdated time.Time
}

// Product is a catalog item.
type Product struct {
	ID          string
	SKU         string
	Title       string
	Description string
	ImageURL    string
	Tags        []string
	Suppliers   []Supplier
}

// Profile describes who is asking.
type Profile struct {
	ID               string
	Email            string
	PreferredVendors []string
	BlockedVendors   []string
	FavoriteTags     []string
}

// Source is a ranked product the answer was grounded on.
type Source struct {
	Product Product
	Score   float64
}

// Answer is the generated reply with its sources, best first.
type Answer struct {
	Text    string
	Sources []Source
}

// CandidateStore supplies candidate products for a query.
// Implementations should return at most limit items.
type CandidateStore interface {
	Search(ctx context.Context, query string, limit int) ([]Product, error)
}

// GenerationRequest is what a Generator receives.
type GenerationRequest struct {
	SystemDirective string
	UserDirective   string
	Context         string
}

// GenerationResult is a Generator's answer and token usage.
type GenerationResult struct {
	Answer      string
	TotalTokens int
}

// Generator produces the final answer text. It must honor ctx cancellation.
type Generator interface {
	Generate(ctx context.Context, req GenerationRequest) (GenerationResult, error)
}

func toInternalProduct(p Product) (product.Product, error) {
	suppliers := make([]product.Supplier, len(p.Suppliers))
	for i, s := range p.Suppliers {
		suppliers[i] = product.NewSupplier(s.Name, s.URL, s.InStock, s.Price, s.LastUpdated)
	}
	dp, err := product.New(p.ID, p.SKU, p.Title, p.Description, p.Tags, suppliers)
	if err != nil {
		return product.Product{}, fmt.Errorf("convert product: %w", err)
	}
	if p.ImageURL != "" {
		dp = dp.WithImageURL(p.ImageURL)
	}
	return dp, nil
}

func fromInternalProduct(p product.Product) Product {
	suppliers := make([]Supplier, len(p.Suppliers()))
	for i, s := range p.Suppliers() {
		suppliers[i] = Supplier{
			Name:        s.Name(),
			URL:         s.URL(),
			InStock:     s.InStock(),
			Price:       s.Price(),
			LastUpdated: s.LastUpdated(),
		}
	}
	return Product{
		ID:          p.ID(),
		SKU:         p.SKU(),
		Title:       p.Title(),
		Description: p.Description(),
		ImageURL:    p.ImageURL(),
		Tags:        p.Tags(),
		Suppliers:   suppliers,
	}
}

func (p Profile) toInternal() profile.Profile {
	return profile.New(p.ID, p.Email, p.PreferredVendors, p.BlockedVendors, p.FavoriteTags)
}

// candidateAdapter exposes a public CandidateStore as the internal candidate source.
type candidateAdapter struct {
	inner CandidateStore
}

func (a *candidateAdapter) Search(ctx context.Context, query string, limit int) ([]product.Product, error) {
	items, err := a.inner.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCandidateStore, err)
	}
	out := make([]product.Product, 0, len(items))
	for _, it := range items {
		dp, err := toInternalProduct(it)
		if err != nil {
			return nil, fmt.Errorf("%w: product %q: %w", domain.ErrCandidateStore, it.ID, err)
		}
		out = append(out, dp)
	}
	return out, nil
}

// generatorAdapter exposes a public Generator as domain.Generator.
type generatorAdapter struct {
	inner Generator
}

func (a *generatorAdapter) Generate(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResult, error) {
	r, err := a.inner.Generate(ctx, GenerationRequest{
		SystemDirective: req.SystemDirective,
		UserDirective:   req.UserDirective,
		Context:         req.Context,
	})
	if err != nil {
		return domain.GenerationResult{}, fmt.Errorf("generate: %w", err)
	}
	return domain.GenerationResult{Answer: r.Answer, TotalTokens: r.TotalTokens}, nil
}
