// Package product holds the catalog item model used as a ranking candidate.
package product

import (
	"errors"
	"time"
)

// Supplier is one vendor offer for a product.
type Supplier struct {
	name        string
	url         string
	inStock     bool
	price       float64
	lastUpdated time.Time
}

// NewSupplier creates a supplier offer stamped with the given update time.
func NewSupplier(name, url string, inStock bool, price float64, lastUpdated time.Time) Supplier {
	return Supplier{name: name, url: url, inStock: inStock, price: price, lastUpdated: lastUpdated}
}

// Name returns the vendor name.
func (s Supplier) Name() string { return s.name }

// URL returns the source URL of the offer.
func (s Supplier) URL() string { return s.url }

// InStock reports vendor stock.
func (s Supplier) InStock() bool { return s.inStock }

// Price returns the offered price.
func (s Supplier) Price() float64 { return s.price }

// LastUpdated returns when the offer was last refreshed.
func (s Supplier) LastUpdated() time.Time { return s.lastUpdated }

// Product is an immutable catalog item.
type Product struct {
	id          string
	sku         string
	title       string
	description string
	imageURL    string
	tags        []string
	suppliers   []Supplier
	indexedAt   time.Time
}

// New creates a validated product.
func New(id, sku, title, description string, tags []string, suppliers []Supplier) (Product, error) {
	if id == "" {
		return Product{}, errors.New("product id is required")
	}
	if title == "" {
		return Product{}, errors.New("product title is required")
	}
	return Product{
		id:          id,
		sku:         sku,
		title:       title,
		description: description,
		tags:        tags,
		suppliers:   suppliers,
		indexedAt:   time.Now().UTC(),
	}, nil
}

// Reconstruct restores a product from storage without validation.
func Reconstruct(
	id, sku, title, description, imageURL string,
	tags []string, suppliers []Supplier, indexedAt time.Time,
) Product {
	return Product{
		id:          id,
		sku:         sku,
		title:       title,
		description: description,
		imageURL:    imageURL,
		tags:        tags,
		suppliers:   suppliers,
		indexedAt:   indexedAt,
	}
}

// WithImageURL returns a copy with the image URL set.
func (p Product) WithImageURL(url string) Product {
	p.imageURL = url
	return p
}

// ID returns the product identifier.
func (p Product) ID() string { return p.id }

// SKU returns the stock keeping unit.
func (p Product) SKU() string { return p.sku }

// Title returns the product title.
func (p Product) Title() string { return p.title }

// Description returns the product description.
func (p Product) Description() string { return p.description }

// ImageURL returns the product image URL.
func (p Product) ImageURL() string { return p.imageURL }

// Tags returns the product tags.
func (p Product) Tags() []string { return p.tags }

// Suppliers returns the vendor offers.
func (p Product) Suppliers() []Supplier { return p.suppliers }

// IndexedAt returns when the product was written to the catalog.
func (p Product) IndexedAt() time.Time { return p.indexedAt }

// RepresentationText is the text embedded for ranking: title, a space, description.
func (p Product) RepresentationText() string {
	return p.title + " " + p.description
}
