package product

import (
	"encoding/json"
	"fmt"
	"time"

	domprod "github.com/kailas-cloud/storeassist/internal/domain/product"
)

// productDoc is the JSON document stored per product.
type productDoc struct {
	ID          string        `json:"id"`
	SKU         string        `json:"sku"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	ImageURL    string        `json:"image_url,omitempty"`
	Tags        []string      `json:"tags"`
	Suppliers   []supplierDoc `json:"suppliers"`
	IndexedAt   int64         `json:"indexed_at"` // unix millis
}

type supplierDoc struct {
	Name        string  `json:"name"`
	URL         string  `json:"url,omitempty"`
	InStock     bool    `json:"in_stock"`
	Price       float64 `json:"price"`
	LastUpdated int64   `json:"last_updated"` // unix millis
}

func toDoc(p *domprod.Product) productDoc {
	tags := p.Tags()
	if tags == nil {
		tags = []string{}
	}
	sups := make([]supplierDoc, 0, len(p.Suppliers()))
	for _, s := range p.Suppliers() {
		sups = append(sups, supplierDoc{
			Name:        s.Name(),
			URL:         s.URL(),
			InStock:     s.InStock(),
			Price:       s.Price(),
			LastUpdated: s.LastUpdated().UnixMilli(),
		})
	}
	return productDoc{
		ID:          p.ID(),
		SKU:         p.SKU(),
		Title:       p.Title(),
		Description: p.Description(),
		ImageURL:    p.ImageURL(),
		Tags:        tags,
		Suppliers:   sups,
		IndexedAt:   p.IndexedAt().UnixMilli(),
	}
}

func (d productDoc) toDomain() domprod.Product {
	sups := make([]domprod.Supplier, 0, len(d.Suppliers))
	for _, s := range d.Suppliers {
		sups = append(sups, domprod.NewSupplier(
			s.Name, s.URL, s.InStock, s.Price, time.UnixMilli(s.LastUpdated).UTC(),
		))
	}
	return domprod.Reconstruct(
		d.ID, d.SKU, d.Title, d.Description, d.ImageURL, d.Tags, sups,
		time.UnixMilli(d.IndexedAt).UTC(),
	)
}

// parseDoc decodes a single JSON object (FT.SEARCH RETURN $).
func parseDoc(raw string) (domprod.Product, error) {
	var d productDoc
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return domprod.Product{}, fmt.Errorf("unmarshal product: %w", err)
	}
	return d.toDomain(), nil
}

// parseJSONGetResult decodes the array form returned by JSON.GET key $.
func parseJSONGetResult(raw []byte) (domprod.Product, bool, error) {
	var docs []productDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		return domprod.Product{}, false, fmt.Errorf("unmarshal product: %w", err)
	}
	if len(docs) == 0 {
		return domprod.Product{}, false, nil
	}
	return docs[0].toDomain(), true, nil
}
