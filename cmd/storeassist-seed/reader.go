package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kailas-cloud/storeassist/internal/domain/product"
)

// maxLineBytes bounds one catalog record.
const maxLineBytes = 1 << 20

type supplierRecord struct {
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	InStock     bool      `json:"inStock"`
	Price       float64   `json:"price"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// productRecord is one line of a JSON Lines catalog dump.
type productRecord struct {
	ID          string           `json:"id"`
	SKU         string           `json:"sku"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	ImageURL    string           `json:"imageUrl"`
	Tags        []string         `json:"tags"`
	Suppliers   []supplierRecord `json:"suppliers"`
}

func (r productRecord) toDomain() (product.Product, error) {
	suppliers := make([]product.Supplier, 0, len(r.Suppliers))
	for _, s := range r.Suppliers {
		suppliers = append(suppliers, product.NewSupplier(s.Name, s.URL, s.InStock, s.Price, s.LastUpdated))
	}
	p, err := product.New(r.ID, r.SKU, r.Title, r.Description, r.Tags, suppliers)
	if err != nil {
		return product.Product{}, err
	}
	if r.ImageURL != "" {
		p = p.WithImageURL(r.ImageURL)
	}
	return p, nil
}

// readCatalog decodes JSON Lines records and hands each valid product to fn.
// Blank lines are skipped. Malformed lines go to onBad and do not stop the scan.
// fn returning false stops reading.
func readCatalog(
	ctx context.Context,
	r io.Reader,
	fn func(p product.Product) bool,
	onBad func(line int, err error),
) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	line := 0
	for sc.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return err
		}
		raw := strings.TrimSpace(sc.Text())
		if raw == "" {
			continue
		}

		var rec productRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			onBad(line, fmt.Errorf("decode: %w", err))
			continue
		}
		p, err := rec.toDomain()
		if err != nil {
			onBad(line, err)
			continue
		}
		if !fn(p) {
			return nil
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("scan catalog: %w", err)
	}
	return nil
}
