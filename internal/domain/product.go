package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category represents a product category. Products reference categories by
// name, not by ID: Product.Category is matched against Category.Name.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"` // Pointer for nullable fields, omitempty to exclude if nil
	CreatedAt   time.Time `json:"created_at"`
}

// Product represents a sellable item in the catalog.
// Price and Cost use decimal.Decimal so currency amounts stay exact across
// the quantity/discount/tax arithmetic in the cart and checkout paths.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	SKU         string          `json:"sku"`
	Price       decimal.Decimal `json:"price"` // Unit sale price
	Cost        decimal.Decimal `json:"cost"`  // Unit acquisition cost
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	Barcode     *string         `json:"barcode,omitempty"`
	Description *string         `json:"description,omitempty"`
	ImageURL    *string         `json:"image_url,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Clone returns a deep copy of the product. Pointer-typed optional fields
// are duplicated so the copy is immune to later edits of the original.
func (p Product) Clone() Product {
	c := p
	c.Barcode = clonePtr(p.Barcode)
	c.Description = clonePtr(p.Description)
	c.ImageURL = clonePtr(p.ImageURL)
	return c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
