package store

import (
	"context"
	"strings"
	"time"

	"pos-terminal-service/internal/domain"
)

// AddProduct assigns a fresh ID, stamps both timestamps, appends the product
// to the catalog, and unconditionally writes one stock_in audit entry
// (previousStock=0) so the product's stock history starts at its creation.
func (s *MemoryStore) AddProduct(ctx context.Context, input NewProduct, actor Actor) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.products {
		if s.products[i].SKU == input.SKU {
			return nil, ErrProductSKUExists
		}
	}

	now := time.Now().UTC()
	product := domain.Product{
		ID:          newID(),
		Name:        input.Name,
		SKU:         input.SKU,
		Price:       input.Price,
		Cost:        input.Cost,
		Stock:       input.Stock,
		Category:    input.Category,
		Barcode:     input.Barcode,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.products = append(s.products, product)

	s.audit.AppendLog(ctx, domain.InventoryLog{
		ProductID:     product.ID,
		ProductName:   product.Name,
		Type:          domain.LogStockIn,
		Quantity:      product.Stock,
		PreviousStock: 0,
		NewStock:      product.Stock,
		Reason:        ptrTo("New product added"),
		UserID:        actor.ID,
		UserName:      actor.Name,
	})

	created := product.Clone()
	return &created, nil
}

// UpdateProduct merges the non-nil fields into the matching product and
// stamps UpdatedAt. A missing ID is reported as ErrProductNotFound rather
// than silently ignored.
func (s *MemoryStore) UpdateProduct(ctx context.Context, id string, updates ProductUpdate) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findProductLocked(id)
	if idx < 0 {
		return nil, ErrProductNotFound
	}

	if updates.SKU != nil {
		for i := range s.products {
			if i != idx && s.products[i].SKU == *updates.SKU {
				return nil, ErrProductSKUExists
			}
		}
	}

	p := &s.products[idx]
	if updates.Name != nil {
		p.Name = *updates.Name
	}
	if updates.SKU != nil {
		p.SKU = *updates.SKU
	}
	if updates.Price != nil {
		p.Price = *updates.Price
	}
	if updates.Cost != nil {
		p.Cost = *updates.Cost
	}
	if updates.Category != nil {
		p.Category = *updates.Category
	}
	if updates.Barcode != nil {
		p.Barcode = clonePtr(updates.Barcode)
	}
	if updates.Description != nil {
		p.Description = clonePtr(updates.Description)
	}
	if updates.ImageURL != nil {
		p.ImageURL = clonePtr(updates.ImageURL)
	}
	p.UpdatedAt = time.Now().UTC()

	updated := p.Clone()
	return &updated, nil
}

// DeleteProduct removes the product from the catalog. Historical
// transactions and audit entries are untouched: transactions carry their own
// deep-copied product snapshots and log entries denormalize the name.
func (s *MemoryStore) DeleteProduct(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findProductLocked(id)
	if idx < 0 {
		return ErrProductNotFound
	}
	s.products = append(s.products[:idx], s.products[idx+1:]...)
	return nil
}

func (s *MemoryStore) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.findProductLocked(id)
	if idx < 0 {
		return nil, ErrProductNotFound
	}
	p := s.products[idx].Clone()
	return &p, nil
}

func (s *MemoryStore) ListProducts(ctx context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, len(s.products))
	for i := range s.products {
		products = append(products, s.products[i].Clone())
	}
	return products, nil
}

func (s *MemoryStore) GetProductsByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0)
	for i := range s.products {
		if s.products[i].Category == category {
			products = append(products, s.products[i].Clone())
		}
	}
	return products, nil
}

// SearchProducts matches the query case-insensitively against product name
// and SKU substrings, and against the raw barcode substring.
func (s *MemoryStore) SearchProducts(ctx context.Context, query string) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lower := strings.ToLower(query)
	products := make([]domain.Product, 0)
	for i := range s.products {
		p := &s.products[i]
		if strings.Contains(strings.ToLower(p.Name), lower) ||
			strings.Contains(strings.ToLower(p.SKU), lower) ||
			(p.Barcode != nil && strings.Contains(*p.Barcode, query)) {
			products = append(products, p.Clone())
		}
	}
	return products, nil
}

// AdjustStock applies a manual stock mutation and writes the paired audit
// entry under the same lock. stock_in adds quantity, stock_out subtracts it
// (failing with ErrInsufficientStock if the result would go negative), and
// adjustment sets the absolute stock level to quantity.
func (s *MemoryStore) AdjustStock(ctx context.Context, productID string, op domain.InventoryLogType, quantity int, reason string, actor Actor) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findProductLocked(productID)
	if idx < 0 {
		return nil, ErrProductNotFound
	}

	p := &s.products[idx]
	previous := p.Stock
	var next int
	switch op {
	case domain.LogStockIn:
		next = previous + quantity
	case domain.LogStockOut:
		next = previous - quantity
		if next < 0 {
			return nil, ErrInsufficientStock
		}
	case domain.LogAdjustment:
		if quantity < 0 {
			return nil, ErrInsufficientStock
		}
		next = quantity
	default:
		// Sale entries are written by CommitSale only.
		return nil, ErrInvalidStockOp
	}

	p.Stock = next
	p.UpdatedAt = time.Now().UTC()

	var reasonPtr *string
	if reason != "" {
		reasonPtr = &reason
	}
	s.audit.AppendLog(ctx, domain.InventoryLog{
		ProductID:     p.ID,
		ProductName:   p.Name,
		Type:          op,
		Quantity:      quantity,
		PreviousStock: previous,
		NewStock:      next,
		Reason:        reasonPtr,
		UserID:        actor.ID,
		UserName:      actor.Name,
	})

	updated := p.Clone()
	return &updated, nil
}

func (s *MemoryStore) AddCategory(ctx context.Context, name string, description *string) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.categories {
		if s.categories[i].Name == name {
			return nil, ErrCategoryNameExists
		}
	}
	category := domain.Category{
		ID:          newID(),
		Name:        name,
		Description: clonePtr(description),
		CreatedAt:   time.Now().UTC(),
	}
	s.categories = append(s.categories, category)
	created := category
	return &created, nil
}

func (s *MemoryStore) ListCategories(ctx context.Context) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	categories := make([]domain.Category, len(s.categories))
	copy(categories, s.categories)
	return categories, nil
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
