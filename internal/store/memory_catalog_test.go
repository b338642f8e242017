package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-terminal-service/internal/domain"
)

var testActor = Actor{ID: "u1", Name: "Test Manager"}

func newCatalogFixture(t *testing.T) (*MemoryStore, *AuditLog) {
	t.Helper()
	audit := NewAuditLog()
	return NewMemoryStore(audit), audit
}

func addProductFixture(t *testing.T, s *MemoryStore, name, sku string, stock int) *domain.Product {
	t.Helper()
	created, err := s.AddProduct(context.Background(), NewProduct{
		Name:     name,
		SKU:      sku,
		Price:    decimal.NewFromFloat(2.50),
		Cost:     decimal.NewFromFloat(1.50),
		Stock:    stock,
		Category: "Beverages",
		Barcode:  ptrTo("1234567890123"),
	}, testActor)
	require.NoError(t, err)
	return created
}

func TestMemoryStore_AddProduct(t *testing.T) {
	s, audit := newCatalogFixture(t)

	created := addProductFixture(t, s, "Coca Cola", "BEV001", 100)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 100, created.Stock)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	// Creation seeds the stock history with one stock_in entry.
	logs := audit.GetInventoryLogs(context.Background(), created.ID)
	require.Len(t, logs, 1)
	assert.Equal(t, domain.LogStockIn, logs[0].Type)
	assert.Equal(t, 0, logs[0].PreviousStock)
	assert.Equal(t, 100, logs[0].NewStock)
	assert.Equal(t, 100, logs[0].Quantity)
	require.NotNil(t, logs[0].Reason)
	assert.Equal(t, "New product added", *logs[0].Reason)
	assert.Equal(t, testActor.ID, logs[0].UserID)
}

func TestMemoryStore_AddProduct_DuplicateSKU(t *testing.T) {
	s, _ := newCatalogFixture(t)
	addProductFixture(t, s, "Coca Cola", "BEV001", 100)

	_, err := s.AddProduct(context.Background(), NewProduct{
		Name: "Pepsi", SKU: "BEV001", Price: decimal.NewFromFloat(2.00), Category: "Beverages",
	}, testActor)
	assert.ErrorIs(t, err, ErrProductSKUExists)
}

func TestMemoryStore_UpdateProduct(t *testing.T) {
	s, _ := newCatalogFixture(t)
	created := addProductFixture(t, s, "Coca Cola", "BEV001", 100)

	newName := "Coca Cola Zero"
	newPrice := decimal.NewFromFloat(2.75)
	updated, err := s.UpdateProduct(context.Background(), created.ID, ProductUpdate{
		Name:  &newName,
		Price: &newPrice,
	})
	require.NoError(t, err)

	assert.Equal(t, "Coca Cola Zero", updated.Name)
	assert.True(t, updated.Price.Equal(newPrice))
	assert.Equal(t, "BEV001", updated.SKU, "fields not in the update must be untouched")
	assert.Equal(t, 100, updated.Stock)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt) || updated.UpdatedAt.Equal(created.UpdatedAt))
}

func TestMemoryStore_UpdateProduct_NotFound(t *testing.T) {
	s, _ := newCatalogFixture(t)

	name := "Ghost"
	_, err := s.UpdateProduct(context.Background(), "missing-id", ProductUpdate{Name: &name})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestMemoryStore_UpdateProduct_DuplicateSKU(t *testing.T) {
	s, _ := newCatalogFixture(t)
	addProductFixture(t, s, "Coca Cola", "BEV001", 100)
	other := addProductFixture(t, s, "Pepsi", "BEV002", 50)

	taken := "BEV001"
	_, err := s.UpdateProduct(context.Background(), other.ID, ProductUpdate{SKU: &taken})
	assert.ErrorIs(t, err, ErrProductSKUExists)
}

func TestMemoryStore_DeleteProduct(t *testing.T) {
	s, _ := newCatalogFixture(t)
	created := addProductFixture(t, s, "Coca Cola", "BEV001", 100)

	require.NoError(t, s.DeleteProduct(context.Background(), created.ID))

	_, err := s.GetProductByID(context.Background(), created.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)

	assert.ErrorIs(t, s.DeleteProduct(context.Background(), created.ID), ErrProductNotFound)
}

func TestMemoryStore_DeleteProduct_KeepsAuditHistory(t *testing.T) {
	s, audit := newCatalogFixture(t)
	created := addProductFixture(t, s, "Coca Cola", "BEV001", 100)

	require.NoError(t, s.DeleteProduct(context.Background(), created.ID))

	logs := audit.GetInventoryLogs(context.Background(), created.ID)
	require.Len(t, logs, 1, "audit entries must outlive the product")
	assert.Equal(t, "Coca Cola", logs[0].ProductName)
}

func TestMemoryStore_SearchProducts(t *testing.T) {
	s, _ := newCatalogFixture(t)
	addProductFixture(t, s, "Coca Cola", "BEV001", 100)
	addProductFixture(t, s, "Sandwich", "FOOD001", 50)

	byName, err := s.SearchProducts(context.Background(), "coca")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "Coca Cola", byName[0].Name)

	bySKU, err := s.SearchProducts(context.Background(), "food")
	require.NoError(t, err)
	require.Len(t, bySKU, 1)
	assert.Equal(t, "Sandwich", bySKU[0].Name)

	byBarcode, err := s.SearchProducts(context.Background(), "1234567890123")
	require.NoError(t, err)
	assert.Len(t, byBarcode, 2, "both fixtures share the barcode prefix match")

	none, err := s.SearchProducts(context.Background(), "zzz")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryStore_GetProductsByCategory(t *testing.T) {
	s, _ := newCatalogFixture(t)
	addProductFixture(t, s, "Coca Cola", "BEV001", 100)
	addProductFixture(t, s, "Pepsi", "BEV002", 80)

	beverages, err := s.GetProductsByCategory(context.Background(), "Beverages")
	require.NoError(t, err)
	assert.Len(t, beverages, 2)

	food, err := s.GetProductsByCategory(context.Background(), "Food")
	require.NoError(t, err)
	assert.Empty(t, food)
}

func TestMemoryStore_AdjustStock(t *testing.T) {
	s, audit := newCatalogFixture(t)
	created := addProductFixture(t, s, "Coca Cola", "BEV001", 100)

	t.Run("stock_in adds", func(t *testing.T) {
		updated, err := s.AdjustStock(context.Background(), created.ID, domain.LogStockIn, 20, "Restock", testActor)
		require.NoError(t, err)
		assert.Equal(t, 120, updated.Stock)
	})

	t.Run("stock_out subtracts", func(t *testing.T) {
		updated, err := s.AdjustStock(context.Background(), created.ID, domain.LogStockOut, 30, "Damaged goods", testActor)
		require.NoError(t, err)
		assert.Equal(t, 90, updated.Stock)
	})

	t.Run("adjustment sets absolute level", func(t *testing.T) {
		updated, err := s.AdjustStock(context.Background(), created.ID, domain.LogAdjustment, 55, "Inventory count", testActor)
		require.NoError(t, err)
		assert.Equal(t, 55, updated.Stock)
	})

	// One creation entry plus the three manual mutations, most recent first.
	logs := audit.GetInventoryLogs(context.Background(), created.ID)
	require.Len(t, logs, 4)
	assert.Equal(t, domain.LogAdjustment, logs[0].Type)
	assert.Equal(t, 90, logs[0].PreviousStock)
	assert.Equal(t, 55, logs[0].NewStock)
	assert.Equal(t, domain.LogStockOut, logs[1].Type)
	assert.Equal(t, domain.LogStockIn, logs[2].Type)
}

func TestMemoryStore_AdjustStock_InsufficientStock(t *testing.T) {
	s, audit := newCatalogFixture(t)
	created := addProductFixture(t, s, "Coca Cola", "BEV001", 10)

	_, err := s.AdjustStock(context.Background(), created.ID, domain.LogStockOut, 11, "Oops", testActor)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	fresh, err := s.GetProductByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, fresh.Stock)

	logs := audit.GetInventoryLogs(context.Background(), created.ID)
	assert.Len(t, logs, 1, "a failed adjustment must not write an audit entry")
}

func TestMemoryStore_AdjustStock_RejectsSaleType(t *testing.T) {
	s, _ := newCatalogFixture(t)
	created := addProductFixture(t, s, "Coca Cola", "BEV001", 10)

	_, err := s.AdjustStock(context.Background(), created.ID, domain.LogSale, 1, "", testActor)
	assert.ErrorIs(t, err, ErrInvalidStockOp)
}

func TestMemoryStore_AdjustStock_NotFound(t *testing.T) {
	s, _ := newCatalogFixture(t)

	_, err := s.AdjustStock(context.Background(), "missing-id", domain.LogStockIn, 1, "", testActor)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestMemoryStore_Categories(t *testing.T) {
	s, _ := newCatalogFixture(t)

	created, err := s.AddCategory(context.Background(), "Beverages", ptrTo("Cold drinks"))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	_, err = s.AddCategory(context.Background(), "Beverages", nil)
	assert.ErrorIs(t, err, ErrCategoryNameExists)

	categories, err := s.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "Beverages", categories[0].Name)
}

func TestMemoryStore_Seed(t *testing.T) {
	s, audit := newCatalogFixture(t)
	require.NoError(t, s.Seed(context.Background(), "password123"))

	products, err := s.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 3)

	categories, err := s.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Len(t, categories, 4)

	users, err := s.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 3)

	assert.Empty(t, audit.GetInventoryLogs(context.Background(), ""),
		"seeded products must not generate stock history")

	admin, err := s.GetUserByUsername(context.Background(), "admin")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, admin.Role)
	assert.False(t, admin.CreatedAt.After(time.Now().UTC()))
}
