package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-terminal-service/internal/domain"
)

func reportProduct(id, name string, price float64, stock int) domain.Product {
	return domain.Product{
		ID:    id,
		Name:  name,
		SKU:   "SKU-" + id,
		Price: decimal.NewFromFloat(price),
		Stock: stock,
	}
}

func reportTransaction(id string, at time.Time, items ...domain.CartItem) domain.Transaction {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	tax := subtotal.Mul(decimal.NewFromFloat(0.10))
	return domain.Transaction{
		ID:            id,
		Items:         items,
		Subtotal:      subtotal,
		Tax:           tax,
		Total:         subtotal.Add(tax),
		PaymentMethod: domain.PaymentCash,
		CashierName:   "Test Cashier",
		CreatedAt:     at,
		Status:        domain.StatusCompleted,
	}
}

func TestDashboard(t *testing.T) {
	cola := reportProduct("p1", "Coca Cola", 2.50, 100)
	chips := reportProduct("p2", "Chips", 1.50, 3) // below threshold
	day1 := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 31, 15, 30, 0, 0, time.UTC)

	transactions := []domain.Transaction{
		reportTransaction("tx-1", day1, domain.CartItem{Product: cola, Quantity: 3}), // 7.50 + 0.75
		reportTransaction("tx-2", day2, domain.CartItem{Product: chips, Quantity: 2}), // 3.00 + 0.30
	}

	stats := Dashboard([]domain.Product{cola, chips}, transactions, 10)

	assert.Equal(t, 2, stats.TotalTransactions)
	assert.Equal(t, 2, stats.TotalProducts)
	assert.Equal(t, 1, stats.LowStockProducts)
	assert.True(t, stats.TotalSales.Equal(decimal.RequireFromString("11.55")),
		"total sales was %s", stats.TotalSales)

	require.Len(t, stats.DailySales, 2)
	assert.Equal(t, "2026-08-30", stats.DailySales[0].Date, "daily sales sorted by date ascending")
	assert.True(t, stats.DailySales[0].Sales.Equal(decimal.RequireFromString("8.25")))
	assert.Equal(t, "2026-08-31", stats.DailySales[1].Date)

	require.Len(t, stats.TopSellingProducts, 2)
	assert.Equal(t, "p1", stats.TopSellingProducts[0].Product.ID, "top sellers ranked by quantity")
	assert.Equal(t, 3, stats.TopSellingProducts[0].Quantity)
}

func TestDashboard_Empty(t *testing.T) {
	stats := Dashboard(nil, nil, 10)

	assert.True(t, stats.TotalSales.IsZero())
	assert.Zero(t, stats.TotalTransactions)
	assert.Empty(t, stats.DailySales)
	assert.Empty(t, stats.TopSellingProducts)
}

func TestDaily(t *testing.T) {
	cola := reportProduct("p1", "Coca Cola", 2.50, 100)
	sandwich := reportProduct("p2", "Sandwich", 5.00, 50)
	target := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	otherDay := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)

	transactions := []domain.Transaction{
		reportTransaction("tx-1", target, domain.CartItem{Product: cola, Quantity: 2}),     // total 5.50
		reportTransaction("tx-2", target, domain.CartItem{Product: sandwich, Quantity: 1}), // total 5.50
		reportTransaction("tx-3", otherDay, domain.CartItem{Product: cola, Quantity: 10}),
	}

	rep := Daily(transactions, "2026-08-31")

	assert.Equal(t, "2026-08-31", rep.Date)
	assert.Equal(t, 2, rep.TotalTransactions, "transactions from other days are excluded")
	assert.True(t, rep.TotalSales.Equal(decimal.RequireFromString("11.00")),
		"total sales was %s", rep.TotalSales)
	assert.True(t, rep.AverageOrderValue.Equal(decimal.RequireFromString("5.50")),
		"average order value was %s", rep.AverageOrderValue)

	require.Len(t, rep.TopProducts, 2)
	// Both lines have 5.00 revenue, so only membership is stable.
	ids := []string{rep.TopProducts[0].Product.ID, rep.TopProducts[1].Product.ID}
	assert.ElementsMatch(t, []string{"p1", "p2"}, ids)
}

func TestDaily_NoMatchingTransactions(t *testing.T) {
	rep := Daily(nil, "2026-08-31")

	assert.Zero(t, rep.TotalTransactions)
	assert.True(t, rep.TotalSales.IsZero())
	assert.True(t, rep.AverageOrderValue.IsZero())
	assert.Empty(t, rep.TopProducts)
}

func TestTopProducts_RankingAndLimit(t *testing.T) {
	at := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	var transactions []domain.Transaction
	for i := 0; i < 7; i++ {
		p := reportProduct(string(rune('a'+i)), "Product", 1.00, 10)
		transactions = append(transactions, reportTransaction("tx", at,
			domain.CartItem{Product: p, Quantity: i + 1}))
	}

	top := topProducts(transactions, byQuantity)
	require.Len(t, top, topProductsLimit, "ranking is capped")
	assert.Equal(t, 7, top[0].Quantity)
	assert.Equal(t, 3, top[topProductsLimit-1].Quantity)
}
