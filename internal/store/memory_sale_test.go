package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-terminal-service/internal/domain"
)

func saleTransaction(id string, lines ...domain.CartItem) *domain.Transaction {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.LineTotal())
	}
	tax := subtotal.Mul(decimal.NewFromFloat(0.10))
	return &domain.Transaction{
		ID:            id,
		Items:         lines,
		Subtotal:      subtotal,
		Tax:           tax,
		Total:         subtotal.Add(tax),
		PaymentMethod: domain.PaymentCash,
		CashierID:     testActor.ID,
		CashierName:   testActor.Name,
		CreatedAt:     time.Now().UTC(),
		Status:        domain.StatusCompleted,
	}
}

func TestMemoryStore_CommitSale(t *testing.T) {
	s, audit := newCatalogFixture(t)
	cola := addProductFixture(t, s, "Coca Cola", "BEV001", 100)

	tx := saleTransaction("tx-1", domain.CartItem{Product: *cola, Quantity: 3})
	require.NoError(t, s.CommitSale(context.Background(), tx))

	fresh, err := s.GetProductByID(context.Background(), cola.ID)
	require.NoError(t, err)
	assert.Equal(t, 97, fresh.Stock)

	logs := audit.GetInventoryLogs(context.Background(), cola.ID)
	require.Len(t, logs, 2, "creation stock_in plus one sale entry")
	assert.Equal(t, domain.LogSale, logs[0].Type)
	assert.Equal(t, 3, logs[0].Quantity)
	assert.Equal(t, 100, logs[0].PreviousStock)
	assert.Equal(t, 97, logs[0].NewStock)
	require.NotNil(t, logs[0].Reason)
	assert.Equal(t, "Sale - Transaction tx-1", *logs[0].Reason)
	assert.Equal(t, testActor.ID, logs[0].UserID)

	stored, err := s.GetTransactionByID(context.Background(), "tx-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, stored.Status)
}

func TestMemoryStore_CommitSale_InsufficientStock(t *testing.T) {
	s, audit := newCatalogFixture(t)
	cola := addProductFixture(t, s, "Coca Cola", "BEV001", 5)
	chips := addProductFixture(t, s, "Chips", "SNACK001", 2)

	tx := saleTransaction("tx-1",
		domain.CartItem{Product: *cola, Quantity: 3},
		domain.CartItem{Product: *chips, Quantity: 3},
	)
	err := s.CommitSale(context.Background(), tx)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	// All-or-nothing: the passing line must not have been applied.
	freshCola, err := s.GetProductByID(context.Background(), cola.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, freshCola.Stock)

	logs := audit.GetInventoryLogs(context.Background(), cola.ID)
	assert.Len(t, logs, 1, "only the creation entry")

	txs, err := s.GetTransactions(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestMemoryStore_CommitSale_DuplicateLinesChainDecrements(t *testing.T) {
	s, audit := newCatalogFixture(t)
	cola := addProductFixture(t, s, "Coca Cola", "BEV001", 5)

	tx := saleTransaction("tx-1",
		domain.CartItem{Product: *cola, Quantity: 2},
		domain.CartItem{Product: *cola, Quantity: 3},
	)
	require.NoError(t, s.CommitSale(context.Background(), tx))

	fresh, err := s.GetProductByID(context.Background(), cola.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, fresh.Stock, "both lines must decrement, not overwrite")

	// The sale entries chain: 5 -> 3 -> 0, most recent first.
	logs := audit.GetInventoryLogs(context.Background(), cola.ID)
	require.Len(t, logs, 3)
	assert.Equal(t, 3, logs[0].PreviousStock)
	assert.Equal(t, 0, logs[0].NewStock)
	assert.Equal(t, 5, logs[1].PreviousStock)
	assert.Equal(t, 3, logs[1].NewStock)
}

func TestMemoryStore_CommitSale_DuplicateLinesCannotOversell(t *testing.T) {
	s, audit := newCatalogFixture(t)
	cola := addProductFixture(t, s, "Coca Cola", "BEV001", 5)

	// Each line alone fits the stock of 5; together they need 6.
	tx := saleTransaction("tx-1",
		domain.CartItem{Product: *cola, Quantity: 3},
		domain.CartItem{Product: *cola, Quantity: 3},
	)
	err := s.CommitSale(context.Background(), tx)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	fresh, err := s.GetProductByID(context.Background(), cola.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, fresh.Stock)

	logs := audit.GetInventoryLogs(context.Background(), cola.ID)
	assert.Len(t, logs, 1, "only the creation entry")

	txs, err := s.GetTransactions(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestMemoryStore_CommitSale_MissingProduct(t *testing.T) {
	s, _ := newCatalogFixture(t)

	ghost := domain.Product{ID: "missing-id", Name: "Ghost", Price: decimal.NewFromFloat(1.00)}
	err := s.CommitSale(context.Background(), saleTransaction("tx-1",
		domain.CartItem{Product: ghost, Quantity: 1},
	))
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestMemoryStore_GetTransactions_OrderAndLimit(t *testing.T) {
	s, _ := newCatalogFixture(t)
	cola := addProductFixture(t, s, "Coca Cola", "BEV001", 100)

	for i := 1; i <= 3; i++ {
		tx := saleTransaction(fmt.Sprintf("tx-%d", i), domain.CartItem{Product: *cola, Quantity: 1})
		require.NoError(t, s.CommitSale(context.Background(), tx))
	}

	all, err := s.GetTransactions(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "tx-3", all[0].ID, "most recent first")
	assert.Equal(t, "tx-1", all[2].ID)

	limited, err := s.GetTransactions(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "tx-3", limited[0].ID)
}

func TestMemoryStore_TransactionReadsAreDeepCopies(t *testing.T) {
	s, _ := newCatalogFixture(t)
	cola := addProductFixture(t, s, "Coca Cola", "BEV001", 100)
	require.NoError(t, s.CommitSale(context.Background(),
		saleTransaction("tx-1", domain.CartItem{Product: *cola, Quantity: 1})))

	byID, err := s.GetTransactionByID(context.Background(), "tx-1")
	require.NoError(t, err)
	byID.Items[0].Quantity = 99
	byID.Items[0].Product.Name = "Tampered"

	listed, err := s.GetTransactions(context.Background(), 0)
	require.NoError(t, err)
	listed[0].Items[0].Quantity = 42

	fresh, err := s.GetTransactionByID(context.Background(), "tx-1")
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.Items[0].Quantity,
		"mutating a returned receipt must not alter recorded history")
	assert.Equal(t, "Coca Cola", fresh.Items[0].Product.Name)
}

func TestMemoryStore_GetTransactionByID_NotFound(t *testing.T) {
	s, _ := newCatalogFixture(t)

	_, err := s.GetTransactionByID(context.Background(), "missing-id")
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestAuditLog_FilterAndOrder(t *testing.T) {
	audit := NewAuditLog()
	ctx := context.Background()

	first := audit.AppendLog(ctx, domain.InventoryLog{ProductID: "p1", Type: domain.LogStockIn, Quantity: 10})
	second := audit.AppendLog(ctx, domain.InventoryLog{ProductID: "p2", Type: domain.LogStockOut, Quantity: 2})
	third := audit.AppendLog(ctx, domain.InventoryLog{ProductID: "p1", Type: domain.LogSale, Quantity: 1})

	assert.NotEmpty(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	all := audit.GetInventoryLogs(ctx, "")
	require.Len(t, all, 3)
	assert.Equal(t, third.ID, all[0].ID, "most recent first")
	assert.Equal(t, first.ID, all[2].ID)

	p1 := audit.GetInventoryLogs(ctx, "p1")
	require.Len(t, p1, 2)
	assert.Equal(t, third.ID, p1[0].ID)

	p2 := audit.GetInventoryLogs(ctx, "p2")
	require.Len(t, p2, 1)
	assert.Equal(t, second.ID, p2[0].ID)
}
