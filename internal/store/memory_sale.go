package store

import (
	"context"
	"time"

	"pos-terminal-service/internal/domain"
)

// CommitSale applies a completed sale in two phases under a single critical
// section. Phase one validates that every line item's product exists and has
// enough stock for the decrement; any violation fails the whole commit with
// no state change. Phase two decrements each product's stock, writes one
// sale audit entry per line, and prepends the transaction to history.
func (s *MemoryStore) CommitSale(ctx context.Context, tx *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	type stockChange struct {
		idx      int
		previous int
		next     int
	}
	// Projected stock per product index, so multiple lines for the same
	// product chain their decrements instead of each validating against the
	// pre-commit stock.
	projected := make(map[int]int, len(tx.Items))
	plan := make([]stockChange, 0, len(tx.Items))
	for _, item := range tx.Items {
		idx := s.findProductLocked(item.Product.ID)
		if idx < 0 {
			return ErrProductNotFound
		}
		previous, ok := projected[idx]
		if !ok {
			previous = s.products[idx].Stock
		}
		next := previous - item.Quantity
		if next < 0 {
			return ErrInsufficientStock
		}
		projected[idx] = next
		plan = append(plan, stockChange{idx: idx, previous: previous, next: next})
	}

	now := time.Now().UTC()
	reason := "Sale - Transaction " + tx.ID
	for i, item := range tx.Items {
		p := &s.products[plan[i].idx]
		p.Stock = plan[i].next
		p.UpdatedAt = now

		s.audit.AppendLog(ctx, domain.InventoryLog{
			ProductID:     p.ID,
			ProductName:   p.Name,
			Type:          domain.LogSale,
			Quantity:      item.Quantity,
			PreviousStock: plan[i].previous,
			NewStock:      plan[i].next,
			Reason:        &reason,
			UserID:        tx.CashierID,
			UserName:      tx.CashierName,
		})
	}

	// Most-recent-first ordering.
	s.transactions = append([]domain.Transaction{*tx}, s.transactions...)
	return nil
}

// GetTransactions returns the transaction history, most recent first. A
// limit of zero or less returns the full history.
func (s *MemoryStore) GetTransactions(ctx context.Context, limit int) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.transactions)
	if limit > 0 && limit < n {
		n = limit
	}
	transactions := make([]domain.Transaction, n)
	for i := range transactions {
		transactions[i] = s.transactions[i].Clone()
	}
	return transactions, nil
}

func (s *MemoryStore) GetTransactionByID(ctx context.Context, id string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.transactions {
		if s.transactions[i].ID == id {
			tx := s.transactions[i].Clone()
			return &tx, nil
		}
	}
	return nil, ErrTransactionNotFound
}
