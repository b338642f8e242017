package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod enumerates the supported tender types.
type PaymentMethod string

const (
	PaymentCash    PaymentMethod = "cash"
	PaymentCard    PaymentMethod = "card"
	PaymentDigital PaymentMethod = "digital"
)

// TransactionStatus enumerates the lifecycle states of a recorded sale.
// Only "completed" is ever produced by checkout; refunded and cancelled are
// reserved values with no transition logic.
type TransactionStatus string

const (
	StatusCompleted TransactionStatus = "completed"
	StatusRefunded  TransactionStatus = "refunded"
	StatusCancelled TransactionStatus = "cancelled"
)

// InventoryLogType enumerates the kinds of stock mutations the audit log
// records.
type InventoryLogType string

const (
	LogStockIn    InventoryLogType = "stock_in"
	LogStockOut   InventoryLogType = "stock_out"
	LogAdjustment InventoryLogType = "adjustment"
	LogSale       InventoryLogType = "sale"
)

// CartItem is one line of an in-progress sale: a snapshot of the product at
// the time it was added, a quantity, and an optional per-item discount
// percentage (0-100).
type CartItem struct {
	Product     Product         `json:"product"`
	Quantity    int             `json:"quantity"`
	DiscountPct decimal.Decimal `json:"discount"`
}

// LineTotal computes price * quantity * (1 - discount/100).
func (i CartItem) LineTotal() decimal.Decimal {
	gross := i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
	if i.DiscountPct.IsZero() {
		return gross
	}
	return gross.Sub(gross.Mul(i.DiscountPct).Div(decimal.NewFromInt(100)))
}

// Clone returns a deep copy of the line item, including its product
// snapshot. Transactions store clones so a receipt can never be altered by
// later catalog edits or deletions.
func (i CartItem) Clone() CartItem {
	c := i
	c.Product = i.Product.Clone()
	return c
}

// Transaction is an immutable record of one completed sale.
type Transaction struct {
	ID            string            `json:"id"`
	Items         []CartItem        `json:"items"`
	Subtotal      decimal.Decimal   `json:"subtotal"`
	Tax           decimal.Decimal   `json:"tax"`
	Discount      decimal.Decimal   `json:"discount"` // Order-level discount, an absolute amount
	Total         decimal.Decimal   `json:"total"`
	PaymentMethod PaymentMethod     `json:"payment_method"`
	CashierID     string            `json:"cashier_id"`
	CashierName   string            `json:"cashier_name"`
	CreatedAt     time.Time         `json:"created_at"`
	Status        TransactionStatus `json:"status"`
}

// Clone returns a deep copy of the transaction, duplicating the line items
// and their product snapshots. Stores hand out clones so a caller mutating a
// returned receipt cannot alter recorded history.
func (t Transaction) Clone() Transaction {
	c := t
	c.Items = make([]CartItem, len(t.Items))
	for i, item := range t.Items {
		c.Items[i] = item.Clone()
	}
	return c
}

// TotalQuantity sums the quantities across all line items.
func (t Transaction) TotalQuantity() int {
	total := 0
	for _, item := range t.Items {
		total += item.Quantity
	}
	return total
}

// InventoryLog is one append-only audit entry for a stock mutation.
// Quantity is always the magnitude of the change; PreviousStock and NewStock
// carry the before/after values.
type InventoryLog struct {
	ID            string           `json:"id"`
	ProductID     string           `json:"product_id"`
	ProductName   string           `json:"product_name"` // Denormalized at write time; survives product deletion
	Type          InventoryLogType `json:"type"`
	Quantity      int              `json:"quantity"`
	PreviousStock int              `json:"previous_stock"`
	NewStock      int              `json:"new_stock"`
	Reason        *string          `json:"reason,omitempty"`
	UserID        string           `json:"user_id"`
	UserName      string           `json:"user_name"`
	CreatedAt     time.Time        `json:"created_at"`
}
