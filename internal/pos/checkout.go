package pos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pos-terminal-service/internal/domain"
	"pos-terminal-service/internal/store"
)

var (
	ErrEmptyCart        = errors.New("pos: cart is empty")
	ErrInsufficientCash = errors.New("pos: insufficient cash received")
)

// Recorder turns a finalized cart snapshot into an immutable transaction and
// reconciles product stock. It is the only writer of transactions and the
// only path that decrements stock as a consequence of a sale.
type Recorder struct {
	transactions store.TransactionStorer
	policy       TaxPolicy
}

// NewRecorder creates a Recorder committing sales to the given store. The
// policy must be the same one the cart uses so tax stays consistent between
// the running total and the recorded receipt.
func NewRecorder(transactions store.TransactionStorer, policy TaxPolicy) *Recorder {
	return &Recorder{transactions: transactions, policy: policy}
}

// CheckoutRequest carries everything needed to finalize one sale.
type CheckoutRequest struct {
	Items         []domain.CartItem
	PaymentMethod domain.PaymentMethod
	CashierID     string
	CashierName   string
	OrderDiscount decimal.Decimal // Absolute amount subtracted from the taxed total
	CashReceived  decimal.Decimal // Only meaningful for cash payments
}

// CheckoutResult is the recorded transaction plus the change due to the
// customer (zero for non-cash payments).
type CheckoutResult struct {
	Transaction domain.Transaction
	ChangeDue   decimal.Decimal
}

// Checkout validates the request, builds the immutable transaction, and
// commits it together with the per-item stock decrements and sale audit
// entries as one all-or-nothing step.
//
// Validation failures (empty cart, insufficient cash, insufficient stock)
// leave the stores untouched and are safe to retry. The caller clears the
// cart after a successful checkout.
func (r *Recorder) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}

	subtotal := subtotalOf(req.Items)
	tax := subtotal.Mul(r.policy.TaxRate())
	total := subtotal.Add(tax).Sub(req.OrderDiscount)

	if req.PaymentMethod == domain.PaymentCash && req.CashReceived.LessThan(total) {
		return nil, ErrInsufficientCash
	}

	// Deep-copy the line items so the receipt is immune to later catalog
	// edits or deletions.
	items := make([]domain.CartItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = item.Clone()
	}

	tx := domain.Transaction{
		ID:            uuid.NewString(),
		Items:         items,
		Subtotal:      subtotal,
		Tax:           tax,
		Discount:      req.OrderDiscount,
		Total:         total,
		PaymentMethod: req.PaymentMethod,
		CashierID:     req.CashierID,
		CashierName:   req.CashierName,
		CreatedAt:     time.Now().UTC(),
		Status:        domain.StatusCompleted,
	}

	if err := r.transactions.CommitSale(ctx, &tx); err != nil {
		return nil, fmt.Errorf("pos: checkout commit failed: %w", err)
	}

	change := decimal.Zero
	if req.PaymentMethod == domain.PaymentCash && req.CashReceived.GreaterThan(total) {
		change = req.CashReceived.Sub(total)
	}
	return &CheckoutResult{Transaction: tx, ChangeDue: change}, nil
}
