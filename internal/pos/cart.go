// Package pos holds the transactional core of the terminal: the cart
// accumulator for the in-progress sale and the checkout recorder that turns
// a cart snapshot into an immutable transaction with reconciled stock.
package pos

import (
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"pos-terminal-service/internal/domain"
)

var (
	// ErrInvalidDiscount is returned for per-item discounts outside 0-100.
	ErrInvalidDiscount = errors.New("pos: discount must be between 0 and 100")
)

// TaxPolicy supplies the sales tax rate applied on top of the cart subtotal.
// The cart and the checkout recorder must share one policy so the tax a
// customer sees while the cart is building matches the tax recorded on the
// receipt.
type TaxPolicy interface {
	TaxRate() decimal.Decimal
}

// TaxPolicyFunc adapts a plain function to a TaxPolicy.
type TaxPolicyFunc func() decimal.Decimal

func (f TaxPolicyFunc) TaxRate() decimal.Decimal { return f() }

// Cart accumulates the line items of one in-progress sale. It is the single
// session-scoped mutable state of the terminal; totals are recomputed from
// the line items on every read.
//
// The cart does not check available stock: callers pre-check stock before
// adding, and the checkout commit re-validates every line anyway.
type Cart struct {
	mu     sync.Mutex
	items  []domain.CartItem
	policy TaxPolicy
}

// NewCart creates an empty cart using the given tax policy.
func NewCart(policy TaxPolicy) *Cart {
	return &Cart{policy: policy}
}

// Add puts quantity units of the product into the cart. If a line for this
// product already exists its quantity is incremented; otherwise a new line
// is appended holding a deep copy of the product. Quantities below one are
// treated as one.
func (c *Cart) Add(product domain.Product, quantity int) {
	if quantity < 1 {
		quantity = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].Product.ID == product.ID {
			c.items[i].Quantity += quantity
			return
		}
	}
	c.items = append(c.items, domain.CartItem{Product: product.Clone(), Quantity: quantity})
}

// Remove deletes the line item for the product; no-op when absent.
func (c *Cart) Remove(productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(productID)
}

func (c *Cart) removeLocked(productID string) {
	for i := range c.items {
		if c.items[i].Product.ID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// SetQuantity overwrites the quantity for the product's line item. A
// quantity of zero or less removes the line.
func (c *Cart) SetQuantity(productID string, quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if quantity <= 0 {
		c.removeLocked(productID)
		return
	}
	for i := range c.items {
		if c.items[i].Product.ID == productID {
			c.items[i].Quantity = quantity
			return
		}
	}
}

// SetItemDiscount sets the per-item discount percentage (0-100) for the
// product's line item; no-op when the line is absent.
func (c *Cart) SetItemDiscount(productID string, pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
		return ErrInvalidDiscount
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].Product.ID == productID {
			c.items[i].DiscountPct = pct
			return nil
		}
	}
	return nil
}

// Clear empties the cart. Called after a successful checkout.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}

// Items returns a deep-copied snapshot of the current line items.
func (c *Cart) Items() []domain.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := make([]domain.CartItem, len(c.items))
	for i, item := range c.items {
		items[i] = item.Clone()
	}
	return items
}

// TotalItems sums the quantities across all line items.
func (c *Cart) TotalItems() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := 0
	for _, item := range c.items {
		total += item.Quantity
	}
	return total
}

// Subtotal sums price * quantity * (1 - discount/100) over the line items.
func (c *Cart) Subtotal() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return subtotalOf(c.items)
}

// Total is the subtotal plus tax at the policy's current rate.
func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()

	subtotal := subtotalOf(c.items)
	return subtotal.Add(subtotal.Mul(c.policy.TaxRate()))
}

func subtotalOf(items []domain.CartItem) decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	return subtotal
}
