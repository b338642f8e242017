package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role enumerates the flat set of operator roles. Roles form an unordered
// set with no hierarchy: admin does not implicitly satisfy a manager check,
// every route lists every permitted role explicitly.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleCashier Role = "cashier"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleCashier:
		return true
	}
	return false
}

// User is a terminal operator account.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Settings holds the store-wide configuration edited on the settings page.
// TaxRate is the fraction applied on top of the cart subtotal (0.10 = 10%).
type Settings struct {
	StoreName         string          `json:"store_name"`
	Address           string          `json:"address"`
	Phone             string          `json:"phone"`
	Email             string          `json:"email"`
	TaxRate           decimal.Decimal `json:"tax_rate"`
	Currency          string          `json:"currency"`
	ReceiptHeader     string          `json:"receipt_header"`
	ReceiptFooter     string          `json:"receipt_footer"`
	LowStockThreshold int             `json:"low_stock_threshold"`
}
