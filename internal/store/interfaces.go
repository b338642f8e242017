package store

import (
	"context"

	"github.com/shopspring/decimal"

	"pos-terminal-service/internal/domain"
)

// Actor identifies the user a mutation is attributed to in the audit log.
type Actor struct {
	ID   string
	Name string
}

// NewProduct holds the caller-supplied fields for product creation. The
// store assigns the ID and timestamps.
type NewProduct struct {
	Name        string
	SKU         string
	Price       decimal.Decimal
	Cost        decimal.Decimal
	Stock       int
	Category    string
	Barcode     *string
	Description *string
	ImageURL    *string
}

// ProductUpdate holds a partial product update; nil fields are left
// untouched. Stock is deliberately absent: stock changes go through
// AdjustStock (or a sale commit) so every change lands in the audit log.
type ProductUpdate struct {
	Name        *string
	SKU         *string
	Price       *decimal.Decimal
	Cost        *decimal.Decimal
	Category    *string
	Barcode     *string
	Description *string
	ImageURL    *string
}

// UserUpdate holds a partial user update; nil fields are left untouched.
type UserUpdate struct {
	Username *string
	Email    *string
	Role     *domain.Role
}

// CatalogStorer defines the store operations for products and categories.
type CatalogStorer interface {
	AddProduct(ctx context.Context, input NewProduct, actor Actor) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, updates ProductUpdate) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProductsByCategory(ctx context.Context, category string) ([]domain.Product, error)
	SearchProducts(ctx context.Context, query string) ([]domain.Product, error)

	// AdjustStock is the only sanctioned way to change stock outside of a
	// sale. It applies the given operation (stock_in adds, stock_out
	// subtracts, adjustment sets the absolute level) and writes the paired
	// audit-log entry under the same lock, so a stock change without an
	// audit trail cannot happen.
	AdjustStock(ctx context.Context, productID string, op domain.InventoryLogType, quantity int, reason string, actor Actor) (*domain.Product, error)

	AddCategory(ctx context.Context, name string, description *string) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

// TransactionStorer defines the store operations for completed sales.
type TransactionStorer interface {
	// CommitSale applies a completed sale as a single all-or-nothing step:
	// every line item's projected stock is validated first, and only if all
	// pass are the decrements, sale log entries, and history append applied.
	// On failure nothing is changed.
	CommitSale(ctx context.Context, tx *domain.Transaction) error
	GetTransactions(ctx context.Context, limit int) ([]domain.Transaction, error)
	GetTransactionByID(ctx context.Context, id string) (*domain.Transaction, error)
}

// InventoryStorer defines the append-only stock audit ledger. Append is
// infallible by design: all business-rule validation happens in the callers
// before an entry is constructed.
type InventoryStorer interface {
	AppendLog(ctx context.Context, entry domain.InventoryLog) domain.InventoryLog
	GetInventoryLogs(ctx context.Context, productID string) []domain.InventoryLog
}

// UserStorer defines the store operations for operator accounts.
type UserStorer interface {
	AddUser(ctx context.Context, user domain.User) (*domain.User, error)
	UpdateUser(ctx context.Context, id string, updates UserUpdate) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) error
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	SetPassword(ctx context.Context, id string, hash []byte) error
}

// SettingsStorer defines access to the store-wide settings.
type SettingsStorer interface {
	GetSettings(ctx context.Context) (domain.Settings, error)
	UpdateSettings(ctx context.Context, s domain.Settings) (domain.Settings, error)
}
