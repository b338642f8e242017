package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"pos-terminal-service/internal/domain"
)

// Predefined errors for store operations
var (
	ErrProductNotFound     = errors.New("store: product not found")
	ErrProductSKUExists    = errors.New("store: product SKU already exists")
	ErrCategoryNameExists  = errors.New("store: category name already exists")
	ErrInsufficientStock   = errors.New("store: insufficient stock")
	ErrInvalidStockOp      = errors.New("store: invalid stock operation type")
	ErrTransactionNotFound = errors.New("store: transaction not found")
	ErrUserNotFound        = errors.New("store: user not found")
	ErrUsernameExists      = errors.New("store: username already exists")
)

// MemoryStore implements CatalogStorer, TransactionStorer, UserStorer, and
// SettingsStorer over in-process collections. All state lives in memory for
// the lifetime of the process; there is no durable backend.
//
// A single RWMutex guards every collection. That keeps the sale commit
// trivially atomic: validation and application of a multi-item checkout
// happen under one critical section, so concurrent requests can never
// observe or cause a partially applied sale.
type MemoryStore struct {
	mu           sync.RWMutex
	audit        *AuditLog
	products     []domain.Product
	categories   []domain.Category
	transactions []domain.Transaction
	users        []domain.User
	settings     domain.Settings
}

// NewMemoryStore creates an empty MemoryStore writing audit entries to the
// given ledger. Settings start at the stock defaults; callers overwrite them
// via UpdateSettings during startup.
func NewMemoryStore(audit *AuditLog) *MemoryStore {
	return &MemoryStore{
		audit: audit,
		settings: domain.Settings{
			StoreName:         "My POS Store",
			TaxRate:           decimal.NewFromFloat(0.10),
			Currency:          "USD",
			ReceiptHeader:     "Thank you for shopping with us!",
			ReceiptFooter:     "Please come again!",
			LowStockThreshold: 10,
		},
	}
}

// Seed loads the demo catalog, categories, and operator accounts. The
// supplied password is bcrypt-hashed once and shared by all seeded users.
// Seeded products do not generate stock_in entries; the audit trail starts
// with the first real mutation.
func (s *MemoryStore) Seed(ctx context.Context, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	s.categories = []domain.Category{
		{ID: newID(), Name: "Beverages", CreatedAt: now},
		{ID: newID(), Name: "Food", CreatedAt: now},
		{ID: newID(), Name: "Snacks", CreatedAt: now},
		{ID: newID(), Name: "Electronics", CreatedAt: now},
	}
	s.products = []domain.Product{
		{
			ID: newID(), Name: "Coca Cola", SKU: "BEV001",
			Price: decimal.NewFromFloat(2.50), Cost: decimal.NewFromFloat(1.50),
			Stock: 100, Category: "Beverages",
			Barcode: ptrTo("1234567890123"), Description: ptrTo("Coca Cola 330ml can"),
			CreatedAt: now, UpdatedAt: now,
		},
		{
			ID: newID(), Name: "Sandwich", SKU: "FOOD001",
			Price: decimal.NewFromFloat(5.00), Cost: decimal.NewFromFloat(2.50),
			Stock: 50, Category: "Food",
			Barcode: ptrTo("1234567890124"), Description: ptrTo("Ham and cheese sandwich"),
			CreatedAt: now, UpdatedAt: now,
		},
		{
			ID: newID(), Name: "Chips", SKU: "SNACK001",
			Price: decimal.NewFromFloat(1.50), Cost: decimal.NewFromFloat(0.75),
			Stock: 200, Category: "Snacks",
			Barcode: ptrTo("1234567890125"), Description: ptrTo("Potato chips 50g"),
			CreatedAt: now, UpdatedAt: now,
		},
	}
	s.users = []domain.User{
		{ID: newID(), Username: "admin", Email: "admin@pos.com", Role: domain.RoleAdmin, PasswordHash: hash, CreatedAt: now},
		{ID: newID(), Username: "cashier1", Email: "cashier1@pos.com", Role: domain.RoleCashier, PasswordHash: hash, CreatedAt: now},
		{ID: newID(), Username: "manager1", Email: "manager1@pos.com", Role: domain.RoleManager, PasswordHash: hash, CreatedAt: now},
	}
	return nil
}

func (s *MemoryStore) findProductLocked(id string) int {
	for i := range s.products {
		if s.products[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *MemoryStore) findUserLocked(id string) int {
	for i := range s.users {
		if s.users[i].ID == id {
			return i
		}
	}
	return -1
}

func ptrTo[T any](v T) *T {
	return &v
}
