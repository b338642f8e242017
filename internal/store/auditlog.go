package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"pos-terminal-service/internal/domain"
)

// AuditLog is the append-only ledger of stock mutations. It carries its own
// lock so callers holding the MemoryStore lock can append without ordering
// concerns; entries are never updated or deleted.
type AuditLog struct {
	mu      sync.RWMutex
	entries []domain.InventoryLog
}

// NewAuditLog creates an empty ledger.
func NewAuditLog() *AuditLog {
	return &AuditLog{}
}

// AppendLog assigns the entry an ID and timestamp and prepends it, keeping
// the ledger most-recent-first. It performs no validation: business rules
// are enforced by the callers before an entry is constructed.
func (l *AuditLog) AppendLog(ctx context.Context, entry domain.InventoryLog) domain.InventoryLog {
	entry.ID = newID()
	entry.CreatedAt = time.Now().UTC()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append([]domain.InventoryLog{entry}, l.entries...)
	return entry
}

// GetInventoryLogs returns all entries in log order, optionally filtered by
// product ID (empty string means no filter).
func (l *AuditLog) GetInventoryLogs(ctx context.Context, productID string) []domain.InventoryLog {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if productID == "" {
		entries := make([]domain.InventoryLog, len(l.entries))
		copy(entries, l.entries)
		return entries
	}
	entries := make([]domain.InventoryLog, 0)
	for _, e := range l.entries {
		if e.ProductID == productID {
			entries = append(entries, e)
		}
	}
	return entries
}

func newID() string {
	return uuid.NewString()
}
