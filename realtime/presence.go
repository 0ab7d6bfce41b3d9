package realtime

import (
	"context"
	"sync"

	"github.com/ovenworks/go-backoffice-auth/accounts"
)

// Entry is what the presence registry records per online account.
type Entry struct {
	Role   accounts.Role `json:"role"`
	ConnID string        `json:"connId"`
}

// PresenceStore tracks which accounts currently hold a realtime connection.
// The gateway is the only writer; everything else reads through List. A
// multi-instance deployment swaps in the Redis implementation so presence is
// shared instead of per-process.
type PresenceStore interface {
	Add(ctx context.Context, accountID string, entry Entry) error
	Remove(ctx context.Context, accountID string) error
	List(ctx context.Context) ([]string, error)
}

var _ PresenceStore = (*MemoryPresence)(nil)

// MemoryPresence is the process-local registry.
type MemoryPresence struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewMemoryPresence() *MemoryPresence {
	return &MemoryPresence{entries: make(map[string]Entry)}
}

func (p *MemoryPresence) Add(_ context.Context, accountID string, entry Entry) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries[accountID] = entry
	return nil
}

func (p *MemoryPresence) Remove(_ context.Context, accountID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.entries, accountID)
	return nil
}

func (p *MemoryPresence) List(_ context.Context) ([]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ids := make([]string, 0, len(p.entries))
	for id := range p.entries {
		ids = append(ids, id)
	}
	return ids, nil
}
