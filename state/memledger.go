package state

import (
	"context"
	"sync"
)

// MemLedger is an in-memory ledger context.
//
// It is the backing store of the daemon and the test double for handler
// tests. SetState copies values and applies the whole batch under one lock,
// so a batch is never observed half-applied.
type MemLedger struct {
	mu    sync.RWMutex
	store map[string][]byte
}

// NewMemLedger returns an empty in-memory ledger.
func NewMemLedger() *MemLedger {
	return &MemLedger{store: make(map[string][]byte)}
}

func (m *MemLedger) GetState(ctx context.Context, addresses []string) (map[string][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string][]byte, len(addresses))
	for _, addr := range addresses {
		b := m.store[addr]
		cp := make([]byte, len(b))
		copy(cp, b)
		out[addr] = cp
	}
	return out, nil
}

func (m *MemLedger) SetState(ctx context.Context, updates map[string][]byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for addr, b := range updates {
		cp := make([]byte, len(b))
		copy(cp, b)
		m.store[addr] = cp
	}
	return nil
}

// Snapshot returns a copy of every non-empty record, keyed by address.
func (m *MemLedger) Snapshot() map[string][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string][]byte, len(m.store))
	for addr, b := range m.store {
		if len(b) == 0 {
			continue
		}
		cp := make([]byte, len(b))
		copy(cp, b)
		out[addr] = cp
	}
	return out
}
