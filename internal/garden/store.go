package garden

import (
	"context"
	"slices"
	"sync"

	"github.com/zjrosen/bloom/internal/session"
)

// Store persists the oasis.
type Store interface {
	Load(ctx context.Context) (Oasis, error)
	AddElements(ctx context.Context, elements ...Element) error
	RecordSession(ctx context.Context, c session.Completion) error
}

// MemoryStore keeps the oasis in memory. It backs tests and runs where the
// garden database could not be opened.
type MemoryStore struct {
	mu    sync.Mutex
	oasis Oasis
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load implements Store.
func (m *MemoryStore) Load(context.Context) (Oasis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o := m.oasis
	o.Elements = slices.Clone(m.oasis.Elements)
	return o, nil
}

// AddElements implements Store.
func (m *MemoryStore) AddElements(_ context.Context, elements ...Element) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.oasis.Elements = append(m.oasis.Elements, elements...)
	return nil
}

// RecordSession implements Store.
func (m *MemoryStore) RecordSession(_ context.Context, c session.Completion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.oasis.TotalSessions++
	m.oasis.LastSessionAt = c.CompletedAt
	return nil
}
