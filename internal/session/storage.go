package session

import (
	"context"
	"sync"
)

// TokenStorage is the durable key-value surface holding the current token.
//
// It holds exactly one entry. Load returns "" with a nil error when nothing is
// stored; absence means logged out. Clear must be idempotent.
type TokenStorage interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// MemoryStorage keeps the token in process memory. It does not survive a
// restart and is meant for embedding and tests.
type MemoryStorage struct {
	mu    sync.Mutex
	token string
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Load returns the stored token.
func (m *MemoryStorage) Load(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

// Save replaces the stored token.
func (m *MemoryStorage) Save(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

// Clear removes the stored token.
func (m *MemoryStorage) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
