package store

import (
	"context"
	"sync"

	"github.com/gagliardetto/solana-go"

	"github.com/blockberries/vault/types"
)

// Compile-time interface check.
var _ AccountStore = (*Memory)(nil)

// Memory is an in-process AccountStore.
type Memory struct {
	mu       sync.RWMutex
	accounts map[solana.PublicKey]types.AccountInfo
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{accounts: make(map[solana.PublicKey]types.AccountInfo)}
}

func (m *Memory) Get(_ context.Context, key solana.PublicKey) (types.AccountInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	acc, ok := m.accounts[key]
	if !ok {
		return types.AccountInfo{}, ErrAccountNotFound.Wrapf("%s", key)
	}
	return acc.Clone(), nil
}

func (m *Memory) Put(_ context.Context, account types.AccountInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := account.Clone()
	stored.IsWritable = false
	m.accounts[account.Key] = stored
	return nil
}

func (m *Memory) CountOwned(_ context.Context, owner solana.PublicKey) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n uint64
	for _, acc := range m.accounts {
		if acc.Owner == owner {
			n++
		}
	}
	return n, nil
}

func (m *Memory) Close() error { return nil }
