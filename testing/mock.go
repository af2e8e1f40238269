package vaulttest

import (
	"context"
	"sync/atomic"

	"github.com/gagliardetto/solana-go"

	"github.com/blockberries/vault/store"
	"github.com/blockberries/vault/types"
)

// Compile-time interface check.
var _ store.AccountStore = (*MockStore)(nil)

// MockStore is a configurable AccountStore for dispatcher testing.
// Unconfigured methods delegate to an in-memory store, so a zero
// MockStore behaves like store.NewMemory.
type MockStore struct {
	GetFn        func(context.Context, solana.PublicKey) (types.AccountInfo, error)
	PutFn        func(context.Context, types.AccountInfo) error
	CountOwnedFn func(context.Context, solana.PublicKey) (uint64, error)

	// Call counters (atomic for concurrent access).
	GetCalls        atomic.Int64
	PutCalls        atomic.Int64
	CountOwnedCalls atomic.Int64

	backing atomic.Pointer[store.Memory]
}

func (m *MockStore) memory() *store.Memory {
	if mem := m.backing.Load(); mem != nil {
		return mem
	}
	m.backing.CompareAndSwap(nil, store.NewMemory())
	return m.backing.Load()
}

func (m *MockStore) Get(ctx context.Context, key solana.PublicKey) (types.AccountInfo, error) {
	m.GetCalls.Add(1)
	if m.GetFn != nil {
		return m.GetFn(ctx, key)
	}
	return m.memory().Get(ctx, key)
}

func (m *MockStore) Put(ctx context.Context, account types.AccountInfo) error {
	m.PutCalls.Add(1)
	if m.PutFn != nil {
		return m.PutFn(ctx, account)
	}
	return m.memory().Put(ctx, account)
}

func (m *MockStore) CountOwned(ctx context.Context, owner solana.PublicKey) (uint64, error) {
	m.CountOwnedCalls.Add(1)
	if m.CountOwnedFn != nil {
		return m.CountOwnedFn(ctx, owner)
	}
	return m.memory().CountOwned(ctx, owner)
}

func (m *MockStore) Close() error { return nil }
