// Package store persists raw ledger accounts for the host-side
// dispatcher. The vault core never talks to a store directly; the
// dispatcher reads an account, hands it to the core, and writes the
// saved bytes back.
package store

import (
	"context"

	errorsmod "cosmossdk.io/errors"
	"github.com/gagliardetto/solana-go"

	"github.com/blockberries/vault/types"
)

// Codespace is the error namespace of the store package.
const Codespace = "store"

var (
	ErrAccountNotFound = errorsmod.Register(Codespace, 1200, "account not found")
	ErrStore           = errorsmod.Register(Codespace, 1201, "store failure")
)

// AccountStore reads and writes accounts by address.
//
// Implementations must be safe for concurrent use. Returned accounts
// are copies; mutating them does not affect the store until Put.
// Writability is a per-transaction flag and is not persisted: Get
// always returns IsWritable false.
type AccountStore interface {
	// Get returns the account at key or ErrAccountNotFound.
	Get(ctx context.Context, key solana.PublicKey) (types.AccountInfo, error)

	// Put creates or replaces the account at account.Key.
	Put(ctx context.Context, account types.AccountInfo) error

	// CountOwned returns the number of accounts owned by owner.
	CountOwned(ctx context.Context, owner solana.PublicKey) (uint64, error)

	// Close releases the store's resources.
	Close() error
}
