// Package local provides a zero-copy, in-process vault connection.
//
// For dispatchers compiled into the same binary as the processor, this
// adapter exposes the server.API surface with no serialization
// overhead.
package local

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"github.com/blockberries/vault/server"
)

// Compile-time interface check.
var _ server.API = (*Connection)(nil)

// Connection wraps a local Processor.
type Connection struct {
	proc *server.Processor
}

// NewConnection creates an in-process connection to proc.
func NewConnection(proc *server.Processor) *Connection {
	return &Connection{proc: proc}
}

func (c *Connection) InitializeVault(ctx context.Context, params server.InitializeVaultParams) (solana.PublicKey, error) {
	return c.proc.InitializeVault(ctx, params)
}

func (c *Connection) Deposit(ctx context.Context, addr solana.PublicKey, amount uint64) (server.DepositReceipt, error) {
	return c.proc.Deposit(ctx, addr, amount)
}

func (c *Connection) SetCapacity(ctx context.Context, addr, signer solana.PublicKey, capacity uint64) error {
	return c.proc.SetCapacity(ctx, addr, signer, capacity)
}

func (c *Connection) SetAdmin(ctx context.Context, addr, signer, admin solana.PublicKey) error {
	return c.proc.SetAdmin(ctx, addr, signer, admin)
}

func (c *Connection) SetDelegationAdmin(ctx context.Context, addr, signer, admin solana.PublicKey) error {
	return c.proc.SetDelegationAdmin(ctx, addr, signer, admin)
}

func (c *Connection) SetFeeOwner(ctx context.Context, addr, signer, owner solana.PublicKey) error {
	return c.proc.SetFeeOwner(ctx, addr, signer, owner)
}

func (c *Connection) GetVault(ctx context.Context, addr solana.PublicKey) (server.VaultView, error) {
	return c.proc.GetVault(ctx, addr)
}

func (c *Connection) Close() error { return nil }

// Processor returns the underlying processor for advanced use cases.
func (c *Connection) Processor() *server.Processor {
	return c.proc
}
