package server

import (
	"context"

	errorsmod "cosmossdk.io/errors"
	"github.com/gagliardetto/solana-go"

	"github.com/blockberries/vault"
)

// Codespace is the error namespace of the dispatcher.
const Codespace = "server"

var (
	ErrVaultExists  = errorsmod.Register(Codespace, 1300, "vault already exists")
	ErrUnauthorized = errorsmod.Register(Codespace, 1301, "signer is not the vault admin")
)

// API is the dispatcher surface. Processor implements it in process;
// the grpc package exposes it remotely.
type API interface {
	// InitializeVault provisions a new vault at the address derived
	// from params.Base and returns that address.
	InitializeVault(ctx context.Context, params InitializeVaultParams) (solana.PublicKey, error)

	// Deposit records a deposit into the vault at addr and reports how
	// many receipt tokens it is worth.
	Deposit(ctx context.Context, addr solana.PublicKey, amount uint64) (DepositReceipt, error)

	// SetCapacity, SetAdmin, SetDelegationAdmin and SetFeeOwner
	// require signer to be the current admin.
	SetCapacity(ctx context.Context, addr, signer solana.PublicKey, capacity uint64) error
	SetAdmin(ctx context.Context, addr, signer, admin solana.PublicKey) error
	SetDelegationAdmin(ctx context.Context, addr, signer, admin solana.PublicKey) error
	SetFeeOwner(ctx context.Context, addr, signer, owner solana.PublicKey) error

	// GetVault reads the vault at addr.
	GetVault(ctx context.Context, addr solana.PublicKey) (VaultView, error)

	Close() error
}

// InitializeVaultParams describes a vault to provision.
type InitializeVaultParams struct {
	Base             solana.PublicKey
	ReceiptMint      solana.PublicKey
	SupportedMint    solana.PublicKey
	Admin            solana.PublicKey
	DepositFeeBps    uint16
	WithdrawalFeeBps uint16
}

// DepositReceipt is the outcome of a deposit. Minted receipt tokens
// are split between the depositor and the fee owner.
type DepositReceipt struct {
	Minted      uint64
	Fee         uint64
	ToDepositor uint64
}

// VaultView is a read-only snapshot of a vault and its address.
type VaultView struct {
	Address           solana.PublicKey
	Base              solana.PublicKey
	ReceiptMint       solana.PublicKey
	SupportedMint     solana.PublicKey
	Admin             solana.PublicKey
	DelegationAdmin   solana.PublicKey
	FeeOwner          solana.PublicKey
	MintBurnAuthority *solana.PublicKey
	Capacity          uint64
	VaultIndex        uint64
	ReceiptSupply     uint64
	TokensDeposited   uint64
	DepositFeeBps     uint16
	WithdrawalFeeBps  uint16
	Bump              uint8
}

// ViewOf snapshots v stored at addr.
func ViewOf(addr solana.PublicKey, v *vault.Vault) VaultView {
	return VaultView{
		Address:           addr,
		Base:              v.Base(),
		ReceiptMint:       v.ReceiptMint(),
		SupportedMint:     v.SupportedMint(),
		Admin:             v.Admin(),
		DelegationAdmin:   v.DelegationAdmin(),
		FeeOwner:          v.FeeOwner(),
		MintBurnAuthority: v.MintBurnAuthority(),
		Capacity:          v.Capacity(),
		VaultIndex:        v.VaultIndex(),
		ReceiptSupply:     v.ReceiptSupply(),
		TokensDeposited:   v.TokensDeposited(),
		DepositFeeBps:     v.DepositFeeBps(),
		WithdrawalFeeBps:  v.WithdrawalFeeBps(),
		Bump:              v.Bump(),
	}
}
