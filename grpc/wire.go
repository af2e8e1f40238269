package vaultgrpc

import (
	errorsmod "cosmossdk.io/errors"
	"github.com/gagliardetto/solana-go"

	"github.com/blockberries/vault/server"
	"github.com/blockberries/vault/types"
)

// Transport-specific message types. These are used only at the gRPC
// serialization boundary; callers work with server.API.

// Key is a 32-byte ledger key on the wire.
type Key [32]byte

func keyOf(k solana.PublicKey) Key { return Key(k) }
func (k Key) PublicKey() solana.PublicKey { return solana.PublicKey(k) }

// Status carries a failed call's registered error. The zero value
// means success.
type Status struct {
	Codespace string `cramberry:"1"`
	Code      uint32 `cramberry:"2"`
	Log       string `cramberry:"3"`
}

// statusOf encodes err for the wire.
func statusOf(err error) Status {
	if err == nil {
		return Status{}
	}
	codespace, code, log := errorsmod.ABCIInfo(err, false)
	return Status{Codespace: codespace, Code: code, Log: log}
}

// Err rebuilds the error carried by s, or nil. Registered errors
// compare equal under errors.Is.
func (s Status) Err() error {
	if s.Code == 0 {
		return nil
	}
	return errorsmod.ABCIError(s.Codespace, s.Code, s.Log)
}

// AuthorityKind selects the authority changed by SetAuthority.
type AuthorityKind uint8

const (
	AuthorityAdmin AuthorityKind = iota + 1
	AuthorityDelegationAdmin
	AuthorityFeeOwner
)

// InitializeVaultRequest wraps server.InitializeVaultParams.
type InitializeVaultRequest struct {
	Base             Key    `cramberry:"1"`
	ReceiptMint      Key    `cramberry:"2"`
	SupportedMint    Key    `cramberry:"3"`
	Admin            Key    `cramberry:"4"`
	DepositFeeBps    uint32 `cramberry:"5"`
	WithdrawalFeeBps uint32 `cramberry:"6"`
}

// InitializeVaultResponse returns the new vault's address.
type InitializeVaultResponse struct {
	Status  Status `cramberry:"1"`
	Address Key    `cramberry:"2"`
}

// DepositRequest wraps the parameters of API.Deposit.
type DepositRequest struct {
	Vault  Key    `cramberry:"1"`
	Amount uint64 `cramberry:"2"`
}

// DepositResponse wraps server.DepositReceipt.
type DepositResponse struct {
	Status      Status `cramberry:"1"`
	Minted      uint64 `cramberry:"2"`
	Fee         uint64 `cramberry:"3"`
	ToDepositor uint64 `cramberry:"4"`
}

// SetCapacityRequest wraps the parameters of API.SetCapacity.
type SetCapacityRequest struct {
	Vault    Key    `cramberry:"1"`
	Signer   Key    `cramberry:"2"`
	Capacity uint64 `cramberry:"3"`
}

// SetAuthorityRequest carries API.SetAdmin, SetDelegationAdmin and
// SetFeeOwner.
type SetAuthorityRequest struct {
	Vault     Key           `cramberry:"1"`
	Signer    Key           `cramberry:"2"`
	Kind      AuthorityKind `cramberry:"3"`
	Authority Key           `cramberry:"4"`
}

// AckResponse is the reply of calls that return only an error.
type AckResponse struct {
	Status Status `cramberry:"1"`
}

// GetVaultRequest wraps the parameter of API.GetVault.
type GetVaultRequest struct {
	Vault Key `cramberry:"1"`
}

// GetVaultResponse wraps server.VaultView.
type GetVaultResponse struct {
	Status Status       `cramberry:"1"`
	Vault  VaultMessage `cramberry:"2"`
}

// VaultMessage is server.VaultView on the wire.
type VaultMessage struct {
	Address           Key    `cramberry:"1"`
	Base              Key    `cramberry:"2"`
	ReceiptMint       Key    `cramberry:"3"`
	SupportedMint     Key    `cramberry:"4"`
	Admin             Key    `cramberry:"5"`
	DelegationAdmin   Key    `cramberry:"6"`
	FeeOwner          Key    `cramberry:"7"`
	MintBurnAuthority *Key   `cramberry:"8"`
	Capacity          uint64 `cramberry:"9"`
	VaultIndex        uint64 `cramberry:"10"`
	ReceiptSupply     uint64 `cramberry:"11"`
	TokensDeposited   uint64 `cramberry:"12"`
	DepositFeeBps     uint32 `cramberry:"13"`
	WithdrawalFeeBps  uint32 `cramberry:"14"`
	Bump              uint32 `cramberry:"15"`
}

func vaultMessageOf(v server.VaultView) VaultMessage {
	m := VaultMessage{
		Address:          keyOf(v.Address),
		Base:             keyOf(v.Base),
		ReceiptMint:      keyOf(v.ReceiptMint),
		SupportedMint:    keyOf(v.SupportedMint),
		Admin:            keyOf(v.Admin),
		DelegationAdmin:  keyOf(v.DelegationAdmin),
		FeeOwner:         keyOf(v.FeeOwner),
		Capacity:         v.Capacity,
		VaultIndex:       v.VaultIndex,
		ReceiptSupply:    v.ReceiptSupply,
		TokensDeposited:  v.TokensDeposited,
		DepositFeeBps:    uint32(v.DepositFeeBps),
		WithdrawalFeeBps: uint32(v.WithdrawalFeeBps),
		Bump:             uint32(v.Bump),
	}
	if v.MintBurnAuthority != nil {
		k := keyOf(*v.MintBurnAuthority)
		m.MintBurnAuthority = &k
	}
	return m
}

func (m VaultMessage) view() server.VaultView {
	v := server.VaultView{
		Address:          m.Address.PublicKey(),
		Base:             m.Base.PublicKey(),
		ReceiptMint:      m.ReceiptMint.PublicKey(),
		SupportedMint:    m.SupportedMint.PublicKey(),
		Admin:            m.Admin.PublicKey(),
		DelegationAdmin:  m.DelegationAdmin.PublicKey(),
		FeeOwner:         m.FeeOwner.PublicKey(),
		Capacity:         m.Capacity,
		VaultIndex:       m.VaultIndex,
		ReceiptSupply:    m.ReceiptSupply,
		TokensDeposited:  m.TokensDeposited,
		DepositFeeBps:    uint16(m.DepositFeeBps),
		WithdrawalFeeBps: uint16(m.WithdrawalFeeBps),
		Bump:             uint8(m.Bump),
	}
	if m.MintBurnAuthority != nil {
		v.MintBurnAuthority = types.OptionalKey(m.MintBurnAuthority.PublicKey())
	}
	return v
}
