package vault

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/blockberries/vault/types"
)

// LayoutSize is the encoded size of a vault in bytes. It does not
// depend on field values.
const LayoutSize = 1 + // account_type
	32*7 + // base .. mint_burn_authority
	8*4 + // capacity, vault_index, receipt_supply, tokens_deposited
	2*2 + // deposit_fee_bps, withdrawal_fee_bps
	ReservedSize +
	1 // bump

// vaultLayout is the on-ledger borsh layout. Field order is the wire
// order; do not reorder.
type vaultLayout struct {
	AccountType       uint8
	Base              [32]byte
	ReceiptMint       [32]byte
	SupportedMint     [32]byte
	Admin             [32]byte
	DelegationAdmin   [32]byte
	FeeOwner          [32]byte
	MintBurnAuthority [32]byte // zero = absent
	Capacity          uint64
	VaultIndex        uint64
	ReceiptSupply     uint64
	TokensDeposited   uint64
	DepositFeeBps     uint16
	WithdrawalFeeBps  uint16
	Reserved          [ReservedSize]byte
	Bump              uint8
}

func (v *Vault) layout() vaultLayout {
	return vaultLayout{
		AccountType:       uint8(v.accountType),
		Base:              v.base,
		ReceiptMint:       v.receiptMint,
		SupportedMint:     v.supportedMint,
		Admin:             v.admin,
		DelegationAdmin:   v.delegationAdmin,
		FeeOwner:          v.feeOwner,
		MintBurnAuthority: types.KeyOrZero(v.mintBurnAuthority),
		Capacity:          v.capacity,
		VaultIndex:        v.vaultIndex,
		ReceiptSupply:     v.receiptSupply,
		TokensDeposited:   v.tokensDeposited,
		DepositFeeBps:     v.depositFeeBps,
		WithdrawalFeeBps:  v.withdrawalFeeBps,
		Reserved:          v.reserved,
		Bump:              v.bump,
	}
}

func (l *vaultLayout) vault() Vault {
	return Vault{
		accountType:       types.AccountType(l.AccountType),
		base:              solana.PublicKey(l.Base),
		receiptMint:       solana.PublicKey(l.ReceiptMint),
		supportedMint:     solana.PublicKey(l.SupportedMint),
		admin:             solana.PublicKey(l.Admin),
		delegationAdmin:   solana.PublicKey(l.DelegationAdmin),
		feeOwner:          solana.PublicKey(l.FeeOwner),
		mintBurnAuthority: types.OptionalKey(solana.PublicKey(l.MintBurnAuthority)),
		capacity:          l.Capacity,
		vaultIndex:        l.VaultIndex,
		receiptSupply:     l.ReceiptSupply,
		tokensDeposited:   l.TokensDeposited,
		depositFeeBps:     l.DepositFeeBps,
		withdrawalFeeBps:  l.WithdrawalFeeBps,
		reserved:          l.Reserved,
		bump:              l.Bump,
	}
}

// Encode returns the fixed-size binary encoding of v.
func (v *Vault) Encode() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, LayoutSize))
	l := v.layout()
	if err := bin.NewBorshEncoder(buf).Encode(&l); err != nil {
		return nil, ErrMalformedEncoding.Wrapf("encode: %v", err)
	}
	if buf.Len() != LayoutSize {
		return nil, ErrMalformedEncoding.Wrapf("encoded %d bytes, want %d", buf.Len(), LayoutSize)
	}
	return buf.Bytes(), nil
}

// EncodeInto writes the encoding of v over the first LayoutSize bytes of
// dst. Bytes past LayoutSize are left as they are.
func (v *Vault) EncodeInto(dst []byte) error {
	if len(dst) < LayoutSize {
		return ErrAccountDataTooSmall.Wrapf("%d < %d", len(dst), LayoutSize)
	}
	data, err := v.Encode()
	if err != nil {
		return err
	}
	copy(dst, data)
	return nil
}

// Decode parses a vault from the front of data. Trailing bytes are
// ignored. The discriminant is not checked; see IsStructValid.
func Decode(data []byte) (Vault, error) {
	if len(data) < LayoutSize {
		return Vault{}, ErrMalformedEncoding.Wrapf("need %d bytes, got %d", LayoutSize, len(data))
	}
	var l vaultLayout
	if err := bin.NewBorshDecoder(data[:LayoutSize]).Decode(&l); err != nil {
		return Vault{}, ErrMalformedEncoding.Wrapf("decode: %v", err)
	}
	return l.vault(), nil
}
