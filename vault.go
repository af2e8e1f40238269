// Package vault implements the accounting and trust-validation core of
// a custodial pooled-asset vault.
//
// A vault accepts deposits of a supported mint and issues receipt
// tokens against the pool. The exchange rate between the two is never
// stored: it is recomputed from the receipt supply and the tokens
// deposited on every deposit, so external adjustments (withdrawals,
// slashing) are reflected automatically.
//
// The package does not move tokens, decide who may call what, or touch
// storage. Callers load a vault through [Sanitize], mutate it, and
// persist it with [SanitizedVault.Save].
package vault

import (
	"math"
	"math/bits"

	sdkmath "cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"

	"github.com/blockberries/vault/types"
)

// ReservedSize is the length of the forward-compatibility region.
const ReservedSize = 1024

// SeedPrefix is the domain string of every vault address.
const SeedPrefix = "vault"

const bpsDenominator = uint64(types.MaxFeeBps)

// Vault is the durable state of a single vault.
type Vault struct {
	accountType types.AccountType

	// base is the seed key distinguishing this vault's address.
	base solana.PublicKey

	receiptMint     solana.PublicKey
	supportedMint   solana.PublicKey
	admin           solana.PublicKey
	delegationAdmin solana.PublicKey
	feeOwner        solana.PublicKey

	// Optional co-signer for mint and burn. Nil when absent.
	mintBurnAuthority *solana.PublicKey

	capacity        uint64
	vaultIndex      uint64
	receiptSupply   uint64
	tokensDeposited uint64

	depositFeeBps    uint16
	withdrawalFeeBps uint16

	reserved [ReservedSize]byte

	bump uint8
}

// New creates a vault with empty counters and unbounded capacity. The
// delegation admin and fee owner both start as admin. Fee rates are
// not validated; see ValidateFeeBps.
func New(
	receiptMint solana.PublicKey,
	supportedMint solana.PublicKey,
	admin solana.PublicKey,
	vaultIndex uint64,
	base solana.PublicKey,
	depositFeeBps uint16,
	withdrawalFeeBps uint16,
	bump uint8,
) Vault {
	return Vault{
		accountType:      types.AccountTypeVault,
		base:             base,
		receiptMint:      receiptMint,
		supportedMint:    supportedMint,
		admin:            admin,
		delegationAdmin:  admin,
		feeOwner:         admin,
		capacity:         math.MaxUint64,
		vaultIndex:       vaultIndex,
		depositFeeBps:    depositFeeBps,
		withdrawalFeeBps: withdrawalFeeBps,
		bump:             bump,
	}
}

func (v *Vault) AccountType() types.AccountType { return v.accountType }
func (v *Vault) Base() solana.PublicKey { return v.base }
func (v *Vault) ReceiptMint() solana.PublicKey { return v.receiptMint }
func (v *Vault) SupportedMint() solana.PublicKey { return v.supportedMint }
func (v *Vault) Admin() solana.PublicKey { return v.admin }
func (v *Vault) DelegationAdmin() solana.PublicKey { return v.delegationAdmin }
func (v *Vault) FeeOwner() solana.PublicKey { return v.feeOwner }
func (v *Vault) Capacity() uint64 { return v.capacity }
func (v *Vault) VaultIndex() uint64 { return v.vaultIndex }
func (v *Vault) ReceiptSupply() uint64 { return v.receiptSupply }
func (v *Vault) TokensDeposited() uint64 { return v.tokensDeposited }
func (v *Vault) DepositFeeBps() uint16 { return v.depositFeeBps }
func (v *Vault) WithdrawalFeeBps() uint16 { return v.withdrawalFeeBps }
func (v *Vault) Bump() uint8 { return v.bump }
func (v *Vault) Reserved() [ReservedSize]byte { return v.reserved }

// MintBurnAuthority returns the optional mint/burn co-signer, or nil.
func (v *Vault) MintBurnAuthority() *solana.PublicKey {
	if v.mintBurnAuthority == nil {
		return nil
	}
	k := *v.mintBurnAuthority
	return &k
}

// SetMintBurnAuthority sets or clears (nil) the mint/burn co-signer.
// The all-zero key is treated as absent.
func (v *Vault) SetMintBurnAuthority(k *solana.PublicKey) {
	if k == nil {
		v.mintBurnAuthority = nil
		return
	}
	v.mintBurnAuthority = types.OptionalKey(*k)
}

func (v *Vault) SetTokensDeposited(n uint64) { v.tokensDeposited = n }
func (v *Vault) SetReceiptSupply(n uint64) { v.receiptSupply = n }
func (v *Vault) SetCapacity(n uint64) { v.capacity = n }
func (v *Vault) SetAdmin(k solana.PublicKey) { v.admin = k }
func (v *Vault) SetDelegationAdmin(k solana.PublicKey) { v.delegationAdmin = k }
func (v *Vault) SetFeeOwner(k solana.PublicKey) { v.feeOwner = k }
func (v *Vault) SetDepositFeeBps(bps uint16) { v.depositFeeBps = bps }
func (v *Vault) SetWithdrawalFeeBps(bps uint16) { v.withdrawalFeeBps = bps }

// IncrementReceiptSupply adds delta to the receipt supply and returns
// the new supply. On overflow it returns false and leaves the supply
// untouched.
func (v *Vault) IncrementReceiptSupply(delta uint64) (uint64, bool) {
	sum, carry := bits.Add64(v.receiptSupply, delta, 0)
	if carry != 0 {
		return 0, false
	}
	v.receiptSupply = sum
	return sum, true
}

// IsStructValid reports whether the record carries the vault
// discriminant.
func (v *Vault) IsStructValid() bool {
	return v.accountType == types.AccountTypeVault
}

// DepositAndMintWithCapacityCheck records a deposit of amount supported
// tokens and returns the number of receipt tokens to mint for it.
//
// An empty pool mints 1:1. Otherwise the depositor receives
// amount * receiptSupply / tokensDeposited, rounded down, so existing
// holders are never diluted. The vault is left untouched on any error.
//
// An empty pool with outstanding receipt supply (e.g. fully slashed)
// also mints 1:1.
func (v *Vault) DepositAndMintWithCapacityCheck(amount uint64) (uint64, error) {
	var minted uint64
	if v.tokensDeposited == 0 {
		minted = amount
	} else {
		var ok bool
		minted, ok = mulDiv(amount, v.receiptSupply, v.tokensDeposited)
		if !ok {
			return 0, ErrDepositOverflow.Wrapf("%d * %d / %d", amount, v.receiptSupply, v.tokensDeposited)
		}
	}

	totalPostDeposit, carry := bits.Add64(v.tokensDeposited, amount, 0)
	if carry != 0 {
		return 0, ErrDepositOverflow.Wrapf("%d + %d", v.tokensDeposited, amount)
	}
	if totalPostDeposit > v.capacity {
		return 0, ErrDepositExceedsCapacity.Wrapf("%d > %d", totalPostDeposit, v.capacity)
	}

	supply, carry := bits.Add64(v.receiptSupply, minted, 0)
	if carry != 0 {
		return 0, ErrDepositOverflow.Wrapf("supply %d + %d", v.receiptSupply, minted)
	}

	v.receiptSupply = supply
	v.tokensDeposited = totalPostDeposit
	return minted, nil
}

// CalculateDepositFee returns the deposit fee owed on amount.
func (v *Vault) CalculateDepositFee(amount uint64) (uint64, error) {
	return calculateFee(amount, v.depositFeeBps)
}

// CalculateWithdrawalFee returns the withdrawal fee owed on amount.
func (v *Vault) CalculateWithdrawalFee(amount uint64) (uint64, error) {
	return calculateFee(amount, v.withdrawalFeeBps)
}

// ValidateFeeBps rejects fee rates above 100%. The vault itself accepts
// any rate; provisioning code calls this before New.
func ValidateFeeBps(bps uint16) error {
	if bps > types.MaxFeeBps {
		return ErrInvalidFeeBps.Wrapf("%d > %d", bps, types.MaxFeeBps)
	}
	return nil
}

// Seeds returns the address seeds of the vault with the given base.
func Seeds(base solana.PublicKey) [][]byte {
	return [][]byte{[]byte(SeedPrefix), base.Bytes()}
}

// FindProgramAddress derives the canonical vault address for base and
// returns it with its bump and the seeds used.
func FindProgramAddress(d AddressDeriver, programID, base solana.PublicKey) (solana.PublicKey, uint8, [][]byte, error) {
	seeds := Seeds(base)
	addr, bump, err := d.FindProgramAddress(seeds, programID)
	if err != nil {
		return solana.PublicKey{}, 0, nil, err
	}
	return addr, bump, seeds, nil
}

// calculateFee returns floor(amount * bps / 10000). Only the
// multiplication can overflow.
func calculateFee(amount uint64, bps uint16) (uint64, error) {
	product := sdkmath.NewIntFromUint64(amount).MulRaw(int64(bps))
	if !product.IsUint64() {
		return 0, ErrFeeCalculationOverflow.Wrapf("%d * %d bps", amount, bps)
	}
	return product.Uint64() / bpsDenominator, nil
}

// mulDiv computes floor(a * b / c) with a 256-bit intermediate and
// reports whether the result fits in a uint64. c must be non-zero.
func mulDiv(a, b, c uint64) (uint64, bool) {
	q := sdkmath.NewIntFromUint64(a).
		Mul(sdkmath.NewIntFromUint64(b)).
		Quo(sdkmath.NewIntFromUint64(c))
	if !q.IsUint64() {
		return 0, false
	}
	return q.Uint64(), true
}
