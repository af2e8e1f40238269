package vault

import (
	"errors"

	errorsmod "cosmossdk.io/errors"

	"github.com/blockberries/vault/types"
)

// Codespace is the error namespace of the vault core.
const Codespace = "vault"

// Vault core sentinel errors. Every failing operation returns one of
// these (possibly wrapped); compare with errors.Is.
var (
	ErrDepositOverflow        = errorsmod.Register(Codespace, 1100, "deposit overflow")
	ErrFeeCalculationOverflow = errorsmod.Register(Codespace, 1101, "fee calculation overflow")
	ErrDepositExceedsCapacity = errorsmod.Register(Codespace, 1102, "deposit exceeds capacity")
	ErrUninitializedAccount   = errorsmod.Register(Codespace, 1103, "vault account is not initialized")
	ErrIllegalOwner           = errorsmod.Register(Codespace, 1104, "vault account not owned by the program")
	ErrMalformedEncoding      = errorsmod.Register(Codespace, 1105, "vault account data is malformed")
	ErrInvalidStruct          = errorsmod.Register(Codespace, 1106, "vault account is invalid")
	ErrAddressMismatch        = errorsmod.Register(Codespace, 1107, "vault account is not at the correct address")
	ErrAccountNotWritable     = errorsmod.Register(Codespace, 1108, "invalid writable flag for vault")
	ErrAccountDataTooSmall    = errorsmod.Register(Codespace, 1109, "vault account data too small")
	ErrInvalidFeeBps          = errorsmod.Register(Codespace, 1110, "fee basis points out of range")
)

// ProgramErrorOf maps an error returned by this package to the coarse
// program error the ledger runtime reports. Errors from other sources
// map to ProgramErrorCustom; nil maps to ProgramErrorNone.
func ProgramErrorOf(err error) types.ProgramError {
	switch {
	case err == nil:
		return types.ProgramErrorNone
	case errors.Is(err, ErrUninitializedAccount):
		return types.ProgramErrorUninitializedAccount
	case errors.Is(err, ErrIllegalOwner):
		return types.ProgramErrorIllegalOwner
	case IsInvalidAccountData(err):
		return types.ProgramErrorInvalidAccountData
	case errors.Is(err, ErrAccountDataTooSmall):
		return types.ProgramErrorAccountDataTooSmall
	case errors.Is(err, ErrInvalidFeeBps):
		return types.ProgramErrorInvalidArgument
	default:
		return types.ProgramErrorCustom
	}
}

// IsInvalidAccountData reports whether err is one of the load failures
// the ledger folds into InvalidAccountData.
func IsInvalidAccountData(err error) bool {
	return errors.Is(err, ErrMalformedEncoding) ||
		errors.Is(err, ErrInvalidStruct) ||
		errors.Is(err, ErrAddressMismatch) ||
		errors.Is(err, ErrAccountNotWritable)
}

// IsOverflow reports whether err is an arithmetic overflow from the
// deposit or fee paths.
func IsOverflow(err error) bool {
	return errors.Is(err, ErrDepositOverflow) || errors.Is(err, ErrFeeCalculationOverflow)
}
