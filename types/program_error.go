package types

import "fmt"

// ProgramError is the coarse error class the ledger runtime reports for
// a failed instruction. Finer-grained causes travel as Custom errors.
type ProgramError uint8

const (
	ProgramErrorNone ProgramError = iota
	ProgramErrorCustom
	ProgramErrorInvalidArgument
	ProgramErrorInvalidAccountData
	ProgramErrorAccountDataTooSmall
	ProgramErrorUninitializedAccount
	ProgramErrorIllegalOwner
	ProgramErrorArithmeticOverflow
)

func (e ProgramError) String() string {
	switch e {
	case ProgramErrorNone:
		return "None"
	case ProgramErrorCustom:
		return "Custom"
	case ProgramErrorInvalidArgument:
		return "InvalidArgument"
	case ProgramErrorInvalidAccountData:
		return "InvalidAccountData"
	case ProgramErrorAccountDataTooSmall:
		return "AccountDataTooSmall"
	case ProgramErrorUninitializedAccount:
		return "UninitializedAccount"
	case ProgramErrorIllegalOwner:
		return "IllegalOwner"
	case ProgramErrorArithmeticOverflow:
		return "ArithmeticOverflow"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(e))
	}
}
