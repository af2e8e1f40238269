// Package types defines the ledger-facing data types shared by the
// vault core and its host-side tooling.
//
// These are plain Go values. The binary layout of the vault record
// lives in the root package; transport encodings (cramberry over gRPC)
// are handled in the transport packages.
package types

import "fmt"

// AccountType is the discriminant stored in the first byte of every
// account owned by the vault program. Several record kinds share the
// same storage space, so a buffer is only trusted as a given kind once
// its discriminant has been checked.
type AccountType uint8

const (
	AccountTypeUninitialized AccountType = iota
	AccountTypeVault
	AccountTypeVaultDelegation
	AccountTypeWithdrawalTicket
)

func (t AccountType) String() string {
	switch t {
	case AccountTypeUninitialized:
		return "Uninitialized"
	case AccountTypeVault:
		return "Vault"
	case AccountTypeVaultDelegation:
		return "VaultDelegation"
	case AccountTypeWithdrawalTicket:
		return "WithdrawalTicket"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// MaxFeeBps is 100% expressed in basis points.
const MaxFeeBps uint16 = 10_000
