package types

import (
	"github.com/gagliardetto/solana-go"
)

// AccountInfo is a raw ledger account as handed to the program by the
// runtime: the address it was read from, the program that owns it, its
// bytes, and whether the enclosing transaction may write it.
//
// Data is the live buffer. Writers (e.g. SanitizedVault.Save) update it
// in place; the dispatcher is responsible for persisting it afterwards.
type AccountInfo struct {
	Key        solana.PublicKey
	Owner      solana.PublicKey
	Data       []byte
	IsWritable bool
}

// DataIsEmpty reports whether the account holds no bytes.
func (a *AccountInfo) DataIsEmpty() bool {
	return len(a.Data) == 0
}

// Clone returns a deep copy of the account.
func (a AccountInfo) Clone() AccountInfo {
	c := a
	if a.Data != nil {
		c.Data = make([]byte, len(a.Data))
		copy(c.Data, a.Data)
	}
	return c
}
