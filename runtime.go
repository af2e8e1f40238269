package vault

import (
	"github.com/gagliardetto/solana-go"
)

// AddressDeriver is the ledger's program-derived address scheme.
//
// The runtime owns the address space; the vault core only asks it to
// derive addresses and compares the result. Production code uses
// pda.Deriver; tests may substitute a deterministic fake.
type AddressDeriver interface {
	// CreateProgramAddress derives the address for the exact seed set,
	// including the trailing bump seed. It fails if the seeds do not
	// produce a valid program address.
	CreateProgramAddress(seeds [][]byte, programID solana.PublicKey) (solana.PublicKey, error)

	// FindProgramAddress searches bump values from 255 downwards and
	// returns the first valid address together with its bump.
	FindProgramAddress(seeds [][]byte, programID solana.PublicKey) (solana.PublicKey, uint8, error)
}
