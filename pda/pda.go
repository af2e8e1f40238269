// Package pda derives program addresses with the ledger's native
// scheme: sha256 over the seeds, the program ID and a fixed marker,
// rejecting results that fall on the ed25519 curve.
package pda

import (
	"github.com/gagliardetto/solana-go"

	"github.com/blockberries/vault"
)

// Compile-time interface check.
var _ vault.AddressDeriver = Deriver{}

// Deriver implements vault.AddressDeriver on top of solana-go.
type Deriver struct{}

func (Deriver) CreateProgramAddress(seeds [][]byte, programID solana.PublicKey) (solana.PublicKey, error) {
	return solana.CreateProgramAddress(seeds, programID)
}

func (Deriver) FindProgramAddress(seeds [][]byte, programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(seeds, programID)
}
