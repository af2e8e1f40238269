// Package vaulttest provides test utilities for code built on the
// vault core and dispatcher: a deterministic address deriver, a
// configurable account store mock, a processor harness, and an API
// compliance suite.
package vaulttest

import (
	"crypto/sha256"
	"errors"

	"github.com/gagliardetto/solana-go"

	"github.com/blockberries/vault"
)

// Compile-time interface check.
var _ vault.AddressDeriver = FakeDeriver{}

const (
	maxSeeds      = 16
	maxSeedLength = 32
	pdaMarker     = "ProgramDerivedAddress"
)

var errSeeds = errors.New("vaulttest: invalid seeds")

// FakeDeriver hashes seeds the way the ledger does but skips the
// off-curve check, so every seed set yields an address and
// FindProgramAddress always returns bump 255.
type FakeDeriver struct{}

func (FakeDeriver) CreateProgramAddress(seeds [][]byte, programID solana.PublicKey) (solana.PublicKey, error) {
	if len(seeds) > maxSeeds {
		return solana.PublicKey{}, errSeeds
	}
	h := sha256.New()
	for _, s := range seeds {
		if len(s) > maxSeedLength {
			return solana.PublicKey{}, errSeeds
		}
		h.Write(s)
	}
	h.Write(programID[:])
	h.Write([]byte(pdaMarker))
	return solana.PublicKeyFromBytes(h.Sum(nil)), nil
}

func (d FakeDeriver) FindProgramAddress(seeds [][]byte, programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	const bump = 255
	withBump := append(append([][]byte{}, seeds...), []byte{bump})
	addr, err := d.CreateProgramAddress(withBump, programID)
	if err != nil {
		return solana.PublicKey{}, 0, err
	}
	return addr, bump, nil
}

// Key returns a deterministic key whose bytes are all b.
func Key(b byte) solana.PublicKey {
	var k solana.PublicKey
	for i := range k {
		k[i] = b
	}
	return k
}
