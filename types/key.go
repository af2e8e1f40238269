package types

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// ParseKey decodes a base58 encoded 32-byte key.
func ParseKey(s string) (solana.PublicKey, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("parse key %q: %w", s, err)
	}
	if len(raw) != solana.PublicKeyLength {
		return solana.PublicKey{}, fmt.Errorf("parse key %q: expected %d bytes, got %d", s, solana.PublicKeyLength, len(raw))
	}
	return solana.PublicKeyFromBytes(raw), nil
}

// OptionalKey maps the all-zero key to nil.
func OptionalKey(k solana.PublicKey) *solana.PublicKey {
	if k.IsZero() {
		return nil
	}
	return &k
}

// KeyOrZero maps nil to the all-zero key.
func KeyOrZero(k *solana.PublicKey) solana.PublicKey {
	if k == nil {
		return solana.PublicKey{}
	}
	return *k
}
