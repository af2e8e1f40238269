package vault

import (
	"github.com/gagliardetto/solana-go"

	"github.com/blockberries/vault/types"
)

// DeserializeChecked decodes the vault held by account and verifies it
// may be trusted. The checks run in order and the first failure is
// returned:
//
//  1. the account holds data (ErrUninitializedAccount)
//  2. the account is owned by programID (ErrIllegalOwner)
//  3. the data decodes (ErrMalformedEncoding) to a vault record
//     (ErrInvalidStruct)
//  4. the account lives at the address derived from the record's own
//     base and bump (ErrAddressMismatch)
//
// The last check stops a correctly owned, well-formed vault from being
// presented at another vault's address.
func DeserializeChecked(d AddressDeriver, programID solana.PublicKey, account *types.AccountInfo) (Vault, error) {
	if account.DataIsEmpty() {
		return Vault{}, ErrUninitializedAccount.Wrapf("account %s", account.Key)
	}
	if !account.Owner.Equals(programID) {
		return Vault{}, ErrIllegalOwner.Wrapf("account %s owned by %s", account.Key, account.Owner)
	}

	v, err := Decode(account.Data)
	if err != nil {
		return Vault{}, err
	}
	if !v.IsStructValid() {
		return Vault{}, ErrInvalidStruct.Wrapf("account %s has type %s", account.Key, v.accountType)
	}

	seeds := append(Seeds(v.base), []byte{v.bump})
	expected, err := d.CreateProgramAddress(seeds, programID)
	if err != nil {
		return Vault{}, ErrAddressMismatch.Wrapf("account %s: derive: %v", account.Key, err)
	}
	if !expected.Equals(account.Key) {
		return Vault{}, ErrAddressMismatch.Wrapf("account %s, expected %s", account.Key, expected)
	}
	return v, nil
}

// SanitizedVault is a vault that passed DeserializeChecked, bundled with
// the account it was read from.
//
// Mutations go to the decoded copy and reach the account only on Save.
// Save does not re-validate: callers must not change the base or bump
// of a loaded vault.
type SanitizedVault struct {
	account *types.AccountInfo
	vault   Vault
}

// Sanitize loads the vault held by account. When expectWritable is set
// the account must be writable; this is checked before anything is
// decoded.
func Sanitize(d AddressDeriver, programID solana.PublicKey, account *types.AccountInfo, expectWritable bool) (*SanitizedVault, error) {
	if expectWritable && !account.IsWritable {
		return nil, ErrAccountNotWritable.Wrapf("account %s", account.Key)
	}
	v, err := DeserializeChecked(d, programID, account)
	if err != nil {
		return nil, err
	}
	return &SanitizedVault{account: account, vault: v}, nil
}

// Account returns the underlying account.
func (s *SanitizedVault) Account() *types.AccountInfo {
	return s.account
}

// Vault returns the decoded vault for reading or in-place mutation.
func (s *SanitizedVault) Vault() *Vault {
	return &s.vault
}

// Save encodes the vault back into the account's data buffer.
func (s *SanitizedVault) Save() error {
	return s.vault.EncodeInto(s.account.Data)
}
