package vaulttest

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"

	"github.com/blockberries/vault"
	"github.com/blockberries/vault/server"
	"github.com/blockberries/vault/store"
	"github.com/blockberries/vault/types"
)

// ProgramID is the program ID used by NewHarness.
var ProgramID = Key(0xF0)

// Harness wires a Processor to an in-memory store and FakeDeriver.
type Harness struct {
	t     *testing.T
	store store.AccountStore
	proc  *server.Processor
}

// NewHarness creates a harness over a fresh in-memory store.
func NewHarness(t *testing.T) *Harness {
	t.Helper()
	return NewHarnessWithStore(t, store.NewMemory())
}

// NewHarnessWithStore creates a harness over st.
func NewHarnessWithStore(t *testing.T, st store.AccountStore) *Harness {
	t.Helper()
	return &Harness{
		t:     t,
		store: st,
		proc:  server.NewProcessor(ProgramID, FakeDeriver{}, st, nil),
	}
}

// Processor returns the underlying processor for direct access.
func (h *Harness) Processor() *server.Processor {
	return h.proc
}

// Store returns the harness's account store.
func (h *Harness) Store() store.AccountStore {
	return h.store
}

// DefaultParams returns provisioning parameters keyed by base with
// admin Key(0xAD) and no fees.
func DefaultParams(base solana.PublicKey) server.InitializeVaultParams {
	return server.InitializeVaultParams{
		Base:          base,
		ReceiptMint:   Key(0x01),
		SupportedMint: Key(0x02),
		Admin:         Key(0xAD),
	}
}

// Initialize provisions a vault and returns its address.
func (h *Harness) Initialize(params server.InitializeVaultParams) solana.PublicKey {
	h.t.Helper()
	addr, err := h.proc.InitializeVault(context.Background(), params)
	if err != nil {
		h.t.Fatalf("InitializeVault failed: %v", err)
	}
	return addr
}

// Deposit deposits amount and fails the test on error.
func (h *Harness) Deposit(addr solana.PublicKey, amount uint64) server.DepositReceipt {
	h.t.Helper()
	receipt, err := h.proc.Deposit(context.Background(), addr, amount)
	if err != nil {
		h.t.Fatalf("Deposit(%d) failed: %v", amount, err)
	}
	return receipt
}

// Load reads and decodes the stored vault at addr without any trust
// checks.
func (h *Harness) Load(addr solana.PublicKey) vault.Vault {
	h.t.Helper()
	account, err := h.store.Get(context.Background(), addr)
	if err != nil {
		h.t.Fatalf("Get(%s) failed: %v", addr, err)
	}
	v, err := vault.Decode(account.Data)
	if err != nil {
		h.t.Fatalf("Decode(%s) failed: %v", addr, err)
	}
	return v
}

// Put writes v at its canonical address, replacing whatever is
// there, and returns the address.
func (h *Harness) Put(v vault.Vault) solana.PublicKey {
	h.t.Helper()
	account := VaultAccount(h.t, ProgramID, v)
	if err := h.store.Put(context.Background(), account); err != nil {
		h.t.Fatalf("Put failed: %v", err)
	}
	return account.Key
}

// NewVault returns a vault for base at its FakeDeriver bump, with
// admin Key(0xAD) and the given fees.
func NewVault(base solana.PublicKey, depositFeeBps, withdrawalFeeBps uint16) vault.Vault {
	_, bump, _, _ := vault.FindProgramAddress(FakeDeriver{}, ProgramID, base)
	return vault.New(Key(0x01), Key(0x02), Key(0xAD), 0, base, depositFeeBps, withdrawalFeeBps, bump)
}

// VaultAccount encodes v into a writable account owned by programID at
// the address FakeDeriver derives from v's base and bump.
func VaultAccount(t *testing.T, programID solana.PublicKey, v vault.Vault) types.AccountInfo {
	t.Helper()
	seeds := append(vault.Seeds(v.Base()), []byte{v.Bump()})
	addr, err := FakeDeriver{}.CreateProgramAddress(seeds, programID)
	if err != nil {
		t.Fatalf("CreateProgramAddress failed: %v", err)
	}
	data, err := v.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	return types.AccountInfo{Key: addr, Owner: programID, Data: data, IsWritable: true}
}
