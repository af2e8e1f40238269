package server_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/blockberries/vault"
	"github.com/blockberries/vault/server"
	"github.com/blockberries/vault/store"
	vaulttest "github.com/blockberries/vault/testing"
	"github.com/blockberries/vault/types"
)

func TestProcessor_APISuite(t *testing.T) {
	vaulttest.RunAPISuite(t, func(t *testing.T) server.API {
		return vaulttest.NewHarness(t).Processor()
	})
}

func TestProcessor_InitializeStoresCanonicalVault(t *testing.T) {
	h := vaulttest.NewHarness(t)
	params := vaulttest.DefaultParams(vaulttest.Key(0x10))
	params.DepositFeeBps = 25
	params.WithdrawalFeeBps = 75
	addr := h.Initialize(params)

	want, _, _, err := vault.FindProgramAddress(vaulttest.FakeDeriver{}, vaulttest.ProgramID, params.Base)
	require.NoError(t, err)
	require.Equal(t, want, addr)

	account, err := h.Store().Get(context.Background(), addr)
	require.NoError(t, err)
	require.Equal(t, vaulttest.ProgramID, account.Owner)
	require.Len(t, account.Data, vault.LayoutSize)

	v := h.Load(addr)
	require.Equal(t, uint16(25), v.DepositFeeBps())
	require.Equal(t, uint16(75), v.WithdrawalFeeBps())
	require.Equal(t, uint8(255), v.Bump())
}

func TestProcessor_DepositProRata(t *testing.T) {
	h := vaulttest.NewHarness(t)
	v := vaulttest.NewVault(vaulttest.Key(0x10), 0, 0)
	v.SetTokensDeposited(90)
	v.SetReceiptSupply(100)
	addr := h.Put(v)

	receipt := h.Deposit(addr, 100)
	require.Equal(t, server.DepositReceipt{Minted: 111, ToDepositor: 111}, receipt)

	got := h.Load(addr)
	require.Equal(t, uint64(190), got.TokensDeposited())
	require.Equal(t, uint64(211), got.ReceiptSupply())
}

func TestProcessor_FeeAboveMintedRejected(t *testing.T) {
	h := vaulttest.NewHarness(t)
	addr := h.Put(vaulttest.NewVault(vaulttest.Key(0x10), 20_000, 0))

	_, err := h.Processor().Deposit(context.Background(), addr, 100)
	require.ErrorIs(t, err, vault.ErrInvalidFeeBps)
	loaded := h.Load(addr)
	require.Zero(t, loaded.TokensDeposited())
}

func TestProcessor_RejectsForeignAccounts(t *testing.T) {
	ctx := context.Background()
	h := vaulttest.NewHarness(t)

	// A well-formed vault owned by another program.
	account := vaulttest.VaultAccount(t, vaulttest.ProgramID, vaulttest.NewVault(vaulttest.Key(0x10), 0, 0))
	account.Owner = vaulttest.Key(0x66)
	require.NoError(t, h.Store().Put(ctx, account))
	_, err := h.Processor().Deposit(ctx, account.Key, 1)
	require.ErrorIs(t, err, vault.ErrIllegalOwner)

	// Another vault's bytes copied to a fresh address.
	impostor := vaulttest.VaultAccount(t, vaulttest.ProgramID, vaulttest.NewVault(vaulttest.Key(0x11), 0, 0))
	impostor.Key = vaulttest.Key(0x77)
	require.NoError(t, h.Store().Put(ctx, impostor))
	_, err = h.Processor().Deposit(ctx, impostor.Key, 1)
	require.ErrorIs(t, err, vault.ErrAddressMismatch)
	_, err = h.Processor().GetVault(ctx, impostor.Key)
	require.ErrorIs(t, err, vault.ErrAddressMismatch)
}

func TestProcessor_InitializeOverEmptyAccount(t *testing.T) {
	ctx := context.Background()
	h := vaulttest.NewHarness(t)
	base := vaulttest.Key(0x10)
	addr, _, _, err := vault.FindProgramAddress(vaulttest.FakeDeriver{}, vaulttest.ProgramID, base)
	require.NoError(t, err)

	// An allocated but empty account at the vault address.
	require.NoError(t, h.Store().Put(ctx, types.AccountInfo{Key: addr, Owner: vaulttest.ProgramID}))
	require.Equal(t, addr, h.Initialize(vaulttest.DefaultParams(base)))
}

func TestProcessor_StoreFailureLeavesVaultUnchanged(t *testing.T) {
	ctx := context.Background()
	mock := &vaulttest.MockStore{}
	h := vaulttest.NewHarnessWithStore(t, mock)
	addr := h.Initialize(vaulttest.DefaultParams(vaulttest.Key(0x10)))

	boom := errors.New("disk full")
	mock.PutFn = func(context.Context, types.AccountInfo) error { return boom }
	_, err := h.Processor().Deposit(ctx, addr, 10)
	require.ErrorIs(t, err, boom)

	mock.PutFn = nil
	loaded := h.Load(addr)
	require.Zero(t, loaded.TokensDeposited())
	require.Equal(t, int64(2), mock.PutCalls.Load())
}

func TestProcessor_FailedOperationDoesNotWrite(t *testing.T) {
	mock := &vaulttest.MockStore{}
	h := vaulttest.NewHarnessWithStore(t, mock)
	addr := h.Initialize(vaulttest.DefaultParams(vaulttest.Key(0x10)))
	puts := mock.PutCalls.Load()

	err := h.Processor().SetCapacity(context.Background(), addr, vaulttest.Key(0x66), 1)
	require.ErrorIs(t, err, server.ErrUnauthorized)
	require.Equal(t, puts, mock.PutCalls.Load())
}

func TestProcessor_CountFailureAbortsInitialize(t *testing.T) {
	boom := errors.New("count failed")
	mock := &vaulttest.MockStore{
		CountOwnedFn: func(context.Context, solana.PublicKey) (uint64, error) { return 0, boom },
	}
	h := vaulttest.NewHarnessWithStore(t, mock)

	_, err := h.Processor().InitializeVault(context.Background(), vaulttest.DefaultParams(vaulttest.Key(0x10)))
	require.ErrorIs(t, err, boom)
	require.Zero(t, mock.PutCalls.Load())
}

func TestProcessor_LogsRejections(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	st := store.NewMemory()
	proc := server.NewProcessor(vaulttest.ProgramID, vaulttest.FakeDeriver{}, st, zap.New(core))

	account := vaulttest.VaultAccount(t, vaulttest.ProgramID, vaulttest.NewVault(vaulttest.Key(0x10), 0, 0))
	account.Data[0] = byte(types.AccountTypeWithdrawalTicket)
	require.NoError(t, st.Put(context.Background(), account))

	_, err := proc.Deposit(context.Background(), account.Key, 1)
	require.ErrorIs(t, err, vault.ErrInvalidStruct)

	rejected := logs.FilterMessage("vault rejected").All()
	require.Len(t, rejected, 1)
	fields := rejected[0].ContextMap()
	require.Equal(t, "deposit", fields["op"])
	require.Equal(t, "InvalidAccountData", fields["program_error"])
	require.Equal(t, 0, proc.Guard().Active())
}
