package vaulttest

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blockberries/vault"
	"github.com/blockberries/vault/server"
	"github.com/blockberries/vault/store"
)

// RunAPISuite runs a standard compliance suite against a server.API
// implementation.
//
// The factory must return a fresh API, backed by an empty store and
// FakeDeriver, for each subtest. It may register cleanups on t.
func RunAPISuite(t *testing.T, factory func(t *testing.T) server.API) {
	t.Helper()
	ctx := context.Background()
	admin := Key(0xAD)

	t.Run("initialize_then_get", func(t *testing.T) {
		api := factory(t)
		addr, err := api.InitializeVault(ctx, DefaultParams(Key(0x10)))
		require.NoError(t, err)

		view, err := api.GetVault(ctx, addr)
		require.NoError(t, err)
		require.Equal(t, addr, view.Address)
		require.Equal(t, Key(0x10), view.Base)
		require.Equal(t, admin, view.Admin)
		require.Equal(t, admin, view.DelegationAdmin)
		require.Equal(t, admin, view.FeeOwner)
		require.Nil(t, view.MintBurnAuthority)
		require.Equal(t, uint64(math.MaxUint64), view.Capacity)
		require.Zero(t, view.ReceiptSupply)
		require.Zero(t, view.TokensDeposited)
		require.Zero(t, view.VaultIndex)
	})

	t.Run("initialize_twice_fails", func(t *testing.T) {
		api := factory(t)
		_, err := api.InitializeVault(ctx, DefaultParams(Key(0x10)))
		require.NoError(t, err)
		_, err = api.InitializeVault(ctx, DefaultParams(Key(0x10)))
		require.ErrorIs(t, err, server.ErrVaultExists)
	})

	t.Run("vault_indices_increase", func(t *testing.T) {
		api := factory(t)
		first, err := api.InitializeVault(ctx, DefaultParams(Key(0x10)))
		require.NoError(t, err)
		second, err := api.InitializeVault(ctx, DefaultParams(Key(0x11)))
		require.NoError(t, err)
		require.NotEqual(t, first, second)

		view, err := api.GetVault(ctx, second)
		require.NoError(t, err)
		require.Equal(t, uint64(1), view.VaultIndex)
	})

	t.Run("fee_above_100_percent_rejected", func(t *testing.T) {
		api := factory(t)
		params := DefaultParams(Key(0x10))
		params.WithdrawalFeeBps = 10_001
		_, err := api.InitializeVault(ctx, params)
		require.ErrorIs(t, err, vault.ErrInvalidFeeBps)
	})

	t.Run("deposit_splits_fee", func(t *testing.T) {
		api := factory(t)
		params := DefaultParams(Key(0x10))
		params.DepositFeeBps = 100
		addr, err := api.InitializeVault(ctx, params)
		require.NoError(t, err)

		receipt, err := api.Deposit(ctx, addr, 1_000)
		require.NoError(t, err)
		require.Equal(t, server.DepositReceipt{Minted: 1_000, Fee: 10, ToDepositor: 990}, receipt)

		view, err := api.GetVault(ctx, addr)
		require.NoError(t, err)
		require.Equal(t, uint64(1_000), view.ReceiptSupply)
		require.Equal(t, uint64(1_000), view.TokensDeposited)
	})

	t.Run("capacity_enforced", func(t *testing.T) {
		api := factory(t)
		addr, err := api.InitializeVault(ctx, DefaultParams(Key(0x10)))
		require.NoError(t, err)
		require.NoError(t, api.SetCapacity(ctx, addr, admin, 100))

		_, err = api.Deposit(ctx, addr, 50)
		require.NoError(t, err)
		_, err = api.Deposit(ctx, addr, 50)
		require.NoError(t, err)
		_, err = api.Deposit(ctx, addr, 1)
		require.ErrorIs(t, err, vault.ErrDepositExceedsCapacity)

		view, err := api.GetVault(ctx, addr)
		require.NoError(t, err)
		require.Equal(t, uint64(100), view.TokensDeposited)
		require.Equal(t, uint64(100), view.ReceiptSupply)
	})

	t.Run("deposit_overflow_leaves_vault_unchanged", func(t *testing.T) {
		api := factory(t)
		addr, err := api.InitializeVault(ctx, DefaultParams(Key(0x10)))
		require.NoError(t, err)

		_, err = api.Deposit(ctx, addr, math.MaxUint64)
		require.NoError(t, err)
		_, err = api.Deposit(ctx, addr, 1)
		require.ErrorIs(t, err, vault.ErrDepositOverflow)

		view, err := api.GetVault(ctx, addr)
		require.NoError(t, err)
		require.Equal(t, uint64(math.MaxUint64), view.TokensDeposited)
	})

	t.Run("deposit_into_missing_vault", func(t *testing.T) {
		api := factory(t)
		_, err := api.Deposit(ctx, Key(0x99), 1)
		require.ErrorIs(t, err, store.ErrAccountNotFound)
	})

	t.Run("admin_operations_require_admin", func(t *testing.T) {
		api := factory(t)
		addr, err := api.InitializeVault(ctx, DefaultParams(Key(0x10)))
		require.NoError(t, err)

		intruder := Key(0x66)
		require.ErrorIs(t, api.SetCapacity(ctx, addr, intruder, 1), server.ErrUnauthorized)
		require.ErrorIs(t, api.SetAdmin(ctx, addr, intruder, intruder), server.ErrUnauthorized)
		require.ErrorIs(t, api.SetDelegationAdmin(ctx, addr, intruder, intruder), server.ErrUnauthorized)
		require.ErrorIs(t, api.SetFeeOwner(ctx, addr, intruder, intruder), server.ErrUnauthorized)
	})

	t.Run("authorities_rotate", func(t *testing.T) {
		api := factory(t)
		addr, err := api.InitializeVault(ctx, DefaultParams(Key(0x10)))
		require.NoError(t, err)

		require.NoError(t, api.SetDelegationAdmin(ctx, addr, admin, Key(0xD1)))
		require.NoError(t, api.SetFeeOwner(ctx, addr, admin, Key(0xFE)))
		require.NoError(t, api.SetAdmin(ctx, addr, admin, Key(0xA2)))

		// The previous admin no longer signs.
		require.ErrorIs(t, api.SetCapacity(ctx, addr, admin, 1), server.ErrUnauthorized)
		require.NoError(t, api.SetCapacity(ctx, addr, Key(0xA2), 1))

		view, err := api.GetVault(ctx, addr)
		require.NoError(t, err)
		require.Equal(t, Key(0xA2), view.Admin)
		require.Equal(t, Key(0xD1), view.DelegationAdmin)
		require.Equal(t, Key(0xFE), view.FeeOwner)
		require.Equal(t, uint64(1), view.Capacity)
	})

	t.Run("concurrent_deposits", func(t *testing.T) {
		api := factory(t)
		addr, err := api.InitializeVault(ctx, DefaultParams(Key(0x10)))
		require.NoError(t, err)

		const n = 16
		var wg sync.WaitGroup
		errs := make(chan error, n)
		for range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := api.Deposit(ctx, addr, 10)
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		view, err := api.GetVault(ctx, addr)
		require.NoError(t, err)
		require.Equal(t, uint64(n*10), view.TokensDeposited)
		require.Equal(t, uint64(n*10), view.ReceiptSupply)
	})
}
