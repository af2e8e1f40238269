package store_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/blockberries/vault/store"
	"github.com/blockberries/vault/types"
)

var (
	program = solana.PublicKey{0xF0}
	other   = solana.PublicKey{0xF1}
)

func openMemory(t *testing.T) store.AccountStore {
	return store.NewMemory()
}

func openSQLite(t *testing.T) store.AccountStore {
	t.Helper()
	s, err := store.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "accounts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestMemory(t *testing.T) { runStoreSuite(t, openMemory) }
func TestSQLite(t *testing.T) { runStoreSuite(t, openSQLite) }

func runStoreSuite(t *testing.T, open func(*testing.T) store.AccountStore) {
	ctx := context.Background()

	t.Run("get_missing", func(t *testing.T) {
		s := open(t)
		_, err := s.Get(ctx, solana.PublicKey{1})
		require.ErrorIs(t, err, store.ErrAccountNotFound)
	})

	t.Run("put_get", func(t *testing.T) {
		s := open(t)
		in := types.AccountInfo{Key: solana.PublicKey{1}, Owner: program, Data: []byte{1, 2, 3}, IsWritable: true}
		require.NoError(t, s.Put(ctx, in))

		got, err := s.Get(ctx, in.Key)
		require.NoError(t, err)
		require.Equal(t, in.Key, got.Key)
		require.Equal(t, program, got.Owner)
		require.Equal(t, []byte{1, 2, 3}, got.Data)
		require.False(t, got.IsWritable, "writability is not persisted")
	})

	t.Run("put_replaces", func(t *testing.T) {
		s := open(t)
		key := solana.PublicKey{1}
		require.NoError(t, s.Put(ctx, types.AccountInfo{Key: key, Owner: program, Data: []byte{1}}))
		require.NoError(t, s.Put(ctx, types.AccountInfo{Key: key, Owner: other, Data: []byte{2, 2}}))

		got, err := s.Get(ctx, key)
		require.NoError(t, err)
		require.Equal(t, other, got.Owner)
		require.Equal(t, []byte{2, 2}, got.Data)
	})

	t.Run("empty_data", func(t *testing.T) {
		s := open(t)
		key := solana.PublicKey{1}
		require.NoError(t, s.Put(ctx, types.AccountInfo{Key: key, Owner: program}))
		got, err := s.Get(ctx, key)
		require.NoError(t, err)
		require.True(t, got.DataIsEmpty())
	})

	t.Run("returned_copies_are_independent", func(t *testing.T) {
		s := open(t)
		in := types.AccountInfo{Key: solana.PublicKey{1}, Owner: program, Data: []byte{1, 2, 3}}
		require.NoError(t, s.Put(ctx, in))
		in.Data[0] = 9

		got, err := s.Get(ctx, in.Key)
		require.NoError(t, err)
		got.Data[1] = 9

		again, err := s.Get(ctx, in.Key)
		require.NoError(t, err)
		require.Equal(t, []byte{1, 2, 3}, again.Data)
	})

	t.Run("count_owned", func(t *testing.T) {
		s := open(t)
		n, err := s.CountOwned(ctx, program)
		require.NoError(t, err)
		require.Zero(t, n)

		require.NoError(t, s.Put(ctx, types.AccountInfo{Key: solana.PublicKey{1}, Owner: program, Data: []byte{1}}))
		require.NoError(t, s.Put(ctx, types.AccountInfo{Key: solana.PublicKey{2}, Owner: program, Data: []byte{1}}))
		require.NoError(t, s.Put(ctx, types.AccountInfo{Key: solana.PublicKey{3}, Owner: other, Data: []byte{1}}))

		n, err = s.CountOwned(ctx, program)
		require.NoError(t, err)
		require.Equal(t, uint64(2), n)
	})

	t.Run("concurrent_puts", func(t *testing.T) {
		s := open(t)
		var wg sync.WaitGroup
		for i := range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := s.Put(ctx, types.AccountInfo{Key: solana.PublicKey{byte(i + 1)}, Owner: program, Data: []byte{byte(i)}}); err != nil {
					t.Error(err)
				}
			}()
		}
		wg.Wait()

		n, err := s.CountOwned(ctx, program)
		require.NoError(t, err)
		require.Equal(t, uint64(20), n)
	})
}

func TestSQLite_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "accounts.db")

	s, err := store.OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, types.AccountInfo{Key: solana.PublicKey{1}, Owner: program, Data: []byte{7}}))
	require.NoError(t, s.Close())

	s, err = store.OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(ctx, solana.PublicKey{1})
	require.NoError(t, err)
	require.Equal(t, []byte{7}, got.Data)
}

func TestOpenSQLite_EmptyPath(t *testing.T) {
	_, err := store.OpenSQLite(context.Background(), "")
	require.ErrorIs(t, err, store.ErrStore)
}
