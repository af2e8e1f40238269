package vaultgrpc_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/blockberries/cramberry/pkg/cramberry"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/blockberries/vault"
	vaultgrpc "github.com/blockberries/vault/grpc"
	"github.com/blockberries/vault/local"
	"github.com/blockberries/vault/server"
	"github.com/blockberries/vault/store"
	vaulttest "github.com/blockberries/vault/testing"
)

// startServer starts a gRPC server on a random port and returns
// the listener address. The server stops when the test ends.
func startServer(t *testing.T, gs *vaultgrpc.GRPCServer) string {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := grpc.NewServer()
	gs.Register(s)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.GracefulStop)

	return lis.Addr().String()
}

func dial(t *testing.T, addr string) *vaultgrpc.Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := vaultgrpc.Dial(ctx, addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func newClient(t *testing.T) (*vaultgrpc.Client, *vaulttest.Harness) {
	t.Helper()
	h := vaulttest.NewHarness(t)
	gs := vaultgrpc.NewGRPCServer(local.NewConnection(h.Processor()), nil)
	return dial(t, startServer(t, gs)), h
}

func TestGRPC_APISuite(t *testing.T) {
	vaulttest.RunAPISuite(t, func(t *testing.T) server.API {
		client, _ := newClient(t)
		return client
	})
}

func TestGRPC_GetVaultCarriesOptionalAuthority(t *testing.T) {
	client, h := newClient(t)
	v := vaulttest.NewVault(vaulttest.Key(0x10), 15, 30)
	k := vaulttest.Key(0x42)
	v.SetMintBurnAuthority(&k)
	v.SetTokensDeposited(9)
	addr := h.Put(v)

	view, err := client.GetVault(context.Background(), addr)
	require.NoError(t, err)
	require.Equal(t, server.ViewOf(addr, &v), view)
	require.NotNil(t, view.MintBurnAuthority)
	require.Equal(t, k, *view.MintBurnAuthority)
}

func TestGRPC_ErrorsKeepIdentity(t *testing.T) {
	client, h := newClient(t)
	account := vaulttest.VaultAccount(t, vaulttest.ProgramID, vaulttest.NewVault(vaulttest.Key(0x10), 0, 0))
	account.Key = vaulttest.Key(0x55)
	require.NoError(t, h.Store().Put(context.Background(), account))

	_, err := client.Deposit(context.Background(), account.Key, 1)
	require.ErrorIs(t, err, vault.ErrAddressMismatch)
	require.True(t, vault.IsInvalidAccountData(err))
	require.False(t, errors.Is(err, store.ErrAccountNotFound))
}

func TestGRPCServer_RejectsOutOfRangeFee(t *testing.T) {
	h := vaulttest.NewHarness(t)
	gs := vaultgrpc.NewGRPCServer(h.Processor(), nil)

	resp, err := gs.InitializeVault(context.Background(), &vaultgrpc.InitializeVaultRequest{
		Base:          vaultgrpc.Key(vaulttest.Key(0x10)),
		DepositFeeBps: 1 << 16,
	})
	require.NoError(t, err)
	require.ErrorIs(t, resp.Status.Err(), vault.ErrInvalidFeeBps)
}

func TestGRPCServer_UnknownAuthorityKind(t *testing.T) {
	h := vaulttest.NewHarness(t)
	gs := vaultgrpc.NewGRPCServer(h.Processor(), nil)

	resp, err := gs.SetAuthority(context.Background(), &vaultgrpc.SetAuthorityRequest{Kind: 99})
	require.NoError(t, err)
	require.ErrorIs(t, resp.Status.Err(), vaultgrpc.ErrUnknownAuthority)
}

func TestStatus_Success(t *testing.T) {
	require.NoError(t, vaultgrpc.Status{}.Err())
}

// roundTrip marshals v, unmarshals into a new T, and returns it.
func roundTrip[T any](t *testing.T, v T) T {
	t.Helper()
	data, err := cramberry.Marshal(v)
	require.NoError(t, err)
	var out T
	require.NoError(t, cramberry.Unmarshal(data, &out))
	return out
}

func TestWire_VaultMessageOptionalKey(t *testing.T) {
	k := vaultgrpc.Key(vaulttest.Key(0x42))
	with := vaultgrpc.VaultMessage{Base: vaultgrpc.Key(vaulttest.Key(1)), MintBurnAuthority: &k, Capacity: 7, Bump: 255}
	got := roundTrip(t, with)
	require.NotNil(t, got.MintBurnAuthority)
	require.Equal(t, k, *got.MintBurnAuthority)
	require.Equal(t, uint32(255), got.Bump)

	without := roundTrip(t, vaultgrpc.VaultMessage{Capacity: 7})
	require.Nil(t, without.MintBurnAuthority)
	require.Equal(t, uint64(7), without.Capacity)
}

func TestWire_ResponseStatus(t *testing.T) {
	resp := vaultgrpc.DepositResponse{
		Status: vaultgrpc.Status{Codespace: vault.Codespace, Code: 1102, Log: "50 > 10"},
	}
	got := roundTrip(t, resp)
	require.ErrorIs(t, got.Status.Err(), vault.ErrDepositExceedsCapacity)
}

func TestCodec_RoundTrip(t *testing.T) {
	var codec vaultgrpc.CramberryCodec
	require.Equal(t, "cramberry", codec.Name())

	data, err := codec.Marshal(&vaultgrpc.DepositRequest{Amount: 5})
	require.NoError(t, err)
	var req vaultgrpc.DepositRequest
	require.NoError(t, codec.Unmarshal(data, &req))
	require.Equal(t, uint64(5), req.Amount)
}
