package vaultgrpc

import (
	"context"
	"fmt"

	errorsmod "cosmossdk.io/errors"
	"github.com/gagliardetto/solana-go"
	"google.golang.org/grpc"

	"github.com/blockberries/vault/server"
)

// Codespace is the error namespace of the gRPC transport.
const Codespace = "grpc"

var (
	ErrUnknownAuthority = errorsmod.Register(Codespace, 1400, "unknown authority kind")
	ErrCodec            = errorsmod.Register(Codespace, 1401, "wire codec failure")
)

// Compile-time interface check.
var _ server.API = (*Client)(nil)

// Client implements server.API for a remote dispatcher over gRPC
// using cramberry serialization. Errors registered with
// cosmossdk.io/errors on the server compare equal under errors.Is on
// the client.
type Client struct {
	cc *grpc.ClientConn
}

// Dial connects to a remote vault dispatcher.
func Dial(ctx context.Context, addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append(opts, grpc.WithDefaultCallOptions(
		grpc.ForceCodec(CramberryCodec{}),
	))
	cc, err := grpc.DialContext(ctx, addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("vault client: dial %s: %w", addr, err)
	}
	return &Client{cc: cc}, nil
}

func (c *Client) Close() error {
	return c.cc.Close()
}

func (c *Client) InitializeVault(ctx context.Context, params server.InitializeVaultParams) (solana.PublicKey, error) {
	req := &InitializeVaultRequest{
		Base:             keyOf(params.Base),
		ReceiptMint:      keyOf(params.ReceiptMint),
		SupportedMint:    keyOf(params.SupportedMint),
		Admin:            keyOf(params.Admin),
		DepositFeeBps:    uint32(params.DepositFeeBps),
		WithdrawalFeeBps: uint32(params.WithdrawalFeeBps),
	}
	resp := new(InitializeVaultResponse)
	if err := c.cc.Invoke(ctx, fullMethod("InitializeVault"), req, resp); err != nil {
		return solana.PublicKey{}, err
	}
	if err := resp.Status.Err(); err != nil {
		return solana.PublicKey{}, err
	}
	return resp.Address.PublicKey(), nil
}

func (c *Client) Deposit(ctx context.Context, addr solana.PublicKey, amount uint64) (server.DepositReceipt, error) {
	req := &DepositRequest{Vault: keyOf(addr), Amount: amount}
	resp := new(DepositResponse)
	if err := c.cc.Invoke(ctx, fullMethod("Deposit"), req, resp); err != nil {
		return server.DepositReceipt{}, err
	}
	if err := resp.Status.Err(); err != nil {
		return server.DepositReceipt{}, err
	}
	return server.DepositReceipt{
		Minted:      resp.Minted,
		Fee:         resp.Fee,
		ToDepositor: resp.ToDepositor,
	}, nil
}

func (c *Client) SetCapacity(ctx context.Context, addr, signer solana.PublicKey, capacity uint64) error {
	req := &SetCapacityRequest{Vault: keyOf(addr), Signer: keyOf(signer), Capacity: capacity}
	return c.ack(ctx, "SetCapacity", req)
}

func (c *Client) SetAdmin(ctx context.Context, addr, signer, admin solana.PublicKey) error {
	return c.setAuthority(ctx, AuthorityAdmin, addr, signer, admin)
}

func (c *Client) SetDelegationAdmin(ctx context.Context, addr, signer, admin solana.PublicKey) error {
	return c.setAuthority(ctx, AuthorityDelegationAdmin, addr, signer, admin)
}

func (c *Client) SetFeeOwner(ctx context.Context, addr, signer, owner solana.PublicKey) error {
	return c.setAuthority(ctx, AuthorityFeeOwner, addr, signer, owner)
}

func (c *Client) GetVault(ctx context.Context, addr solana.PublicKey) (server.VaultView, error) {
	req := &GetVaultRequest{Vault: keyOf(addr)}
	resp := new(GetVaultResponse)
	if err := c.cc.Invoke(ctx, fullMethod("GetVault"), req, resp); err != nil {
		return server.VaultView{}, err
	}
	if err := resp.Status.Err(); err != nil {
		return server.VaultView{}, err
	}
	return resp.Vault.view(), nil
}

func (c *Client) setAuthority(ctx context.Context, kind AuthorityKind, addr, signer, authority solana.PublicKey) error {
	req := &SetAuthorityRequest{
		Vault:     keyOf(addr),
		Signer:    keyOf(signer),
		Kind:      kind,
		Authority: keyOf(authority),
	}
	return c.ack(ctx, "SetAuthority", req)
}

func (c *Client) ack(ctx context.Context, method string, req any) error {
	resp := new(AckResponse)
	if err := c.cc.Invoke(ctx, fullMethod(method), req, resp); err != nil {
		return err
	}
	return resp.Status.Err()
}
