package vaultgrpc

import (
	"context"
	"math"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/blockberries/vault"
	"github.com/blockberries/vault/server"
)

// Compile-time interface check.
var _ VaultServiceServer = (*GRPCServer)(nil)

// GRPCServer exposes a server.API over gRPC.
type GRPCServer struct {
	api server.API
	log *zap.Logger
}

// NewGRPCServer creates a gRPC server wrapping api. A nil log
// disables logging.
func NewGRPCServer(api server.API, log *zap.Logger) *GRPCServer {
	if log == nil {
		log = zap.NewNop()
	}
	return &GRPCServer{api: api, log: log.Named("grpc")}
}

// Register adds the vault service to a gRPC server.
func (s *GRPCServer) Register(gs *grpc.Server) {
	RegisterVaultServiceServer(gs, s)
}

// Serve starts a gRPC server on the given listener.
func (s *GRPCServer) Serve(lis net.Listener, opts ...grpc.ServerOption) error {
	gs := grpc.NewServer(opts...)
	s.Register(gs)
	s.log.Info("serving", zap.Stringer("addr", lis.Addr()))
	return gs.Serve(lis)
}

// API returns the wrapped dispatcher.
func (s *GRPCServer) API() server.API {
	return s.api
}

func (s *GRPCServer) InitializeVault(ctx context.Context, req *InitializeVaultRequest) (*InitializeVaultResponse, error) {
	depositBps, err := narrowBps(req.DepositFeeBps)
	if err != nil {
		return &InitializeVaultResponse{Status: s.status("InitializeVault", err)}, nil
	}
	withdrawalBps, err := narrowBps(req.WithdrawalFeeBps)
	if err != nil {
		return &InitializeVaultResponse{Status: s.status("InitializeVault", err)}, nil
	}
	addr, err := s.api.InitializeVault(ctx, server.InitializeVaultParams{
		Base:             req.Base.PublicKey(),
		ReceiptMint:      req.ReceiptMint.PublicKey(),
		SupportedMint:    req.SupportedMint.PublicKey(),
		Admin:            req.Admin.PublicKey(),
		DepositFeeBps:    depositBps,
		WithdrawalFeeBps: withdrawalBps,
	})
	if err != nil {
		return &InitializeVaultResponse{Status: s.status("InitializeVault", err)}, nil
	}
	return &InitializeVaultResponse{Address: keyOf(addr)}, nil
}

func (s *GRPCServer) Deposit(ctx context.Context, req *DepositRequest) (*DepositResponse, error) {
	receipt, err := s.api.Deposit(ctx, req.Vault.PublicKey(), req.Amount)
	if err != nil {
		return &DepositResponse{Status: s.status("Deposit", err)}, nil
	}
	return &DepositResponse{
		Minted:      receipt.Minted,
		Fee:         receipt.Fee,
		ToDepositor: receipt.ToDepositor,
	}, nil
}

func (s *GRPCServer) SetCapacity(ctx context.Context, req *SetCapacityRequest) (*AckResponse, error) {
	err := s.api.SetCapacity(ctx, req.Vault.PublicKey(), req.Signer.PublicKey(), req.Capacity)
	return &AckResponse{Status: s.status("SetCapacity", err)}, nil
}

func (s *GRPCServer) SetAuthority(ctx context.Context, req *SetAuthorityRequest) (*AckResponse, error) {
	addr, signer, authority := req.Vault.PublicKey(), req.Signer.PublicKey(), req.Authority.PublicKey()

	var err error
	switch req.Kind {
	case AuthorityAdmin:
		err = s.api.SetAdmin(ctx, addr, signer, authority)
	case AuthorityDelegationAdmin:
		err = s.api.SetDelegationAdmin(ctx, addr, signer, authority)
	case AuthorityFeeOwner:
		err = s.api.SetFeeOwner(ctx, addr, signer, authority)
	default:
		err = ErrUnknownAuthority.Wrapf("kind %d", req.Kind)
	}
	return &AckResponse{Status: s.status("SetAuthority", err)}, nil
}

func (s *GRPCServer) GetVault(ctx context.Context, req *GetVaultRequest) (*GetVaultResponse, error) {
	view, err := s.api.GetVault(ctx, req.Vault.PublicKey())
	if err != nil {
		return &GetVaultResponse{Status: s.status("GetVault", err)}, nil
	}
	return &GetVaultResponse{Vault: vaultMessageOf(view)}, nil
}

func (s *GRPCServer) status(method string, err error) Status {
	if err != nil {
		s.log.Debug("call failed", zap.String("method", method), zap.Error(err))
	}
	return statusOf(err)
}

func narrowBps(bps uint32) (uint16, error) {
	if bps > math.MaxUint16 {
		return 0, vault.ErrInvalidFeeBps.Wrapf("%d bps", bps)
	}
	return uint16(bps), nil
}
