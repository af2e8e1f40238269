package vaultgrpc

import (
	"context"

	"google.golang.org/grpc"
)

const serviceName = "vault.v1.VaultService"

// VaultServiceServer is the server-side interface for the vault gRPC
// service. Operation failures travel in each response's Status; a
// returned error means the call itself could not be served.
type VaultServiceServer interface {
	InitializeVault(context.Context, *InitializeVaultRequest) (*InitializeVaultResponse, error)
	Deposit(context.Context, *DepositRequest) (*DepositResponse, error)
	SetCapacity(context.Context, *SetCapacityRequest) (*AckResponse, error)
	SetAuthority(context.Context, *SetAuthorityRequest) (*AckResponse, error)
	GetVault(context.Context, *GetVaultRequest) (*GetVaultResponse, error)
}

// RegisterVaultServiceServer registers the VaultServiceServer on a gRPC server.
func RegisterVaultServiceServer(s *grpc.Server, srv VaultServiceServer) {
	s.RegisterService(&serviceDesc, srv)
}

// --- Handler functions ---

func handlerInitializeVault(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(InitializeVaultRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(VaultServiceServer).InitializeVault(ctx, req)
}

func handlerDeposit(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(DepositRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(VaultServiceServer).Deposit(ctx, req)
}

func handlerSetCapacity(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(SetCapacityRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(VaultServiceServer).SetCapacity(ctx, req)
}

func handlerSetAuthority(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(SetAuthorityRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(VaultServiceServer).SetAuthority(ctx, req)
}

func handlerGetVault(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(GetVaultRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(VaultServiceServer).GetVault(ctx, req)
}

func fullMethod(name string) string {
	return "/" + serviceName + "/" + name
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*VaultServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "InitializeVault", Handler: handlerInitializeVault},
		{MethodName: "Deposit", Handler: handlerDeposit},
		{MethodName: "SetCapacity", Handler: handlerSetCapacity},
		{MethodName: "SetAuthority", Handler: handlerSetAuthority},
		{MethodName: "GetVault", Handler: handlerGetVault},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "github.com/blockberries/vault/v1/service.cram",
}
