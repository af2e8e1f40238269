package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/blockberries/vault"
	"github.com/blockberries/vault/config"
	vaultgrpc "github.com/blockberries/vault/grpc"
	"github.com/blockberries/vault/local"
	"github.com/blockberries/vault/pda"
	"github.com/blockberries/vault/server"
	"github.com/blockberries/vault/store"
	"github.com/blockberries/vault/types"
)

const flagConfig = "config"

// NewRootCmd builds the vaultd command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "vaultd",
		Short:         "Vault dispatcher daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String(flagConfig, "", "path to a YAML config file")
	root.AddCommand(serveCmd(), addressCmd())
	return root
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the vault API over gRPC",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString(flagConfig)
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			log, err := config.NewLogger(cfg.Log)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	programID, err := cfg.Program()
	if err != nil {
		return err
	}
	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Warn("close store", zap.Error(err))
		}
	}()

	proc := server.NewProcessor(programID, pda.Deriver{}, st, log)
	gs := grpc.NewServer()
	vaultgrpc.NewGRPCServer(local.NewConnection(proc), log).Register(gs)

	lis, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Listen, err)
	}
	log.Info("vaultd started",
		zap.String("listen", lis.Addr().String()),
		zap.Stringer("program_id", programID),
		zap.String("store", cfg.Store.Driver),
	)

	errCh := make(chan error, 1)
	go func() { errCh <- gs.Serve(lis) }()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
		gs.GracefulStop()
		return nil
	case err := <-errCh:
		return err
	}
}

func openStore(ctx context.Context, c config.StoreConfig) (store.AccountStore, error) {
	switch c.Driver {
	case config.DriverSQLite:
		return store.OpenSQLite(ctx, c.Path)
	default:
		return store.NewMemory(), nil
	}
}

func addressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "address <base>",
		Short: "Print the vault address derived from a base key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			programFlag, _ := cmd.Flags().GetString("program-id")
			if programFlag == "" {
				path, _ := cmd.Flags().GetString(flagConfig)
				cfg, err := config.Load(path)
				if err != nil {
					return err
				}
				programFlag = cfg.ProgramID
			}
			programID, err := types.ParseKey(programFlag)
			if err != nil {
				return err
			}
			base, err := types.ParseKey(args[0])
			if err != nil {
				return err
			}
			addr, bump, _, err := vault.FindProgramAddress(pda.Deriver{}, programID, base)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d\n", addr, bump)
			return nil
		},
	}
	cmd.Flags().String("program-id", "", "vault program ID (defaults to the configured one)")
	return cmd
}
