package server

import (
	"context"
	"errors"
	"sync"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/blockberries/vault"
	"github.com/blockberries/vault/store"
	"github.com/blockberries/vault/types"
)

// Compile-time interface check.
var _ API = (*Processor)(nil)

// Processor executes vault operations against an account store. Every
// mutation runs as one cycle: read the account, sanitize it, apply the
// operation to the decoded vault, save, and store the account again.
// Cycles on the same vault are serialized.
type Processor struct {
	programID solana.PublicKey
	deriver   vault.AddressDeriver
	store     store.AccountStore
	guard     *CycleGuard
	log       *zap.Logger

	// Serializes provisioning so vault indices are unique.
	initMu sync.Mutex
}

// NewProcessor creates a processor for the vault program programID.
func NewProcessor(programID solana.PublicKey, deriver vault.AddressDeriver, st store.AccountStore, log *zap.Logger) *Processor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Processor{
		programID: programID,
		deriver:   deriver,
		store:     st,
		guard:     NewCycleGuard(),
		log:       log.Named("processor"),
	}
}

// ProgramID returns the program the processor acts for.
func (p *Processor) ProgramID() solana.PublicKey { return p.programID }

// Guard returns the processor's cycle guard.
func (p *Processor) Guard() *CycleGuard { return p.guard }

func (p *Processor) InitializeVault(ctx context.Context, params InitializeVaultParams) (solana.PublicKey, error) {
	if err := vault.ValidateFeeBps(params.DepositFeeBps); err != nil {
		return solana.PublicKey{}, err
	}
	if err := vault.ValidateFeeBps(params.WithdrawalFeeBps); err != nil {
		return solana.PublicKey{}, err
	}

	addr, bump, _, err := vault.FindProgramAddress(p.deriver, p.programID, params.Base)
	if err != nil {
		return solana.PublicKey{}, err
	}

	p.initMu.Lock()
	defer p.initMu.Unlock()

	cycle := p.guard.Acquire(addr)
	defer cycle.Release()
	log := p.log.With(zap.String("op", "initialize"), zap.Stringer("vault", addr), zap.Stringer("cycle", cycle.ID()))

	existing, err := p.store.Get(ctx, addr)
	switch {
	case err == nil && !existing.DataIsEmpty():
		return solana.PublicKey{}, ErrVaultExists.Wrapf("%s", addr)
	case err != nil && !errors.Is(err, store.ErrAccountNotFound):
		return solana.PublicKey{}, err
	}

	index, err := p.store.CountOwned(ctx, p.programID)
	if err != nil {
		return solana.PublicKey{}, err
	}

	v := vault.New(
		params.ReceiptMint,
		params.SupportedMint,
		params.Admin,
		index,
		params.Base,
		params.DepositFeeBps,
		params.WithdrawalFeeBps,
		bump,
	)
	data, err := v.Encode()
	if err != nil {
		return solana.PublicKey{}, err
	}
	account := types.AccountInfo{Key: addr, Owner: p.programID, Data: data, IsWritable: true}
	cycle.MarkLoaded()
	cycle.MarkDirty()

	if err := p.store.Put(ctx, account); err != nil {
		log.Error("store vault", zap.Error(err))
		return solana.PublicKey{}, err
	}
	cycle.MarkPersisted()

	log.Info("vault initialized", zap.Uint64("index", index), zap.Uint8("bump", bump))
	return addr, nil
}

func (p *Processor) Deposit(ctx context.Context, addr solana.PublicKey, amount uint64) (DepositReceipt, error) {
	var receipt DepositReceipt
	err := p.mutate(ctx, addr, "deposit", func(v *vault.Vault) error {
		minted, err := v.DepositAndMintWithCapacityCheck(amount)
		if err != nil {
			return err
		}
		fee, err := v.CalculateDepositFee(minted)
		if err != nil {
			return err
		}
		if fee > minted {
			return vault.ErrInvalidFeeBps.Wrapf("fee %d exceeds minted %d", fee, minted)
		}
		receipt = DepositReceipt{Minted: minted, Fee: fee, ToDepositor: minted - fee}
		return nil
	})
	if err != nil {
		return DepositReceipt{}, err
	}
	return receipt, nil
}

func (p *Processor) SetCapacity(ctx context.Context, addr, signer solana.PublicKey, capacity uint64) error {
	return p.mutate(ctx, addr, "set_capacity", func(v *vault.Vault) error {
		if err := requireAdmin(v, signer); err != nil {
			return err
		}
		v.SetCapacity(capacity)
		return nil
	})
}

func (p *Processor) SetAdmin(ctx context.Context, addr, signer, admin solana.PublicKey) error {
	return p.mutate(ctx, addr, "set_admin", func(v *vault.Vault) error {
		if err := requireAdmin(v, signer); err != nil {
			return err
		}
		v.SetAdmin(admin)
		return nil
	})
}

func (p *Processor) SetDelegationAdmin(ctx context.Context, addr, signer, admin solana.PublicKey) error {
	return p.mutate(ctx, addr, "set_delegation_admin", func(v *vault.Vault) error {
		if err := requireAdmin(v, signer); err != nil {
			return err
		}
		v.SetDelegationAdmin(admin)
		return nil
	})
}

func (p *Processor) SetFeeOwner(ctx context.Context, addr, signer, owner solana.PublicKey) error {
	return p.mutate(ctx, addr, "set_fee_owner", func(v *vault.Vault) error {
		if err := requireAdmin(v, signer); err != nil {
			return err
		}
		v.SetFeeOwner(owner)
		return nil
	})
}

func (p *Processor) GetVault(ctx context.Context, addr solana.PublicKey) (VaultView, error) {
	account, err := p.store.Get(ctx, addr)
	if err != nil {
		return VaultView{}, err
	}
	sv, err := vault.Sanitize(p.deriver, p.programID, &account, false)
	if err != nil {
		return VaultView{}, err
	}
	return ViewOf(addr, sv.Vault()), nil
}

// Close is a no-op; the store is owned by the caller.
func (p *Processor) Close() error { return nil }

// mutate runs fn inside a cycle on the vault at addr. Nothing is
// written unless fn succeeds.
func (p *Processor) mutate(ctx context.Context, addr solana.PublicKey, op string, fn func(*vault.Vault) error) error {
	cycle := p.guard.Acquire(addr)
	defer cycle.Release()
	log := p.log.With(zap.String("op", op), zap.Stringer("vault", addr), zap.Stringer("cycle", cycle.ID()))

	account, err := p.store.Get(ctx, addr)
	if err != nil {
		log.Debug("read vault", zap.Error(err))
		return err
	}
	// The dispatcher marks the vault writable for every mutating call.
	account.IsWritable = true

	sv, err := vault.Sanitize(p.deriver, p.programID, &account, true)
	if err != nil {
		log.Warn("vault rejected", zap.Error(err), zap.Stringer("program_error", vault.ProgramErrorOf(err)))
		return err
	}
	cycle.MarkLoaded()

	if err := fn(sv.Vault()); err != nil {
		log.Info("operation failed", zap.Error(err))
		return err
	}
	cycle.MarkDirty()

	if err := sv.Save(); err != nil {
		log.Error("save vault", zap.Error(err))
		return err
	}
	if err := p.store.Put(ctx, *sv.Account()); err != nil {
		log.Error("store vault", zap.Error(err))
		return err
	}
	cycle.MarkPersisted()

	log.Debug("vault persisted",
		zap.Uint64("receipt_supply", sv.Vault().ReceiptSupply()),
		zap.Uint64("tokens_deposited", sv.Vault().TokensDeposited()),
	)
	return nil
}

func requireAdmin(v *vault.Vault, signer solana.PublicKey) error {
	if !v.Admin().Equals(signer) {
		return ErrUnauthorized.Wrapf("signer %s, admin %s", signer, v.Admin())
	}
	return nil
}
