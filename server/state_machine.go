// Package server provides the host-side dispatcher that drives the
// vault core: it reads accounts from a store, serializes
// load/mutate/save cycles per address, and writes the results back.
package server

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
)

// cycleState represents a state in the per-account cycle state machine.
type cycleState uint32

const (
	// stateUnvalidated: the account has been read but not checked.
	stateUnvalidated cycleState = iota
	// stateLoaded: the account passed every load check and its vault
	// is decoded.
	stateLoaded
	// stateDirty: the decoded vault has been mutated and not yet
	// written back.
	stateDirty
	// statePersisted: the vault was saved and the account stored.
	// Terminal.
	statePersisted
)

func (s cycleState) String() string {
	switch s {
	case stateUnvalidated:
		return "Unvalidated"
	case stateLoaded:
		return "Loaded"
	case stateDirty:
		return "Dirty"
	case statePersisted:
		return "Persisted"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// Cycle is one load/mutate/save pass over a single account. It holds
// the account's lock until Release.
type Cycle struct {
	id    uuid.UUID
	addr  solana.PublicKey
	state atomic.Uint32
	lock  *addressLock
	guard *CycleGuard
	done  atomic.Bool
}

// ID returns the cycle's correlation ID.
func (c *Cycle) ID() uuid.UUID { return c.id }

// Address returns the account the cycle runs on.
func (c *Cycle) Address() solana.PublicKey { return c.addr }

// State returns the current cycle state.
func (c *Cycle) State() string {
	return cycleState(c.state.Load()).String()
}

// MarkLoaded transitions Unvalidated → Loaded.
// Panics if not in Unvalidated state.
func (c *Cycle) MarkLoaded() {
	if !c.state.CompareAndSwap(uint32(stateUnvalidated), uint32(stateLoaded)) {
		panic(fmt.Sprintf("github.com/blockberries/vault: MarkLoaded called in state %s (expected Unvalidated)", c.State()))
	}
}

// MarkDirty transitions Loaded → Dirty. Repeated calls in Dirty are
// allowed. Panics in any other state.
func (c *Cycle) MarkDirty() {
	if c.state.CompareAndSwap(uint32(stateLoaded), uint32(stateDirty)) {
		return
	}
	if state := cycleState(c.state.Load()); state != stateDirty {
		panic(fmt.Sprintf("github.com/blockberries/vault: MarkDirty called in state %s (expected Loaded or Dirty)", state))
	}
}

// MarkPersisted transitions Dirty → Persisted.
// Panics if not in Dirty state.
func (c *Cycle) MarkPersisted() {
	if !c.state.CompareAndSwap(uint32(stateDirty), uint32(statePersisted)) {
		panic(fmt.Sprintf("github.com/blockberries/vault: MarkPersisted called in state %s (expected Dirty)", c.State()))
	}
}

// Release ends the cycle and unlocks its account. A cycle released
// before reaching Persisted is abandoned; nothing it loaded may be
// used afterwards. Release is idempotent.
func (c *Cycle) Release() {
	if !c.done.CompareAndSwap(false, true) {
		return
	}
	c.guard.release(c.addr, c.lock)
}

type addressLock struct {
	mu   sync.Mutex
	refs int
}

// CycleGuard serializes cycles per account address. Cycles on
// different addresses run concurrently.
type CycleGuard struct {
	mu    sync.Mutex
	locks map[solana.PublicKey]*addressLock
}

// NewCycleGuard creates a guard with no active cycles.
func NewCycleGuard() *CycleGuard {
	return &CycleGuard{locks: make(map[solana.PublicKey]*addressLock)}
}

// Acquire starts a cycle on addr, blocking while another cycle on the
// same address is in progress. The caller must Release the cycle.
func (g *CycleGuard) Acquire(addr solana.PublicKey) *Cycle {
	g.mu.Lock()
	l, ok := g.locks[addr]
	if !ok {
		l = &addressLock{}
		g.locks[addr] = l
	}
	l.refs++
	g.mu.Unlock()

	l.mu.Lock()
	c := &Cycle{id: uuid.New(), addr: addr, lock: l, guard: g}
	c.state.Store(uint32(stateUnvalidated))
	return c
}

// Active returns the number of addresses with a running or waiting
// cycle.
func (g *CycleGuard) Active() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.locks)
}

func (g *CycleGuard) release(addr solana.PublicKey, l *addressLock) {
	l.mu.Unlock()
	g.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(g.locks, addr)
	}
	g.mu.Unlock()
}
