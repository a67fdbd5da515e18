// Package mempool is a deterministic in-memory implementation of the pool
// collaborator contracts. It exists so the routing engine can be exercised
// end to end without a chain, including liquidity provision and
// fee-on-transfer assets. Pair semantics follow the canonical constant-product
// pair: balance-delta input derivation, fee-adjusted K invariant, minimum
// liquidity locked on first mint.
package mempool

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/pairflow/pairflow-router-go/amm"
	"github.com/pairflow/pairflow-router-go/engine"
	"github.com/pairflow/pairflow-router-go/pool"
)

var (
	// ErrInsufficientBalance is returned when a transfer exceeds the sender's balance.
	ErrInsufficientBalance = errors.New("mempool: insufficient balance")
	// ErrInvalidAmount is returned when a transfer amount is nil or negative.
	ErrInvalidAmount = errors.New("mempool: amount must be non-nil and non-negative")
	// ErrInvalidFee is returned when a transfer fee of 100% or more is configured.
	ErrInvalidFee = errors.New("mempool: transfer fee must be below 10000 basis points")
)

type pairState struct {
	addr   common.Address
	token0 common.Address
	token1 common.Address

	reserve0           *big.Int
	reserve1           *big.Int
	blockTimestampLast uint32
}

// Backend implements pool.Backend entirely in memory.
//
// The RWMutex only keeps the registry and ledger maps coherent; transactional
// all-or-nothing semantics across multiple calls are the caller's concern,
// exactly as they are for the on-chain collaborators.
type Backend struct {
	mu  sync.RWMutex
	env engine.Context

	pairs     map[common.Address]*pairState
	pairIndex map[[2]common.Address]common.Address

	// balances[token][owner]; liquidity tokens use the pair address as
	// their token identifier.
	balances     map[common.Address]map[common.Address]*big.Int
	lpSupply     map[common.Address]*big.Int
	transferFees map[common.Address]uint16

	clock uint32
}

// New creates an empty backend for the given deployment context.
func New(env engine.Context) (*Backend, error) {
	if err := env.Validate(); err != nil {
		return nil, err
	}
	return &Backend{
		env:          env,
		pairs:        make(map[common.Address]*pairState),
		pairIndex:    make(map[[2]common.Address]common.Address),
		balances:     make(map[common.Address]map[common.Address]*big.Int),
		lpSupply:     make(map[common.Address]*big.Int),
		transferFees: make(map[common.Address]uint16),
	}, nil
}

// --- Factory ---

// GetPair returns the address of the pair for the token pair, if created.
func (b *Backend) GetPair(_ context.Context, tokenA, tokenB common.Address) (common.Address, bool, error) {
	token0, token1, err := amm.SortTokens(tokenA, tokenB)
	if err != nil {
		return common.Address{}, false, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	addr, ok := b.pairIndex[[2]common.Address{token0, token1}]
	return addr, ok, nil
}

// CreatePair deploys a fresh pair at the address the locator derives, so
// amm.PairFor keeps addressing pairs without a lookup.
func (b *Backend) CreatePair(_ context.Context, tokenA, tokenB common.Address) (common.Address, error) {
	token0, token1, err := amm.SortTokens(tokenA, tokenB)
	if err != nil {
		return common.Address{}, err
	}
	addr, err := amm.PairFor(b.env.Factory, b.env.PairCodeHash, token0, token1)
	if err != nil {
		return common.Address{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	key := [2]common.Address{token0, token1}
	if _, ok := b.pairIndex[key]; ok {
		return common.Address{}, fmt.Errorf("%w: %s/%s", pool.ErrPairExists, token0.Hex(), token1.Hex())
	}
	b.pairIndex[key] = addr
	b.pairs[addr] = &pairState{
		addr:     addr,
		token0:   token0,
		token1:   token1,
		reserve0: new(big.Int),
		reserve1: new(big.Int),
	}
	b.lpSupply[addr] = new(big.Int)
	return addr, nil
}

// Pair resolves a pair address to its handle.
func (b *Backend) Pair(addr common.Address) (pool.Pair, error) {
	b.mu.RLock()
	_, ok := b.pairs[addr]
	b.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", pool.ErrUnknownPair, addr.Hex())
	}
	return &memPair{backend: b, addr: addr}, nil
}

// --- Ledger ---

// BalanceOf reports the owner's balance of the token. The returned value is
// a copy the caller may mutate freely.
func (b *Backend) BalanceOf(_ context.Context, token, owner common.Address) (*big.Int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.balanceLocked(token, owner), nil
}

// Transfer moves amount of token from one party to another, applying the
// token's configured transfer fee, if any, on the receiving side.
func (b *Backend) Transfer(_ context.Context, token, from, to common.Address, amount *big.Int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.transferLocked(token, from, to, amount)
}

// Credit mints amount of token to the owner. Test and simulation setup only.
func (b *Backend) Credit(token, owner common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	bal := b.balanceRefLocked(token, owner)
	bal.Add(bal, amount)
	return nil
}

// SetTransferFee configures a proportional fee, in basis points, deducted
// from every transfer of the token. Models fee-on-transfer assets.
func (b *Backend) SetTransferFee(token common.Address, feeBps uint16) error {
	if feeBps >= engine.FeeDenominator {
		return fmt.Errorf("%w: got %d", ErrInvalidFee, feeBps)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.transferFees[token] = feeBps
	return nil
}

// LiquiditySupply returns the total liquidity outstanding for a pair,
// including the minimum liquidity locked forever on first mint.
func (b *Backend) LiquiditySupply(pairAddr common.Address) *big.Int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if supply, ok := b.lpSupply[pairAddr]; ok {
		return new(big.Int).Set(supply)
	}
	return new(big.Int)
}

// balanceRefLocked returns the live balance cell, allocating it on demand.
func (b *Backend) balanceRefLocked(token, owner common.Address) *big.Int {
	owners, ok := b.balances[token]
	if !ok {
		owners = make(map[common.Address]*big.Int)
		b.balances[token] = owners
	}
	bal, ok := owners[owner]
	if !ok {
		bal = new(big.Int)
		owners[owner] = bal
	}
	return bal
}

func (b *Backend) balanceLocked(token, owner common.Address) *big.Int {
	if owners, ok := b.balances[token]; ok {
		if bal, ok := owners[owner]; ok {
			return new(big.Int).Set(bal)
		}
	}
	return new(big.Int)
}

func (b *Backend) transferLocked(token, from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if amount.Sign() == 0 {
		return nil
	}
	fromBal := b.balanceRefLocked(token, from)
	if fromBal.Cmp(amount) < 0 {
		return fmt.Errorf("%w: token %s, have %s, need %s", ErrInsufficientBalance, token.Hex(), fromBal.String(), amount.String())
	}
	received := new(big.Int).Set(amount)
	if feeBps := b.transferFees[token]; feeBps > 0 {
		fee := new(big.Int).Mul(amount, big.NewInt(int64(feeBps)))
		fee.Div(fee, big.NewInt(engine.FeeDenominator))
		received.Sub(received, fee)
	}
	fromBal.Sub(fromBal, amount)
	toBal := b.balanceRefLocked(token, to)
	toBal.Add(toBal, received)
	return nil
}

// tick advances the backend's logical clock, standing in for the block
// timestamp a chain would stamp reserve synchronizations with.
func (b *Backend) tickLocked() uint32 {
	b.clock++
	return b.clock
}
