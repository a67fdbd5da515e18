// Package pool defines the external collaborator contracts the routing engine
// depends on: the pair contract holding two reserves, the factory that
// creates and looks pairs up, and the ledger that moves token balances.
//
// Every method that can suspend on external state takes a context.Context.
// Implementations must be atomic per call: a call either fully succeeds or
// leaves no observable effect. The engine never retries.
package pool

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrUnknownPair is returned when an address does not resolve to a pair.
	ErrUnknownPair = errors.New("pool: unknown pair")
	// ErrPairExists is returned by CreatePair when the pair already exists.
	ErrPairExists = errors.New("pool: pair exists")
	// ErrReadOnlyBackend is returned by backends that can observe chain
	// state but not mutate it.
	ErrReadOnlyBackend = errors.New("pool: backend is read-only")
)

// Pair is the contract holding two asset reserves and executing the
// balance-conserving exchange. Reserve and amount sides always follow the
// canonical (token0, token1) ordering of amm.SortTokens.
type Pair interface {
	// GetReserves returns both reserves in canonical order along with the
	// pair's last synchronization marker.
	GetReserves(ctx context.Context) (reserve0, reserve1 *big.Int, blockTimestampLast uint32, err error)

	// Swap sends amount0Out of token0 and amount1Out of token1 to the
	// recipient, requiring that enough input was already transferred to the
	// pair for the constant-product invariant to hold after fees.
	Swap(ctx context.Context, amount0Out, amount1Out *big.Int, to common.Address, data []byte) error

	// Mint converts the token balances transferred to the pair since the
	// last sync into liquidity credited to the recipient.
	Mint(ctx context.Context, to common.Address) (liquidity *big.Int, err error)

	// Burn redeems the liquidity held by the pair itself, paying out both
	// underlying amounts to the recipient.
	Burn(ctx context.Context, to common.Address) (amount0, amount1 *big.Int, err error)
}

// Factory creates and looks up pairs.
type Factory interface {
	// GetPair returns the pair address for the token pair, or found=false
	// when no pair has been created.
	GetPair(ctx context.Context, tokenA, tokenB common.Address) (addr common.Address, found bool, err error)

	// CreatePair deploys the pair for the token pair and returns its address.
	CreatePair(ctx context.Context, tokenA, tokenB common.Address) (common.Address, error)
}

// Ledger moves and reports token balances. Fee-on-transfer assets may credit
// the recipient with less than the nominal amount; callers that care must
// measure balance deltas rather than trust nominal amounts.
type Ledger interface {
	BalanceOf(ctx context.Context, token, owner common.Address) (*big.Int, error)
	Transfer(ctx context.Context, token, from, to common.Address, amount *big.Int) error
}

// Backend bundles everything the router needs from the outside world.
type Backend interface {
	Factory
	Ledger

	// Pair resolves a pair address to its contract handle.
	Pair(addr common.Address) (Pair, error)
}
