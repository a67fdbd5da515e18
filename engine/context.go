package engine

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// FeeDenominator is 100% expressed in basis points.
const FeeDenominator = 10000

// DefaultFeeBps is the canonical constant-product trading fee (0.3%).
const DefaultFeeBps = 30

var (
	// ErrZeroFactory is returned when a Context carries no factory address.
	ErrZeroFactory = errors.New("engine: factory address is zero")
	// ErrZeroPairCodeHash is returned when a Context carries no pair code hash.
	ErrZeroPairCodeHash = errors.New("engine: pair code hash is zero")
	// ErrInvalidFee is returned when the configured fee meets or exceeds 100%.
	ErrInvalidFee = errors.New("engine: fee must be below 10000 basis points")
)

// Context is the immutable deployment context every router operation runs
// against: which factory created the pairs, the code hash their addresses
// were derived with, and the chain's wrapped native asset.
//
// CONTRACT:
//  1. A Context is fixed at construction time and never mutated afterwards;
//     it replaces what the on-chain system keeps as immutable contract state.
//  2. PairCodeHash is part of the external contract of address derivation:
//     changing it invalidates every previously derived pair address.
type Context struct {
	// Factory is the registry that created (or will create) all pairs.
	Factory common.Address

	// PairCodeHash is the keccak digest of the pair implementation's init
	// code, the domain-separation constant of CREATE2 address derivation.
	PairCodeHash common.Hash

	// WrappedNative is the tradable wrapped form of the chain's native
	// asset. Callers use it to build paths; the router itself only carries
	// it.
	WrappedNative common.Address

	// FeeBps is the trading fee in basis points, e.g. 30 for 0.3%.
	FeeBps uint16
}

// Validate checks that the context can address pairs and price trades.
func (c *Context) Validate() error {
	if c.Factory == (common.Address{}) {
		return ErrZeroFactory
	}
	if c.PairCodeHash == (common.Hash{}) {
		return ErrZeroPairCodeHash
	}
	if c.FeeBps >= FeeDenominator {
		return fmt.Errorf("%w: got %d", ErrInvalidFee, c.FeeBps)
	}
	return nil
}
