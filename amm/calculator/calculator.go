// Package calculator implements the pure constant-product pricing formulas.
// All arithmetic is exact big.Int with truncating division; the rounding
// direction of every formula favors the pool, never the trader.
package calculator

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/pairflow/pairflow-router-go/engine"
)

var (
	// basisPointDivisor is a constant representing 100% in basis points (10000).
	basisPointDivisor = big.NewInt(engine.FeeDenominator)

	one = big.NewInt(1)

	// ErrNilAmount is returned when a nil pointer is passed for an amount.
	ErrNilAmount = errors.New("calculator: nil pointer passed as amount")
	// ErrInsufficientAmount is returned by Quote when the supplied amount is not strictly positive.
	ErrInsufficientAmount = errors.New("calculator: insufficient amount")
	// ErrInsufficientInputAmount is returned by GetAmountOut when the input amount is not strictly positive.
	ErrInsufficientInputAmount = errors.New("calculator: insufficient input amount")
	// ErrInsufficientOutputAmount is returned by GetAmountIn when the output amount is not strictly positive.
	ErrInsufficientOutputAmount = errors.New("calculator: insufficient output amount")
	// ErrInsufficientLiquidity is returned when a reserve is non-positive, or when an
	// amountOut is requested that is greater than or equal to the available reserve.
	ErrInsufficientLiquidity = errors.New("calculator: insufficient liquidity")
	// ErrInvalidFee is returned when the fee meets or exceeds 100%.
	ErrInvalidFee = errors.New("calculator: fee must be below 10000 basis points")
)

// Calculator holds reusable big.Int objects to avoid memory allocations during
// calculations. Instances are NOT safe for concurrent use by themselves; they
// are managed by the sync.Pool below.
type Calculator struct {
	feeMultiplier   *big.Int
	amountInWithFee *big.Int
	numerator       *big.Int
	denominator     *big.Int
}

var calculatorPool = sync.Pool{
	New: func() any {
		return &Calculator{
			feeMultiplier:   new(big.Int),
			amountInWithFee: new(big.Int),
			numerator:       new(big.Int),
			denominator:     new(big.Int),
		}
	},
}

// Quote returns the proportional equivalent of amountA in the other asset:
// amountB = amountA * reserveB / reserveA, truncating. No fee is applied;
// this is the ratio used for liquidity deposits, not for swaps.
func Quote(amountA, reserveA, reserveB *big.Int) (*big.Int, error) {
	if amountA == nil || reserveA == nil || reserveB == nil {
		return nil, ErrNilAmount
	}
	if amountA.Sign() <= 0 {
		return nil, fmt.Errorf("%w: amountA is %s", ErrInsufficientAmount, amountA.String())
	}
	if reserveA.Sign() <= 0 || reserveB.Sign() <= 0 {
		return nil, ErrInsufficientLiquidity
	}
	amountB := new(big.Int).Mul(amountA, reserveB)
	return amountB.Div(amountB, reserveA), nil
}

// GetAmountOut calculates the maximum output amount a swap of amountIn yields
// against the given reserves, after deducting the trading fee from the input.
func GetAmountOut(amountIn, reserveIn, reserveOut *big.Int, feeBps uint16) (*big.Int, error) {
	calc := calculatorPool.Get().(*Calculator)
	defer calculatorPool.Put(calc)
	return calc.getAmountOut(amountIn, reserveIn, reserveOut, feeBps)
}

// GetAmountIn calculates the minimum input amount required to receive exactly
// amountOut against the given reserves, fee inclusive. The result carries a +1
// rounding bias so truncation can never under-charge the pool.
func GetAmountIn(amountOut, reserveIn, reserveOut *big.Int, feeBps uint16) (*big.Int, error) {
	calc := calculatorPool.Get().(*Calculator)
	defer calculatorPool.Put(calc)
	return calc.getAmountIn(amountOut, reserveIn, reserveOut, feeBps)
}

// getAmountOut is the internal calculation method using pre-allocated fields.
//
//	amountOut = (amountIn * (10000-fee) * reserveOut) / (reserveIn * 10000 + amountIn * (10000-fee))
func (c *Calculator) getAmountOut(amountIn, reserveIn, reserveOut *big.Int, feeBps uint16) (*big.Int, error) {
	if amountIn == nil || reserveIn == nil || reserveOut == nil {
		return nil, ErrNilAmount
	}
	if feeBps >= engine.FeeDenominator {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidFee, feeBps)
	}
	if amountIn.Sign() <= 0 {
		return nil, fmt.Errorf("%w: amountIn is %s", ErrInsufficientInputAmount, amountIn.String())
	}
	if reserveIn.Sign() <= 0 || reserveOut.Sign() <= 0 {
		return nil, fmt.Errorf("%w: reserves (%s, %s)", ErrInsufficientLiquidity, reserveIn.String(), reserveOut.String())
	}

	c.feeMultiplier.SetUint64(uint64(engine.FeeDenominator - feeBps))
	c.amountInWithFee.Mul(amountIn, c.feeMultiplier)
	c.numerator.Mul(c.amountInWithFee, reserveOut)
	c.denominator.Mul(reserveIn, basisPointDivisor)
	c.denominator.Add(c.denominator, c.amountInWithFee)

	return new(big.Int).Div(c.numerator, c.denominator), nil
}

// getAmountIn is the internal calculation method using pre-allocated fields.
//
//	amountIn = (reserveIn * amountOut * 10000) / ((reserveOut - amountOut) * (10000-fee)) + 1
func (c *Calculator) getAmountIn(amountOut, reserveIn, reserveOut *big.Int, feeBps uint16) (*big.Int, error) {
	if amountOut == nil || reserveIn == nil || reserveOut == nil {
		return nil, ErrNilAmount
	}
	if feeBps >= engine.FeeDenominator {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidFee, feeBps)
	}
	if amountOut.Sign() <= 0 {
		return nil, fmt.Errorf("%w: amountOut is %s", ErrInsufficientOutputAmount, amountOut.String())
	}
	if reserveIn.Sign() <= 0 || reserveOut.Sign() <= 0 {
		return nil, fmt.Errorf("%w: reserves (%s, %s)", ErrInsufficientLiquidity, reserveIn.String(), reserveOut.String())
	}
	// Draining the entire output reserve (or more) is unpayable at any price;
	// the on-chain formula would underflow here.
	if amountOut.Cmp(reserveOut) >= 0 {
		return nil, fmt.Errorf("%w: requested amountOut (%s) is >= reserveOut (%s)", ErrInsufficientLiquidity, amountOut.String(), reserveOut.String())
	}

	c.numerator.Mul(reserveIn, amountOut)
	c.numerator.Mul(c.numerator, basisPointDivisor)

	c.feeMultiplier.SetUint64(uint64(engine.FeeDenominator - feeBps))
	c.denominator.Sub(reserveOut, amountOut)
	c.denominator.Mul(c.denominator, c.feeMultiplier)

	amountIn := new(big.Int).Div(c.numerator, c.denominator)
	return amountIn.Add(amountIn, one), nil
}
