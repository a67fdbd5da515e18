package router

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/pairflow/pairflow-router-go/amm"
	"github.com/pairflow/pairflow-router-go/amm/calculator"
)

// AddLiquidityParams encapsulates all inputs for a liquidity deposit.
type AddLiquidityParams struct {
	From   common.Address
	To     common.Address
	TokenA common.Address
	TokenB common.Address

	AmountADesired *big.Int
	AmountBDesired *big.Int
	AmountAMin     *big.Int
	AmountBMin     *big.Int
}

// RemoveLiquidityParams encapsulates all inputs for a liquidity withdrawal.
type RemoveLiquidityParams struct {
	From   common.Address
	To     common.Address
	TokenA common.Address
	TokenB common.Address

	Liquidity  *big.Int
	AmountAMin *big.Int
	AmountBMin *big.Int
}

// AddLiquidityAmounts computes the actual deposit amounts that preserve the
// pool's current reserve ratio, creating the pair first when it does not
// exist. A fresh pool (both reserves zero) accepts the desired amounts
// unconditionally: the first depositor sets the ratio.
func (r *Router) AddLiquidityAmounts(
	ctx context.Context,
	tokenA, tokenB common.Address,
	amountADesired, amountBDesired, amountAMin, amountBMin *big.Int,
) (amountA, amountB *big.Int, err error) {
	if _, found, err := r.backend.GetPair(ctx, tokenA, tokenB); err != nil {
		return nil, nil, err
	} else if !found {
		if _, err := r.backend.CreatePair(ctx, tokenA, tokenB); err != nil {
			return nil, nil, fmt.Errorf("router: create pair: %w", err)
		}
	}

	reserveA, reserveB, err := r.ReservesFor(ctx, tokenA, tokenB)
	if err != nil {
		return nil, nil, err
	}
	if reserveA.Sign() == 0 && reserveB.Sign() == 0 {
		return amountADesired, amountBDesired, nil
	}

	amountBOptimal, err := calculator.Quote(amountADesired, reserveA, reserveB)
	if err != nil {
		return nil, nil, err
	}
	if amountBOptimal.Cmp(amountBDesired) <= 0 {
		if amountBMin != nil && amountBOptimal.Cmp(amountBMin) < 0 {
			return nil, nil, fmt.Errorf("%w: optimal %s below min %s", ErrInsufficientBAmount, amountBOptimal.String(), amountBMin.String())
		}
		return amountADesired, amountBOptimal, nil
	}

	amountAOptimal, err := calculator.Quote(amountBDesired, reserveB, reserveA)
	if err != nil {
		return nil, nil, err
	}
	// Quote is monotonic: amountBOptimal > amountBDesired implies the
	// reverse quote lands at or below amountADesired. Anything else is a
	// pricing defect, not a user error.
	if amountAOptimal.Cmp(amountADesired) > 0 {
		panic(fmt.Sprintf("router: reverse quote %s exceeds desired %s for pair %s/%s",
			amountAOptimal.String(), amountADesired.String(), tokenA.Hex(), tokenB.Hex()))
	}
	if amountAMin != nil && amountAOptimal.Cmp(amountAMin) < 0 {
		return nil, nil, fmt.Errorf("%w: optimal %s below min %s", ErrInsufficientAAmount, amountAOptimal.String(), amountAMin.String())
	}
	return amountAOptimal, amountBDesired, nil
}

// AddLiquidity computes ratio-preserving deposit amounts, transfers both
// sides from the depositor to the pair, and mints liquidity to the recipient.
func (r *Router) AddLiquidity(ctx context.Context, params AddLiquidityParams) (amountA, amountB, liquidity *big.Int, err error) {
	amountA, amountB, err = r.AddLiquidityAmounts(ctx,
		params.TokenA, params.TokenB,
		params.AmountADesired, params.AmountBDesired,
		params.AmountAMin, params.AmountBMin,
	)
	if err != nil {
		return nil, nil, nil, err
	}
	pairAddr, err := r.PairFor(params.TokenA, params.TokenB)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := r.backend.Transfer(ctx, params.TokenA, params.From, pairAddr, amountA); err != nil {
		return nil, nil, nil, fmt.Errorf("router: deposit %s: %w", params.TokenA.Hex(), err)
	}
	if err := r.backend.Transfer(ctx, params.TokenB, params.From, pairAddr, amountB); err != nil {
		return nil, nil, nil, fmt.Errorf("router: deposit %s: %w", params.TokenB.Hex(), err)
	}
	pair, err := r.backend.Pair(pairAddr)
	if err != nil {
		return nil, nil, nil, err
	}
	liquidity, err = pair.Mint(ctx, params.To)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("router: mint: %w", err)
	}
	r.logger.Info("liquidity added",
		"pair", pairAddr.Hex(), "amount_a", amountA.String(), "amount_b", amountB.String(), "liquidity", liquidity.String())
	return amountA, amountB, liquidity, nil
}

// RemoveLiquidity sends the liquidity to the pair, burns it, and reorients
// the redeemed canonical amounts back to the caller's (tokenA, tokenB) order
// before enforcing the declared minimums.
func (r *Router) RemoveLiquidity(ctx context.Context, params RemoveLiquidityParams) (amountA, amountB *big.Int, err error) {
	pairAddr, err := r.PairFor(params.TokenA, params.TokenB)
	if err != nil {
		return nil, nil, err
	}
	// liquidity tokens are identified by the pair address itself
	if err := r.backend.Transfer(ctx, pairAddr, params.From, pairAddr, params.Liquidity); err != nil {
		return nil, nil, fmt.Errorf("router: return liquidity: %w", err)
	}
	pair, err := r.backend.Pair(pairAddr)
	if err != nil {
		return nil, nil, err
	}
	amount0, amount1, err := pair.Burn(ctx, params.To)
	if err != nil {
		return nil, nil, fmt.Errorf("router: burn: %w", err)
	}
	token0, _, err := amm.SortTokens(params.TokenA, params.TokenB)
	if err != nil {
		return nil, nil, err
	}
	if params.TokenA == token0 {
		amountA, amountB = amount0, amount1
	} else {
		amountA, amountB = amount1, amount0
	}
	if params.AmountAMin != nil && amountA.Cmp(params.AmountAMin) < 0 {
		return nil, nil, fmt.Errorf("%w: redeemed %s below min %s", ErrInsufficientAAmount, amountA.String(), params.AmountAMin.String())
	}
	if params.AmountBMin != nil && amountB.Cmp(params.AmountBMin) < 0 {
		return nil, nil, fmt.Errorf("%w: redeemed %s below min %s", ErrInsufficientBAmount, amountB.String(), params.AmountBMin.String())
	}
	r.logger.Info("liquidity removed",
		"pair", pairAddr.Hex(), "amount_a", amountA.String(), "amount_b", amountB.String())
	return amountA, amountB, nil
}
