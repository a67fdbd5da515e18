package router

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/pairflow/pairflow-router-go/amm"
	"github.com/pairflow/pairflow-router-go/amm/calculator"
)

// SwapExactInParams encapsulates all inputs for an exact-input swap.
type SwapExactInParams struct {
	From common.Address
	To   common.Address
	Path []common.Address

	AmountIn     *big.Int
	AmountOutMin *big.Int
}

// SwapExactOutParams encapsulates all inputs for an exact-output swap.
type SwapExactOutParams struct {
	From common.Address
	To   common.Address
	Path []common.Address

	AmountOut   *big.Int
	AmountInMax *big.Int
}

// swapStrategy walks a path hop by hop, routing each hop's payout either to
// the next pair or to the final recipient. The two implementations differ
// only in where the per-hop output amount comes from: precomputed from a
// resolved amount vector, or re-derived from the pair's real balance delta.
type swapStrategy interface {
	execute(ctx context.Context, path []common.Address, to common.Address) error
}

// hopRecipient is the payout target for hop i: the next hop's pair while one
// follows, the final recipient otherwise.
func (r *Router) hopRecipient(path []common.Address, i int, to common.Address) (common.Address, error) {
	if i < len(path)-2 {
		return r.PairFor(path[i+1], path[i+2])
	}
	return to, nil
}

// routeHop invokes one pair swap, placing amountOut on the canonical side
// that corresponds to the hop's output token and zero on the other.
func (r *Router) routeHop(ctx context.Context, input, output common.Address, amountOut *big.Int, to common.Address) error {
	token0, _, err := amm.SortTokens(input, output)
	if err != nil {
		return err
	}
	pairAddr, err := r.PairFor(input, output)
	if err != nil {
		return err
	}
	pair, err := r.backend.Pair(pairAddr)
	if err != nil {
		return err
	}
	amount0Out, amount1Out := new(big.Int), new(big.Int)
	if input == token0 {
		amount1Out = amountOut
	} else {
		amount0Out = amountOut
	}
	if err := pair.Swap(ctx, amount0Out, amount1Out, to, nil); err != nil {
		return fmt.Errorf("router: swap on %s: %w", pairAddr.Hex(), err)
	}
	r.countSwapHop()
	return nil
}

// precomputedSwap trusts a fully resolved amount vector. Requires that
// amounts[0] has already been delivered to the first pair.
type precomputedSwap struct {
	router  *Router
	amounts []*big.Int
}

func (s *precomputedSwap) execute(ctx context.Context, path []common.Address, to common.Address) error {
	for i := 0; i < len(path)-1; i++ {
		recipient, err := s.router.hopRecipient(path, i, to)
		if err != nil {
			return err
		}
		if err := s.router.routeHop(ctx, path[i], path[i+1], s.amounts[i+1], recipient); err != nil {
			return err
		}
	}
	return nil
}

// balanceDeltaSwap re-derives every hop's true input from the pair's balance
// delta before pricing the output. Precomputed amounts are unreliable for
// fee-on-transfer assets: the pair may have received less than was nominally
// sent, and trusting the nominal amount would break the pair's invariant.
type balanceDeltaSwap struct {
	router *Router
}

func (s *balanceDeltaSwap) execute(ctx context.Context, path []common.Address, to common.Address) error {
	r := s.router
	for i := 0; i < len(path)-1; i++ {
		input, output := path[i], path[i+1]
		pairAddr, err := r.PairFor(input, output)
		if err != nil {
			return err
		}
		reserveIn, reserveOut, err := r.ReservesFor(ctx, input, output)
		if err != nil {
			return err
		}
		balance, err := r.backend.BalanceOf(ctx, input, pairAddr)
		if err != nil {
			return err
		}
		// whatever sits above the synced reserve is the real input
		amountIn := new(big.Int).Sub(balance, reserveIn)
		amountOut, err := calculator.GetAmountOut(amountIn, reserveIn, reserveOut, r.env.FeeBps)
		if err != nil {
			return err
		}
		recipient, err := r.hopRecipient(path, i, to)
		if err != nil {
			return err
		}
		if err := r.routeHop(ctx, input, output, amountOut, recipient); err != nil {
			return err
		}
	}
	return nil
}

// payFirstHop delivers the sell-side amount to the first pair, the
// precondition both strategies share.
func (r *Router) payFirstHop(ctx context.Context, from common.Address, path []common.Address, amount *big.Int) error {
	firstPair, err := r.PairFor(path[0], path[1])
	if err != nil {
		return err
	}
	if err := r.backend.Transfer(ctx, path[0], from, firstPair, amount); err != nil {
		return fmt.Errorf("router: pay first hop: %w", err)
	}
	return nil
}

// SwapExactTokens sells exactly AmountIn along the path, failing before any
// transfer when the resolved output violates AmountOutMin.
func (r *Router) SwapExactTokens(ctx context.Context, params SwapExactInParams) ([]*big.Int, error) {
	amounts, err := r.GetAmountsOut(ctx, params.AmountIn, params.Path)
	if err != nil {
		return nil, err
	}
	if last := amounts[len(amounts)-1]; params.AmountOutMin != nil && last.Cmp(params.AmountOutMin) < 0 {
		return nil, fmt.Errorf("%w: resolved %s below min %s", ErrInsufficientOutputAmount, last.String(), params.AmountOutMin.String())
	}
	if err := r.payFirstHop(ctx, params.From, params.Path, amounts[0]); err != nil {
		return nil, err
	}
	strategy := &precomputedSwap{router: r, amounts: amounts}
	if err := strategy.execute(ctx, params.Path, params.To); err != nil {
		return nil, err
	}
	return amounts, nil
}

// SwapForExactTokens buys exactly AmountOut at the end of the path, failing
// before any transfer when the required input violates AmountInMax.
func (r *Router) SwapForExactTokens(ctx context.Context, params SwapExactOutParams) ([]*big.Int, error) {
	amounts, err := r.GetAmountsIn(ctx, params.AmountOut, params.Path)
	if err != nil {
		return nil, err
	}
	if params.AmountInMax != nil && amounts[0].Cmp(params.AmountInMax) > 0 {
		return nil, fmt.Errorf("%w: required %s above max %s", ErrExcessiveInputAmount, amounts[0].String(), params.AmountInMax.String())
	}
	if err := r.payFirstHop(ctx, params.From, params.Path, amounts[0]); err != nil {
		return nil, err
	}
	strategy := &precomputedSwap{router: r, amounts: amounts}
	if err := strategy.execute(ctx, params.Path, params.To); err != nil {
		return nil, err
	}
	return amounts, nil
}

// SwapExactTokensSupportingFee sells exactly AmountIn along a path that may
// contain fee-on-transfer assets. Output amounts are re-derived per hop from
// balance deltas, and the minimum-output bound is enforced on the
// recipient's measured balance gain, the only number that survives transfer
// fees intact.
func (r *Router) SwapExactTokensSupportingFee(ctx context.Context, params SwapExactInParams) error {
	if len(params.Path) < 2 {
		return ErrInvalidPath
	}
	lastToken := params.Path[len(params.Path)-1]
	balanceBefore, err := r.backend.BalanceOf(ctx, lastToken, params.To)
	if err != nil {
		return err
	}
	if err := r.payFirstHop(ctx, params.From, params.Path, params.AmountIn); err != nil {
		return err
	}
	strategy := &balanceDeltaSwap{router: r}
	if err := strategy.execute(ctx, params.Path, params.To); err != nil {
		return err
	}
	balanceAfter, err := r.backend.BalanceOf(ctx, lastToken, params.To)
	if err != nil {
		return err
	}
	received := new(big.Int).Sub(balanceAfter, balanceBefore)
	if params.AmountOutMin != nil && received.Cmp(params.AmountOutMin) < 0 {
		return fmt.Errorf("%w: received %s below min %s", ErrInsufficientOutputAmount, received.String(), params.AmountOutMin.String())
	}
	r.logger.Debug("fee-on-transfer swap settled",
		"path_len", len(params.Path), "received", received.String())
	return nil
}
