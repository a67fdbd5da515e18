package router

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/pairflow/pairflow-router-go/amm/calculator"
)

// GetAmountsOut resolves the full amount vector for selling amountIn along
// the path: amounts[0] is amountIn, each following entry the output of one
// hop. Hops are resolved strictly in order and each hop's reserves are read
// only after the prior hop's amount is known, so a pair appearing twice in a
// longer path is priced against its then-current state, not a hoisted
// snapshot.
func (r *Router) GetAmountsOut(ctx context.Context, amountIn *big.Int, path []common.Address) ([]*big.Int, error) {
	if len(path) < 2 {
		return nil, ErrInvalidPath
	}
	amounts := make([]*big.Int, len(path))
	amounts[0] = amountIn
	for i := 0; i < len(path)-1; i++ {
		reserveIn, reserveOut, err := r.ReservesFor(ctx, path[i], path[i+1])
		if err != nil {
			return nil, err
		}
		amounts[i+1], err = calculator.GetAmountOut(amounts[i], reserveIn, reserveOut, r.env.FeeBps)
		if err != nil {
			return nil, err
		}
	}
	r.countQuote("forward")
	r.logger.Debug("resolved forward amounts",
		"path_len", len(path), "amount_in", amountIn.String(), "amount_out", amounts[len(amounts)-1].String())
	return amounts, nil
}

// GetAmountsIn resolves the full amount vector for buying exactly amountOut
// at the end of the path, walking backward from the last hop. amounts[0] is
// the required input, rounded in the pool's favor at every hop.
func (r *Router) GetAmountsIn(ctx context.Context, amountOut *big.Int, path []common.Address) ([]*big.Int, error) {
	if len(path) < 2 {
		return nil, ErrInvalidPath
	}
	amounts := make([]*big.Int, len(path))
	amounts[len(amounts)-1] = amountOut
	for i := len(path) - 1; i > 0; i-- {
		reserveIn, reserveOut, err := r.ReservesFor(ctx, path[i-1], path[i])
		if err != nil {
			return nil, err
		}
		amounts[i-1], err = calculator.GetAmountIn(amounts[i], reserveIn, reserveOut, r.env.FeeBps)
		if err != nil {
			return nil, err
		}
	}
	r.countQuote("reverse")
	r.logger.Debug("resolved reverse amounts",
		"path_len", len(path), "amount_out", amountOut.String(), "amount_in", amounts[0].String())
	return amounts, nil
}
