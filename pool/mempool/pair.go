package mempool

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/pairflow/pairflow-router-go/engine"
)

// MinimumLiquidity is locked forever on a pair's first mint so the pool can
// never be fully drained back to an empty, ratio-less state.
const MinimumLiquidity = 1000

var (
	// ErrInsufficientOutputAmount is returned by Swap when both output amounts are zero.
	ErrInsufficientOutputAmount = errors.New("mempool: insufficient output amount")
	// ErrInsufficientInputAmount is returned by Swap when no input was transferred to the pair.
	ErrInsufficientInputAmount = errors.New("mempool: insufficient input amount")
	// ErrInsufficientLiquidity is returned by Swap when an output exceeds its reserve.
	ErrInsufficientLiquidity = errors.New("mempool: insufficient liquidity")
	// ErrInsufficientLiquidityMinted is returned by Mint when the deposited amounts round to zero liquidity.
	ErrInsufficientLiquidityMinted = errors.New("mempool: insufficient liquidity minted")
	// ErrInsufficientLiquidityBurned is returned by Burn when the redeemed liquidity rounds to zero on a side.
	ErrInsufficientLiquidityBurned = errors.New("mempool: insufficient liquidity burned")
	// ErrInvalidRecipient is returned by Swap when the recipient is one of the pair's tokens.
	ErrInvalidRecipient = errors.New("mempool: invalid recipient")
	// ErrKInvariant is returned by Swap when the fee-adjusted constant product would shrink.
	ErrKInvariant = errors.New("mempool: constant product invariant violated")
)

// memPair adapts one registry entry to the pool.Pair contract. All methods
// take the backend lock for their full duration, giving each call the
// atomic, exclusive-access semantics the engine assumes of collaborators.
type memPair struct {
	backend *Backend
	addr    common.Address
}

func (p *memPair) state() (*pairState, error) {
	st, ok := p.backend.pairs[p.addr]
	if !ok {
		return nil, fmt.Errorf("mempool: pair %s vanished", p.addr.Hex())
	}
	return st, nil
}

// GetReserves returns both reserves in canonical order.
func (p *memPair) GetReserves(_ context.Context) (*big.Int, *big.Int, uint32, error) {
	p.backend.mu.RLock()
	defer p.backend.mu.RUnlock()
	st, err := p.state()
	if err != nil {
		return nil, nil, 0, err
	}
	return new(big.Int).Set(st.reserve0), new(big.Int).Set(st.reserve1), st.blockTimestampLast, nil
}

// Swap pays out the requested amounts and verifies that the input already
// transferred to the pair keeps the fee-adjusted constant product intact.
// The input amounts are derived from balance deltas, never trusted, which is
// what makes fee-on-transfer assets workable upstream.
func (p *memPair) Swap(_ context.Context, amount0Out, amount1Out *big.Int, to common.Address, _ []byte) error {
	if amount0Out == nil || amount1Out == nil || amount0Out.Sign() < 0 || amount1Out.Sign() < 0 {
		return ErrInvalidAmount
	}
	if amount0Out.Sign() == 0 && amount1Out.Sign() == 0 {
		return ErrInsufficientOutputAmount
	}

	b := p.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	st, err := p.state()
	if err != nil {
		return err
	}
	if amount0Out.Cmp(st.reserve0) >= 0 || amount1Out.Cmp(st.reserve1) >= 0 {
		return fmt.Errorf("%w: out (%s, %s) vs reserves (%s, %s)", ErrInsufficientLiquidity,
			amount0Out.String(), amount1Out.String(), st.reserve0.String(), st.reserve1.String())
	}
	if to == st.token0 || to == st.token1 {
		return ErrInvalidRecipient
	}

	// Validate against projected balances first; the payout transfers only
	// happen once the invariant is known to hold, keeping the call
	// all-or-nothing.
	balance0 := b.balanceLocked(st.token0, st.addr)
	balance0.Sub(balance0, amount0Out)
	balance1 := b.balanceLocked(st.token1, st.addr)
	balance1.Sub(balance1, amount1Out)

	amount0In := swapInput(balance0, st.reserve0, amount0Out)
	amount1In := swapInput(balance1, st.reserve1, amount1Out)
	if amount0In.Sign() == 0 && amount1In.Sign() == 0 {
		return ErrInsufficientInputAmount
	}

	// (balance0*10000 - in0*fee) * (balance1*10000 - in1*fee) >= r0*r1*10000^2
	divisor := big.NewInt(engine.FeeDenominator)
	fee := big.NewInt(int64(b.env.FeeBps))
	adjusted0 := new(big.Int).Mul(balance0, divisor)
	adjusted0.Sub(adjusted0, new(big.Int).Mul(amount0In, fee))
	adjusted1 := new(big.Int).Mul(balance1, divisor)
	adjusted1.Sub(adjusted1, new(big.Int).Mul(amount1In, fee))

	kBefore := new(big.Int).Mul(st.reserve0, st.reserve1)
	kBefore.Mul(kBefore, new(big.Int).Mul(divisor, divisor))
	if new(big.Int).Mul(adjusted0, adjusted1).Cmp(kBefore) < 0 {
		return fmt.Errorf("%w: pair %s", ErrKInvariant, st.addr.Hex())
	}

	if err := b.transferLocked(st.token0, st.addr, to, amount0Out); err != nil {
		return err
	}
	if err := b.transferLocked(st.token1, st.addr, to, amount1Out); err != nil {
		return err
	}

	st.reserve0.Set(balance0)
	st.reserve1.Set(balance1)
	st.blockTimestampLast = b.tickLocked()
	return nil
}

// swapInput recovers the real input amount from the balance delta:
// anything above reserve - amountOut must have been transferred in.
func swapInput(balance, reserve, amountOut *big.Int) *big.Int {
	floor := new(big.Int).Sub(reserve, amountOut)
	if balance.Cmp(floor) > 0 {
		return new(big.Int).Sub(balance, floor)
	}
	return new(big.Int)
}

// Mint converts the balances transferred to the pair since the last sync
// into liquidity. The first depositor sets the ratio and pays the minimum
// liquidity lock; later deposits are priced at the lesser of both sides so
// off-ratio deposits donate the excess to the pool.
func (p *memPair) Mint(_ context.Context, to common.Address) (*big.Int, error) {
	b := p.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	st, err := p.state()
	if err != nil {
		return nil, err
	}

	balance0 := b.balanceLocked(st.token0, st.addr)
	balance1 := b.balanceLocked(st.token1, st.addr)
	amount0 := new(big.Int).Sub(balance0, st.reserve0)
	amount1 := new(big.Int).Sub(balance1, st.reserve1)

	supply := b.lpSupply[st.addr]
	liquidity := new(big.Int)
	if supply.Sign() == 0 {
		liquidity.Mul(amount0, amount1)
		liquidity.Sqrt(liquidity)
		liquidity.Sub(liquidity, big.NewInt(MinimumLiquidity))
		if liquidity.Sign() <= 0 {
			return nil, fmt.Errorf("%w: first deposit too small", ErrInsufficientLiquidityMinted)
		}
		// permanently locked
		locked := b.balanceRefLocked(st.addr, common.Address{})
		locked.Add(locked, big.NewInt(MinimumLiquidity))
		supply.Add(supply, big.NewInt(MinimumLiquidity))
	} else {
		share0 := new(big.Int).Mul(amount0, supply)
		share0.Div(share0, st.reserve0)
		share1 := new(big.Int).Mul(amount1, supply)
		share1.Div(share1, st.reserve1)
		if share0.Cmp(share1) < 0 {
			liquidity.Set(share0)
		} else {
			liquidity.Set(share1)
		}
		if liquidity.Sign() <= 0 {
			return nil, ErrInsufficientLiquidityMinted
		}
	}

	minted := b.balanceRefLocked(st.addr, to)
	minted.Add(minted, liquidity)
	supply.Add(supply, liquidity)

	st.reserve0.Set(balance0)
	st.reserve1.Set(balance1)
	st.blockTimestampLast = b.tickLocked()
	return new(big.Int).Set(liquidity), nil
}

// Burn redeems the liquidity previously transferred to the pair itself,
// paying out the proportional share of both reserves.
func (p *memPair) Burn(_ context.Context, to common.Address) (*big.Int, *big.Int, error) {
	b := p.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	st, err := p.state()
	if err != nil {
		return nil, nil, err
	}

	balance0 := b.balanceLocked(st.token0, st.addr)
	balance1 := b.balanceLocked(st.token1, st.addr)
	liquidity := b.balanceLocked(st.addr, st.addr)
	supply := b.lpSupply[st.addr]

	if liquidity.Sign() == 0 || supply.Sign() == 0 {
		return nil, nil, ErrInsufficientLiquidityBurned
	}

	amount0 := new(big.Int).Mul(liquidity, balance0)
	amount0.Div(amount0, supply)
	amount1 := new(big.Int).Mul(liquidity, balance1)
	amount1.Div(amount1, supply)
	if amount0.Sign() == 0 || amount1.Sign() == 0 {
		return nil, nil, ErrInsufficientLiquidityBurned
	}

	held := b.balanceRefLocked(st.addr, st.addr)
	held.Sub(held, liquidity)
	supply.Sub(supply, liquidity)

	if err := b.transferLocked(st.token0, st.addr, to, amount0); err != nil {
		return nil, nil, err
	}
	if err := b.transferLocked(st.token1, st.addr, to, amount1); err != nil {
		return nil, nil, err
	}

	st.reserve0.Set(b.balanceLocked(st.token0, st.addr))
	st.reserve1.Set(b.balanceLocked(st.token1, st.addr))
	st.blockTimestampLast = b.tickLocked()
	return amount0, amount1, nil
}
