package mempool

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pairflow/pairflow-router-go/amm"
	"github.com/pairflow/pairflow-router-go/engine"
	"github.com/pairflow/pairflow-router-go/pool"
)

var (
	tokenA = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	tokenB = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	alice  = common.HexToAddress("0x000000000000000000000000000000000000a11c")
	bob    = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
)

func testContext() engine.Context {
	return engine.Context{
		Factory:      common.HexToAddress("0x5C69bEe701ef814a2B6a3EDD4B1652CB9cc5aA6f"),
		PairCodeHash: common.HexToHash("0x96e8ac4277198ff8b6f785478aa9a39f403cb768dd02cbee326c3e7da348845f"),
		FeeBps:       engine.DefaultFeeBps,
	}
}

func newBackend(t *testing.T) *Backend {
	t.Helper()
	b, err := New(testContext())
	require.NoError(t, err)
	return b
}

// seedPair creates the A/B pair, deposits the given reserves from alice and
// mints the resulting liquidity to alice.
func seedPair(t *testing.T, b *Backend, reserveA, reserveB int64) common.Address {
	t.Helper()
	ctx := context.Background()

	addr, err := b.CreatePair(ctx, tokenA, tokenB)
	require.NoError(t, err)

	require.NoError(t, b.Credit(tokenA, alice, big.NewInt(reserveA)))
	require.NoError(t, b.Credit(tokenB, alice, big.NewInt(reserveB)))
	require.NoError(t, b.Transfer(ctx, tokenA, alice, addr, big.NewInt(reserveA)))
	require.NoError(t, b.Transfer(ctx, tokenB, alice, addr, big.NewInt(reserveB)))

	pair, err := b.Pair(addr)
	require.NoError(t, err)
	_, err = pair.Mint(ctx, alice)
	require.NoError(t, err)
	return addr
}

func TestCreatePair(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()

	addr, err := b.CreatePair(ctx, tokenA, tokenB)
	require.NoError(t, err)

	// the registry deploys at the locator's derived address
	env := testContext()
	derived, err := amm.PairFor(env.Factory, env.PairCodeHash, tokenA, tokenB)
	require.NoError(t, err)
	assert.Equal(t, derived, addr)

	// lookup finds it under either argument order
	got, found, err := b.GetPair(ctx, tokenB, tokenA)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, addr, got)

	_, err = b.CreatePair(ctx, tokenB, tokenA)
	assert.ErrorIs(t, err, pool.ErrPairExists)
}

func TestPairUnknownAddress(t *testing.T) {
	b := newBackend(t)
	_, err := b.Pair(bob)
	assert.ErrorIs(t, err, pool.ErrUnknownPair)
}

func TestTransfer(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()

	require.NoError(t, b.Credit(tokenA, alice, big.NewInt(1000)))
	require.NoError(t, b.Transfer(ctx, tokenA, alice, bob, big.NewInt(400)))

	balA, err := b.BalanceOf(ctx, tokenA, alice)
	require.NoError(t, err)
	balB, err := b.BalanceOf(ctx, tokenA, bob)
	require.NoError(t, err)
	assert.EqualValues(t, 600, balA.Int64())
	assert.EqualValues(t, 400, balB.Int64())

	err = b.Transfer(ctx, tokenA, alice, bob, big.NewInt(601))
	assert.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestTransferFeeOnTransfer(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()

	require.NoError(t, b.SetTransferFee(tokenA, 100)) // 1%
	require.NoError(t, b.Credit(tokenA, alice, big.NewInt(10_000)))
	require.NoError(t, b.Transfer(ctx, tokenA, alice, bob, big.NewInt(10_000)))

	balB, err := b.BalanceOf(ctx, tokenA, bob)
	require.NoError(t, err)
	assert.EqualValues(t, 9_900, balB.Int64(), "1%% skimmed in transit")

	err = b.SetTransferFee(tokenA, engine.FeeDenominator)
	assert.ErrorIs(t, err, ErrInvalidFee)
}

func TestMintFirstDeposit(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	addr := seedPair(t, b, 1_000_000, 4_000_000)

	// sqrt(1e6 * 4e6) = 2e6, minus the locked minimum
	liq, err := b.BalanceOf(ctx, addr, alice)
	require.NoError(t, err)
	assert.EqualValues(t, 1_999_000, liq.Int64())
	assert.EqualValues(t, 2_000_000, b.LiquiditySupply(addr).Int64())

	locked, err := b.BalanceOf(ctx, addr, common.Address{})
	require.NoError(t, err)
	assert.EqualValues(t, MinimumLiquidity, locked.Int64())

	pair, err := b.Pair(addr)
	require.NoError(t, err)
	r0, r1, _, err := pair.GetReserves(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1_000_000, r0.Int64())
	assert.EqualValues(t, 4_000_000, r1.Int64())
}

func TestMintSecondDeposit(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	addr := seedPair(t, b, 1_000_000, 4_000_000)

	require.NoError(t, b.Credit(tokenA, bob, big.NewInt(500_000)))
	require.NoError(t, b.Credit(tokenB, bob, big.NewInt(2_000_000)))
	require.NoError(t, b.Transfer(ctx, tokenA, bob, addr, big.NewInt(500_000)))
	require.NoError(t, b.Transfer(ctx, tokenB, bob, addr, big.NewInt(2_000_000)))

	pair, err := b.Pair(addr)
	require.NoError(t, err)
	liq, err := pair.Mint(ctx, bob)
	require.NoError(t, err)
	assert.EqualValues(t, 1_000_000, liq.Int64(), "half the reserves mint half the supply")
}

func TestMintRejectsEmptyDeposit(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	addr := seedPair(t, b, 1_000_000, 4_000_000)

	pair, err := b.Pair(addr)
	require.NoError(t, err)
	_, err = pair.Mint(ctx, bob)
	assert.ErrorIs(t, err, ErrInsufficientLiquidityMinted)
}

func TestBurn(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	addr := seedPair(t, b, 1_000_000, 4_000_000)

	// alice returns all her liquidity to the pair and burns it
	require.NoError(t, b.Transfer(ctx, addr, alice, addr, big.NewInt(1_999_000)))
	pair, err := b.Pair(addr)
	require.NoError(t, err)
	amount0, amount1, err := pair.Burn(ctx, alice)
	require.NoError(t, err)

	// 1999000/2000000 of each balance, truncating
	assert.EqualValues(t, 999_500, amount0.Int64())
	assert.EqualValues(t, 3_998_000, amount1.Int64())

	// the locked minimum keeps the pool alive
	r0, r1, _, err := pair.GetReserves(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 500, r0.Int64())
	assert.EqualValues(t, 2_000, r1.Int64())
	assert.EqualValues(t, MinimumLiquidity, b.LiquiditySupply(addr).Int64())
}

func TestBurnWithoutLiquidity(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	addr := seedPair(t, b, 1_000_000, 4_000_000)

	pair, err := b.Pair(addr)
	require.NoError(t, err)
	_, _, err = pair.Burn(ctx, alice)
	assert.ErrorIs(t, err, ErrInsufficientLiquidityBurned)
}

func TestSwap(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	addr := seedPair(t, b, 1_000_000, 1_000_000)
	pair, err := b.Pair(addr)
	require.NoError(t, err)

	token0, _, err := amm.SortTokens(tokenA, tokenB)
	require.NoError(t, err)
	require.Equal(t, tokenA, token0, "test fixture assumes tokenA sorts first")

	t.Run("happy path", func(t *testing.T) {
		// pay 100 of token0 in, take the fair 90 of token1 out
		require.NoError(t, b.Credit(tokenA, bob, big.NewInt(100)))
		require.NoError(t, b.Transfer(ctx, tokenA, bob, addr, big.NewInt(100)))
		require.NoError(t, pair.Swap(ctx, big.NewInt(0), big.NewInt(90), bob, nil))

		bal, err := b.BalanceOf(ctx, tokenB, bob)
		require.NoError(t, err)
		assert.EqualValues(t, 90, bal.Int64())

		r0, r1, _, err := pair.GetReserves(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 1_000_100, r0.Int64())
		assert.EqualValues(t, 999_910, r1.Int64())
	})

	t.Run("output without input rejected", func(t *testing.T) {
		err := pair.Swap(ctx, big.NewInt(0), big.NewInt(90), bob, nil)
		assert.ErrorIs(t, err, ErrInsufficientInputAmount)
	})

	t.Run("overpriced output rejected", func(t *testing.T) {
		// 100 in buys at most 99 out here; asking 100 shrinks K
		require.NoError(t, b.Credit(tokenA, bob, big.NewInt(100)))
		require.NoError(t, b.Transfer(ctx, tokenA, bob, addr, big.NewInt(100)))
		err := pair.Swap(ctx, big.NewInt(0), big.NewInt(100), bob, nil)
		assert.ErrorIs(t, err, ErrKInvariant)
	})

	t.Run("zero outputs rejected", func(t *testing.T) {
		err := pair.Swap(ctx, big.NewInt(0), big.NewInt(0), bob, nil)
		assert.ErrorIs(t, err, ErrInsufficientOutputAmount)
	})

	t.Run("output exceeding reserve rejected", func(t *testing.T) {
		err := pair.Swap(ctx, big.NewInt(0), big.NewInt(10_000_000), bob, nil)
		assert.ErrorIs(t, err, ErrInsufficientLiquidity)
	})

	t.Run("token recipient rejected", func(t *testing.T) {
		err := pair.Swap(ctx, big.NewInt(0), big.NewInt(90), tokenB, nil)
		assert.ErrorIs(t, err, ErrInvalidRecipient)
	})
}
