package router

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pairflow/pairflow-router-go/pool"
)

func TestGetAmountsOut(t *testing.T) {
	b := newTestBackend(t)
	seedPool(t, b, tokA, tokB, 1_000_000, 2_000_000)
	seedPool(t, b, tokB, tokC, 5_000_000, 3_000_000)
	r := newTestRouter(t, b)
	ctx := context.Background()

	amounts, err := r.GetAmountsOut(ctx, big.NewInt(10_000), []common.Address{tokA, tokB, tokC})
	require.NoError(t, err)
	assertAmounts(t, []int64{10_000, 19_743, 11_763}, amounts)
}

func TestGetAmountsIn(t *testing.T) {
	b := newTestBackend(t)
	seedPool(t, b, tokA, tokB, 1_000_000, 2_000_000)
	seedPool(t, b, tokB, tokC, 5_000_000, 3_000_000)
	r := newTestRouter(t, b)
	ctx := context.Background()

	amounts, err := r.GetAmountsIn(ctx, big.NewInt(11_763), []common.Address{tokA, tokB, tokC})
	require.NoError(t, err)
	// each backward hop rounds in the pool's favor, so the intermediate
	// amount may land one unit under the forward resolution
	assertAmounts(t, []int64{10_000, 19_742, 11_763}, amounts)
}

func TestPathRoundTrip(t *testing.T) {
	b := newTestBackend(t)
	seedPool(t, b, tokA, tokB, 1_000_000, 2_000_000)
	seedPool(t, b, tokB, tokC, 5_000_000, 3_000_000)
	r := newTestRouter(t, b)
	ctx := context.Background()
	path := []common.Address{tokA, tokB, tokC}

	forward, err := r.GetAmountsOut(ctx, big.NewInt(10_000), path)
	require.NoError(t, err)
	backward, err := r.GetAmountsIn(ctx, forward[len(forward)-1], path)
	require.NoError(t, err)

	// buying the forward output can never be cheaper than the input that
	// produced it
	assert.LessOrEqual(t, backward[0].Int64(), forward[0].Int64())
}

func TestPathErrors(t *testing.T) {
	b := newTestBackend(t)
	seedPool(t, b, tokA, tokB, 1_000_000, 2_000_000)
	r := newTestRouter(t, b)
	ctx := context.Background()

	_, err := r.GetAmountsOut(ctx, big.NewInt(1), []common.Address{tokA})
	assert.ErrorIs(t, err, ErrInvalidPath)
	_, err = r.GetAmountsIn(ctx, big.NewInt(1), nil)
	assert.ErrorIs(t, err, ErrInvalidPath)

	// tokC has no pair with tokA
	_, err = r.GetAmountsOut(ctx, big.NewInt(1), []common.Address{tokA, tokC})
	assert.ErrorIs(t, err, pool.ErrUnknownPair)
}
