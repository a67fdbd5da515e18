package amm

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	weth = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	usdc = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
)

func TestSortTokens(t *testing.T) {
	t.Run("orders byte-wise", func(t *testing.T) {
		token0, token1, err := SortTokens(weth, usdc)
		require.NoError(t, err)
		assert.Equal(t, usdc, token0)
		assert.Equal(t, weth, token1)
	})

	t.Run("symmetric", func(t *testing.T) {
		a0, a1, err := SortTokens(weth, usdc)
		require.NoError(t, err)
		b0, b1, err := SortTokens(usdc, weth)
		require.NoError(t, err)
		assert.Equal(t, a0, b0)
		assert.Equal(t, a1, b1)
	})

	t.Run("identical tokens rejected", func(t *testing.T) {
		_, _, err := SortTokens(weth, weth)
		assert.ErrorIs(t, err, ErrIdenticalTokens)
	})

	t.Run("zero token rejected", func(t *testing.T) {
		_, _, err := SortTokens(common.Address{}, weth)
		assert.ErrorIs(t, err, ErrZeroToken)

		_, _, err = SortTokens(weth, common.Address{})
		assert.ErrorIs(t, err, ErrZeroToken)
	})
}
