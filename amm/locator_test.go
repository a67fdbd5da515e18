package amm

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	// Uniswap V2 on Ethereum mainnet; the USDC/WETH pair address is the
	// well-known deployed one, which pins the whole derivation.
	mainnetFactory  = common.HexToAddress("0x5C69bEe701ef814a2B6a3EDD4B1652CB9cc5aA6f")
	mainnetCodeHash = common.HexToHash("0x96e8ac4277198ff8b6f785478aa9a39f403cb768dd02cbee326c3e7da348845f")
	usdcWethPair    = common.HexToAddress("0xB4e16d0168e52d35CaCD2c6185b44281Ec28C9Dc")
)

func TestPairFor(t *testing.T) {
	t.Run("pins mainnet USDC/WETH pair", func(t *testing.T) {
		addr, err := PairFor(mainnetFactory, mainnetCodeHash, usdc, weth)
		require.NoError(t, err)
		assert.Equal(t, usdcWethPair, addr)
	})

	t.Run("argument order does not matter", func(t *testing.T) {
		a, err := PairFor(mainnetFactory, mainnetCodeHash, usdc, weth)
		require.NoError(t, err)
		b, err := PairFor(mainnetFactory, mainnetCodeHash, weth, usdc)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("pure function", func(t *testing.T) {
		a, err := PairFor(mainnetFactory, mainnetCodeHash, usdc, weth)
		require.NoError(t, err)
		b, err := PairFor(mainnetFactory, mainnetCodeHash, usdc, weth)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("different code hash moves every address", func(t *testing.T) {
		other := common.HexToHash("0xe18a34eb0e04b04f7a0ac29a6e80748dca96319b42c54d679cb821dca90c6303")
		a, err := PairFor(mainnetFactory, mainnetCodeHash, usdc, weth)
		require.NoError(t, err)
		b, err := PairFor(mainnetFactory, other, usdc, weth)
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("propagates sort errors", func(t *testing.T) {
		_, err := PairFor(mainnetFactory, mainnetCodeHash, usdc, usdc)
		assert.ErrorIs(t, err, ErrIdenticalTokens)
	})
}
