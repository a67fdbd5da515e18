package engine

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validContext() Context {
	return Context{
		Factory:       common.HexToAddress("0x5C69bEe701ef814a2B6a3EDD4B1652CB9cc5aA6f"),
		PairCodeHash:  common.HexToHash("0x96e8ac4277198ff8b6f785478aa9a39f403cb768dd02cbee326c3e7da348845f"),
		WrappedNative: common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"),
		FeeBps:        DefaultFeeBps,
	}
}

func TestContextValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		env := validContext()
		require.NoError(t, env.Validate())
	})

	t.Run("zero factory", func(t *testing.T) {
		env := validContext()
		env.Factory = common.Address{}
		assert.ErrorIs(t, env.Validate(), ErrZeroFactory)
	})

	t.Run("zero pair code hash", func(t *testing.T) {
		env := validContext()
		env.PairCodeHash = common.Hash{}
		assert.ErrorIs(t, env.Validate(), ErrZeroPairCodeHash)
	})

	t.Run("fee at 100 percent", func(t *testing.T) {
		env := validContext()
		env.FeeBps = FeeDenominator
		assert.ErrorIs(t, env.Validate(), ErrInvalidFee)
	})

	t.Run("wrapped native may be zero", func(t *testing.T) {
		// not every deployment trades the native asset
		env := validContext()
		env.WrappedNative = common.Address{}
		require.NoError(t, env.Validate())
	})
}
