// Package amm holds the pair-identity primitives of the constant-product
// engine: canonical token ordering and deterministic pair address derivation.
package amm

import (
	"bytes"
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrIdenticalTokens is returned when both sides of a pair are the same asset.
	ErrIdenticalTokens = errors.New("amm: identical tokens")
	// ErrZeroToken is returned when a pair would contain the zero address.
	ErrZeroToken = errors.New("amm: zero address token")
)

// SortTokens canonicalizes an unordered token pair into (token0, token1)
// with token0 < token1 byte-wise. Every component that indexes pair sides
// goes through this ordering, so side 0 / side 1 always mean the same thing
// regardless of the order a caller named the tokens in.
func SortTokens(tokenA, tokenB common.Address) (token0, token1 common.Address, err error) {
	if tokenA == tokenB {
		return common.Address{}, common.Address{}, ErrIdenticalTokens
	}
	if bytes.Compare(tokenA[:], tokenB[:]) < 0 {
		token0, token1 = tokenA, tokenB
	} else {
		token0, token1 = tokenB, tokenA
	}
	// token1 cannot be zero here: it compares strictly greater than token0.
	if token0 == (common.Address{}) {
		return common.Address{}, common.Address{}, ErrZeroToken
	}
	return token0, token1, nil
}
