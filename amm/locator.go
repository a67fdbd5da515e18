package amm

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// PairFor derives the unique pair address for a token pair without any
// external lookup. It is the CREATE2 formula the factory itself used:
//
//	keccak256(0xff ++ factory ++ keccak256(token0 ++ token1) ++ codeHash)[12:]
//
// Because the function is pure, callers can address a pair that does not
// exist yet; the factory will deploy it at exactly this address.
func PairFor(factory common.Address, codeHash common.Hash, tokenA, tokenB common.Address) (common.Address, error) {
	token0, token1, err := SortTokens(tokenA, tokenB)
	if err != nil {
		return common.Address{}, err
	}
	salt := crypto.Keccak256Hash(token0.Bytes(), token1.Bytes())
	return crypto.CreateAddress2(factory, salt, codeHash.Bytes()), nil
}
