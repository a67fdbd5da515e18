package main

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/pairflow/pairflow-router-go/pool/mempool"
	"github.com/pairflow/pairflow-router-go/router"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a full swap round trip against an in-memory backend",
	Long: `Creates two demo tokens and a pool in memory, seeds liquidity at a
2:1 ratio, then sells along the pair in both directions. Useful as a smoke
test of the whole engine without any chain access.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		env, err := cfg.EngineContext()
		if err != nil {
			return err
		}

		backend, err := mempool.New(env)
		if err != nil {
			return err
		}
		r, err := router.New(env, backend, router.WithLogger(rootLogger.With("component", "router")))
		if err != nil {
			return err
		}

		var (
			tokenA = common.HexToAddress("0x00000000000000000000000000000000000000aa")
			tokenB = common.HexToAddress("0x00000000000000000000000000000000000000bb")
			trader = common.HexToAddress("0x0000000000000000000000000000000000007ade")
		)
		supply := new(big.Int).Exp(big.NewInt(10), big.NewInt(24), nil)
		if err := backend.Credit(tokenA, trader, supply); err != nil {
			return err
		}
		if err := backend.Credit(tokenB, trader, supply); err != nil {
			return err
		}

		desiredA := new(big.Int).Exp(big.NewInt(10), big.NewInt(21), nil)
		desiredB := new(big.Int).Mul(desiredA, big.NewInt(2))
		amountA, amountB, liquidity, err := r.AddLiquidity(cmd.Context(), router.AddLiquidityParams{
			From: trader, To: trader,
			TokenA: tokenA, TokenB: tokenB,
			AmountADesired: desiredA,
			AmountBDesired: desiredB,
		})
		if err != nil {
			return err
		}
		fmt.Printf("seeded pool: %s A, %s B, %s liquidity\n", amountA, amountB, liquidity)

		amountIn := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
		amounts, err := r.SwapExactTokens(cmd.Context(), router.SwapExactInParams{
			From: trader, To: trader,
			Path:     []common.Address{tokenA, tokenB},
			AmountIn: amountIn,
		})
		if err != nil {
			return err
		}
		fmt.Printf("sold %s A for %s B\n", amounts[0], amounts[1])

		amounts, err = r.SwapExactTokens(cmd.Context(), router.SwapExactInParams{
			From: trader, To: trader,
			Path:     []common.Address{tokenB, tokenA},
			AmountIn: amounts[1],
		})
		if err != nil {
			return err
		}
		fmt.Printf("sold %s B back for %s A\n", amounts[0], amounts[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd)
}
