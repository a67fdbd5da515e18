package main

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/pairflow/pairflow-router-go/amm"
)

var pairCmd = &cobra.Command{
	Use:   "pair <tokenA> <tokenB>",
	Short: "Derive the pair address for two tokens",
	Long: `Derives the deterministic pair address for two token addresses under
the configured factory and pair code hash. Purely offline: the pair does not
need to exist.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		env, err := cfg.EngineContext()
		if err != nil {
			return err
		}
		addr, err := amm.PairFor(env.Factory, env.PairCodeHash,
			common.HexToAddress(args[0]), common.HexToAddress(args[1]))
		if err != nil {
			return err
		}
		fmt.Println(addr.Hex())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pairCmd)
}
