package main

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/pairflow/pairflow-router-go/router"
	"github.com/pairflow/pairflow-router-go/streams/ethrpc"
)

var quoteReverse bool

var quoteCmd = &cobra.Command{
	Use:   "quote <amount> <token> <token> [token...]",
	Short: "Price a multi-hop swap against live reserves",
	Long: `Resolves the full amount vector for swapping along the given token
path, reading reserves from the configured JSON-RPC endpoint. By default the
amount is the input sold at the start of the path; with --reverse it is the
exact output bought at the end.`,
	Args: cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		env, err := cfg.EngineContext()
		if err != nil {
			return err
		}

		amount, ok := new(big.Int).SetString(args[0], 10)
		if !ok {
			return fmt.Errorf("invalid amount %q", args[0])
		}
		path := make([]common.Address, 0, len(args)-1)
		for _, arg := range args[1:] {
			path = append(path, common.HexToAddress(arg))
		}

		backend, err := ethrpc.Dial(cmd.Context(), ethrpc.Config{
			URL:      cfg.RPCURL,
			Factory:  env.Factory,
			Logger:   rootLogger.With("component", "ethrpc"),
			Registry: prometheus.DefaultRegisterer,
		})
		if err != nil {
			return err
		}
		defer backend.Close()

		r, err := router.New(env, backend, router.WithLogger(rootLogger.With("component", "router")))
		if err != nil {
			return err
		}

		var amounts []*big.Int
		if quoteReverse {
			amounts, err = r.GetAmountsIn(cmd.Context(), amount, path)
		} else {
			amounts, err = r.GetAmountsOut(cmd.Context(), amount, path)
		}
		if err != nil {
			return err
		}

		for i, a := range amounts {
			fmt.Printf("%s  %s\n", path[i].Hex(), a.String())
		}
		return nil
	},
}

func init() {
	quoteCmd.Flags().BoolVar(&quoteReverse, "reverse", false, "treat the amount as exact output bought at the end of the path")
	rootCmd.AddCommand(quoteCmd)
}
