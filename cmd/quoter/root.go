package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	verbose    bool

	rootLogger *slog.Logger
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "quoter",
	Short: "Constant-product pair pricing and routing tool",
	Long: `quoter derives pair addresses, prices multi-hop swaps against live
chain reserves, and simulates full swap execution against an in-memory pool
backend.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		rootLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it. Called by
// main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "quoter.yaml", "configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
}

func loadConfig() (*Config, error) {
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return nil, err
	}
	rootLogger.Debug("configuration loaded", "path", configFile)
	return cfg, nil
}
