package main

import (
	"context"

	"github.com/spf13/cobra"
)

// Execute builds the command tree and runs it.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var configPath string
	root := &cobra.Command{
		Use:           "stockctl",
		Short:         "Stock price predictor tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config YAML (default: $CONFIG_PATH)")
	root.AddCommand(importSymbolsCmd(&configPath))
	root.AddCommand(fitCmd())
	return root
}
