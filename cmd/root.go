package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/consultores-turismo/str-insights/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "str-insights",
	Short: "Short-term rental market insights pipeline",
	Long:  "Loads listing datasets for Madrid, Barcelona and Mallorca, aggregates them per neighborhood, joins them to boundary geometries, and serves dashboard-ready metrics.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
