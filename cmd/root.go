package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/campusmetrics/ipeds-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "ipeds-cli",
	Short: "Canonical IPEDS graduation-rate pipeline",
	Long:  "Transforms wide IPEDS graduation-rate extracts into a validated long-format dataset: extraction with source precedence, metadata enrichment, and columnar outputs with provenance.",
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
