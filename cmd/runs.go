package main

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/campusmetrics/ipeds-cli/internal/runlog"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded pipeline runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		limit, _ := cmd.Flags().GetInt("limit")

		store, err := runlog.Open(ctx, cfg.RunLog.Driver, cfg.RunLog.DSN)
		if err != nil {
			return eris.Wrap(err, "runs")
		}
		defer store.Close()

		if err := store.Migrate(ctx); err != nil {
			return eris.Wrap(err, "runs: migrate")
		}

		entries, err := store.List(ctx, limit)
		if err != nil {
			return eris.Wrap(err, "runs: list")
		}
		if len(entries) == 0 {
			fmt.Println("No runs recorded")
			return nil
		}

		fmt.Printf("%-36s  %-8s  %-9s  %-20s  %-20s  %10s\n", "ID", "STEP", "STATUS", "STARTED", "COMPLETED", "ROWS")
		for _, e := range entries {
			completed := "-"
			if e.CompletedAt != nil {
				completed = e.CompletedAt.UTC().Format(time.RFC3339)
			}
			fmt.Printf("%-36s  %-8s  %-9s  %-20s  %-20s  %10d\n",
				e.ID, e.Step, e.Status, e.StartedAt.UTC().Format(time.RFC3339), completed, e.RowsOut)
		}
		return nil
	},
}

func init() {
	runsCmd.Flags().Int("limit", 20, "maximum runs to list")
	rootCmd.AddCommand(runsCmd)
}
