package main

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/campusmetrics/ipeds-cli/internal/build"
	"github.com/campusmetrics/ipeds-cli/internal/lake"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the latest/summary views and the provenance record",
	Long: `Derives the latest-by-institution projection and the year-by-sector
summary from the enriched long table and writes the full output set.
The provenance record's completion flag is set only after every table
landed; consumers must not trust outputs whose flag is false. Requires
a prior enrich in the same output directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		outDir, _ := cmd.Flags().GetString("out")
		if outDir == "" {
			outDir = cfg.Output.Dir
		}

		release, err := build.AcquireRunLock(outDir)
		if err != nil {
			return err
		}
		defer release()

		store, err := lake.Open(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		return withRunLog(ctx, "build", func() (int64, error) {
			prov, err := runBuild(ctx, store, outDir, time.Now().UTC())
			if err != nil {
				return 0, eris.Wrap(err, "build")
			}
			fmt.Printf("Built outputs: long=%d latest=%d summary=%d (run %s)\n",
				prov.LongRows, prov.LatestRows, prov.SummaryRows, prov.RunID)
			return int64(prov.LongRows), nil
		})
	},
}

func init() {
	buildCmd.Flags().String("out", "", "output directory (default from config)")
	rootCmd.AddCommand(buildCmd)
}
