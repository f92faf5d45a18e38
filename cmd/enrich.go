package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/campusmetrics/ipeds-cli/internal/build"
	"github.com/campusmetrics/ipeds-cli/internal/lake"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Join institutional metadata onto the long table",
	Long: `Left-joins the raw long table against the institutional-characteristics
extract on unitid, maps control/level/sector codes into their closed
enumerations, and writes the enriched long table plus the
missing-metadata report. Requires a prior extract in the same output
directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		metaPath, _ := cmd.Flags().GetString("metadata")
		outDir, _ := cmd.Flags().GetString("out")
		if metaPath == "" {
			metaPath = cfg.Inputs.MetadataFile
		}
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

		return withRunLog(ctx, "enrich", func() (int64, error) {
			enriched, report, err := runEnrich(ctx, store, metaPath, outDir)
			if err != nil {
				return 0, eris.Wrap(err, "enrich")
			}
			fmt.Printf("Enriched %d rows (%d entities missing metadata)\n", len(enriched), report.MissingEntities)
			return int64(len(enriched)), nil
		})
	},
}

func init() {
	enrichCmd.Flags().String("metadata", "", "institutional characteristics file, CSV or XLSX (default from config)")
	enrichCmd.Flags().String("out", "", "output directory (default from config)")
	rootCmd.AddCommand(enrichCmd)
}
