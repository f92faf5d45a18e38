package main

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/campusmetrics/ipeds-cli/internal/build"
	"github.com/campusmetrics/ipeds-cli/internal/lake"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract the wide IPEDS file into the canonical long table",
	Long: `Parses DRVGR/DFR year columns out of the wide graduation-rate extract,
collapses competing columns with the source precedence ladder
(official-revised, official, fallback-revised, fallback), and writes the
raw long table plus an extraction report into the output directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		widePath, _ := cmd.Flags().GetString("input")
		outDir, _ := cmd.Flags().GetString("out")
		if widePath == "" {
			widePath = cfg.Inputs.WideCSV
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

		return withRunLog(ctx, "extract", func() (int64, error) {
			res, err := runExtract(ctx, store, widePath, outDir, time.Now().UTC())
			if err != nil {
				return 0, eris.Wrap(err, "extract")
			}
			fmt.Printf("Extracted %d rows to %s\n", len(res.Records), outDir)
			return int64(len(res.Records)), nil
		})
	},
}

func init() {
	extractCmd.Flags().String("input", "", "wide extract CSV (default from config)")
	extractCmd.Flags().String("out", "", "output directory (default from config)")
	rootCmd.AddCommand(extractCmd)
}
