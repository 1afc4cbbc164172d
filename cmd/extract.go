package cmd

import (
	"context"

	"github.com/ecoclim/pixlink/internal/ioextract"
	"github.com/ecoclim/pixlink/pkg/db"
	"github.com/ecoclim/pixlink/pkg/sources"
	"github.com/spf13/cobra"
)

// getExtractCmd returns the extract command.
func getExtractCmd() *cobra.Command {
	extractCmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract pixel values from raster sources",
		Long: `Pull per-pixel time series from climate raster sources in
batches, one SQLite output file per (source, year).

This command:
  1. Connects to PostgreSQL and reads the pixel maps
  2. Samples each source's pixels year by year, batching requests
     for remote sources and file reads for local NetCDF archives
  3. Applies each variable's scale, offset and fill-value handling
  4. Writes one wide file per year under ~/.cache/pixlink/extract

Extraction is resumable: a year whose file exists and whose
completion is recorded in the ledger is skipped. A failed year is
logged and the run continues; re-running retries only failed and
missing years.

Examples:
  pixlink extract
  pixlink extract --sources prism
  pixlink extract -s era5 --year-start 1990 --year-end 2000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPhase(cmd, func(
				ctx context.Context,
				op db.Operator,
				srcCfg *sources.SourcesConfig,
			) error {
				return ioextract.New(cfg, op, srcCfg).Extract(ctx)
			})
		},
	}

	addSourcesFlag(extractCmd)
	addYearFlags(extractCmd)

	return extractCmd
}
