package cmd

import (
	"context"

	"github.com/ecoclim/pixlink/internal/ioreshape"
	"github.com/ecoclim/pixlink/pkg/db"
	"github.com/ecoclim/pixlink/pkg/sources"
	"github.com/spf13/cobra"
)

// getReshapeCmd returns the reshape command.
func getReshapeCmd() *cobra.Command {
	reshapeCmd := &cobra.Command{
		Use:   "reshape",
		Short: "Load extraction files into the long pixel_values table",
		Long: `Convert the wide per-year extraction files into the long,
source-agnostic pixel_values table.

This command:
  1. Connects to PostgreSQL and reads the pixel maps
  2. Reads each source's per-year files from ~/.cache/pixlink/extract
  3. Melts variable columns into rows and appends water-year keys
  4. Drops pixels no longer referenced by any pixel map
  5. Replaces the source's long rows in a single transaction

Re-running a source overwrites its long rows, so reshape after any
new extraction or pixel-map change.

Examples:
  pixlink reshape
  pixlink reshape --sources prism
  pixlink reshape -s era5 --year-start 1990 --year-end 2000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPhase(cmd, func(
				ctx context.Context,
				op db.Operator,
				srcCfg *sources.SourcesConfig,
			) error {
				return ioreshape.New(cfg, op, srcCfg).Reshape(ctx)
			})
		},
	}

	addSourcesFlag(reshapeCmd)
	addYearFlags(reshapeCmd)

	return reshapeCmd
}
