package cmd

import (
	"context"

	"github.com/ecoclim/pixlink/internal/iopixmap"
	"github.com/ecoclim/pixlink/pkg/db"
	"github.com/ecoclim/pixlink/pkg/sources"
	"github.com/spf13/cobra"
)

// getPixmapCmd returns the pixmap command.
func getPixmapCmd() *cobra.Command {
	pixmapCmd := &cobra.Command{
		Use:   "pixmap",
		Short: "Map survey geometries onto climate source grids",
		Long: `Build pixel maps: the persisted association between survey
observations and the grid cells their geometries overlap.

This command:
  1. Connects to PostgreSQL using configuration settings
  2. Reads climate sources and survey layers from sources.yaml
  3. Decodes each layer's shapefile, reprojecting when needed
  4. Maps unique geometries onto each source grid concurrently,
     computing per-cell coverage fractions
  5. Expands the mapping to all observations sharing a geometry
     and bulk-loads the pixel_maps table

A (source, layer) pair whose pixel map already exists is skipped,
so re-running after adding a layer only processes the new layer.

Examples:
  pixlink pixmap
  pixlink pixmap --sources prism
  pixlink pixmap -s prism,era5 -l surveys_2020
  pixlink pixmap --jobs 4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPhase(cmd, func(
				ctx context.Context,
				op db.Operator,
				srcCfg *sources.SourcesConfig,
			) error {
				return iopixmap.New(cfg, op, srcCfg).Build(ctx)
			})
		},
	}

	addSourcesFlag(pixmapCmd)
	addLayersFlag(pixmapCmd)
	addJobsFlag(pixmapCmd)

	return pixmapCmd
}
