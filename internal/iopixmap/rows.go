package iopixmap

import (
	"context"
	"fmt"
	"strings"

	"github.com/ecoclim/pixlink/pkg/survey"
)

// conusExcluded lists region codes outside the conterminous US. For
// conus_only sources, observations from these regions are filtered out
// before mapping; their absence from the pixel map means "not covered".
var conusExcluded = map[string]bool{
	"AK": true,
	"HI": true,
	"PR": true,
	"GU": true,
	"VI": true,
	"AS": true,
	"MP": true,
}

// filterConus drops observations from regions outside the conterminous
// US and returns the kept observations plus the number dropped.
func filterConus(obs []survey.Observation) ([]survey.Observation, int) {
	var res []survey.Observation
	var skipped int
	for _, o := range obs {
		if conusExcluded[strings.ToUpper(strings.TrimSpace(o.Region))] {
			skipped++
			continue
		}
		res = append(res, o)
	}
	return res, skipped
}

// pixelMapRow matches one row of the pixel_maps table.
type pixelMapRow struct {
	Source           string
	Layer            string
	ObservationID    string
	GeometryID       string
	PixelID          int
	X                float64
	Y                float64
	CoverageFraction float64
}

// expandRows turns per-geometry cell coverages into per-observation
// rows using the pancake expansion map. Every observation sharing a
// geometry receives identical pixel rows.
func expandRows(
	source, layer string,
	mapped []geomCells,
	expand map[string][]string,
) []pixelMapRow {
	var rows []pixelMapRow
	for _, gc := range mapped {
		for _, obsID := range expand[gc.GeometryID] {
			for _, cell := range gc.Cells {
				rows = append(rows, pixelMapRow{
					Source:           source,
					Layer:            layer,
					ObservationID:    obsID,
					GeometryID:       gc.GeometryID,
					PixelID:          cell.PixelID,
					X:                cell.X,
					Y:                cell.Y,
					CoverageFraction: cell.Fraction,
				})
			}
		}
	}
	return rows
}

// paramsPerRow is the number of bind parameters of one pixel_maps row.
const paramsPerRow = 8

// insertBatchSize caps rows per INSERT. PostgreSQL allows 65535 query
// parameters; with 8 parameters per row the hard ceiling is 8191 rows.
func insertBatchSize(configured int) int {
	const maxRows = 65535 / paramsPerRow
	if configured <= 0 || configured > maxRows {
		return maxRows
	}
	return configured
}

// insertRows bulk-inserts pixel map rows in parameter-bounded batches.
func (b *builder) insertRows(ctx context.Context, rows []pixelMapRow) error {
	batchSize := insertBatchSize(b.cfg.Database.BatchSize)

	for i := 0; i < len(rows); i += batchSize {
		end := min(i+batchSize, len(rows))
		batch := rows[i:end]

		var valueStrings []string
		var valueArgs []any
		argIdx := 1

		for _, r := range batch {
			valueStrings = append(valueStrings, fmt.Sprintf(
				"($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
				argIdx, argIdx+1, argIdx+2, argIdx+3,
				argIdx+4, argIdx+5, argIdx+6, argIdx+7,
			))
			valueArgs = append(valueArgs,
				r.Source, r.Layer, r.ObservationID, r.GeometryID,
				r.PixelID, r.X, r.Y, r.CoverageFraction,
			)
			argIdx += paramsPerRow
		}

		insertQuery := fmt.Sprintf(
			`INSERT INTO pixel_maps
				(source, layer, observation_id, geometry_id,
				 pixel_id, x, y, coverage_fraction)
			 VALUES %s`,
			strings.Join(valueStrings, ", "),
		)

		_, err := b.operator.Pool().Exec(ctx, insertQuery, valueArgs...)
		if err != nil {
			return InsertError(batch[0].Source, batch[0].Layer, err)
		}
	}
	return nil
}
