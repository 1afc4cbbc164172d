// Package schema provides database schema models for pixlink.
// Models are created by GORM AutoMigrate and bulk-loaded through pgx.
package schema

import (
	"database/sql"
	"time"
)

// PixelMap associates one survey observation with one grid cell of a
// climate source. Rows are written once per (source, layer) and never
// mutated; new layers only extend the table.
type PixelMap struct {
	// Source is the climate source name. Pixel ids are only meaningful
	// within one source's grid.
	Source string `gorm:"type:varchar(50);not null;index:idx_pixel_maps_source_layer;index:idx_pixel_maps_source_pixel"`

	// Layer is the survey layer the observation came from.
	Layer string `gorm:"type:varchar(100);not null;index:idx_pixel_maps_source_layer"`

	// ObservationID is the stable identifier of the survey record.
	ObservationID string `gorm:"type:varchar(100);not null;index"`

	// GeometryID identifies the physical geometry; shared by pancake
	// observations.
	GeometryID string `gorm:"type:varchar(100);not null;index"`

	// PixelID is the row-major cell index within the source grid.
	PixelID int `gorm:"not null;index:idx_pixel_maps_source_pixel"`

	// X, Y are the cell center coordinates in the grid reference system.
	X float64 `gorm:"not null"`
	Y float64 `gorm:"not null"`

	// CoverageFraction is the fraction of the cell covered by the
	// geometry: (0, 1] for polygons, exactly 1 for points.
	CoverageFraction float64 `gorm:"not null"`
}

// TableName returns the PostgreSQL table name for PixelMap.
func (PixelMap) TableName() string {
	return "pixel_maps"
}

// PixelValue is one climate variable value for one grid cell at one time
// step, in long format. Values carry applied scale factors and unit
// conversions; nothing downstream transforms them further.
type PixelValue struct {
	Source  string `gorm:"type:varchar(50);not null;index:idx_pixel_values_source_var"`
	PixelID int    `gorm:"not null;index"`

	// Year, Month (and Day for daily sources) form the calendar time key.
	Year  int           `gorm:"not null"`
	Month int           `gorm:"not null"`
	Day   sql.NullInt16 `gorm:""`

	// WaterYear, WaterYearMonth form the hydrological time key.
	WaterYear      int `gorm:"not null"`
	WaterYearMonth int `gorm:"not null"`

	Variable string `gorm:"type:varchar(50);not null;index:idx_pixel_values_source_var"`

	// Value is null for coverage gaps (ocean, raster edge, missing
	// band); nulls propagate downstream and are never defaulted to zero.
	Value sql.NullFloat64 `gorm:""`
}

// TableName returns the PostgreSQL table name for PixelValue.
func (PixelValue) TableName() string {
	return "pixel_values"
}

// ObservationSummary is the coverage-weighted aggregate of one geometry
// at one time step for one variable. The table is a materialized view
// over pixel_maps and pixel_values: recomputable at any time, never
// authoritative.
type ObservationSummary struct {
	Source     string `gorm:"type:varchar(50);not null;index:idx_obs_summaries_source_geom"`
	GeometryID string `gorm:"type:varchar(100);not null;index:idx_obs_summaries_source_geom"`

	Year           int `gorm:"not null"`
	Month          int `gorm:"not null"`
	WaterYear      int `gorm:"not null"`
	WaterYearMonth int `gorm:"not null"`

	Variable string `gorm:"type:varchar(50);not null;index"`

	// WeightedMean is Σ(value·cf)/Σ(cf) over pixels with data; null when
	// no associated pixel has data.
	WeightedMean sql.NullFloat64 `gorm:""`

	// NPixels counts all pixels associated with the geometry;
	// NPixelsWithData counts the subset contributing to the mean. The
	// pair distinguishes partial coverage from full coverage.
	NPixels         int `gorm:"not null"`
	NPixelsWithData int `gorm:"not null"`

	// SumCoverageFraction is Σ(cf) over all associated pixels.
	SumCoverageFraction float64 `gorm:"not null"`
}

// TableName returns the PostgreSQL table name for ObservationSummary.
func (ObservationSummary) TableName() string {
	return "observation_summaries"
}

// CompletedBatch is the explicit completion ledger. One row marks one
// finished unit of work; the unique key makes completion idempotent. The
// extractor also checks the per-year output file, so a batch counts as
// done only when both the row and the file exist.
type CompletedBatch struct {
	ID uint `gorm:"primaryKey"`

	// RunID identifies the invocation that completed the batch.
	RunID string `gorm:"type:uuid;not null"`

	// Stage is the pipeline phase, e.g. "extract".
	Stage string `gorm:"type:varchar(20);not null;uniqueIndex:idx_completed_batches_key"`

	// Source is the climate source name.
	Source string `gorm:"type:varchar(50);not null;uniqueIndex:idx_completed_batches_key"`

	// BatchKey identifies the unit of work within the stage, e.g. the
	// year of an extraction file.
	BatchKey string `gorm:"type:varchar(100);not null;uniqueIndex:idx_completed_batches_key"`

	CompletedAt time.Time `gorm:"not null"`
}

// TableName returns the PostgreSQL table name for CompletedBatch.
func (CompletedBatch) TableName() string {
	return "completed_batches"
}
