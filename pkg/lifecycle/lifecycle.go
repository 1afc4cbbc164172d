// Package lifecycle defines the contracts of the pipeline phases. Each
// phase is implemented by an impure internal/io* package and orchestrated
// by one CLI subcommand; phases run sequentially and every phase is safe
// to re-run (skip-if-done or overwrite, per contract).
package lifecycle

import (
	"context"
)

// SchemaManager defines the interface for database schema management.
// It uses GORM AutoMigrate to handle both initial schema creation and
// migrations. Schema management is idempotent - safe to run multiple
// times. Config is provided during construction.
type SchemaManager interface {
	// Create creates the initial database schema using GORM AutoMigrate.
	// If tables already exist, behavior depends on user confirmation via
	// DropAllTables.
	Create(ctx context.Context) error

	// Migrate updates the database schema to the latest version.
	Migrate(ctx context.Context) error
}

// MapBuilder builds pixel maps: the persisted association between survey
// observations and the grid cells their geometries overlap.
//
// Building is idempotent per (climate source, layer): when the pixel map
// already exists it is loaded, not recomputed. Pancake records (several
// observations sharing one geometry) are mapped once and expanded.
type MapBuilder interface {
	// Build maps all configured layers onto all requested climate
	// sources.
	Build(ctx context.Context) error
}

// Extractor pulls per-pixel time-series values from raster sources in
// batches, one output file per (source, year). A year whose output file
// exists and whose completion is recorded in the ledger is skipped
// without touching the source. A failed year is recorded and the run
// continues; the year is retried on the next invocation.
type Extractor interface {
	// Extract runs the batched extraction for all requested sources over
	// their configured year ranges.
	Extract(ctx context.Context) error
}

// Reshaper converts the wide per-year extraction files into the long,
// source-agnostic pixel-value table, appending water-year time keys and
// dropping pixels no longer referenced by a pixel map. Re-running
// overwrites a source's long rows; the stage is restartable but not
// incrementally resumable.
type Reshaper interface {
	// Reshape processes all requested sources.
	Reshape(ctx context.Context) error
}

// Aggregator joins the long pixel values back to the pixel maps and
// computes coverage-weighted means per observation, time step and
// variable, iterating variable-by-variable to bound memory. The summary
// table is a materialized view: recomputable at any time, never
// authoritative.
type Aggregator interface {
	// Aggregate rebuilds observation summaries for all requested
	// sources.
	Aggregate(ctx context.Context) error
}
