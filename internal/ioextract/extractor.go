// Package ioextract implements the batched value extraction phase: it
// pulls per-pixel time-series values from raster sources and writes one
// wide SQLite file per (source, year). Completed years are recorded in
// the completed_batches ledger; a year counts as done only when both
// the ledger row and the file exist, so interrupted runs resume where
// they stopped.
package ioextract

import (
	"context"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ecoclim/pixlink/internal/iofs"
	"github.com/ecoclim/pixlink/internal/ioimgserver"
	"github.com/ecoclim/pixlink/internal/ionetcdf"
	"github.com/ecoclim/pixlink/pkg/config"
	"github.com/ecoclim/pixlink/pkg/db"
	"github.com/ecoclim/pixlink/pkg/lifecycle"
	"github.com/ecoclim/pixlink/pkg/raster"
	"github.com/ecoclim/pixlink/pkg/sources"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"github.com/google/uuid"
)

type extractor struct {
	cfg     *config.Config
	ledger  ledger
	sources *sources.SourcesConfig

	// runID ties ledger rows to one invocation.
	runID string

	// newSource builds the raster access for one climate source;
	// replaceable in tests.
	newSource func(sources.ClimateSourceConfig) raster.Source
}

// New creates an Extractor.
func New(
	cfg *config.Config,
	op db.Operator,
	srcCfg *sources.SourcesConfig,
) lifecycle.Extractor {
	res := &extractor{
		cfg:     cfg,
		ledger:  &pgLedger{operator: op},
		sources: srcCfg,
		runID:   uuid.NewString(),
	}
	res.newSource = func(src sources.ClimateSourceConfig) raster.Source {
		if src.Kind == sources.KindLocal {
			return ionetcdf.New(src)
		}
		return ioimgserver.New(cfg, src)
	}
	return res
}

// Extract runs the batched extraction for all requested sources. A
// failed source or year is recorded and the run continues; the unit is
// retried on the next invocation. The run fails only when every source
// failed.
func (e *extractor) Extract(ctx context.Context) error {
	srcs, err := e.sources.FilterSources(e.cfg.Run.SourceNames)
	if err != nil {
		return err
	}

	start := time.Now()
	var failed int
	for _, src := range srcs {
		if err := e.extractSource(ctx, src); err != nil {
			if ctx.Err() != nil {
				return err
			}
			failed++
			slog.Error("Source extraction failed, continuing",
				"source", src.Name,
				"error", err,
			)
		}
	}
	if failed > 0 && failed == len(srcs) {
		return AllSourcesFailedError(failed)
	}

	gn.Info("Extraction finished in %s",
		gnfmt.TimeString(time.Since(start).Seconds()))
	return nil
}

func (e *extractor) extractSource(
	ctx context.Context,
	src sources.ClimateSourceConfig,
) error {
	pixels, err := e.ledger.loadPixels(ctx, src.Name)
	if err != nil {
		return err
	}
	if len(pixels) == 0 {
		return NoPixelsError(src.Name)
	}

	if err := iofs.EnsureExtractDir(e.cfg.HomeDir, src.Name); err != nil {
		return err
	}

	years := extractionYears(&src, e.cfg)

	gn.Info("Extracting <em>%s</em>: %s pixels, %d years",
		src.Name, humanize.Comma(int64(len(pixels))), len(years))

	var completed, skipped, failed int
	for _, year := range years {
		path := config.YearFilePath(e.cfg.HomeDir, src.Name, year)

		done, err := e.ledger.yearDone(ctx, src.Name, year, path)
		if err != nil {
			return err
		}
		if done {
			skipped++
			continue
		}

		if err := e.extractYear(ctx, src, pixels, year, path); err != nil {
			if ctx.Err() != nil {
				return err
			}
			failed++
			slog.Error("Year extraction failed, continuing",
				"source", src.Name,
				"year", year,
				"error", err,
			)
			continue
		}

		if err := e.ledger.markYearDone(
			ctx, src.Name, e.runID, year,
		); err != nil {
			return err
		}
		completed++
	}

	gn.Info(
		"Source <em>%s</em>: %d years extracted, %d skipped, %d failed",
		src.Name, completed, skipped, failed)

	if failed > 0 && completed == 0 && skipped == 0 {
		return AllYearsFailedError(src.Name, failed)
	}
	return nil
}

// extractionYears lists the per-year units of work for a source. A
// static climatology is one unit keyed by year zero.
func extractionYears(
	src *sources.ClimateSourceConfig,
	cfg *config.Config,
) []int {
	if src.Temporal == raster.Static {
		return []int{0}
	}
	start, end := src.EffectiveYears(cfg)
	var res []int
	for y := start; y <= end; y++ {
		res = append(res, y)
	}
	return res
}

// yearSteps lists the time steps of one extraction unit.
func yearSteps(
	src *sources.ClimateSourceConfig,
	year int,
) ([]raster.TimeStep, error) {
	if src.Temporal == raster.Static {
		return raster.Steps(raster.Static, 0, 0)
	}
	return raster.Steps(src.Temporal, year, year)
}

// pointsPerRequest bounds the pixels of one sampling request. When all
// steps of a year pack into one multi-band request, the per-request
// point count shrinks so the combined payload stays bounded.
func pointsPerRequest(batchSize, nsteps int, packed bool) int {
	if !packed || nsteps <= 1 {
		return max(batchSize, 1)
	}
	return max(batchSize/nsteps, 1)
}
