// Package ioaggr rebuilds observation summaries: coverage-weighted
// means of pixel values per geometry, time step and variable. The work
// happens inside PostgreSQL with one INSERT..SELECT per variable, so
// memory stays bounded no matter how many pixels a source has.
package ioaggr

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/ecoclim/pixlink/pkg/config"
	"github.com/ecoclim/pixlink/pkg/db"
	"github.com/ecoclim/pixlink/pkg/lifecycle"
	"github.com/ecoclim/pixlink/pkg/sources"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
)

type aggregator struct {
	cfg      *config.Config
	operator db.Operator
	sources  *sources.SourcesConfig
}

// New creates an Aggregator.
func New(
	cfg *config.Config,
	op db.Operator,
	srcCfg *sources.SourcesConfig,
) lifecycle.Aggregator {
	return &aggregator{cfg: cfg, operator: op, sources: srcCfg}
}

// Aggregate rebuilds summaries for all requested sources.
func (a *aggregator) Aggregate(ctx context.Context) error {
	srcs, err := a.sources.FilterSources(a.cfg.Run.SourceNames)
	if err != nil {
		return err
	}

	if err := a.ensureJoinIndex(ctx); err != nil {
		return err
	}

	start := time.Now()
	for _, src := range srcs {
		if err := a.aggregateSource(ctx, src.Name); err != nil {
			return err
		}
	}

	gn.Info("Aggregation finished in %s",
		gnfmt.TimeString(time.Since(start).Seconds()))
	return nil
}

func (a *aggregator) aggregateSource(
	ctx context.Context,
	source string,
) error {
	variables, err := a.sourceVariables(ctx, source)
	if err != nil {
		return err
	}
	if len(variables) == 0 {
		gn.Warn("No pixel values for <em>%s</em>, skipping aggregation",
			source)
		return nil
	}

	bar := pb.Full.Start(len(variables))
	bar.Set("prefix", fmt.Sprintf("Aggregating %s: ", source))
	bar.Set(pb.CleanOnFinish, true)
	defer bar.Finish()

	for _, v := range variables {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := a.aggregateVariable(ctx, source, v); err != nil {
			return err
		}
		bar.Increment()
	}

	gn.Info("Rebuilt summaries for <em>%s</em> (%d variables)",
		source, len(variables))
	return nil
}

// sourceVariables lists the variables present in the long table for a
// source. Variables the config names but extraction never produced are
// naturally absent.
func (a *aggregator) sourceVariables(
	ctx context.Context,
	source string,
) ([]string, error) {
	q := `
		SELECT DISTINCT variable
		FROM pixel_values
		WHERE source = $1
		ORDER BY variable
	`
	rows, err := a.operator.Pool().Query(ctx, q, source)
	if err != nil {
		return nil, QueryError(source, err)
	}
	defer rows.Close()

	var res []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, QueryError(source, err)
		}
		res = append(res, v)
	}
	if err := rows.Err(); err != nil {
		return nil, QueryError(source, err)
	}
	return res, nil
}

// aggregateVariable replaces one (source, variable) slice of the summary
// table. Delete and rebuild run in one transaction, so readers never see
// a half-replaced slice.
//
// Pixel maps hold one row per observation; pancake observations share a
// geometry, so the join deduplicates to distinct (geometry, pixel)
// pairs first. The weighted mean divides only by the coverage of pixels
// that have data, and is NULL when none do.
func (a *aggregator) aggregateVariable(
	ctx context.Context,
	source, variable string,
) error {
	tx, err := a.operator.Pool().Begin(ctx)
	if err != nil {
		return InsertError(source, variable, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM observation_summaries
		 WHERE source = $1 AND variable = $2`,
		source, variable,
	); err != nil {
		return InsertError(source, variable, err)
	}

	q := `
		WITH geometry_pixels AS (
			SELECT DISTINCT geometry_id, pixel_id, coverage_fraction
			FROM pixel_maps
			WHERE source = $1
		)
		INSERT INTO observation_summaries
			(source, geometry_id, year, month,
			 water_year, water_year_month, variable,
			 weighted_mean, n_pixels, n_pixels_with_data,
			 sum_coverage_fraction)
		SELECT
			pv.source,
			gp.geometry_id,
			pv.year,
			pv.month,
			pv.water_year,
			pv.water_year_month,
			pv.variable,
			SUM(pv.value * gp.coverage_fraction)
					FILTER (WHERE pv.value IS NOT NULL)
				/ NULLIF(SUM(gp.coverage_fraction)
					FILTER (WHERE pv.value IS NOT NULL), 0),
			COUNT(*),
			COUNT(pv.value),
			SUM(gp.coverage_fraction)
		FROM pixel_values pv
			JOIN geometry_pixels gp ON gp.pixel_id = pv.pixel_id
		WHERE pv.source = $1 AND pv.variable = $2
		GROUP BY
			pv.source, gp.geometry_id, pv.year, pv.month,
			pv.water_year, pv.water_year_month, pv.variable
	`
	if _, err := tx.Exec(ctx, q, source, variable); err != nil {
		return InsertError(source, variable, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return InsertError(source, variable, err)
	}
	return nil
}

// ensureJoinIndex makes sure the join index the per-variable query
// relies on exists; a first aggregation on a database migrated by an
// older build would otherwise fall back to sequential scans.
func (a *aggregator) ensureJoinIndex(ctx context.Context) error {
	q := `
		CREATE INDEX IF NOT EXISTS idx_pixel_values_join
		ON pixel_values (source, variable, pixel_id)
	`
	if _, err := a.operator.Pool().Exec(ctx, q); err != nil {
		return IndexError(err)
	}
	return nil
}

// WeightedMean mirrors the SQL aggregation for one geometry and time
// step: the coverage-weighted mean over pixels with data, null when no
// pixel has data. Values and weights are parallel slices.
func WeightedMean(
	values []sql.NullFloat64,
	weights []float64,
) sql.NullFloat64 {
	var sum, wsum float64
	var any bool
	for i, v := range values {
		if !v.Valid {
			continue
		}
		sum += v.Float64 * weights[i]
		wsum += weights[i]
		any = true
	}
	if !any || wsum == 0 {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: sum / wsum, Valid: true}
}
