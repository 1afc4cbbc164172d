package ioextract

import (
	"context"
	"os"
	"time"

	"github.com/ecoclim/pixlink/pkg/db"
	"github.com/ecoclim/pixlink/pkg/raster"
)

// stage is the ledger stage key of this phase.
const stage = "extract"

// ledger tracks which (source, year) units are complete and serves the
// pixels to extract. Backed by Postgres in production; replaceable in
// tests.
type ledger interface {
	loadPixels(ctx context.Context, source string) ([]raster.Point, error)
	yearDone(
		ctx context.Context, source string, year int, path string,
	) (bool, error)
	markYearDone(
		ctx context.Context, source, runID string, year int,
	) error
}

// pgLedger is the completed_batches table plus the pixel maps.
type pgLedger struct {
	operator db.Operator
}

// loadPixels reads the distinct pixels of a source across all its pixel
// maps, ordered by pixel id.
func (l *pgLedger) loadPixels(
	ctx context.Context,
	source string,
) ([]raster.Point, error) {
	q := `
		SELECT DISTINCT pixel_id, x, y
		FROM pixel_maps
		WHERE source = $1
		ORDER BY pixel_id
	`
	rows, err := l.operator.Pool().Query(ctx, q, source)
	if err != nil {
		return nil, LedgerError(source, err)
	}
	defer rows.Close()

	var res []raster.Point
	for rows.Next() {
		var p raster.Point
		if err := rows.Scan(&p.PixelID, &p.X, &p.Y); err != nil {
			return nil, LedgerError(source, err)
		}
		res = append(res, p)
	}
	if err := rows.Err(); err != nil {
		return nil, LedgerError(source, err)
	}
	return res, nil
}

// yearDone reports whether a year was completed: the ledger row AND the
// output file must both exist. Either one missing means the year is
// redone from scratch.
func (l *pgLedger) yearDone(
	ctx context.Context,
	source string,
	year int,
	path string,
) (bool, error) {
	q := `
		SELECT EXISTS (
			SELECT FROM completed_batches
			WHERE stage = $1 AND source = $2 AND batch_key = $3
		)
	`
	var inLedger bool
	err := l.operator.Pool().
		QueryRow(ctx, q, stage, source, yearLabel(year)).
		Scan(&inLedger)
	if err != nil {
		return false, LedgerError(source, err)
	}
	if !inLedger {
		return false, nil
	}

	if _, err := os.Stat(path); err != nil {
		return false, nil
	}
	return true, nil
}

// markYearDone records a completed year in the ledger. The unique
// (stage, source, batch_key) key makes completion idempotent.
func (l *pgLedger) markYearDone(
	ctx context.Context,
	source, runID string,
	year int,
) error {
	q := `
		INSERT INTO completed_batches
			(run_id, stage, source, batch_key, completed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (stage, source, batch_key) DO NOTHING
	`
	_, err := l.operator.Pool().Exec(
		ctx, q, runID, stage, source, yearLabel(year), time.Now())
	if err != nil {
		return LedgerError(source, err)
	}
	return nil
}
