package ioextract

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/cheggaaa/pb/v3"
	"github.com/ecoclim/pixlink/pkg/raster"
	"github.com/ecoclim/pixlink/pkg/sources"

	_ "modernc.org/sqlite"
)

// extractYear samples every pixel of a source at every time step of one
// year and writes the wide per-year SQLite file. The file is built
// under a temporary name and renamed into place only when complete, so
// an interrupted run never leaves a partial file visible.
func (e *extractor) extractYear(
	ctx context.Context,
	src sources.ClimateSourceConfig,
	pixels []raster.Point,
	year int,
	path string,
) error {
	rsrc := e.newSource(src)
	defer rsrc.Close()

	steps, err := yearSteps(&src, year)
	if err != nil {
		return SourceError(src.Name, year, err)
	}

	// Remote sources without month packing go one request per step;
	// everything else samples all steps of the year per point batch.
	perStep := src.Kind == sources.KindRemote &&
		!src.EffectivePackMonths(e.cfg)
	batchSize := src.EffectiveBatchSize(e.cfg)
	ppr := batchSize
	if src.Kind == sources.KindRemote && !perStep {
		ppr = pointsPerRequest(batchSize, len(steps), true)
	}

	tmpPath := path + ".tmp"
	w, err := newWideWriter(tmpPath, src.VariableNames())
	if err != nil {
		return WriteError(tmpPath, err)
	}

	cleanup := func() {
		w.Close()
		os.Remove(tmpPath)
	}

	nBatches := (len(pixels) + ppr - 1) / ppr
	bar := pb.Full.Start(nBatches)
	bar.Set("prefix", fmt.Sprintf("Extracting %s %s: ", src.Name,
		yearLabel(year)))
	bar.Set(pb.CleanOnFinish, true)
	defer bar.Finish()

	variables := src.VariableNames()
	for i := 0; i < len(pixels); i += ppr {
		if err := ctx.Err(); err != nil {
			cleanup()
			return err
		}

		batch := pixels[i:min(i+ppr, len(pixels))]

		samples, err := sampleBatch(ctx, rsrc, batch, steps, variables,
			perStep)
		if err != nil {
			cleanup()
			return SourceError(src.Name, year, err)
		}

		if err := w.writeBatch(batch, samples, &src); err != nil {
			cleanup()
			return WriteError(tmpPath, err)
		}
		bar.Increment()
	}

	if err := w.Close(); err != nil {
		os.Remove(tmpPath)
		return WriteError(tmpPath, err)
	}
	if err := syncFile(tmpPath); err != nil {
		os.Remove(tmpPath)
		return WriteError(tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return WriteError(path, err)
	}
	return nil
}

// sampleBatch reads one point batch, either with a single packed
// request covering all steps or with one request per step.
func sampleBatch(
	ctx context.Context,
	rsrc raster.Source,
	pts []raster.Point,
	steps []raster.TimeStep,
	variables []string,
	perStep bool,
) (*raster.Samples, error) {
	if !perStep {
		return rsrc.Sample(ctx, pts, steps, variables)
	}

	res := raster.NewSamples(len(pts), steps, variables)
	for j, st := range steps {
		s, err := rsrc.Sample(
			ctx, pts, []raster.TimeStep{st}, variables)
		if err != nil {
			return nil, err
		}
		for i := range pts {
			res.Values[i][j] = s.Values[i][0]
		}
	}
	return res, nil
}

func yearLabel(year int) string {
	if year == 0 {
		return "static"
	}
	return fmt.Sprintf("%d", year)
}

func syncFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}

// wideWriter appends rows to one wide per-year SQLite file: one row per
// (pixel, time step), one REAL column per variable.
type wideWriter struct {
	db        *sql.DB
	insertSQL string
	variables []string
}

func newWideWriter(path string, variables []string) (*wideWriter, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	var cols []string
	for _, v := range variables {
		cols = append(cols, fmt.Sprintf("%q REAL", v))
	}
	createSQL := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS pixel_values_wide (
		pixel_id INTEGER NOT NULL,
		x REAL NOT NULL,
		y REAL NOT NULL,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		day INTEGER,
		%s
	)`, strings.Join(cols, ",\n\t\t"))

	if _, err := db.Exec(createSQL); err != nil {
		db.Close()
		return nil, err
	}

	var names []string
	var marks []string
	for _, v := range variables {
		names = append(names, fmt.Sprintf("%q", v))
		marks = append(marks, "?")
	}
	insertSQL := fmt.Sprintf(
		`INSERT INTO pixel_values_wide
			(pixel_id, x, y, year, month, day, %s)
		 VALUES (?, ?, ?, ?, ?, ?, %s)`,
		strings.Join(names, ", "), strings.Join(marks, ", "))

	return &wideWriter{
		db:        db,
		insertSQL: insertSQL,
		variables: variables,
	}, nil
}

// writeBatch stores one sampled point batch, applying each variable's
// unit conversion. Missing samples and fill values become NULLs.
func (w *wideWriter) writeBatch(
	pts []raster.Point,
	samples *raster.Samples,
	src *sources.ClimateSourceConfig,
) error {
	tx, err := w.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(w.insertSQL)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i, p := range pts {
		for j, st := range samples.Steps {
			args := make([]any, 0, 6+len(w.variables))
			var day any
			if st.Day > 0 {
				day = st.Day
			}
			args = append(args, p.PixelID, p.X, p.Y, st.Year, st.Month,
				day)
			for k, name := range w.variables {
				args = append(args,
					convertedValue(src, name, samples.Values[i][j][k]))
			}
			if _, err := stmt.Exec(args...); err != nil {
				tx.Rollback()
				return err
			}
		}
	}
	return tx.Commit()
}

func (w *wideWriter) Close() error {
	return w.db.Close()
}

// convertedValue applies a variable's scale and offset to a raw sample.
// Invalid samples and fill values stay NULL; nothing downstream
// transforms values further.
func convertedValue(
	src *sources.ClimateSourceConfig,
	variable string,
	raw sql.NullFloat64,
) any {
	if !raw.Valid {
		return nil
	}
	vc, ok := src.Variable(variable)
	if !ok {
		return nil
	}
	if vc.IsMissing(raw.Float64) {
		return nil
	}
	return vc.ConvertedValue(raw.Float64)
}
