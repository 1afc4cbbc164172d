// Package ioreshape converts the wide per-year extraction files into
// the long, source-agnostic pixel_values table: variable columns melt
// to rows, water-year keys are appended, and pixels no longer present
// in any pixel map are dropped. Re-running a source overwrites its long
// rows; the stage is restartable but not incrementally resumable.
package ioreshape

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/ecoclim/pixlink/pkg/config"
	"github.com/ecoclim/pixlink/pkg/db"
	"github.com/ecoclim/pixlink/pkg/lifecycle"
	"github.com/ecoclim/pixlink/pkg/raster"
	"github.com/ecoclim/pixlink/pkg/sources"
	"github.com/ecoclim/pixlink/pkg/timecal"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"github.com/jackc/pgx/v5"

	_ "modernc.org/sqlite"
)

type reshaper struct {
	cfg      *config.Config
	operator db.Operator
	sources  *sources.SourcesConfig
}

// New creates a Reshaper.
func New(
	cfg *config.Config,
	op db.Operator,
	srcCfg *sources.SourcesConfig,
) lifecycle.Reshaper {
	return &reshaper{cfg: cfg, operator: op, sources: srcCfg}
}

// Reshape processes all requested sources.
func (r *reshaper) Reshape(ctx context.Context) error {
	srcs, err := r.sources.FilterSources(r.cfg.Run.SourceNames)
	if err != nil {
		return err
	}

	start := time.Now()
	for _, src := range srcs {
		if err := r.reshapeSource(ctx, src); err != nil {
			return err
		}
	}

	gn.Info("Reshape finished in %s",
		gnfmt.TimeString(time.Since(start).Seconds()))
	return nil
}

func (r *reshaper) reshapeSource(
	ctx context.Context,
	src sources.ClimateSourceConfig,
) error {
	mapped, err := r.mappedPixels(ctx, src.Name)
	if err != nil {
		return err
	}
	if len(mapped) == 0 {
		gn.Warn("No pixel maps for <em>%s</em>, skipping reshape",
			src.Name)
		return nil
	}

	files := r.yearFiles(&src)
	if len(files) == 0 {
		gn.Warn("No extraction files for <em>%s</em>, skipping reshape",
			src.Name)
		return nil
	}

	// One transaction per source: the delete and all inserts land
	// together, so a crashed run never leaves a half-replaced source.
	tx, err := r.operator.Pool().Begin(ctx)
	if err != nil {
		return InsertError(src.Name, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM pixel_values WHERE source = $1`, src.Name,
	); err != nil {
		return DeleteError(src.Name, err)
	}

	bar := pb.Full.Start(len(files))
	bar.Set("prefix", fmt.Sprintf("Reshaping %s: ", src.Name))
	bar.Set(pb.CleanOnFinish, true)
	defer bar.Finish()

	var total int
	for _, path := range files {
		n, err := r.reshapeFile(ctx, tx, &src, mapped, path)
		if err != nil {
			return err
		}
		total += n
		bar.Increment()
	}

	if err := tx.Commit(ctx); err != nil {
		return InsertError(src.Name, err)
	}

	gn.Info("Loaded %s long rows for <em>%s</em> from %d files",
		humanize.Comma(int64(total)), src.Name, len(files))
	return nil
}

// yearFiles lists the extraction files of a source that exist on disk.
func (r *reshaper) yearFiles(src *sources.ClimateSourceConfig) []string {
	var years []int
	if src.Temporal == raster.Static {
		years = []int{0}
	} else {
		start, end := src.EffectiveYears(r.cfg)
		for y := start; y <= end; y++ {
			years = append(years, y)
		}
	}

	var res []string
	for _, y := range years {
		path := config.YearFilePath(r.cfg.HomeDir, src.Name, y)
		if _, err := os.Stat(path); err == nil {
			res = append(res, path)
		}
	}
	return res
}

// mappedPixels reads the set of pixel ids still referenced by any pixel
// map of the source. Rows of dropped pixels are filtered out during the
// melt.
func (r *reshaper) mappedPixels(
	ctx context.Context,
	source string,
) (map[int]bool, error) {
	q := `
		SELECT DISTINCT pixel_id
		FROM pixel_maps
		WHERE source = $1
	`
	rows, err := r.operator.Pool().Query(ctx, q, source)
	if err != nil {
		return nil, ReadError(source, err)
	}
	defer rows.Close()

	res := make(map[int]bool)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, ReadError(source, err)
		}
		res[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, ReadError(source, err)
	}
	return res, nil
}

// reshapeFile melts one wide file into long rows and loads them within
// the source transaction. Returns the number of long rows inserted.
func (r *reshaper) reshapeFile(
	ctx context.Context,
	tx pgx.Tx,
	src *sources.ClimateSourceConfig,
	mapped map[int]bool,
	path string,
) (int, error) {
	variables := src.VariableNames()

	wdb, err := sql.Open("sqlite", path)
	if err != nil {
		return 0, ReadError(src.Name, err)
	}
	defer wdb.Close()

	rows, err := wdb.QueryContext(ctx, wideSelectSQL(variables))
	if err != nil {
		return 0, ReadError(src.Name, err)
	}
	defer rows.Close()

	batchSize := longInsertBatchSize(r.cfg.Database.BatchSize)
	var pending []longRow
	var total int

	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		if err := insertLongRows(ctx, tx, pending); err != nil {
			return InsertError(src.Name, err)
		}
		total += len(pending)
		pending = pending[:0]
		return nil
	}

	for rows.Next() {
		var w wideRow
		w.Values = make([]sql.NullFloat64, len(variables))

		dest := []any{&w.PixelID, &w.Year, &w.Month, &w.Day}
		for i := range w.Values {
			dest = append(dest, &w.Values[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return 0, ReadError(src.Name, err)
		}

		if !mapped[w.PixelID] {
			continue
		}

		melted, err := meltRow(src.Name, &w, variables)
		if err != nil {
			return 0, ReadError(src.Name, err)
		}
		pending = append(pending, melted...)

		if len(pending) >= batchSize {
			if err := flush(); err != nil {
				return 0, err
			}
		}
	}
	if err := rows.Err(); err != nil {
		return 0, ReadError(src.Name, err)
	}
	if err := flush(); err != nil {
		return 0, err
	}
	return total, nil
}

// wideRow is one row of a wide per-year file.
type wideRow struct {
	PixelID int
	Year    int
	Month   int
	Day     sql.NullInt16
	Values  []sql.NullFloat64
}

// longRow is one row of the long pixel_values table.
type longRow struct {
	Source         string
	PixelID        int
	Year           int
	Month          int
	Day            sql.NullInt16
	WaterYear      int
	WaterYearMonth int
	Variable       string
	Value          sql.NullFloat64
}

// meltRow turns one wide row into one long row per variable, appending
// the water-year keys. Static rows (month zero) carry zero water-year
// keys.
func meltRow(
	source string,
	w *wideRow,
	variables []string,
) ([]longRow, error) {
	var wy, wym int
	if w.Month > 0 {
		var err error
		wy, wym, err = timecal.ToWater(w.Year, w.Month)
		if err != nil {
			return nil, err
		}
	}

	res := make([]longRow, len(variables))
	for i, v := range variables {
		res[i] = longRow{
			Source:         source,
			PixelID:        w.PixelID,
			Year:           w.Year,
			Month:          w.Month,
			Day:            w.Day,
			WaterYear:      wy,
			WaterYearMonth: wym,
			Variable:       v,
			Value:          w.Values[i],
		}
	}
	return res, nil
}
