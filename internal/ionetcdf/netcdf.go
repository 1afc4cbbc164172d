// Package ionetcdf implements the raster.Source contract over local
// multi-band NetCDF files, one file per (variable, year) with a
// time x y x x band layout.
package ionetcdf

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/ecoclim/pixlink/pkg/raster"
	"github.com/ecoclim/pixlink/pkg/sources"
)

type ncSource struct {
	src sources.ClimateSourceConfig

	// handles caches open files by (variable, year); extraction walks
	// years sequentially so the cache stays small.
	handles map[fileKey]api.Group
}

type fileKey struct {
	variable string
	year     int
}

// New creates a local NetCDF raster source for one climate source
// config.
func New(src sources.ClimateSourceConfig) raster.Source {
	return &ncSource{
		src:     src,
		handles: make(map[fileKey]api.Group),
	}
}

// TimeSteps enumerates the time axis from the configured temporal
// granularity.
func (s *ncSource) TimeSteps(
	_ context.Context,
	yearFrom, yearTo int,
) ([]raster.TimeStep, error) {
	return raster.Steps(s.src.Temporal, yearFrom, yearTo)
}

// Variables returns the configured variable names. Local sources carry
// one variable per file, so the configuration is authoritative.
func (s *ncSource) Variables(_ context.Context) ([]string, error) {
	return s.src.VariableNames(), nil
}

// Sample reads values for every point at every step for every variable.
// A missing file or band yields null values for its slice, not an
// error: local archives routinely lack years at the range edges.
func (s *ncSource) Sample(
	ctx context.Context,
	pts []raster.Point,
	steps []raster.TimeStep,
	variables []string,
) (*raster.Samples, error) {
	samples := raster.NewSamples(len(pts), steps, variables)

	for j, st := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for k, v := range variables {
			vals, err := s.readSlice(v, st)
			if err != nil {
				return nil, err
			}
			if vals == nil {
				continue
			}
			for i, p := range pts {
				col, row, ok := s.src.Grid.CellIndex(p.X, p.Y)
				if !ok {
					continue
				}
				if row >= len(vals) || col >= len(vals[row]) {
					continue
				}
				samples.Values[i][j][k] = sql.NullFloat64{
					Float64: vals[row][col], Valid: true,
				}
			}
		}
	}
	return samples, nil
}

// Close releases all cached file handles.
func (s *ncSource) Close() error {
	for k, h := range s.handles {
		if h != nil {
			h.Close()
		}
		delete(s.handles, k)
	}
	return nil
}

// readSlice reads one (variable, time step) y x x slice. Returns nil
// values when the file does not exist or lacks the variable's band.
func (s *ncSource) readSlice(
	variable string,
	st raster.TimeStep,
) ([][]float64, error) {
	nc, err := s.open(variable, st.Year)
	if err != nil {
		return nil, err
	}
	if nc == nil {
		return nil, nil
	}

	vg, err := nc.GetVarGetter(variable)
	if err != nil {
		// A file without the expected band behaves like a missing file.
		slog.Warn("Variable missing from NetCDF file, values will be null",
			"source", s.src.Name,
			"variable", variable,
			"year", st.Year,
			"error", err,
		)
		nc.Close()
		s.handles[fileKey{variable: variable, year: st.Year}] = nil
		return nil, nil
	}

	begin := int64(timeIndex(s.src.Temporal, st))
	limit := begin + 1
	if begin >= vg.Len() {
		slog.Warn("Time step beyond file's time axis, treating as missing",
			"source", s.src.Name,
			"variable", variable,
			"year", st.Year,
			"month", st.Month,
			"day", st.Day,
		)
		return nil, nil
	}

	v, err := vg.GetSlice(begin, limit)
	if err != nil {
		return nil, VariableError(s.src.Name, variable, err)
	}

	return toFloatGrid(v)
}

// open returns a cached handle for the (variable, year) file, opening
// it on first use. Missing files are cached as nil so each is logged
// once.
func (s *ncSource) open(variable string, year int) (api.Group, error) {
	key := fileKey{variable: variable, year: year}
	if h, ok := s.handles[key]; ok {
		return h, nil
	}

	path := s.filePath(variable, year)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		slog.Warn("NetCDF file missing, values will be null",
			"source", s.src.Name,
			"variable", variable,
			"year", year,
			"path", path,
		)
		s.handles[key] = nil
		return nil, nil
	}

	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, FileOpenError(s.src.Name, path, err)
	}
	s.handles[key] = nc
	return nc, nil
}

// filePath names the file of one (variable, year):
// <parent>/<source>_<variable>_<year>.nc.
func (s *ncSource) filePath(variable string, year int) string {
	name := fmt.Sprintf("%s_%s_%d.nc", s.src.Name, variable, year)
	return filepath.Join(s.src.Parent, name)
}

// timeIndex maps a time step onto the file's time axis: month ordinal
// for monthly files, day-of-year ordinal for daily files, zero for
// static climatologies.
func timeIndex(temporal raster.Temporal, st raster.TimeStep) int {
	switch temporal {
	case raster.Monthly:
		return st.Month - 1
	case raster.Daily:
		idx := st.Day - 1
		for m := 1; m < st.Month; m++ {
			idx += raster.DaysInMonth(st.Year, m)
		}
		return idx
	default:
		return 0
	}
}

// toFloatGrid converts a [1][ny][nx] NetCDF slice of any numeric
// element type to float64 rows.
func toFloatGrid(v any) ([][]float64, error) {
	switch t := v.(type) {
	case [][][]float64:
		return t[0], nil
	case [][][]float32:
		return convertGrid(t[0]), nil
	case [][][]int32:
		return convertGrid(t[0]), nil
	case [][][]int16:
		return convertGrid(t[0]), nil
	case [][][]int8:
		return convertGrid(t[0]), nil
	default:
		return nil, fmt.Errorf("unsupported NetCDF value type %T", v)
	}
}

func convertGrid[T float32 | int32 | int16 | int8](rows [][]T) [][]float64 {
	res := make([][]float64, len(rows))
	for i, row := range rows {
		res[i] = make([]float64, len(row))
		for j, v := range row {
			res[i][j] = float64(v)
		}
	}
	return res
}
