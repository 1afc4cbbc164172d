// Package raster defines the capability contract of a climate raster
// source. Two implementations exist: a remote image service sampled over
// HTTP in batches (internal/ioimgserver) and local multi-band NetCDF
// files (internal/ionetcdf). The extraction engine only sees this
// interface, so the two access mechanisms stay interchangeable.
package raster

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Temporal is the time granularity of a climate source.
type Temporal string

const (
	// Monthly sources expose one time step per (year, month).
	Monthly Temporal = "monthly"
	// Daily sources expose one time step per (year, month, day).
	Daily Temporal = "daily"
	// Static sources expose a single climatology step with no time axis.
	Static Temporal = "static"
)

// TimeStep identifies one slice of a raster's time axis. Day is zero for
// monthly sources; Month and Day are zero for static climatologies.
type TimeStep struct {
	Year  int
	Month int
	Day   int
}

// Point is a sampling location: the center of one grid cell, keyed by its
// stable pixel id.
type Point struct {
	PixelID int
	X       float64
	Y       float64
}

// Samples holds the values returned for a sampling request, addressed by
// (point order, time step order, variable order) of the request. Missing
// source data (ocean, raster edge, absent band) is carried as an invalid
// NullFloat64, never as zero.
type Samples struct {
	Steps     []TimeStep
	Variables []string
	// Values[i][j][k] is the value at point i, step j, variable k.
	Values [][][]sql.NullFloat64
}

// Source is a raster data source addressed by pixel-center coordinates.
type Source interface {
	// TimeSteps lists the available time steps between the two years,
	// inclusive.
	TimeSteps(ctx context.Context, yearFrom, yearTo int) ([]TimeStep, error)

	// Variables returns the variable (band) names the source can serve.
	// Used to validate configured variables before extraction starts.
	Variables(ctx context.Context) ([]string, error)

	// Sample reads values for every point at every requested time step
	// for every requested variable. Implementations decide how to batch
	// or pack the request; callers size pts to the source's limits.
	// A point without coverage yields invalid values, not an error.
	Sample(
		ctx context.Context,
		pts []Point,
		steps []TimeStep,
		variables []string,
	) (*Samples, error)

	// Close releases any handles held by the source.
	Close() error
}

// Steps expands an inclusive year range into the time steps of a
// temporal granularity. Static sources yield a single zero step
// regardless of the range.
func Steps(
	temporal Temporal,
	yearFrom, yearTo int,
) ([]TimeStep, error) {
	if yearTo < yearFrom {
		return nil, fmt.Errorf(
			"year range %d-%d is inverted", yearFrom, yearTo)
	}

	var res []TimeStep
	switch temporal {
	case Static:
		res = append(res, TimeStep{})
	case Monthly:
		for y := yearFrom; y <= yearTo; y++ {
			for m := 1; m <= 12; m++ {
				res = append(res, TimeStep{Year: y, Month: m})
			}
		}
	case Daily:
		for y := yearFrom; y <= yearTo; y++ {
			for m := 1; m <= 12; m++ {
				for d := 1; d <= DaysInMonth(y, m); d++ {
					res = append(res, TimeStep{Year: y, Month: m, Day: d})
				}
			}
		}
	default:
		return nil, fmt.Errorf("unknown temporal granularity %q", temporal)
	}
	return res, nil
}

// DaysInMonth returns the number of days of a calendar month.
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).
		Day()
}

// NewSamples allocates a Samples cube shaped for the request, with every
// value initially invalid.
func NewSamples(
	npts int,
	steps []TimeStep,
	variables []string,
) *Samples {
	vals := make([][][]sql.NullFloat64, npts)
	for i := range vals {
		vals[i] = make([][]sql.NullFloat64, len(steps))
		for j := range vals[i] {
			vals[i][j] = make([]sql.NullFloat64, len(variables))
		}
	}
	return &Samples{
		Steps:     steps,
		Variables: variables,
		Values:    vals,
	}
}
