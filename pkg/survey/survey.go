// Package survey defines the cleaned vector dataset consumed by the
// pixel-map builder: observation records with stable identifiers,
// geometries and grouping attributes. The dataset is produced by an
// upstream cleaning stage and is read-only here.
package survey

import (
	"fmt"
	"strings"

	"github.com/ctessum/geom"
	"github.com/gnames/gnuuid"
)

// Observation is one survey record. Several observations may share one
// physical geometry ("pancake" records); they carry the same GeometryID
// and different ObservationIDs.
type Observation struct {
	// ObservationID is the stable identifier of the record.
	ObservationID string

	// GeometryID identifies the physical geometry. Derived from the
	// layer's geometry-id field, or from the geometry itself when the
	// layer carries none.
	GeometryID string

	// Geom is a point or polygon in the reference system of the target
	// grid.
	Geom geom.Geom

	// Region is the administrative region used for coverage filtering.
	Region string

	// Year is the survey year. Administrative time: never converted to
	// water years.
	Year int
}

// Layer is one named set of observations.
type Layer struct {
	Name         string
	Observations []Observation
}

// UniqueGeometries groups a layer's observations by GeometryID and
// returns one representative observation per distinct geometry, in first-
// seen order, together with the full id expansion map. Pancake records
// collapse to a single mapping unit, so geometric work scales with the
// number of distinct geometries rather than the number of records.
func UniqueGeometries(
	obs []Observation,
) ([]Observation, map[string][]string) {
	var uniq []Observation
	expand := make(map[string][]string)
	for _, o := range obs {
		if _, ok := expand[o.GeometryID]; !ok {
			uniq = append(uniq, o)
		}
		expand[o.GeometryID] = append(expand[o.GeometryID], o.ObservationID)
	}
	return uniq, expand
}

// GeometryID derives a deterministic identifier from a geometry's
// vertices. Two byte-identical geometries always map to the same id, so
// pancake records collapse even when the source layer carries no
// geometry-id field.
func GeometryID(g geom.Geom) string {
	var b strings.Builder
	switch t := g.(type) {
	case geom.Point:
		writePoint(&b, t)
	case geom.Polygon:
		writePolygon(&b, t)
	case geom.MultiPolygon:
		for _, p := range t {
			writePolygon(&b, p)
			b.WriteByte('|')
		}
	default:
		fmt.Fprintf(&b, "%v", g)
	}
	return gnuuid.New(b.String()).String()
}

func writePolygon(b *strings.Builder, p geom.Polygon) {
	for _, ring := range p {
		for _, pt := range ring {
			writePoint(b, pt)
		}
		b.WriteByte(';')
	}
}

func writePoint(b *strings.Builder, pt geom.Point) {
	fmt.Fprintf(b, "%.9f,%.9f ", pt.X, pt.Y)
}
