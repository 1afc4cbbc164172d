package grid

import (
	"errors"
	"fmt"
	"math"

	"github.com/ctessum/geom"
)

// ErrUnrepairable marks a polygon that could not be brought into a usable
// state. The caller must count and log the geometry, never drop it
// silently.
var ErrUnrepairable = errors.New("polygon could not be repaired")

// CellCoverage associates one grid cell with the fraction of the cell
// covered by a geometry. Fraction is in (0, 1] for polygons and exactly 1
// for points.
type CellCoverage struct {
	PixelID  int
	X        float64
	Y        float64
	Fraction float64
}

// MapGeometry decomposes a geometry into the grid cells it overlaps.
//
// Polygons yield one entry per cell with positive intersection area, with
// Fraction = area(polygon ∩ cell) / area(cell). Points yield exactly one
// entry with Fraction = 1. A geometry entirely outside the grid extent
// yields an empty result and no error.
//
// Degenerate polygons are repaired first; ErrUnrepairable is returned when
// repair fails.
func (g *Grid) MapGeometry(gm geom.Geom) ([]CellCoverage, error) {
	switch t := gm.(type) {
	case geom.Point:
		return g.mapPoint(t), nil
	case geom.Polygon:
		return g.mapPolygonal(t)
	case geom.MultiPolygon:
		return g.mapPolygonal(t)
	default:
		return nil, fmt.Errorf("unsupported geometry type %T", gm)
	}
}

func (g *Grid) mapPoint(p geom.Point) []CellCoverage {
	col, row, ok := g.CellIndex(p.X, p.Y)
	if !ok {
		return nil
	}
	x, y := g.CellCenter(col, row)
	return []CellCoverage{{
		PixelID:  g.PixelID(col, row),
		X:        x,
		Y:        y,
		Fraction: 1,
	}}
}

func (g *Grid) mapPolygonal(p geom.Polygonal) ([]CellCoverage, error) {
	p, err := Repair(p)
	if err != nil {
		return nil, err
	}

	b := p.Bounds()
	colMin, rowMin, colMax, rowMax, ok := g.candidateCells(b)
	if !ok {
		return nil, nil
	}

	cellArea := g.CellArea()
	var res []CellCoverage
	for row := rowMin; row <= rowMax; row++ {
		for col := colMin; col <= colMax; col++ {
			cell := g.CellPolygon(col, row)
			isect := p.Intersection(cell)
			if isect == nil {
				continue
			}
			area := isect.Area()
			if area <= 0 {
				continue
			}
			frac := area / cellArea
			if frac > 1 {
				frac = 1
			}
			x, y := g.CellCenter(col, row)
			res = append(res, CellCoverage{
				PixelID:  g.PixelID(col, row),
				X:        x,
				Y:        y,
				Fraction: frac,
			})
		}
	}
	return res, nil
}

// candidateCells clips a geometry's bounds to the grid extent and returns
// the inclusive cell index range that can overlap the geometry. ok is
// false when the bounds lie entirely outside the grid.
func (g *Grid) candidateCells(
	b *geom.Bounds,
) (colMin, rowMin, colMax, rowMax int, ok bool) {
	gb := g.Bounds()
	if b.Min.X >= gb.Max.X || b.Max.X <= gb.Min.X ||
		b.Min.Y >= gb.Max.Y || b.Max.Y <= gb.Min.Y {
		return 0, 0, 0, 0, false
	}

	colMin = int(math.Floor((b.Min.X - g.Xmin) / g.Dx))
	rowMin = int(math.Floor((b.Min.Y - g.Ymin) / g.Dy))
	colMax = int(math.Floor((b.Max.X - g.Xmin) / g.Dx))
	rowMax = int(math.Floor((b.Max.Y - g.Ymin) / g.Dy))

	colMin = max(colMin, 0)
	rowMin = max(rowMin, 0)
	colMax = min(colMax, g.Nx-1)
	rowMax = min(rowMax, g.Ny-1)
	return colMin, rowMin, colMax, rowMax, true
}

// Repair brings a degenerate polygon into a usable state by dropping
// rings that have fewer than three distinct vertices or zero area, and by
// closing open rings. Polygons that already carry positive area pass
// through untouched. A polygon left with no usable ring returns
// ErrUnrepairable.
func Repair(p geom.Polygonal) (geom.Polygonal, error) {
	if p.Area() > 0 {
		return p, nil
	}

	switch t := p.(type) {
	case geom.Polygon:
		fixed, ok := repairPolygon(t)
		if !ok {
			return nil, ErrUnrepairable
		}
		return fixed, nil
	case geom.MultiPolygon:
		var fixed geom.MultiPolygon
		for _, poly := range t {
			f, ok := repairPolygon(poly)
			if ok {
				fixed = append(fixed, f)
			}
		}
		if len(fixed) == 0 {
			return nil, ErrUnrepairable
		}
		return fixed, nil
	default:
		return nil, ErrUnrepairable
	}
}

func repairPolygon(p geom.Polygon) (geom.Polygon, bool) {
	var fixed geom.Polygon
	for _, ring := range p {
		r := closeRing(dedupeRing(ring))
		// A closed ring needs at least 3 distinct vertices plus the
		// closing point.
		if len(r) < 4 {
			continue
		}
		if ringArea(r) == 0 {
			continue
		}
		fixed = append(fixed, r)
	}
	if len(fixed) == 0 || fixed.Area() <= 0 {
		return nil, false
	}
	return fixed, true
}

func dedupeRing(ring []geom.Point) []geom.Point {
	if len(ring) == 0 {
		return ring
	}
	res := []geom.Point{ring[0]}
	for _, pt := range ring[1:] {
		last := res[len(res)-1]
		if pt.X != last.X || pt.Y != last.Y {
			res = append(res, pt)
		}
	}
	return res
}

func closeRing(ring []geom.Point) []geom.Point {
	if len(ring) < 3 {
		return ring
	}
	first, last := ring[0], ring[len(ring)-1]
	if first.X != last.X || first.Y != last.Y {
		ring = append(ring, first)
	}
	return ring
}

// ringArea is the unsigned shoelace area of a closed ring.
func ringArea(ring []geom.Point) float64 {
	var sum float64
	for i := 0; i < len(ring)-1; i++ {
		sum += ring[i].X*ring[i+1].Y - ring[i+1].X*ring[i].Y
	}
	return math.Abs(sum / 2)
}
