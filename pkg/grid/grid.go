// Package grid defines reference raster grids and the pure
// geometry-to-grid mapper that decomposes survey geometries into grid
// cells with fractional coverage.
//
// A Grid describes one climate source's raster: cell size, origin and
// extent in the source's projected reference system. Pixel ids are stable
// row-major cell indices, so two runs over the same grid always agree on
// ids. Different climate sources use different grids and their pixel ids
// are never comparable.
package grid

import (
	"math"

	"github.com/ctessum/geom"
)

// Grid is a regular reference grid of a climate raster.
type Grid struct {
	// Xmin, Ymin is the lower-left corner of the grid in the grid's
	// reference system.
	Xmin float64 `yaml:"xmin"`
	Ymin float64 `yaml:"ymin"`

	// Dx, Dy are the cell dimensions.
	Dx float64 `yaml:"dx"`
	Dy float64 `yaml:"dy"`

	// Nx, Ny are the number of columns and rows.
	Nx int `yaml:"nx"`
	Ny int `yaml:"ny"`

	// SRID identifies the spatial reference system of the grid.
	// Survey geometries must be delivered in the same system.
	SRID int `yaml:"srid"`
}

// NumCells returns the total number of cells in the grid.
func (g *Grid) NumCells() int {
	return g.Nx * g.Ny
}

// PixelID returns the stable row-major id of the cell at (col, row).
func (g *Grid) PixelID(col, row int) int {
	return row*g.Nx + col
}

// CellIndex returns the (col, row) of the cell containing the point.
// ok is false when the point lies outside the grid extent. Points on the
// right/top edge of the grid belong to the last column/row.
func (g *Grid) CellIndex(x, y float64) (col, row int, ok bool) {
	if x < g.Xmin || y < g.Ymin {
		return 0, 0, false
	}
	col = int(math.Floor((x - g.Xmin) / g.Dx))
	row = int(math.Floor((y - g.Ymin) / g.Dy))
	if col == g.Nx && x == g.Xmin+float64(g.Nx)*g.Dx {
		col--
	}
	if row == g.Ny && y == g.Ymin+float64(g.Ny)*g.Dy {
		row--
	}
	if col < 0 || col >= g.Nx || row < 0 || row >= g.Ny {
		return 0, 0, false
	}
	return col, row, true
}

// CellCenter returns the center coordinates of the cell at (col, row).
func (g *Grid) CellCenter(col, row int) (x, y float64) {
	x = g.Xmin + (float64(col)+0.5)*g.Dx
	y = g.Ymin + (float64(row)+0.5)*g.Dy
	return x, y
}

// CellPolygon returns the cell at (col, row) as a closed rectangle.
func (g *Grid) CellPolygon(col, row int) geom.Polygon {
	x0 := g.Xmin + float64(col)*g.Dx
	y0 := g.Ymin + float64(row)*g.Dy
	x1 := x0 + g.Dx
	y1 := y0 + g.Dy
	return geom.Polygon{{
		{X: x0, Y: y0},
		{X: x1, Y: y0},
		{X: x1, Y: y1},
		{X: x0, Y: y1},
		{X: x0, Y: y0},
	}}
}

// Bounds returns the extent of the whole grid.
func (g *Grid) Bounds() *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: g.Xmin, Y: g.Ymin},
		Max: geom.Point{
			X: g.Xmin + float64(g.Nx)*g.Dx,
			Y: g.Ymin + float64(g.Ny)*g.Dy,
		},
	}
}

// CellArea returns the area of one grid cell.
func (g *Grid) CellArea() float64 {
	return g.Dx * g.Dy
}
