package grid_test

import (
	"testing"

	"github.com/ctessum/geom"
	"github.com/ecoclim/pixlink/pkg/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testGrid is a 10x10 grid of unit cells anchored at the origin.
func testGrid() *grid.Grid {
	return &grid.Grid{
		Xmin: 0, Ymin: 0,
		Dx: 1, Dy: 1,
		Nx: 10, Ny: 10,
		SRID: 5070,
	}
}

func TestCellIndex(t *testing.T) {
	g := testGrid()

	tests := []struct {
		name     string
		x, y     float64
		col, row int
		ok       bool
	}{
		{"origin cell", 0.5, 0.5, 0, 0, true},
		{"interior", 3.2, 7.9, 3, 7, true},
		{"lower-left corner", 0, 0, 0, 0, true},
		{"upper-right corner", 10, 10, 9, 9, true},
		{"west of grid", -0.1, 5, 0, 0, false},
		{"north of grid", 5, 10.1, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col, row, ok := g.CellIndex(tt.x, tt.y)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.col, col)
				assert.Equal(t, tt.row, row)
			}
		})
	}
}

func TestPixelIDRowMajor(t *testing.T) {
	g := testGrid()
	assert.Equal(t, 0, g.PixelID(0, 0))
	assert.Equal(t, 9, g.PixelID(9, 0))
	assert.Equal(t, 10, g.PixelID(0, 1))
	assert.Equal(t, 99, g.PixelID(9, 9))
	assert.Equal(t, 100, g.NumCells())
}

func TestCellCenter(t *testing.T) {
	g := testGrid()
	x, y := g.CellCenter(0, 0)
	assert.Equal(t, 0.5, x)
	assert.Equal(t, 0.5, y)
	x, y = g.CellCenter(9, 4)
	assert.Equal(t, 9.5, x)
	assert.Equal(t, 4.5, y)
}

func TestMapPoint(t *testing.T) {
	g := testGrid()

	cells, err := g.MapGeometry(geom.Point{X: 2.3, Y: 4.8})
	require.NoError(t, err)
	require.Len(t, cells, 1)
	assert.Equal(t, g.PixelID(2, 4), cells[0].PixelID)
	assert.Equal(t, 1.0, cells[0].Fraction)
	assert.Equal(t, 2.5, cells[0].X)
	assert.Equal(t, 4.5, cells[0].Y)
}

func TestMapPointOutsideGrid(t *testing.T) {
	g := testGrid()

	cells, err := g.MapGeometry(geom.Point{X: -5, Y: 4})
	require.NoError(t, err)
	assert.Empty(t, cells)
}

// A square covering exactly four cells, one quarter of each.
func TestMapPolygonFractions(t *testing.T) {
	g := testGrid()
	square := geom.Polygon{{
		{X: 1.5, Y: 1.5},
		{X: 2.5, Y: 1.5},
		{X: 2.5, Y: 2.5},
		{X: 1.5, Y: 2.5},
		{X: 1.5, Y: 1.5},
	}}

	cells, err := g.MapGeometry(square)
	require.NoError(t, err)
	require.Len(t, cells, 4)

	wantIDs := map[int]bool{
		g.PixelID(1, 1): true,
		g.PixelID(2, 1): true,
		g.PixelID(1, 2): true,
		g.PixelID(2, 2): true,
	}
	for _, c := range cells {
		assert.True(t, wantIDs[c.PixelID], "unexpected pixel %d", c.PixelID)
		assert.InDelta(t, 0.25, c.Fraction, 1e-9)
	}
}

// Every returned entry must carry strictly positive coverage; cells the
// polygon only touches at an edge have zero overlap area and are excluded.
func TestMapPolygonPositiveFractionsOnly(t *testing.T) {
	g := testGrid()
	// Aligned with cell boundaries: covers cells (2,2) and (3,2) fully,
	// touches the neighbors only along edges.
	rect := geom.Polygon{{
		{X: 2, Y: 2},
		{X: 4, Y: 2},
		{X: 4, Y: 3},
		{X: 2, Y: 3},
		{X: 2, Y: 2},
	}}

	cells, err := g.MapGeometry(rect)
	require.NoError(t, err)
	require.Len(t, cells, 2)
	for _, c := range cells {
		assert.Greater(t, c.Fraction, 0.0)
		assert.InDelta(t, 1.0, c.Fraction, 1e-9)
	}
}

func TestMapPolygonOutsideGrid(t *testing.T) {
	g := testGrid()
	far := geom.Polygon{{
		{X: 100, Y: 100},
		{X: 101, Y: 100},
		{X: 101, Y: 101},
		{X: 100, Y: 101},
		{X: 100, Y: 100},
	}}

	cells, err := g.MapGeometry(far)
	require.NoError(t, err)
	assert.Empty(t, cells)
}

func TestMapPolygonPartiallyOutside(t *testing.T) {
	g := testGrid()
	// Half of the square hangs west of the grid.
	square := geom.Polygon{{
		{X: -1, Y: 0},
		{X: 1, Y: 0},
		{X: 1, Y: 1},
		{X: -1, Y: 1},
		{X: -1, Y: 0},
	}}

	cells, err := g.MapGeometry(square)
	require.NoError(t, err)
	require.Len(t, cells, 1)
	assert.Equal(t, g.PixelID(0, 0), cells[0].PixelID)
	assert.InDelta(t, 1.0, cells[0].Fraction, 1e-9)
}

func TestMapUnsupportedGeometry(t *testing.T) {
	g := testGrid()
	_, err := g.MapGeometry(geom.LineString{{X: 0, Y: 0}, {X: 1, Y: 1}})
	assert.Error(t, err)
}
