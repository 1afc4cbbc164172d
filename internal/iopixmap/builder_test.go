package iopixmap

import (
	"context"
	"testing"

	"github.com/ctessum/geom"
	"github.com/ecoclim/pixlink/pkg/config"
	"github.com/ecoclim/pixlink/pkg/grid"
	"github.com/ecoclim/pixlink/pkg/sources"
	"github.com/ecoclim/pixlink/pkg/survey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBuilder() *builder {
	return &builder{cfg: &config.Config{JobsNumber: 2}}
}

func testMapSource(conusOnly bool) sources.ClimateSourceConfig {
	return sources.ClimateSourceConfig{
		Name:      "prism",
		ConusOnly: conusOnly,
		Grid: grid.Grid{
			Xmin: 0, Ymin: 0,
			Dx: 1, Dy: 1,
			Nx: 10, Ny: 10,
			SRID: 4326,
		},
	}
}

func TestFilterConus(t *testing.T) {
	obs := []survey.Observation{
		{ObservationID: "1", Region: "CO"},
		{ObservationID: "2", Region: "AK"},
		{ObservationID: "3", Region: "hi"},
		{ObservationID: "4", Region: " PR "},
		{ObservationID: "5", Region: "TX"},
		{ObservationID: "6", Region: ""},
	}

	kept, skipped := filterConus(obs)

	assert.Equal(t, 3, skipped)
	var ids []string
	for _, o := range kept {
		ids = append(ids, o.ObservationID)
	}
	assert.Equal(t, []string{"1", "5", "6"}, ids)
}

func TestExpandRows_PancakeExpansion(t *testing.T) {
	mapped := []geomCells{
		{
			GeometryID: "geom-1",
			Cells: []grid.CellCoverage{
				{PixelID: 10, X: 1, Y: 2, Fraction: 0.25},
				{PixelID: 11, X: 3, Y: 2, Fraction: 0.75},
			},
		},
		{
			GeometryID: "geom-2",
			Cells: []grid.CellCoverage{
				{PixelID: 20, X: 5, Y: 6, Fraction: 1},
			},
		},
	}
	expand := map[string][]string{
		"geom-1": {"obs-1", "obs-2", "obs-3"},
		"geom-2": {"obs-4"},
	}

	rows := expandRows("prism", "surveys", mapped, expand)

	// 2 cells x 3 observations + 1 cell x 1 observation.
	assert.Len(t, rows, 7)

	// Pancake observations receive identical pixel rows.
	byObs := make(map[string][]pixelMapRow)
	for _, r := range rows {
		byObs[r.ObservationID] = append(byObs[r.ObservationID], r)
		assert.Equal(t, "prism", r.Source)
		assert.Equal(t, "surveys", r.Layer)
	}
	assert.Len(t, byObs["obs-1"], 2)
	assert.Len(t, byObs["obs-2"], 2)
	assert.Equal(t, byObs["obs-1"][0].PixelID, byObs["obs-2"][0].PixelID)
	assert.Equal(t, "geom-1", byObs["obs-1"][0].GeometryID)
	assert.Equal(t, "geom-2", byObs["obs-4"][0].GeometryID)
}

func TestExpandRows_Empty(t *testing.T) {
	rows := expandRows("prism", "surveys", nil, nil)
	assert.Empty(t, rows)

	// Geometry with zero cells contributes nothing.
	rows = expandRows("prism", "surveys",
		[]geomCells{{GeometryID: "g", Cells: nil}},
		map[string][]string{"g": {"obs-1"}},
	)
	assert.Empty(t, rows)
}

func TestLayerRows(t *testing.T) {
	b := testBuilder()
	src := testMapSource(false)
	layerCfg := sources.LayerConfig{Name: "surveys"}

	obs := []survey.Observation{
		{
			ObservationID: "obs-1",
			GeometryID:    "geom-1",
			Geom:          geom.Point{X: 2.5, Y: 4.5},
			Region:        "CO",
		},
	}

	rows, err := b.layerRows(context.Background(), &src, &layerCfg, obs)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "obs-1", rows[0].ObservationID)
	assert.Equal(t, float64(1), rows[0].CoverageFraction)
}

func TestLayerRows_AllFilteredOut(t *testing.T) {
	b := testBuilder()
	src := testMapSource(true)
	layerCfg := sources.LayerConfig{Name: "surveys"}

	// Every observation lies outside CONUS coverage: the layer has
	// nothing to map, which is not a failure.
	obs := []survey.Observation{
		{
			ObservationID: "obs-1",
			GeometryID:    "geom-1",
			Geom:          geom.Point{X: 2.5, Y: 4.5},
			Region:        "AK",
		},
		{
			ObservationID: "obs-2",
			GeometryID:    "geom-2",
			Geom:          geom.Point{X: 3.5, Y: 4.5},
			Region:        "HI",
		},
	}

	rows, err := b.layerRows(context.Background(), &src, &layerCfg, obs)
	assert.NoError(t, err)
	assert.Empty(t, rows)
}

func TestLayerRows_EmptyLayer(t *testing.T) {
	b := testBuilder()
	src := testMapSource(false)
	layerCfg := sources.LayerConfig{Name: "surveys"}

	rows, err := b.layerRows(context.Background(), &src, &layerCfg, nil)
	assert.NoError(t, err)
	assert.Empty(t, rows)
}

func TestLayerRows_GridMismatch(t *testing.T) {
	b := testBuilder()
	src := testMapSource(false)
	layerCfg := sources.LayerConfig{Name: "surveys"}

	// Observations exist but none lands on the grid: the layer and the
	// grid disagree on the reference system.
	obs := []survey.Observation{
		{
			ObservationID: "obs-1",
			GeometryID:    "geom-1",
			Geom:          geom.Point{X: -500, Y: -500},
			Region:        "CO",
		},
	}

	rows, err := b.layerRows(context.Background(), &src, &layerCfg, obs)
	assert.Error(t, err)
	assert.Nil(t, rows)
}

func TestInsertBatchSize(t *testing.T) {
	// 65535 params / 8 per row = 8191 rows max.
	assert.Equal(t, 8191, insertBatchSize(0))
	assert.Equal(t, 8191, insertBatchSize(50_000))
	assert.Equal(t, 1000, insertBatchSize(1000))
	assert.Equal(t, 8191, insertBatchSize(8191))
	assert.Equal(t, 8191, insertBatchSize(8192))
}
