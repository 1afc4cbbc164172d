package iolayers

import (
	"testing"

	"github.com/ctessum/geom"
	"github.com/ecoclim/pixlink/pkg/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func layerCfg() sources.LayerConfig {
	return sources.LayerConfig{
		Name:        "surveys",
		Path:        "/data/surveys.shp",
		IDField:     "OBS_ID",
		GeomIDField: "GEOM_ID",
		RegionField: "REGION",
		YearField:   "YEAR",
	}
}

func TestDecodeObservation_AllFields(t *testing.T) {
	g := geom.Point{X: -100, Y: 40}
	row := map[string]string{
		"OBS_ID":  " obs-1 ",
		"GEOM_ID": "geom-1",
		"REGION":  "CO",
		"YEAR":    "2015",
	}

	obs, err := decodeObservation(layerCfg(), g, row)
	require.NoError(t, err)

	assert.Equal(t, "obs-1", obs.ObservationID)
	assert.Equal(t, "geom-1", obs.GeometryID)
	assert.Equal(t, "CO", obs.Region)
	assert.Equal(t, 2015, obs.Year)
	assert.Equal(t, g, obs.Geom)
}

func TestDecodeObservation_DerivedGeometryID(t *testing.T) {
	cfg := layerCfg()
	cfg.GeomIDField = ""

	g := geom.Point{X: -100, Y: 40}
	row := map[string]string{
		"OBS_ID": "obs-1",
		"REGION": "CO",
		"YEAR":   "2015",
	}

	obs, err := decodeObservation(cfg, g, row)
	require.NoError(t, err)
	assert.NotEmpty(t, obs.GeometryID)

	// Same geometry always derives the same id.
	obs2, err := decodeObservation(cfg, geom.Point{X: -100, Y: 40}, row)
	require.NoError(t, err)
	assert.Equal(t, obs.GeometryID, obs2.GeometryID)

	// Different geometry derives a different id.
	obs3, err := decodeObservation(cfg, geom.Point{X: -101, Y: 40}, row)
	require.NoError(t, err)
	assert.NotEqual(t, obs.GeometryID, obs3.GeometryID)
}

func TestDecodeObservation_MissingID(t *testing.T) {
	row := map[string]string{
		"GEOM_ID": "geom-1",
	}

	_, err := decodeObservation(layerCfg(), geom.Point{}, row)
	assert.Error(t, err)
}

func TestDecodeObservation_BadYear(t *testing.T) {
	row := map[string]string{
		"OBS_ID":  "obs-1",
		"GEOM_ID": "geom-1",
		"YEAR":    "not-a-year",
	}

	_, err := decodeObservation(layerCfg(), geom.Point{}, row)
	assert.Error(t, err)
}

func TestDecodeObservation_EmptyYearSkipped(t *testing.T) {
	row := map[string]string{
		"OBS_ID":  "obs-1",
		"GEOM_ID": "geom-1",
		"YEAR":    "",
	}

	obs, err := decodeObservation(layerCfg(), geom.Point{}, row)
	require.NoError(t, err)
	assert.Zero(t, obs.Year)
}

func TestAttributeFields(t *testing.T) {
	fields := attributeFields(layerCfg())
	assert.Equal(t,
		[]string{"OBS_ID", "GEOM_ID", "REGION", "YEAR"}, fields)

	cfg := layerCfg()
	cfg.GeomIDField = ""
	cfg.YearField = ""
	fields = attributeFields(cfg)
	assert.Equal(t, []string{"OBS_ID", "REGION"}, fields)
}
