package sources_test

import (
	"math"
	"testing"

	"github.com/ecoclim/pixlink/pkg/config"
	"github.com/ecoclim/pixlink/pkg/grid"
	"github.com/ecoclim/pixlink/pkg/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSource() sources.ClimateSourceConfig {
	return sources.ClimateSourceConfig{
		ID:         1,
		Name:       "prism",
		Kind:       sources.KindRemote,
		Temporal:   "monthly",
		ServiceURL: "https://example.org/arcgis",
		Collection: "prism/monthly",
		YearStart:  1981,
		YearEnd:    2024,
		Grid: grid.Grid{
			Xmin: -2362845, Ymin: 276845,
			Dx: 800, Dy: 800,
			Nx: 7025, Ny: 3105,
			SRID: 5070,
		},
		Variables: []sources.VariableConfig{
			{Name: "ppt", Scale: 1},
			{Name: "tmean", Scale: 1, Offset: -273.15},
		},
	}
}

func TestValidateOK(t *testing.T) {
	cfg := &sources.SourcesConfig{
		ClimateSources: []sources.ClimateSourceConfig{validSource()},
		Layers: []sources.LayerConfig{
			{Name: "damage", Path: "/data/damage.shp", IDField: "OBS_ID"},
		},
	}
	err := cfg.Validate()
	require.NoError(t, err)
	assert.Empty(t, cfg.Warnings)
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mangle func(*sources.ClimateSourceConfig)
	}{
		{"missing id", func(s *sources.ClimateSourceConfig) { s.ID = 0 }},
		{"missing name", func(s *sources.ClimateSourceConfig) { s.Name = "" }},
		{"bad kind", func(s *sources.ClimateSourceConfig) { s.Kind = "ftp" }},
		{"bad temporal", func(s *sources.ClimateSourceConfig) { s.Temporal = "weekly" }},
		{"remote without url", func(s *sources.ClimateSourceConfig) { s.ServiceURL = "" }},
		{"no variables", func(s *sources.ClimateSourceConfig) { s.Variables = nil }},
		{"duplicate variable", func(s *sources.ClimateSourceConfig) {
			s.Variables = append(s.Variables, s.Variables[0])
		}},
		{"inverted years", func(s *sources.ClimateSourceConfig) {
			s.YearStart = 2024
			s.YearEnd = 1981
		}},
		{"zero grid", func(s *sources.ClimateSourceConfig) { s.Grid.Nx = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := validSource()
			tt.mangle(&src)
			cfg := &sources.SourcesConfig{
				ClimateSources: []sources.ClimateSourceConfig{src},
			}
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateLocalSource(t *testing.T) {
	src := validSource()
	src.Kind = sources.KindLocal
	src.ServiceURL = ""
	src.Collection = ""
	src.Parent = "/data/rasters/prism"
	cfg := &sources.SourcesConfig{
		ClimateSources: []sources.ClimateSourceConfig{src},
	}
	assert.NoError(t, cfg.Validate())

	src.Parent = ""
	cfg = &sources.SourcesConfig{
		ClimateSources: []sources.ClimateSourceConfig{src},
	}
	assert.Error(t, cfg.Validate())
}

func TestValidateWarnsOnZeroScale(t *testing.T) {
	src := validSource()
	src.Variables[0].Scale = 0
	cfg := &sources.SourcesConfig{
		ClimateSources: []sources.ClimateSourceConfig{src},
	}
	require.NoError(t, cfg.Validate())
	require.Len(t, cfg.Warnings, 1)
	assert.Contains(t, cfg.Warnings[0].Field, "ppt")
}

func TestStaticSourceNeedsNoYears(t *testing.T) {
	src := validSource()
	src.Temporal = "static"
	src.YearStart = 0
	src.YearEnd = 0
	cfg := &sources.SourcesConfig{
		ClimateSources: []sources.ClimateSourceConfig{src},
	}
	assert.NoError(t, cfg.Validate())
}

func TestFilterSources(t *testing.T) {
	a := validSource()
	b := validSource()
	b.ID = 2
	b.Name = "terraclim"
	cfg := &sources.SourcesConfig{
		ClimateSources: []sources.ClimateSourceConfig{a, b},
	}

	all, err := cfg.FilterSources(nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	one, err := cfg.FilterSources([]string{"terraclim"})
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "terraclim", one[0].Name)

	_, err = cfg.FilterSources([]string{"nope"})
	assert.Error(t, err)
}

func TestEffectiveSettings(t *testing.T) {
	cfg := config.New()
	cfg.Extract.BatchSize = 5000
	cfg.Extract.PackMonths = true

	src := validSource()
	assert.Equal(t, 5000, src.EffectiveBatchSize(cfg))
	assert.True(t, src.EffectivePackMonths(cfg))

	src.BatchSize = 800
	noPack := false
	src.PackMonths = &noPack
	assert.Equal(t, 800, src.EffectiveBatchSize(cfg))
	assert.False(t, src.EffectivePackMonths(cfg))

	start, end := src.EffectiveYears(cfg)
	assert.Equal(t, 1981, start)
	assert.Equal(t, 2024, end)

	cfg.Run.YearStart = 2000
	cfg.Run.YearEnd = 2010
	start, end = src.EffectiveYears(cfg)
	assert.Equal(t, 2000, start)
	assert.Equal(t, 2010, end)
}

func TestConvertedValue(t *testing.T) {
	v := sources.VariableConfig{Name: "tmean", Scale: 0.1, Offset: -273.15}
	assert.InDelta(t, 26.85, v.ConvertedValue(3000), 1e-9)

	// Zero scale is treated as 1.
	v = sources.VariableConfig{Name: "ppt"}
	assert.Equal(t, 42.0, v.ConvertedValue(42))
}

func TestIsMissing(t *testing.T) {
	fill := -9999.0
	v := sources.VariableConfig{Name: "ppt", FillValue: &fill}
	assert.True(t, v.IsMissing(-9999))
	assert.False(t, v.IsMissing(0))

	assert.True(t, v.IsMissing(math.NaN()))
}
