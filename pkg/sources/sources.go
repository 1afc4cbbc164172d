// Package sources provides configuration and validation for climate
// sources and survey layers.
//
// This package defines the schema for sources.yaml, which users provide
// to describe the climate rasters to extract from (grid, variables, time
// range, access mechanism) and the cleaned survey layers to map onto
// them. It handles validation, filtering and defaults; all file I/O lives
// in internal/iosources.
package sources

import (
	"github.com/ecoclim/pixlink/pkg/grid"
	"github.com/ecoclim/pixlink/pkg/raster"
)

type Sources interface {
	Load() (*SourcesConfig, error)
}

// Kind is the access mechanism of a climate source.
type Kind string

const (
	// KindRemote sources are sampled from a raster image service over
	// HTTP in point batches.
	KindRemote Kind = "remote"
	// KindLocal sources are read from local multi-band NetCDF files,
	// one file per (variable, year).
	KindLocal Kind = "local"
)

// SourcesConfig represents the complete sources.yaml configuration file.
type SourcesConfig struct {
	// ClimateSources is the list of climate rasters to extract from.
	ClimateSources []ClimateSourceConfig `yaml:"climate_sources"`

	// Layers is the list of cleaned survey layers to map onto the grids.
	Layers []LayerConfig `yaml:"layers"`

	// Warnings holds non-fatal validation warnings (not serialized)
	Warnings []ValidationWarning `yaml:"-"`
}

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Source     string // Name of the climate source or layer
	Field      string // Field name that has the issue
	Message    string // Description of the issue
	Suggestion string // How to fix it
}

// ClimateSourceConfig describes one climate raster source. Each source
// has its own reference grid; pixel ids are never shared across sources.
type ClimateSourceConfig struct {
	// ID orders sources in reports. Must be unique and positive.
	ID int `yaml:"id"`

	// Name is the short identifier used in file names, table rows and
	// CLI filters.
	Name string `yaml:"name"`

	// Kind selects the access mechanism: "remote" or "local".
	Kind Kind `yaml:"kind"`

	// Temporal is "monthly", "daily" or "static".
	Temporal raster.Temporal `yaml:"temporal"`

	// ServiceURL is the base URL of the raster image service.
	// Remote sources only.
	ServiceURL string `yaml:"service_url"`

	// Collection is the image collection identifier on the service.
	// Remote sources only.
	Collection string `yaml:"collection"`

	// Parent is the directory holding the NetCDF files of the source,
	// one file per (variable, year) named <name>_<variable>_<year>.nc.
	// Local sources only.
	Parent string `yaml:"parent"`

	// ConusOnly marks sources that cover the conterminous US only.
	// Observations from other regions are filtered out before mapping;
	// their absence from the pixel map means "not covered".
	ConusOnly bool `yaml:"conus_only"`

	// ResolutionM is the nominal sampling resolution in meters, passed
	// to the remote service with every request.
	ResolutionM float64 `yaml:"resolution_m"`

	// BatchSize overrides the configured default pixel batch size for
	// this source. Zero means use the default.
	BatchSize int `yaml:"batch_size"`

	// PackMonths overrides the configured default for packing all
	// months of a year into one request. Nil means use the default.
	PackMonths *bool `yaml:"pack_months"`

	// YearStart and YearEnd bound the extraction time range, inclusive.
	YearStart int `yaml:"year_start"`
	YearEnd   int `yaml:"year_end"`

	// Grid is the reference grid of the source raster.
	Grid grid.Grid `yaml:"grid"`

	// Variables lists the climate variables to extract with their unit
	// conversions.
	Variables []VariableConfig `yaml:"variables"`
}

// VariableConfig describes one climate variable of a source. Extracted
// values are stored as value*Scale + Offset, so persisted outputs are
// always in physical units.
type VariableConfig struct {
	Name string `yaml:"name"`

	// Scale is the linear scale factor. Zero is treated as 1.
	Scale float64 `yaml:"scale"`

	// Offset is the additive offset applied after scaling, e.g.
	// -273.15 to convert Kelvin to Celsius.
	Offset float64 `yaml:"offset"`

	// FillValue marks missing data in local files. Samples equal to it
	// become nulls. Nil means only NaN marks missing data.
	FillValue *float64 `yaml:"fill_value"`
}

// LayerConfig describes one cleaned survey layer.
type LayerConfig struct {
	// Name identifies the layer in pixel maps and CLI filters.
	Name string `yaml:"name"`

	// Path is the shapefile holding the layer.
	Path string `yaml:"path"`

	// IDField is the attribute carrying the stable observation id.
	IDField string `yaml:"id_field"`

	// GeomIDField is the attribute carrying the shared geometry id of
	// pancake records. Empty means derive ids from the geometries.
	GeomIDField string `yaml:"geom_id_field"`

	// RegionField is the attribute carrying the administrative region.
	RegionField string `yaml:"region_field"`

	// YearField is the attribute carrying the survey year.
	YearField string `yaml:"year_field"`
}

// ConvertedValue applies the variable's scale factor and offset.
func (v *VariableConfig) ConvertedValue(raw float64) float64 {
	scale := v.Scale
	if scale == 0 {
		scale = 1
	}
	return raw*scale + v.Offset
}

// IsMissing reports whether a raw sample represents missing data.
func (v *VariableConfig) IsMissing(raw float64) bool {
	if raw != raw { // NaN
		return true
	}
	return v.FillValue != nil && raw == *v.FillValue
}
