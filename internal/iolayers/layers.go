// Package iolayers reads cleaned survey layers from shapefiles into the
// in-memory representation consumed by the pixel-map builder.
package iolayers

import (
	"strconv"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/ctessum/geom/proj"
	"github.com/ecoclim/pixlink/pkg/sources"
	"github.com/ecoclim/pixlink/pkg/survey"
	"github.com/gnames/gnlib"
)

// Load reads one survey layer from its shapefile. Attribute strings are
// cleaned of invalid UTF-8 before use. When the shapefile carries a .prj
// and gridSRID is 4326, geometries are reprojected to longlat; otherwise
// the layer is assumed to already match the grid's reference system.
func Load(
	cfg sources.LayerConfig,
	gridSRID int,
) (*survey.Layer, error) {
	dec, err := shp.NewDecoder(cfg.Path)
	if err != nil {
		return nil, LayerOpenError(cfg.Name, cfg.Path, err)
	}
	defer dec.Close()

	trans, err := layerTransform(dec, gridSRID)
	if err != nil {
		return nil, LayerProjectionError(cfg.Name, err)
	}

	fields := attributeFields(cfg)

	layer := &survey.Layer{Name: cfg.Name}
	for {
		g, row, more := dec.DecodeRowFields(fields...)
		if !more {
			break
		}

		if trans != nil {
			g, err = g.Transform(trans)
			if err != nil {
				return nil, LayerProjectionError(cfg.Name, err)
			}
		}

		obs, err := decodeObservation(cfg, g, row)
		if err != nil {
			return nil, LayerDecodeError(cfg.Name, err)
		}
		layer.Observations = append(layer.Observations, obs)
	}

	if err := dec.Error(); err != nil {
		return nil, LayerDecodeError(cfg.Name, err)
	}

	return layer, nil
}

// layerTransform returns the transform from the layer's spatial
// reference to the grid's, or nil when no reprojection is needed.
// Shapefiles without a .prj are assumed to match the grid.
func layerTransform(dec *shp.Decoder, gridSRID int) (proj.Transformer, error) {
	if gridSRID != 4326 {
		return nil, nil
	}
	layerSR, err := dec.SR()
	if err != nil {
		// No .prj file; take the layer as-is.
		return nil, nil
	}
	gridSR, err := proj.Parse("+proj=longlat")
	if err != nil {
		return nil, err
	}
	if layerSR.Name == gridSR.Name {
		return nil, nil
	}
	return layerSR.NewTransform(gridSR)
}

// attributeFields lists the attribute columns the layer config binds.
func attributeFields(cfg sources.LayerConfig) []string {
	fields := []string{cfg.IDField}
	for _, f := range []string{
		cfg.GeomIDField, cfg.RegionField, cfg.YearField,
	} {
		if f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

// decodeObservation builds one observation from a decoded shapefile row.
// The geometry id comes from the configured attribute or, when the layer
// carries none, is derived from the geometry vertices.
func decodeObservation(
	cfg sources.LayerConfig,
	g geom.Geom,
	row map[string]string,
) (survey.Observation, error) {
	var obs survey.Observation

	id, ok := row[cfg.IDField]
	if !ok || strings.TrimSpace(id) == "" {
		return obs, missingFieldError(cfg.IDField)
	}
	obs.ObservationID = gnlib.FixUtf8(strings.TrimSpace(id))
	obs.Geom = g

	if cfg.GeomIDField != "" {
		gid, ok := row[cfg.GeomIDField]
		if !ok || strings.TrimSpace(gid) == "" {
			return obs, missingFieldError(cfg.GeomIDField)
		}
		obs.GeometryID = gnlib.FixUtf8(strings.TrimSpace(gid))
	} else {
		obs.GeometryID = survey.GeometryID(g)
	}

	if cfg.RegionField != "" {
		obs.Region = gnlib.FixUtf8(strings.TrimSpace(row[cfg.RegionField]))
	}

	if cfg.YearField != "" {
		yearStr := strings.TrimSpace(row[cfg.YearField])
		if yearStr != "" {
			year, err := strconv.Atoi(yearStr)
			if err != nil {
				return obs, badYearError(cfg.YearField, yearStr)
			}
			obs.Year = year
		}
	}

	return obs, nil
}
