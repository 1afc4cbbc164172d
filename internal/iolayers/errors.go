package iolayers

import (
	"fmt"

	"github.com/ecoclim/pixlink/pkg/errcode"
	"github.com/gnames/gn"
)

// LayerOpenError creates an error for when a layer shapefile
// cannot be opened.
func LayerOpenError(layer, path string, err error) error {
	msg := `Cannot open layer <em>%s</em>

<em>Shapefile:</em> %s

<em>Possible causes:</em>
  - File does not exist
  - Missing .dbf or .shx sidecar files

<em>How to fix:</em>
  1. Check the 'path' of the layer in sources.yaml
  2. Verify .shp, .dbf and .shx files are present`
	vars := []any{layer, path}

	return &gn.Error{
		Code: errcode.LayerOpenError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("failed to open layer %s at %s: %w",
			layer, path, err),
	}
}

// LayerDecodeError creates an error for when reading layer
// rows fails.
func LayerDecodeError(layer string, err error) error {
	msg := "Cannot read records of layer <em>%s</em>"
	vars := []any{layer}

	return &gn.Error{
		Code: errcode.LayerDecodeError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("failed to decode layer %s: %w",
			layer, err),
	}
}

// LayerProjectionError creates an error for when reprojecting a
// layer to the grid's reference system fails.
func LayerProjectionError(layer string, err error) error {
	msg := "Cannot reproject layer <em>%s</em> to the grid reference system"
	vars := []any{layer}

	return &gn.Error{
		Code: errcode.LayerProjectionError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("failed to reproject layer %s: %w",
			layer, err),
	}
}

func missingFieldError(field string) error {
	return fmt.Errorf("missing required attribute %q", field)
}

func badYearError(field, val string) error {
	return fmt.Errorf("attribute %q holds non-numeric year %q", field, val)
}
