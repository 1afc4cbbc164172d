package iopixmap

import (
	"fmt"

	"github.com/ecoclim/pixlink/pkg/errcode"
	"github.com/gnames/gn"
)

// GridMismatchError creates an error for when a layer yields no pixel
// associations on a source grid. A completely empty intersection almost
// always means the layer and the grid use different reference systems.
func GridMismatchError(source, layer string) error {
	msg := `Layer <em>%s</em> yields no pixels on the grid of <em>%s</em>

<em>Possible causes:</em>
  - Layer coordinates use a different reference system than the grid
  - Layer lies entirely outside the grid extent

<em>How to fix:</em>
  1. Check 'grid.srid' of the source in sources.yaml
  2. Verify the layer covers the source region`
	vars := []any{layer, source}

	return &gn.Error{
		Code: errcode.PixmapGridMismatchError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf(
			"layer %s maps to zero cells on grid of %s", layer, source),
	}
}

// InsertError creates an error for pixel map insert failures.
func InsertError(source, layer string, err error) error {
	msg := "Cannot store pixel map for <em>%s/%s</em>"
	vars := []any{source, layer}

	return &gn.Error{
		Code: errcode.PixmapInsertError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("failed to insert pixel map %s/%s: %w",
			source, layer, err),
	}
}

// QueryError creates an error for pixel map lookup failures.
func QueryError(source, layer string, err error) error {
	msg := "Cannot query pixel map for <em>%s/%s</em>"
	vars := []any{source, layer}

	return &gn.Error{
		Code: errcode.PixmapQueryError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("failed to query pixel map %s/%s: %w",
			source, layer, err),
	}
}

// CancelledError creates an error for interrupted mapping runs.
func CancelledError(err error) error {
	msg := "Pixel map build was interrupted"

	return &gn.Error{
		Code: errcode.PixmapCancelledError,
		Msg:  msg,
		Vars: nil,
		Err:  fmt.Errorf("pixel map build cancelled: %w", err),
	}
}
