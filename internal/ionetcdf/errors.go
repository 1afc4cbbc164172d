package ionetcdf

import (
	"fmt"

	"github.com/ecoclim/pixlink/pkg/errcode"
	"github.com/gnames/gn"
)

// FileOpenError creates an error for unreadable NetCDF files.
func FileOpenError(source, path string, err error) error {
	msg := `Cannot open NetCDF file for <em>%s</em>

<em>File:</em> %s

<em>Possible causes:</em>
  - File is corrupted or truncated
  - File is not in NetCDF classic or HDF5 format

<em>How to fix:</em>
  1. Verify the file with <em>ncdump -h %s</em>
  2. Re-download the file if it is truncated`
	vars := []any{source, path, path}

	return &gn.Error{
		Code: errcode.RasterFileOpenError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("failed to open NetCDF file %s: %w",
			path, err),
	}
}

// VariableError creates an error for unreadable NetCDF variables.
func VariableError(source, variable string, err error) error {
	msg := `Cannot read variable <em>%s</em> of source <em>%s</em>

<em>Possible causes:</em>
  - Variable name in sources.yaml does not match the file
  - File layout is not time x y x x

<em>How to fix:</em>
  1. List file variables with <em>ncdump -h</em>
  2. Fix the variable name in sources.yaml`
	vars := []any{variable, source}

	return &gn.Error{
		Code: errcode.RasterVariableError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("failed to read variable %s of %s: %w",
			variable, source, err),
	}
}
