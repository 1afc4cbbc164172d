package ioaggr

import (
	"fmt"

	"github.com/ecoclim/pixlink/pkg/errcode"
	"github.com/gnames/gn"
)

// QueryError creates an error for failed reads of the long table.
func QueryError(source string, err error) error {
	msg := "Cannot read pixel values for <em>%s</em>"
	vars := []any{source}

	return &gn.Error{
		Code: errcode.AggrQueryError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("failed to query pixel values for %s: %w",
			source, err),
	}
}

// InsertError creates an error for a failed summary rebuild of one
// (source, variable) slice.
func InsertError(source, variable string, err error) error {
	msg := "Cannot rebuild summaries for <em>%s</em> variable <em>%s</em>"
	vars := []any{source, variable}

	return &gn.Error{
		Code: errcode.AggrInsertError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("failed to rebuild summaries for %s/%s: %w",
			source, variable, err),
	}
}

// IndexError creates an error for a failed join index creation.
func IndexError(err error) error {
	msg := "Cannot create the pixel value join index"

	return &gn.Error{
		Code: errcode.AggrIndexError,
		Msg:  msg,
		Err:  fmt.Errorf("failed to create join index: %w", err),
	}
}
