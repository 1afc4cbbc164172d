package ioreshape

import (
	"fmt"

	"github.com/ecoclim/pixlink/pkg/errcode"
	"github.com/gnames/gn"
)

// ReadError creates an error for failed reads of wide extraction files
// or of the pixel maps.
func ReadError(source string, err error) error {
	msg := "Cannot read extraction data for <em>%s</em>"
	vars := []any{source}

	return &gn.Error{
		Code: errcode.ReshapeReadError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("failed to read extraction data for %s: %w",
			source, err),
	}
}

// InsertError creates an error for failed long-row loads.
func InsertError(source string, err error) error {
	msg := "Cannot load pixel values for <em>%s</em>"
	vars := []any{source}

	return &gn.Error{
		Code: errcode.ReshapeInsertError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("failed to insert pixel values for %s: %w",
			source, err),
	}
}

// DeleteError creates an error for failed overwrite deletes.
func DeleteError(source string, err error) error {
	msg := "Cannot clear previous pixel values of <em>%s</em>"
	vars := []any{source}

	return &gn.Error{
		Code: errcode.ReshapeDeleteError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("failed to delete pixel values of %s: %w",
			source, err),
	}
}
