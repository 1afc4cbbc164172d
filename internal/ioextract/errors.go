package ioextract

import (
	"fmt"

	"github.com/ecoclim/pixlink/pkg/errcode"
	"github.com/gnames/gn"
)

// NoPixelsError creates an error for a source without pixel maps.
func NoPixelsError(source string) error {
	msg := `No pixel maps exist for source <em>%s</em>

<em>Required steps before extraction:</em>
  1. Build pixel maps:
     <em>pixlink pixmap --sources %s</em>

  2. Then run extraction:
     <em>pixlink extract --sources %s</em>`
	vars := []any{source, source, source}

	return &gn.Error{
		Code: errcode.ExtractNoPixelsError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf(
			"no pixels mapped for source %s - run 'pixlink pixmap' first",
			source),
	}
}

// SourceError creates an error for failed raster sampling of one year.
func SourceError(source string, year int, err error) error {
	msg := "Cannot sample source <em>%s</em> for %s"
	vars := []any{source, yearLabel(year)}

	return &gn.Error{
		Code: errcode.ExtractSourceError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("failed to sample %s year %s: %w",
			source, yearLabel(year), err),
	}
}

// WriteError creates an error for failed output file writes.
func WriteError(path string, err error) error {
	msg := "Cannot write extraction file <em>%s</em>"
	vars := []any{path}

	return &gn.Error{
		Code: errcode.ExtractWriteError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("failed to write %s: %w", path, err),
	}
}

// LedgerError creates an error for completion ledger failures.
func LedgerError(source string, err error) error {
	msg := "Cannot access the completion ledger for <em>%s</em>"
	vars := []any{source}

	return &gn.Error{
		Code: errcode.ExtractLedgerError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("completion ledger failure for %s: %w",
			source, err),
	}
}

// AllSourcesFailedError creates an error for a run where every
// requested source failed.
func AllSourcesFailedError(failed int) error {
	msg := `All %d requested sources failed

<em>How to fix:</em>
  1. Check the log for per-source errors
  2. Re-run; completed years are never redone`
	vars := []any{failed}

	return &gn.Error{
		Code: errcode.ExtractAllSourcesFailedError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("all %d requested sources failed", failed),
	}
}

// AllYearsFailedError creates an error for a source where every
// attempted year failed.
func AllYearsFailedError(source string, failed int) error {
	msg := `All %d attempted years of <em>%s</em> failed

<em>Possible causes:</em>
  - Raster service is down
  - Local raster files are missing

<em>How to fix:</em>
  1. Check the log for per-year errors
  2. Re-run; completed years are never redone`
	vars := []any{failed, source}

	return &gn.Error{
		Code: errcode.ExtractAllYearsFailedError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("all %d years of %s failed", failed, source),
	}
}
