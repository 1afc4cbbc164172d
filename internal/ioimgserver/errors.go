package ioimgserver

import (
	"fmt"

	"github.com/ecoclim/pixlink/pkg/errcode"
	"github.com/gnames/gn"
)

// RequestError creates an error for failed raster service requests.
func RequestError(source, endpoint string, err error) error {
	msg := `Request to raster service for <em>%s</em> failed

<em>Endpoint:</em> %s

<em>Possible causes:</em>
  - Service is down or unreachable
  - Request payload exceeds the service limits

<em>How to fix:</em>
  1. Check 'service_url' of the source in sources.yaml
  2. Lower 'batch_size' for the source`
	vars := []any{source, endpoint}

	return &gn.Error{
		Code: errcode.RasterRequestError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("raster request for %s failed: %w",
			source, err),
	}
}

// DecodeError creates an error for malformed service responses.
func DecodeError(source string, err error) error {
	msg := "Cannot decode raster service response for <em>%s</em>"
	vars := []any{source}

	return &gn.Error{
		Code: errcode.RasterDecodeError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("failed to decode response for %s: %w",
			source, err),
	}
}
