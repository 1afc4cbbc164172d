// Package ioimgserver implements the raster.Source contract against a
// remote raster image service. Points are sampled in batches over HTTP;
// a circuit breaker and exponential backoff keep a flaky service from
// failing whole extraction runs.
package ioimgserver

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ecoclim/pixlink/pkg/config"
	"github.com/ecoclim/pixlink/pkg/raster"
	"github.com/ecoclim/pixlink/pkg/sources"
	"github.com/sony/gobreaker"
)

type imgServer struct {
	src     sources.ClimateSourceConfig
	httpCfg httpClientConfig
	circuit *gobreaker.CircuitBreaker
}

// New creates a remote raster source for one climate source config.
func New(
	cfg *config.Config,
	src sources.ClimateSourceConfig,
) raster.Source {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        src.Name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &imgServer{
		src: src,
		httpCfg: httpClientConfig{
			Client: &http.Client{
				Timeout: time.Duration(cfg.Extract.RequestTimeoutSec) *
					time.Second,
			},
			Backoff: backoffConfig{
				MaxRetries:      cfg.Extract.MaxRetries,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     30 * time.Second,
			},
		},
		circuit: cb,
	}
}

// TimeSteps enumerates the source's time axis between two years. The
// axis is derived from the configured temporal granularity, not queried
// from the service.
func (s *imgServer) TimeSteps(
	_ context.Context,
	yearFrom, yearTo int,
) ([]raster.TimeStep, error) {
	return raster.Steps(s.src.Temporal, yearFrom, yearTo)
}

// collectionMeta is the service's collection metadata document.
type collectionMeta struct {
	Collection string   `json:"collection"`
	Bands      []string `json:"bands"`
}

// Variables fetches the band names of the collection.
func (s *imgServer) Variables(ctx context.Context) ([]string, error) {
	endpoint := fmt.Sprintf("%s/collections/%s",
		s.src.ServiceURL, url.PathEscape(s.src.Collection))

	buildRequest := func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, endpoint, nil)
	}

	resp, err := doRequestWithResilience(
		ctx, s.httpCfg, s.circuit, buildRequest)
	if err != nil {
		return nil, RequestError(s.src.Name, endpoint, err)
	}
	defer resp.Body.Close()

	var meta collectionMeta
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, DecodeError(s.src.Name, err)
	}
	return meta.Bands, nil
}

// sampleRequest is the JSON body of one batched sampling call. Bands
// address (variable, time step) pairs; the service returns one value row
// per point in request order, one column per band.
type sampleRequest struct {
	Collection  string        `json:"collection"`
	ResolutionM float64       `json:"resolution_m,omitempty"`
	Points      []samplePoint `json:"points"`
	Bands       []string      `json:"bands"`
}

type samplePoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// sampleResponse carries sampled values; null marks points without
// coverage (ocean, raster edge, missing band).
type sampleResponse struct {
	Values [][]*float64 `json:"values"`
}

// Sample reads every (point, step, variable) cell with one multi-band
// request. Callers bound len(pts) so the combined payload stays within
// the service's limits.
func (s *imgServer) Sample(
	ctx context.Context,
	pts []raster.Point,
	steps []raster.TimeStep,
	variables []string,
) (*raster.Samples, error) {
	bands := bandNames(steps, variables)

	reqBody := sampleRequest{
		Collection:  s.src.Collection,
		ResolutionM: s.src.ResolutionM,
		Points:      make([]samplePoint, len(pts)),
		Bands:       bands,
	}
	for i, p := range pts {
		reqBody.Points[i] = samplePoint{X: p.X, Y: p.Y}
	}

	payload, err := json.Marshal(&reqBody)
	if err != nil {
		return nil, RequestError(s.src.Name, "sample payload", err)
	}

	endpoint := s.src.ServiceURL + "/sample"
	buildRequest := func() (*http.Request, error) {
		// Fresh reader per retry attempt.
		req, err := http.NewRequest(
			http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}

	resp, err := doRequestWithResilience(
		ctx, s.httpCfg, s.circuit, buildRequest)
	if err != nil {
		return nil, RequestError(s.src.Name, endpoint, err)
	}
	defer resp.Body.Close()

	var body sampleResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, DecodeError(s.src.Name, err)
	}

	if len(body.Values) != len(pts) {
		return nil, DecodeError(s.src.Name, fmt.Errorf(
			"expected %d value rows, got %d", len(pts), len(body.Values)))
	}

	samples := raster.NewSamples(len(pts), steps, variables)
	for i, row := range body.Values {
		if len(row) != len(bands) {
			return nil, DecodeError(s.src.Name, fmt.Errorf(
				"point %d: expected %d bands, got %d",
				i, len(bands), len(row)))
		}
		for j := range steps {
			for k := range variables {
				v := row[j*len(variables)+k]
				if v == nil {
					continue
				}
				samples.Values[i][j][k] = sql.NullFloat64{
					Float64: *v, Valid: true,
				}
			}
		}
	}
	return samples, nil
}

// Close is a no-op; the HTTP client holds no persistent handles.
func (s *imgServer) Close() error {
	return nil
}

// bandNames addresses (step, variable) pairs the way the service names
// multi-band layers: "<variable>:<YYYY-MM>" for monthly steps,
// "<variable>:<YYYY-MM-DD>" for daily, bare "<variable>" for static.
// Step-major order matches the unpacking in Sample.
func bandNames(steps []raster.TimeStep, variables []string) []string {
	res := make([]string, 0, len(steps)*len(variables))
	for _, st := range steps {
		for _, v := range variables {
			res = append(res, bandName(v, st))
		}
	}
	return res
}

func bandName(variable string, st raster.TimeStep) string {
	switch {
	case st.Day > 0:
		return fmt.Sprintf("%s:%04d-%02d-%02d",
			variable, st.Year, st.Month, st.Day)
	case st.Month > 0:
		return fmt.Sprintf("%s:%04d-%02d", variable, st.Year, st.Month)
	default:
		return variable
	}
}

