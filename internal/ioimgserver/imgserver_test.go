package ioimgserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/ecoclim/pixlink/pkg/config"
	"github.com/ecoclim/pixlink/pkg/raster"
	"github.com/ecoclim/pixlink/pkg/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSource(serviceURL string) sources.ClimateSourceConfig {
	return sources.ClimateSourceConfig{
		ID:          1,
		Name:        "prism",
		Kind:        sources.KindRemote,
		Temporal:    raster.Monthly,
		ServiceURL:  serviceURL,
		Collection:  "prism/monthly",
		ResolutionM: 4000,
		YearStart:   2000,
		YearEnd:     2001,
	}
}

func testConfig() *config.Config {
	cfg := config.New()
	cfg.Extract.MaxRetries = 2
	cfg.Extract.RequestTimeoutSec = 5
	return cfg
}

func TestBandNames(t *testing.T) {
	steps := []raster.TimeStep{
		{Year: 2020, Month: 1},
		{Year: 2020, Month: 2},
	}
	bands := bandNames(steps, []string{"ppt", "tmean"})
	assert.Equal(t, []string{
		"ppt:2020-01", "tmean:2020-01",
		"ppt:2020-02", "tmean:2020-02",
	}, bands)

	bands = bandNames([]raster.TimeStep{{}}, []string{"elev"})
	assert.Equal(t, []string{"elev"}, bands)

	bands = bandNames(
		[]raster.TimeStep{{Year: 2020, Month: 1, Day: 5}},
		[]string{"tmax"},
	)
	assert.Equal(t, []string{"tmax:2020-01-05"}, bands)
}

func TestVariables(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/collections/prism%2Fmonthly",
				r.URL.EscapedPath())
			json.NewEncoder(w).Encode(collectionMeta{
				Collection: "prism/monthly",
				Bands:      []string{"ppt", "tmean"},
			})
		}))
	defer ts.Close()

	src := New(testConfig(), testSource(ts.URL))
	defer src.Close()

	vars, err := src.Variables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ppt", "tmean"}, vars)
}

func TestSample(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	ts := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/sample", r.URL.Path)

			var req sampleRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "prism/monthly", req.Collection)
			assert.Len(t, req.Points, 2)
			// 2 steps x 2 variables, step-major.
			assert.Equal(t, []string{
				"ppt:2020-01", "tmean:2020-01",
				"ppt:2020-02", "tmean:2020-02",
			}, req.Bands)

			json.NewEncoder(w).Encode(sampleResponse{
				Values: [][]*float64{
					{f(10), f(1.5), f(20), f(2.5)},
					{nil, nil, f(30), nil},
				},
			})
		}))
	defer ts.Close()

	src := New(testConfig(), testSource(ts.URL))
	defer src.Close()

	pts := []raster.Point{
		{PixelID: 100, X: -105, Y: 40},
		{PixelID: 101, X: -104, Y: 40},
	}
	steps := []raster.TimeStep{
		{Year: 2020, Month: 1},
		{Year: 2020, Month: 2},
	}

	samples, err := src.Sample(
		context.Background(), pts, steps, []string{"ppt", "tmean"})
	require.NoError(t, err)

	// Point 0 fully covered.
	assert.True(t, samples.Values[0][0][0].Valid)
	assert.Equal(t, 10.0, samples.Values[0][0][0].Float64)
	assert.Equal(t, 1.5, samples.Values[0][0][1].Float64)
	assert.Equal(t, 20.0, samples.Values[0][1][0].Float64)

	// Point 1: January missing, February ppt present.
	assert.False(t, samples.Values[1][0][0].Valid)
	assert.False(t, samples.Values[1][0][1].Valid)
	assert.True(t, samples.Values[1][1][0].Valid)
	assert.Equal(t, 30.0, samples.Values[1][1][0].Float64)
	assert.False(t, samples.Values[1][1][1].Valid)
}

func TestSample_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	f := func(v float64) *float64 { return &v }

	ts := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			json.NewEncoder(w).Encode(sampleResponse{
				Values: [][]*float64{{f(42)}},
			})
		}))
	defer ts.Close()

	src := New(testConfig(), testSource(ts.URL))
	defer src.Close()

	samples, err := src.Sample(
		context.Background(),
		[]raster.Point{{PixelID: 1, X: 0, Y: 0}},
		[]raster.TimeStep{{Year: 2020, Month: 1}},
		[]string{"ppt"},
	)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 42.0, samples.Values[0][0][0].Float64)
}

func TestSample_RowCountMismatch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(sampleResponse{})
		}))
	defer ts.Close()

	src := New(testConfig(), testSource(ts.URL))
	defer src.Close()

	_, err := src.Sample(
		context.Background(),
		[]raster.Point{{PixelID: 1}},
		[]raster.TimeStep{{Year: 2020, Month: 1}},
		[]string{"ppt"},
	)
	assert.Error(t, err)
}
