package ioaggr

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func value(f float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: f, Valid: true}
}

func TestWeightedMean(t *testing.T) {
	// (10*0.3 + 20*0.7) / (0.3 + 0.7) = 17.0
	m := WeightedMean(
		[]sql.NullFloat64{value(10), value(20)},
		[]float64{0.3, 0.7},
	)
	require.True(t, m.Valid)
	assert.InDelta(t, 17.0, m.Float64, 1e-9)
}

func TestWeightedMean_NullsExcluded(t *testing.T) {
	// The null pixel drops out of both the numerator and the
	// denominator; the remaining pixel alone defines the mean.
	m := WeightedMean(
		[]sql.NullFloat64{value(10), {}},
		[]float64{0.25, 0.75},
	)
	require.True(t, m.Valid)
	assert.InDelta(t, 10.0, m.Float64, 1e-9)
}

func TestWeightedMean_AllNull(t *testing.T) {
	m := WeightedMean(
		[]sql.NullFloat64{{}, {}},
		[]float64{0.5, 0.5},
	)
	assert.False(t, m.Valid, "no data must stay null, not zero")
}

func TestWeightedMean_Empty(t *testing.T) {
	assert.False(t, WeightedMean(nil, nil).Valid)
}

func TestWeightedMean_SinglePixel(t *testing.T) {
	m := WeightedMean([]sql.NullFloat64{value(42)}, []float64{0.01})
	require.True(t, m.Valid)
	assert.InDelta(t, 42.0, m.Float64, 1e-9)
}
