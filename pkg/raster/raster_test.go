package raster_test

import (
	"testing"

	"github.com/ecoclim/pixlink/pkg/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSteps_Monthly(t *testing.T) {
	steps, err := raster.Steps(raster.Monthly, 2000, 2001)
	require.NoError(t, err)
	assert.Len(t, steps, 24)
	assert.Equal(t, raster.TimeStep{Year: 2000, Month: 1}, steps[0])
	assert.Equal(t, raster.TimeStep{Year: 2001, Month: 12}, steps[23])
}

func TestSteps_Static(t *testing.T) {
	steps, err := raster.Steps(raster.Static, 2000, 2010)
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Zero(t, steps[0])
}

func TestSteps_Daily(t *testing.T) {
	// 2000 is a leap year.
	steps, err := raster.Steps(raster.Daily, 2000, 2000)
	require.NoError(t, err)
	assert.Len(t, steps, 366)
	assert.Equal(t,
		raster.TimeStep{Year: 2000, Month: 2, Day: 29}, steps[59])

	steps, err = raster.Steps(raster.Daily, 2001, 2001)
	require.NoError(t, err)
	assert.Len(t, steps, 365)
}

func TestSteps_Errors(t *testing.T) {
	_, err := raster.Steps(raster.Monthly, 2001, 2000)
	assert.Error(t, err)

	_, err = raster.Steps("hourly", 2000, 2001)
	assert.Error(t, err)
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 31, raster.DaysInMonth(2021, 1))
	assert.Equal(t, 28, raster.DaysInMonth(2021, 2))
	assert.Equal(t, 29, raster.DaysInMonth(2020, 2))
	assert.Equal(t, 30, raster.DaysInMonth(2021, 4))
	assert.Equal(t, 31, raster.DaysInMonth(2021, 12))
}

func TestNewSamples(t *testing.T) {
	steps := []raster.TimeStep{
		{Year: 2020, Month: 1},
		{Year: 2020, Month: 2},
	}
	s := raster.NewSamples(3, steps, []string{"ppt", "tmean"})

	require.Len(t, s.Values, 3)
	require.Len(t, s.Values[0], 2)
	require.Len(t, s.Values[0][0], 2)

	// Every value starts invalid: missing until proven sampled.
	for i := range s.Values {
		for j := range s.Values[i] {
			for k := range s.Values[i][j] {
				assert.False(t, s.Values[i][j][k].Valid)
			}
		}
	}
}
