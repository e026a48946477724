package align

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/fire-weather-index/internal/domain"
)

var base = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// hourly builds an hourly series of n+1 samples starting at start, with
// every cell of every sample set by f.
func hourly(start time.Time, n, cells int, f func(hour, cell int) float64) domain.Series {
	s := make(domain.Series, 0, n+1)
	for h := 0; h <= n; h++ {
		vals := make([]float64, cells)
		for c := 0; c < cells; c++ {
			vals[c] = f(h, c)
		}
		s = append(s, domain.Sample{Time: start.Add(time.Duration(h) * time.Hour), Values: vals})
	}
	return s
}

func constant(v float64) func(int, int) float64 {
	return func(int, int) float64 { return v }
}

// threeDayInputs covers Jan 1 00:00 through Jan 4 00:00 hourly, two cells.
func threeDayInputs() Inputs {
	return Inputs{
		Temperature:   hourly(base, 72, 2, constant(20)),
		RelHumidity:   hourly(base, 72, 2, constant(45)),
		WindSpeed:     hourly(base, 72, 2, constant(10)),
		Precipitation: hourly(base, 72, 2, constant(0.1)),
	}
}

func TestDaily(t *testing.T) {
	t.Run("default range", func(t *testing.T) {
		tbl, err := Daily(threeDayInputs(), time.Time{}, time.Time{})
		require.NoError(t, err)

		// First day needs a full trailing 24 h of rain, so the range starts
		// one day after the first sample and ends at the last.
		require.Len(t, tbl.Days, 3)
		assert.Equal(t, base.AddDate(0, 0, 1), tbl.Days[0])
		assert.Equal(t, base.AddDate(0, 0, 3), tbl.Days[2])
		assert.Equal(t, 2, tbl.Cells)
		assert.Zero(t, tbl.MaskedCellDays)

		rec := tbl.Records[0][0]
		assert.Equal(t, 20.0, rec.Temp)
		assert.Equal(t, 45.0, rec.RelHum)
		assert.Equal(t, 10.0, rec.WindSpeed)
		// 24 hourly samples of 0.1 mm in the trailing window.
		assert.InDelta(t, 2.4, rec.Precip, 1e-9)
	})

	t.Run("requested start before the computable range is clamped", func(t *testing.T) {
		tbl, err := Daily(threeDayInputs(), base.AddDate(0, 0, -10), time.Time{})
		require.NoError(t, err)
		assert.Equal(t, base.AddDate(0, 0, 1), tbl.Days[0])
	})

	t.Run("requested range inside the data is honored", func(t *testing.T) {
		tbl, err := Daily(threeDayInputs(), base.AddDate(0, 0, 2), base.AddDate(0, 0, 2))
		require.NoError(t, err)
		require.Len(t, tbl.Days, 1)
		assert.Equal(t, base.AddDate(0, 0, 2), tbl.Days[0])
	})

	t.Run("mid-day start rounds up to the next boundary", func(t *testing.T) {
		tbl, err := Daily(threeDayInputs(), base.AddDate(0, 0, 1).Add(6*time.Hour), time.Time{})
		require.NoError(t, err)
		assert.Equal(t, base.AddDate(0, 0, 2), tbl.Days[0])
	})

	t.Run("requested end past the data is clamped", func(t *testing.T) {
		tbl, err := Daily(threeDayInputs(), time.Time{}, base.AddDate(0, 0, 30))
		require.NoError(t, err)
		assert.Equal(t, base.AddDate(0, 0, 3), tbl.Days[len(tbl.Days)-1])
	})

	t.Run("no complete day in range", func(t *testing.T) {
		in := Inputs{
			Temperature:   hourly(base, 12, 1, constant(20)),
			RelHumidity:   hourly(base, 12, 1, constant(45)),
			WindSpeed:     hourly(base, 12, 1, constant(10)),
			Precipitation: hourly(base, 12, 1, constant(0)),
		}
		_, err := Daily(in, time.Time{}, time.Time{})
		assert.ErrorContains(t, err, "no complete day")
	})

	t.Run("empty precipitation series", func(t *testing.T) {
		in := threeDayInputs()
		in.Precipitation = nil
		_, err := Daily(in, time.Time{}, time.Time{})
		assert.ErrorContains(t, err, "empty precipitation")
	})

	t.Run("cell count mismatch", func(t *testing.T) {
		in := threeDayInputs()
		in.WindSpeed = hourly(base, 72, 3, constant(10))
		_, err := Daily(in, time.Time{}, time.Time{})
		assert.ErrorContains(t, err, "cells")
	})
}

func TestDailySnapshots(t *testing.T) {
	t.Run("boundary samples are matched exactly", func(t *testing.T) {
		in := threeDayInputs()
		// Shift every temperature sample 30 minutes off the hour: no sample
		// lands on a day boundary, so nothing snaps and every day masks.
		for i := range in.Temperature {
			in.Temperature[i].Time = in.Temperature[i].Time.Add(30 * time.Minute)
		}
		tbl, err := Daily(in, time.Time{}, time.Time{})
		require.NoError(t, err)
		assert.Equal(t, 3*2, tbl.MaskedCellDays)
		for _, row := range tbl.Records {
			for _, rec := range row {
				assert.False(t, rec.Defined())
			}
		}
	})

	t.Run("humidity is clamped to 100", func(t *testing.T) {
		in := threeDayInputs()
		in.RelHumidity = hourly(base, 72, 2, constant(104.2))
		tbl, err := Daily(in, time.Time{}, time.Time{})
		require.NoError(t, err)
		assert.Equal(t, 100.0, tbl.Records[0][0].RelHum)
	})
}

func TestDailyPrecipWindow(t *testing.T) {
	t.Run("window is open at the left edge, closed at the right", func(t *testing.T) {
		in := Inputs{
			Temperature: hourly(base, 48, 1, constant(20)),
			RelHumidity: hourly(base, 48, 1, constant(45)),
			WindSpeed:   hourly(base, 48, 1, constant(10)),
			// Rain only at the two day boundaries.
			Precipitation: domain.Series{
				{Time: base, Values: []float64{5}},
				{Time: base.AddDate(0, 0, 1), Values: []float64{3}},
				{Time: base.AddDate(0, 0, 2), Values: []float64{7}},
			},
		}
		tbl, err := Daily(in, time.Time{}, time.Time{})
		require.NoError(t, err)
		require.Len(t, tbl.Days, 2)

		// Day 1 window (Jan 1 00:00, Jan 2 00:00]: the 5 mm at the open left
		// edge is excluded, the 3 mm at the boundary included.
		assert.InDelta(t, 3.0, tbl.Records[0][0].Precip, 1e-9)
		assert.InDelta(t, 7.0, tbl.Records[1][0].Precip, 1e-9)
	})

	t.Run("missing rain sample poisons the window", func(t *testing.T) {
		in := threeDayInputs()
		// One NaN rain reading in the first day's window, cell 1 only.
		in.Precipitation[10].Values[1] = domain.Missing()
		tbl, err := Daily(in, time.Time{}, time.Time{})
		require.NoError(t, err)

		assert.True(t, tbl.Records[0][0].Defined())
		assert.False(t, tbl.Records[0][1].Defined())
		assert.Equal(t, 1, tbl.MaskedCellDays)
	})
}

func TestDailyMasksAllOrNothing(t *testing.T) {
	in := threeDayInputs()
	// Drop cell 0's wind reading at the second day boundary.
	in.WindSpeed[48].Values[0] = domain.Missing()

	tbl, err := Daily(in, time.Time{}, time.Time{})
	require.NoError(t, err)

	masked := tbl.Records[1][0]
	assert.True(t, math.IsNaN(masked.Temp))
	assert.True(t, math.IsNaN(masked.RelHum))
	assert.True(t, math.IsNaN(masked.WindSpeed))
	assert.True(t, math.IsNaN(masked.Precip))

	// The sibling cell and the surrounding days are untouched.
	assert.True(t, tbl.Records[1][1].Defined())
	assert.True(t, tbl.Records[0][0].Defined())
	assert.True(t, tbl.Records[2][0].Defined())
	assert.Equal(t, 1, tbl.MaskedCellDays)
}
