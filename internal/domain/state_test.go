package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func missingWeather() DailyWeather {
	nan := math.NaN()
	return DailyWeather{Temp: nan, RelHum: nan, WindSpeed: nan, Precip: nan}
}

func TestStep(t *testing.T) {
	day1 := DailyWeather{Temp: 20, RelHum: 45, WindSpeed: 10, Precip: 0}
	day2 := DailyWeather{Temp: 22, RelHum: 40, WindSpeed: 15, Precip: 0}

	t.Run("one day from defaults", func(t *testing.T) {
		next, out := DefaultCodes.Step(day1, time.January)

		assert.InDelta(t, 87.52659288247592, out.FFMC, eps)
		assert.InDelta(t, 8.52768505, out.DMC, eps)
		assert.InDelta(t, 22.304, out.DC, eps)
		assert.InDelta(t, 4.977107034457819, out.ISI, eps)
		assert.InDelta(t, 8.720196240026466, out.BUI, eps)
		assert.InDelta(t, 5.014239677148365, out.FWI, eps)

		assert.Equal(t, Codes{FFMC: out.FFMC, DMC: out.DMC, DC: out.DC}, next)
	})

	t.Run("two chained days", func(t *testing.T) {
		state, _ := DefaultCodes.Step(day1, time.January)
		_, out := state.Step(day2, time.January)

		assert.InDelta(t, 89.19136655598939, out.FFMC, eps)
		assert.InDelta(t, 11.54653165, out.DMC, eps)
		assert.InDelta(t, 29.968, out.DC, eps)
		assert.InDelta(t, 8.129571688550275, out.ISI, eps)
		assert.InDelta(t, 11.76274007483042, out.BUI, eps)
		assert.InDelta(t, 9.179507414073937, out.FWI, eps)
	})

	t.Run("masked day holds state and reports missing", func(t *testing.T) {
		state, _ := DefaultCodes.Step(day1, time.January)
		afterGap, out := state.Step(missingWeather(), time.January)

		// The day's outputs are missing across the board.
		assert.True(t, math.IsNaN(out.FFMC))
		assert.True(t, math.IsNaN(out.DMC))
		assert.True(t, math.IsNaN(out.DC))
		assert.True(t, math.IsNaN(out.ISI))
		assert.True(t, math.IsNaN(out.BUI))
		assert.True(t, math.IsNaN(out.FWI))

		// The carried state reverts to the last defined codes.
		assert.Equal(t, state, afterGap)
	})

	t.Run("gap is skipped, not interpolated", func(t *testing.T) {
		state, _ := DefaultCodes.Step(day1, time.January)
		viaGap, _ := state.Step(missingWeather(), time.January)
		_, gapOut := viaGap.Step(day2, time.January)
		_, directOut := state.Step(day2, time.January)

		// A defined day after a gap continues from the pre-gap state, exactly
		// as if the gap day never existed.
		assert.Equal(t, directOut, gapOut)
	})

	t.Run("missing initial state stays missing on a masked day", func(t *testing.T) {
		next, out := MissingCodes().Step(missingWeather(), time.June)
		assert.False(t, next.Defined())
		assert.True(t, math.IsNaN(out.FWI))
	})
}

func TestCodesDefined(t *testing.T) {
	assert.True(t, DefaultCodes.Defined())
	assert.False(t, MissingCodes().Defined())
	assert.False(t, Codes{FFMC: 85, DMC: math.NaN(), DC: 15}.Defined())
}
