package domain

import (
	"math"
	"time"
)

// Codes is the per-cell moisture-code state carried from one day to the
// next. FFMC, DMC, and DC are independent recurrences; ISI, BUI, and FWI
// are derived fresh each day and never feed back into this state.
type Codes struct {
	FFMC float64
	DMC  float64
	DC   float64
}

// DefaultCodes are the canonical start-up values used when a caller has no
// prior state to continue from.
var DefaultCodes = Codes{FFMC: 85.0, DMC: 6.0, DC: 15.0}

// MissingCodes returns an all-NaN state, used for cells that never carry
// data anywhere in the computed range.
func MissingCodes() Codes {
	return Codes{FFMC: math.NaN(), DMC: math.NaN(), DC: math.NaN()}
}

// Defined reports whether the state carries values.
func (c Codes) Defined() bool {
	return !math.IsNaN(c.FFMC) && !math.IsNaN(c.DMC) && !math.IsNaN(c.DC)
}

// DailyIndices is one cell-day of computed output: the day's raw moisture
// codes (NaN on a masked day, even though the carried state is not) and the
// three derived fire-behaviour indices.
type DailyIndices struct {
	FFMC float64
	DMC  float64
	DC   float64
	ISI  float64
	BUI  float64
	FWI  float64
}

// Step advances the state by one day. The returned indices hold the day's
// computed values, NaN where weather was masked. The returned state applies
// the persistence policy: a NaN code reverts to its previous value so the
// recurrence holds the last known state across data gaps instead of
// poisoning every later day.
func (c Codes) Step(wx DailyWeather, month time.Month) (Codes, DailyIndices) {
	ffmc := FFMC(wx.Temp, wx.RelHum, wx.WindSpeed, wx.Precip, c.FFMC)
	dmc := DMC(wx.Temp, wx.RelHum, wx.Precip, c.DMC, month)
	dc := DC(wx.Temp, wx.Precip, c.DC, month)

	isi := ISI(wx.WindSpeed, ffmc)
	bui := BUI(dmc, dc)
	out := DailyIndices{
		FFMC: ffmc,
		DMC:  dmc,
		DC:   dc,
		ISI:  isi,
		BUI:  bui,
		FWI:  FWI(isi, bui),
	}

	next := Codes{
		FFMC: carry(ffmc, c.FFMC),
		DMC:  carry(dmc, c.DMC),
		DC:   carry(dc, c.DC),
	}
	return next, out
}

// carry keeps the previous value when the new one is missing. ISI/BUI/FWI
// are deliberately not carried: derived outputs stay NaN on masked days.
func carry(v, prev float64) float64 {
	if math.IsNaN(v) {
		return prev
	}
	return v
}
