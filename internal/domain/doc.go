// Package domain implements the Canadian Forest Fire Weather Index (FWI)
// System with New Zealand day-length adjustments.
//
// # The index family
//
// The system tracks three moisture codes, each a day-over-day recurrence,
// and derives three fire-behaviour indices from them:
//
//	FFMC  Fine Fuel Moisture Code — fast-drying surface litter
//	DMC   Duff Moisture Code — loosely compacted organic layers
//	DC    Drought Code — deep compact organic layers, slowest to change
//	ISI   Initial Spread Index — FFMC plus wind → spread rate potential
//	BUI   Buildup Index — DMC plus DC → fuel available for consumption
//	FWI   Fire Weather Index — ISI plus BUI → overall intensity rating
//
// Today's FFMC/DMC/DC depend on yesterday's value plus today's weather, so
// the codes must be stepped in strict chronological order. ISI/BUI/FWI are
// recomputed fresh each day and never feed back into the recurrence.
//
// # Equations and constants
//
// The formulas follow Van Wagner 1985 as updated by Wang et al. 2015
// ("Updated source code for calculating fire danger indices in the
// Canadian Forest Fire Weather Index System"); equation numbers in
// [FFMC], [DMC], [DC], [ISI], [BUI], and [FWI] refer to that paper. The
// monthly day-length factors consumed by DMC and DC are the New Zealand
// latitude-band values from Lawson et al. 2008, not the original Canadian
// table.
//
// # Input conventions
//
//	Temperature        °C, noon snapshot
//	Relative humidity  percent, 0–100, clamped to ≤100 during alignment
//	Wind speed         km/h at the formula boundary; m/s inputs are
//	                   converted (×3.6) and the unit must be declared —
//	                   see [ParseWindUnit]
//	Precipitation      mm, trailing 24 h accumulation ending at the day
//	                   boundary
//
// Out-of-domain numeric inputs (negative humidity, implausible values) are
// not validated; the formulas produce whatever the equations produce.
// Callers own input sanity.
//
// # Missing data
//
// NaN is the first-class "no data" marker. A missing input yields a NaN
// index for that cell-day rather than an error, and [Codes.Step] applies
// the persistence policy: the carried state reverts to the previous day's
// value while the day's recorded output stays NaN. Derived indices are
// never backfilled for masked days.
package domain
