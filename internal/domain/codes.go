package domain

import (
	"math"
	"time"
)

// The six index functions below implement the Canadian Forest Fire Weather
// Index System equations (Van Wagner 1985, as updated by Wang et al. 2015)
// with the New Zealand day-length adjustment from Lawson et al. 2008.
// Equation numbers in comments refer to Wang et al. 2015.
//
// All functions are pure and elementwise: applying them across a grid cell
// by cell is identical to any batched application. Missing inputs are NaN
// and propagate to a NaN result; no function returns an error.

// FFMC computes today's Fine Fuel Moisture Code from noon weather and
// yesterday's code. Temperature in °C, relative humidity in percent,
// wind speed in km/h, precipitation as the trailing 24 h total in mm.
// The result is clamped to [0, 101].
func FFMC(temp, relHum, windSpeed, precip, prev float64) float64 {
	mo := 147.2 * (101.0 - prev) / (59.5 + prev) // Eq. 1

	if precip > 0.5 {
		rf := precip - 0.5 // Eq. 2
		if mo > 150.0 {
			mo = mo + 42.5*rf*math.Exp(-100.0/(251.0-mo))*(1.0-math.Exp(-6.93/rf)) +
				0.0015*(mo-150.0)*(mo-150.0)*math.Sqrt(rf) // Eq. 3b
		} else {
			mo = mo + 42.5*rf*math.Exp(-100.0/(251.0-mo))*(1.0-math.Exp(-6.93/rf)) // Eq. 3a
		}
		if mo > 250.0 {
			mo = 250.0
		}
	} else if math.IsNaN(precip) {
		mo = math.NaN()
	}

	ed := 0.942*math.Pow(relHum, 0.679) + 11.0*math.Exp((relHum-100.0)/10.0) +
		0.18*(21.1-temp)*(1.0-1.0/math.Exp(0.115*relHum)) // Eq. 4

	var m float64
	switch {
	case mo < ed:
		ew := 0.618*math.Pow(relHum, 0.753) + 10.0*math.Exp((relHum-100.0)/10.0) +
			0.18*(21.1-temp)*(1.0-1.0/math.Exp(0.115*relHum)) // Eq. 5
		if mo <= ew {
			kl := 0.424*(1.0-math.Pow((100.0-relHum)/100.0, 1.7)) +
				0.0694*math.Sqrt(windSpeed)*(1.0-math.Pow((100.0-relHum)/100.0, 8)) // Eq. 7a
			kw := kl * 0.581 * math.Exp(0.0365*temp) // Eq. 7b
			m = ew - (ew-mo)/math.Pow(10.0, kw)      // Eq. 9
		} else {
			m = mo
		}
	case mo == ed:
		m = mo
	case mo > ed:
		kl := 0.424*(1.0-math.Pow(relHum/100.0, 1.7)) +
			0.0694*math.Sqrt(windSpeed)*(1.0-math.Pow(relHum/100.0, 8)) // Eq. 6a
		kw := kl * 0.581 * math.Exp(0.0365*temp) // Eq. 6b
		m = ed + (mo-ed)/math.Pow(10.0, kw)      // Eq. 8
	default:
		// mo is NaN; all comparisons above are false.
		m = mo
	}

	ffmc := 59.5 * (250.0 - m) / (147.2 + m) // Eq. 10
	if ffmc > 101.0 {
		return 101.0
	}
	if ffmc <= 0.0 {
		return 0.0
	}
	return ffmc
}

// DMC computes today's Duff Moisture Code from noon weather, yesterday's
// code, and the calendar month (for the day-length drying factor).
// The result is never below 1.0.
func DMC(temp, relHum, precip, prev float64, month time.Month) float64 {
	t := temp
	if t < -1.1 {
		t = -1.1
	}
	rk := 1.894 * (t + 1.1) * (100.0 - relHum) * (dmcDayLength(month) * 0.0001) // Eqs. 16, 17

	var pr float64
	switch {
	case precip > 1.5:
		rw := 0.92*precip - 1.27                    // Eq. 11
		wmi := 20.0 + 280.0/math.Exp(0.023*prev)    // Eq. 12
		var b float64
		switch {
		case prev <= 33.0:
			b = 100.0 / (0.5 + 0.3*prev) // Eq. 13a
		case prev <= 65.0:
			b = 14.0 - 1.3*math.Log(prev) // Eq. 13b
		default:
			b = 6.2*math.Log(prev) - 17.2 // Eq. 13c
		}
		wmr := wmi + 1000.0*rw/(48.77+b*rw)       // Eq. 14
		pr = 43.43 * (5.6348 - math.Log(wmr-20.0)) // Eq. 15
	case precip <= 1.5:
		pr = prev
	default:
		pr = math.NaN()
	}

	if pr < 0.0 {
		pr = 0.0
	}
	dmc := pr + rk
	if dmc <= 1.0 {
		return 1.0
	}
	return dmc
}

// DC computes today's Drought Code from noon temperature, the trailing 24 h
// precipitation, yesterday's code, and the calendar month.
//
// When rain exceeds 2.8 mm but the drought-recovery term dr comes out
// non-positive, the published equations leave the code unspecified; this
// implementation falls back to prev + pe, the same update the no-rain
// branch applies.
func DC(temp, precip, prev float64, month time.Month) float64 {
	t := temp
	if t < -2.8 {
		t = -2.8
	}

	pe := (0.36*(t+2.8) + dcDayLength(month)) / 2.0 // Eq. 22
	if pe <= 0.0 {
		pe = 0.0
	}

	switch {
	case precip > 2.8:
		rw := 0.83*precip - 1.27                       // Eq. 18
		smi := 800.0 * math.Exp(-prev/400.0)           // Eq. 19
		dr := prev - 400.0*math.Log(1.0+3.937*rw/smi)  // Eqs. 20, 21
		if dr > 0.0 {
			return dr + pe
		}
		return prev + pe
	case precip <= 2.8:
		return prev + pe
	default:
		return math.NaN()
	}
}

// ISI computes the Initial Spread Index from noon wind speed (km/h) and
// today's FFMC. Closed form, no branching.
func ISI(windSpeed, ffmc float64) float64 {
	mo := 147.2 * (101.0 - ffmc) / (59.5 + ffmc)                              // Eq. 1
	ff := 19.115 * math.Exp(mo*-0.1386) * (1.0 + math.Pow(mo, 5.31)/4.93e7)   // Eq. 25
	return ff * math.Exp(0.05039*windSpeed)                                   // Eq. 26
}

// BUI computes the Buildup Index from today's DMC and DC.
// The result is floored at 0.
func BUI(dmc, dc float64) float64 {
	var bui float64
	if dmc <= 0.4*dc {
		bui = 0.8 * dc * dmc / (dmc + 0.4*dc) // Eq. 27a
	} else {
		bui = dmc - (1.0-0.8*dc/(dmc+0.4*dc))*(0.92+math.Pow(0.0114*dmc, 1.7)) // Eq. 27b
	}
	if bui < 0.0 {
		return 0.0
	}
	return bui
}

// FWI computes the Fire Weather Index from today's ISI and BUI. The BUI
// branch boundary is inclusive: BUI = 80 exactly uses Eq. 28a.
func FWI(isi, bui float64) float64 {
	var bb float64
	if bui <= 80.0 {
		bb = 0.1 * isi * (0.626*math.Pow(bui, 0.809) + 2.0) // Eq. 28a
	} else {
		bb = 0.1 * isi * (1000.0 / (25.0 + 108.64/math.Exp(0.023*bui))) // Eq. 28b
	}

	if bb <= 1.0 {
		return bb // Eq. 30b
	}
	return math.Exp(2.72 * math.Pow(0.434*math.Log(bb), 0.647)) // Eq. 30a
}
