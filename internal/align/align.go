// Package align turns sub-daily weather series into one record per cell
// per day: the snapshot of temperature, humidity, and wind at the day
// boundary, and the trailing 24 h precipitation total ending there. It is
// the front half of the index recurrence — a cell-day it masks stays
// masked through every sub-index downstream.
package align

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/couchcryptid/fire-weather-index/internal/domain"
)

// Inputs are the four raw series for one grid. Sampling may be hourly or
// any sub-daily cadence; precipitation values are assumed to be interval
// accumulations (mm per sample interval), the other three instantaneous.
type Inputs struct {
	Temperature   domain.Series
	RelHumidity   domain.Series
	WindSpeed     domain.Series
	Precipitation domain.Series
}

// Table is the aligned output: one row of per-cell records for each day in
// the computed range, in strictly increasing day order. Days carry the day
// boundary instant (UTC midnight) the row was aligned to.
type Table struct {
	Days    []time.Time
	Records [][]domain.DailyWeather // [day][cell]
	Cells   int

	// MaskedCellDays counts cell-days zeroed out by the all-or-nothing mask.
	MaskedCellDays int
}

const day = 24 * time.Hour

// Daily aligns the four series over [start, end]. A zero start defaults to
// one day after the first precipitation timestamp and is never moved
// earlier than that even when requested; a zero end defaults to the last
// precipitation timestamp and is never moved later. Temperature, humidity,
// and wind require an exact sample at each day boundary (no
// interpolation); relative humidity is clamped to 100. A cell-day with any
// of the four variables missing has all four set to NaN.
func Daily(in Inputs, start, end time.Time) (*Table, error) {
	if len(in.Precipitation) == 0 {
		return nil, errors.New("align: empty precipitation series")
	}
	cells, err := cellCount(in)
	if err != nil {
		return nil, err
	}

	// The earliest computable day boundary needs a full trailing 24 h of
	// precipitation behind it.
	first := in.Precipitation[0].Time.Add(day)
	last := in.Precipitation[len(in.Precipitation)-1].Time
	if start.IsZero() || start.Before(first) {
		start = first
	}
	if end.IsZero() || end.After(last) {
		end = last
	}

	firstDay := ceilDay(start)
	lastDay := floorDay(end)
	if lastDay.Before(firstDay) {
		return nil, fmt.Errorf("align: no complete day in range [%s, %s]",
			start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	temp := snapshotIndex(in.Temperature)
	hum := snapshotIndex(in.RelHumidity)
	wind := snapshotIndex(in.WindSpeed)

	tbl := &Table{Cells: cells}
	pi := 0 // cursor into the precipitation series; samples are chronological
	for d := firstDay; !d.After(lastDay); d = d.Add(day) {
		rain := make([]float64, cells)
		seen := false
		// Trailing non-overlapping sum over (d-24h, d].
		for pi < len(in.Precipitation) && !in.Precipitation[pi].Time.After(d) {
			s := in.Precipitation[pi]
			if s.Time.After(d.Add(-day)) {
				seen = true
				for c := 0; c < cells; c++ {
					rain[c] += s.Values[c]
				}
			}
			pi++
		}

		row := make([]domain.DailyWeather, cells)
		for c := 0; c < cells; c++ {
			rec := domain.DailyWeather{
				Temp:      lookup(temp, d, c),
				RelHum:    lookup(hum, d, c),
				WindSpeed: lookup(wind, d, c),
				Precip:    domain.Missing(),
			}
			if seen {
				rec.Precip = rain[c]
			}
			if rec.RelHum > 100.0 {
				rec.RelHum = 100.0
			}
			if math.IsNaN(rec.Temp) || math.IsNaN(rec.RelHum) ||
				math.IsNaN(rec.WindSpeed) || math.IsNaN(rec.Precip) {
				row[c] = maskedRecord()
				tbl.MaskedCellDays++
				continue
			}
			row[c] = rec
		}
		tbl.Days = append(tbl.Days, d)
		tbl.Records = append(tbl.Records, row)
	}
	return tbl, nil
}

// cellCount verifies every sample of every series agrees on the number of
// cells and returns it.
func cellCount(in Inputs) (int, error) {
	n := -1
	for name, s := range map[string]domain.Series{
		"temperature":       in.Temperature,
		"relative humidity": in.RelHumidity,
		"wind speed":        in.WindSpeed,
		"precipitation":     in.Precipitation,
	} {
		for _, smp := range s {
			if n == -1 {
				n = len(smp.Values)
			}
			if len(smp.Values) != n {
				return 0, fmt.Errorf("align: %s sample at %s has %d cells, want %d",
					name, smp.Time.Format(time.RFC3339), len(smp.Values), n)
			}
		}
	}
	if n <= 0 {
		return 0, errors.New("align: no cells in input series")
	}
	return n, nil
}

// snapshotIndex builds an exact-instant lookup for an instantaneous series.
func snapshotIndex(s domain.Series) map[int64][]float64 {
	idx := make(map[int64][]float64, len(s))
	for _, smp := range s {
		idx[smp.Time.UTC().Unix()] = smp.Values
	}
	return idx
}

func lookup(idx map[int64][]float64, t time.Time, cell int) float64 {
	vals, ok := idx[t.UTC().Unix()]
	if !ok {
		return domain.Missing()
	}
	return vals[cell]
}

func maskedRecord() domain.DailyWeather {
	return domain.DailyWeather{
		Temp:      domain.Missing(),
		RelHum:    domain.Missing(),
		WindSpeed: domain.Missing(),
		Precip:    domain.Missing(),
	}
}

func floorDay(t time.Time) time.Time {
	return t.UTC().Truncate(day)
}

func ceilDay(t time.Time) time.Time {
	f := floorDay(t)
	if f.Equal(t.UTC()) {
		return f
	}
	return f.Add(day)
}
