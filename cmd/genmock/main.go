// Command genmock generates a deterministic synthetic weather-series job
// fixture and its expected index result set, using the actual alignment
// and engine packages so the expected output matches real pipeline
// behavior. Both ends of the pipeline test suite consume the files.
//
// Usage:
//
//	go run ./cmd/genmock -out-dir data/mock
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"
	"gonum.org/v1/gonum/floats"

	"github.com/couchcryptid/fire-weather-index/internal/align"
	"github.com/couchcryptid/fire-weather-index/internal/domain"
	"github.com/couchcryptid/fire-weather-index/internal/engine"
)

const (
	gridID  = "nz-canterbury-4cell"
	cells   = 4
	days    = 40
	fixedID = "fixture-job-0001"
)

var seriesStart = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out-dir", "data/mock", "output directory for fixtures")
	flag.Parse()

	// Freeze the clock for a reproducible ComputedAt.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2024, time.February, 15, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	spec := synthesizeJob()

	tbl, err := align.Daily(align.Inputs{
		Temperature:   spec.Temperature.Series(),
		RelHumidity:   spec.RelHumidity.Series(),
		WindSpeed:     spec.WindSpeed.Series(),
		Precipitation: spec.Precipitation.Series(),
	}, time.Time{}, time.Time{})
	if err != nil {
		return fmt.Errorf("align fixture: %w", err)
	}

	res, err := engine.Run(context.Background(), tbl, engine.Options{})
	if err != nil {
		return fmt.Errorf("compute fixture: %w", err)
	}

	result := toResultSet(spec, tbl, res)

	if err := writeJSON(filepath.Join(*outDir, "weather_series_raw.json"), spec); err != nil {
		return fmt.Errorf("writing raw fixture: %w", err)
	}
	log.Printf("wrote raw job fixture: %s", filepath.Join(*outDir, "weather_series_raw.json"))

	if err := writeJSON(filepath.Join(*outDir, "weather_series_indices.json"), result); err != nil {
		return fmt.Errorf("writing expected fixture: %w", err)
	}
	log.Printf("wrote expected index fixture: %s", filepath.Join(*outDir, "weather_series_indices.json"))

	printStats(res)
	return nil
}

// synthesizeJob builds hourly series with harmonic weather patterns so the
// fixture is reproducible without a random source. Two gaps are seeded:
// cell 2 misses its noon temperature snapshot on day 10, and all cells
// miss precipitation through day 20, exercising the mask and the
// persistence policy in downstream assertions.
func synthesizeJob() domain.JobSpec {
	hours := days * 24
	var temp, hum, wind, precip domain.SeriesPayload

	for h := 0; h <= hours; h++ {
		ts := seriesStart.Add(time.Duration(h) * time.Hour)
		dayFrac := float64(h%24) / 24.0
		dayNum := h / 24

		t := make([]domain.Value, cells)
		rh := make([]domain.Value, cells)
		ws := make([]domain.Value, cells)
		pr := make([]domain.Value, cells)
		for c := 0; c < cells; c++ {
			phase := float64(c) * 0.7
			t[c] = domain.Value(16.0 + 8.0*math.Sin(2*math.Pi*dayFrac-1.0) + 2.0*math.Sin(0.2*float64(dayNum)+phase))
			rh[c] = domain.Value(55.0 + 30.0*math.Cos(2*math.Pi*dayFrac) + 5.0*math.Sin(0.3*float64(dayNum)+phase))
			ws[c] = domain.Value(12.0 + 6.0*math.Sin(0.5*float64(dayNum)+phase))
			// Rain burst every 9th day, dry otherwise.
			if dayNum%9 == 0 && h%24 < 6 {
				pr[c] = domain.Value(1.5 + 0.5*float64(c))
			} else {
				pr[c] = 0
			}
		}

		// Seeded gaps.
		if dayNum == 10 && h%24 == 0 {
			t[2] = domain.Value(math.NaN())
		}
		if dayNum == 20 {
			for c := 0; c < cells; c++ {
				pr[c] = domain.Value(math.NaN())
			}
		}

		temp = append(temp, domain.SamplePayload{Time: ts, Values: t})
		hum = append(hum, domain.SamplePayload{Time: ts, Values: rh})
		wind = append(wind, domain.SamplePayload{Time: ts, Values: ws})
		precip = append(precip, domain.SamplePayload{Time: ts, Values: pr})
	}

	return domain.JobSpec{
		GridID:        gridID,
		WindSpeedUnit: string(domain.KilometersPerHour),
		Temperature:   temp,
		RelHumidity:   hum,
		WindSpeed:     wind,
		Precipitation: precip,
	}
}

func toResultSet(spec domain.JobSpec, tbl *align.Table, res *engine.Results) domain.ResultSet {
	finalFFMC := make([]domain.Value, len(res.FinalCodes))
	finalDMC := make([]domain.Value, len(res.FinalCodes))
	finalDC := make([]domain.Value, len(res.FinalCodes))
	for c, codes := range res.FinalCodes {
		finalFFMC[c] = domain.Value(codes.FFMC)
		finalDMC[c] = domain.Value(codes.DMC)
		finalDC[c] = domain.Value(codes.DC)
	}

	result := domain.ResultSet{
		JobID:           fixedID,
		GridID:          spec.GridID,
		Days:            res.Days,
		Cells:           tbl.Cells,
		FFMC:            domain.Grid(res.FFMC),
		DMC:             domain.Grid(res.DMC),
		DC:              domain.Grid(res.DC),
		ISI:             domain.Grid(res.ISI),
		BUI:             domain.Grid(res.BUI),
		FWI:             domain.Grid(res.FWI),
		FinalFFMC:       finalFFMC,
		FinalDMC:        finalDMC,
		FinalDC:         finalDC,
		MissingCellDays: tbl.MaskedCellDays,
	}
	result.Stamp()
	return result
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

// printStats summarizes the computed FWI distribution so test assertions
// can be updated against the fixture.
func printStats(res *engine.Results) {
	var defined []float64
	var missing int
	for _, row := range res.FWI {
		for _, v := range row {
			if math.IsNaN(v) {
				missing++
				continue
			}
			defined = append(defined, v)
		}
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Days: %d, cells per day: %d\n", len(res.Days), len(res.FWI[0]))
	fmt.Printf("FWI defined: %d, missing: %d\n", len(defined), missing)
	if len(defined) > 0 {
		fmt.Printf("FWI min: %.4f, max: %.4f, mean: %.4f\n",
			floats.Min(defined), floats.Max(defined), floats.Sum(defined)/float64(len(defined)))
	}
	for c, codes := range res.FinalCodes {
		fmt.Printf("cell %d final codes: ffmc=%.4f dmc=%.4f dc=%.4f\n", c, codes.FFMC, codes.DMC, codes.DC)
	}
}
