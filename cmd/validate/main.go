// Command validate performs end-to-end integrity checks on the fire weather
// index fixtures: the raw weather-series job and its expected index result
// set. It verifies job well-formedness, recomputes the indices through the
// real alignment and engine packages and compares them against the fixture,
// checks the documented index invariants, and confirms that splitting a run
// and carrying the final codes forward reproduces the single-run output.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -raw data/mock/weather_series_raw.json \
//	  -expected data/mock/weather_series_indices.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/fire-weather-index/internal/align"
	"github.com/couchcryptid/fire-weather-index/internal/domain"
	"github.com/couchcryptid/fire-weather-index/internal/engine"
)

const tolerance = 1e-9

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	rawPath := flag.String("raw", "data/mock/weather_series_raw.json", "path to raw job fixture")
	expectedPath := flag.String("expected", "data/mock/weather_series_indices.json", "path to expected index fixture")
	flag.Parse()

	if code := run(*rawPath, *expectedPath); code != 0 {
		os.Exit(code)
	}
}

func run(rawPath, expectedPath string) int {
	// Match genmock's frozen clock so recomputed timestamps line up.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2024, time.February, 15, 6, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	fmt.Println("=== Fire Weather Index Fixture Validation ===")
	fmt.Println()

	spec, err := loadJSON[domain.JobSpec](rawPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load raw job fixture: %v\n", err)
		return 1
	}
	expected, err := loadJSON[domain.ResultSet](expectedPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load expected index fixture: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateJobIntegrity(spec),
		validateRecomputeParity(spec, expected),
		validateIndexInvariants(expected),
		validateSplitRunEquivalence(spec),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = "FAIL"
			allPassed = false
		}
		fmt.Printf("[%s] %s\n", status, p.name)
		for _, e := range p.errors {
			fmt.Printf("       - %s\n", e)
		}
	}

	fmt.Println()
	if !allPassed {
		fmt.Println("validation FAILED")
		return 1
	}
	fmt.Println("all phases passed")
	return 0
}

func loadJSON[T any](path string) (T, error) {
	var v T
	data, err := os.ReadFile(path)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// validateJobIntegrity checks the raw job is well formed: a parseable wind
// unit, four non-empty series, a consistent cell count, and chronological
// timestamps.
func validateJobIntegrity(spec domain.JobSpec) *phase {
	p := &phase{name: "job fixture integrity"}

	if _, err := domain.ParseWindUnit(spec.WindSpeedUnit); err != nil {
		p.errorf("wind speed unit: %v", err)
	}
	if spec.GridID == "" {
		p.errorf("grid_id is empty")
	}

	series := map[string]domain.SeriesPayload{
		"temperature":       spec.Temperature,
		"relative_humidity": spec.RelHumidity,
		"wind_speed":        spec.WindSpeed,
		"precipitation":     spec.Precipitation,
	}

	cells := -1
	for name, s := range series {
		if len(s) == 0 {
			p.errorf("%s series is empty", name)
			continue
		}
		prev := time.Time{}
		for i, smp := range s {
			if cells == -1 {
				cells = len(smp.Values)
			} else if len(smp.Values) != cells {
				p.errorf("%s sample %d has %d cells, want %d", name, i, len(smp.Values), cells)
				break
			}
			if !smp.Time.After(prev) {
				p.errorf("%s sample %d timestamp %s is not after %s", name, i, smp.Time, prev)
				break
			}
			prev = smp.Time
		}
	}
	return p
}

// validateRecomputeParity reruns the job through alignment and the engine
// and compares every grid, the final codes, and the masked-day count
// against the expected fixture.
func validateRecomputeParity(spec domain.JobSpec, expected domain.ResultSet) *phase {
	p := &phase{name: "recompute parity with expected fixture"}

	tbl, res, err := recompute(spec)
	if err != nil {
		p.errorf("recompute: %v", err)
		return p
	}

	if len(res.Days) != len(expected.Days) {
		p.errorf("recomputed %d days, fixture has %d", len(res.Days), len(expected.Days))
		return p
	}
	for d, day := range res.Days {
		if !day.Equal(expected.Days[d]) {
			p.errorf("day %d: recomputed %s, fixture %s", d, day, expected.Days[d])
			return p
		}
	}
	if tbl.MaskedCellDays != expected.MissingCellDays {
		p.errorf("masked cell-days: recomputed %d, fixture %d", tbl.MaskedCellDays, expected.MissingCellDays)
	}

	grids := []struct {
		name string
		got  [][]float64
		want [][]domain.Value
	}{
		{"ffmc", res.FFMC, expected.FFMC},
		{"dmc", res.DMC, expected.DMC},
		{"dc", res.DC, expected.DC},
		{"isi", res.ISI, expected.ISI},
		{"bui", res.BUI, expected.BUI},
		{"fwi", res.FWI, expected.FWI},
	}
	for _, g := range grids {
		if n := compareGrid(p, g.name, g.got, g.want); n > 0 {
			break
		}
	}

	for c, codes := range res.FinalCodes {
		if !floatEq(codes.FFMC, float64(expected.FinalFFMC[c])) ||
			!floatEq(codes.DMC, float64(expected.FinalDMC[c])) ||
			!floatEq(codes.DC, float64(expected.FinalDC[c])) {
			p.errorf("cell %d final codes differ: got %+v, fixture (%v, %v, %v)",
				c, codes, expected.FinalFFMC[c], expected.FinalDMC[c], expected.FinalDC[c])
		}
	}
	return p
}

func compareGrid(p *phase, name string, got [][]float64, want [][]domain.Value) int {
	if len(got) != len(want) {
		p.errorf("%s: recomputed %d days, fixture has %d", name, len(got), len(want))
		return 1
	}
	mismatches := 0
	for d := range got {
		if len(got[d]) != len(want[d]) {
			p.errorf("%s day %d: recomputed %d cells, fixture has %d", name, d, len(got[d]), len(want[d]))
			return 1
		}
		for c := range got[d] {
			if !floatEq(got[d][c], float64(want[d][c])) {
				if mismatches < 3 {
					p.errorf("%s[%d][%d]: recomputed %v, fixture %v", name, d, c, got[d][c], want[d][c])
				}
				mismatches++
			}
		}
	}
	if mismatches > 3 {
		p.errorf("%s: %d further mismatches", name, mismatches-3)
	}
	return mismatches
}

// validateIndexInvariants checks the documented ranges and the
// all-or-nothing mask on the fixture itself.
func validateIndexInvariants(expected domain.ResultSet) *phase {
	p := &phase{name: "index range and mask invariants"}

	for d := range expected.FFMC {
		for c := range expected.FFMC[d] {
			ffmc := float64(expected.FFMC[d][c])
			dmc := float64(expected.DMC[d][c])
			dc := float64(expected.DC[d][c])
			isi := float64(expected.ISI[d][c])
			bui := float64(expected.BUI[d][c])
			fwi := float64(expected.FWI[d][c])

			if !math.IsNaN(ffmc) && (ffmc < 0 || ffmc > 101) {
				p.errorf("ffmc[%d][%d] = %v outside [0, 101]", d, c, ffmc)
			}
			if !math.IsNaN(dmc) && dmc < 1.0 {
				p.errorf("dmc[%d][%d] = %v below 1.0", d, c, dmc)
			}
			if !math.IsNaN(dc) && dc < 0 {
				p.errorf("dc[%d][%d] = %v negative", d, c, dc)
			}
			if !math.IsNaN(bui) && bui < 0 {
				p.errorf("bui[%d][%d] = %v negative", d, c, bui)
			}
			if !math.IsNaN(isi) && isi < 0 {
				p.errorf("isi[%d][%d] = %v negative", d, c, isi)
			}
			if !math.IsNaN(fwi) && fwi < 0 {
				p.errorf("fwi[%d][%d] = %v negative", d, c, fwi)
			}

			// A masked day masks every index together.
			missing := math.IsNaN(ffmc)
			for name, v := range map[string]float64{"dmc": dmc, "dc": dc, "isi": isi, "bui": bui, "fwi": fwi} {
				if math.IsNaN(v) != missing {
					p.errorf("mask mismatch at [%d][%d]: ffmc missing=%t but %s missing=%t", d, c, missing, name, math.IsNaN(v))
				}
			}
		}
	}

	for c := range expected.FinalFFMC {
		if math.IsNaN(float64(expected.FinalFFMC[c])) {
			p.errorf("final ffmc for cell %d is missing", c)
		}
	}
	return p
}

// validateSplitRunEquivalence runs the job in two halves, seeding the
// second half with the first half's final codes, and checks the stitched
// output matches the single full run. This is the contract that lets
// callers continue a series across jobs.
func validateSplitRunEquivalence(spec domain.JobSpec) *phase {
	p := &phase{name: "split-run equivalence with carried final codes"}

	tbl, full, err := recompute(spec)
	if err != nil {
		p.errorf("full run: %v", err)
		return p
	}
	if len(tbl.Days) < 4 {
		p.errorf("fixture too short to split: %d days", len(tbl.Days))
		return p
	}

	mid := len(tbl.Days) / 2
	first := &align.Table{Days: tbl.Days[:mid], Records: tbl.Records[:mid], Cells: tbl.Cells}
	second := &align.Table{Days: tbl.Days[mid:], Records: tbl.Records[mid:], Cells: tbl.Cells}

	ctx := context.Background()
	firstRes, err := engine.Run(ctx, first, engine.Options{})
	if err != nil {
		p.errorf("first half: %v", err)
		return p
	}
	secondRes, err := engine.Run(ctx, second, engine.Options{InitialByCell: firstRes.FinalCodes})
	if err != nil {
		p.errorf("second half: %v", err)
		return p
	}

	for d := range secondRes.Days {
		for c := 0; c < tbl.Cells; c++ {
			if !floatEq(secondRes.FWI[d][c], full.FWI[mid+d][c]) {
				p.errorf("fwi[%d][%d]: split run %v, full run %v", mid+d, c, secondRes.FWI[d][c], full.FWI[mid+d][c])
				return p
			}
		}
	}
	for c, codes := range secondRes.FinalCodes {
		if !floatEq(codes.FFMC, full.FinalCodes[c].FFMC) ||
			!floatEq(codes.DMC, full.FinalCodes[c].DMC) ||
			!floatEq(codes.DC, full.FinalCodes[c].DC) {
			p.errorf("cell %d: split-run final codes %+v, full run %+v", c, codes, full.FinalCodes[c])
		}
	}
	return p
}

func recompute(spec domain.JobSpec) (*align.Table, *engine.Results, error) {
	tbl, err := align.Daily(align.Inputs{
		Temperature:   spec.Temperature.Series(),
		RelHumidity:   spec.RelHumidity.Series(),
		WindSpeed:     spec.WindSpeed.Series(),
		Precipitation: spec.Precipitation.Series(),
	}, time.Time{}, time.Time{})
	if err != nil {
		return nil, nil, err
	}
	res, err := engine.Run(context.Background(), tbl, engine.Options{})
	if err != nil {
		return nil, nil, err
	}
	return tbl, res, nil
}

func floatEq(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return math.Abs(a-b) <= tolerance
}
