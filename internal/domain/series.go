package domain

import (
	"context"
	"encoding/json"
	"math"
	"time"
)

// IsMissing reports whether a value is the missing-data marker. Missing
// observations are NaN throughout the engine, never errors, so gaps flow
// through the recurrence instead of aborting it.
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// Missing returns the missing-data marker.
func Missing() float64 {
	return math.NaN()
}

// Sample is one timestamped observation of a single variable across all
// cells of a grid (or station set). Cell order is fixed for the lifetime of
// a series; the engine never relates one cell to another.
type Sample struct {
	Time   time.Time
	Values []float64
}

// Series is a chronologically ordered sub-daily series of samples.
type Series []Sample

// DailyWeather is one aligned cell-day record: the noon snapshot of
// temperature (°C), relative humidity (0–100), wind speed (km/h), and the
// trailing 24 h precipitation total (mm). Any field may be NaN, and the
// alignment layer guarantees all-or-nothing: one missing field masks all
// four.
type DailyWeather struct {
	Temp      float64
	RelHum    float64
	WindSpeed float64
	Precip    float64
}

// Defined reports whether the record carries data. The all-or-nothing mask
// makes checking a single field sufficient.
func (w DailyWeather) Defined() bool {
	return !math.IsNaN(w.Precip)
}

// RawJob represents an unprocessed message from the source topic.
type RawJob struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// Value is a float64 that marshals NaN as JSON null, so gappy weather and
// index series survive serialization.
type Value float64

// MarshalJSON encodes NaN as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if math.IsNaN(float64(v)) {
		return []byte("null"), nil
	}
	return json.Marshal(float64(v))
}

// UnmarshalJSON decodes null as NaN.
func (v *Value) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*v = Value(math.NaN())
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*v = Value(f)
	return nil
}

// SamplePayload is the wire form of a Sample.
type SamplePayload struct {
	Time   time.Time `json:"time"`
	Values []Value   `json:"values"`
}

// SeriesPayload is the wire form of a Series.
type SeriesPayload []SamplePayload

// Series converts a wire series to the in-memory form.
func (p SeriesPayload) Series() Series {
	s := make(Series, len(p))
	for i, smp := range p {
		vals := make([]float64, len(smp.Values))
		for j, v := range smp.Values {
			vals[j] = float64(v)
		}
		s[i] = Sample{Time: smp.Time, Values: vals}
	}
	return s
}

// Grid converts a day-major float64 grid to its wire form.
func Grid(g [][]float64) [][]Value {
	out := make([][]Value, len(g))
	for i, row := range g {
		vals := make([]Value, len(row))
		for j, v := range row {
			vals[j] = Value(v)
		}
		out[i] = vals
	}
	return out
}

// JobSpec is the JSON payload of a weather-series job on the source topic:
// four sub-daily series for one grid, plus options. The wind-speed unit is
// mandatory; start/end dates and initial codes are optional.
type JobSpec struct {
	GridID        string     `json:"grid_id"`
	WindSpeedUnit string     `json:"wind_speed_unit"` // "m/s" or "km/h", no default
	StartDate     *time.Time `json:"start_date,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`

	// Initial moisture codes. Scalars broadcast to every cell; the ByCell
	// arrays, when present, take precedence and must match the cell count.
	// A prior run's final codes slot in here to continue a series.
	FFMC0       *float64 `json:"ffmc0,omitempty"`
	DMC0        *float64 `json:"dmc0,omitempty"`
	DC0         *float64 `json:"dc0,omitempty"`
	FFMC0ByCell []Value  `json:"ffmc0_by_cell,omitempty"`
	DMC0ByCell  []Value  `json:"dmc0_by_cell,omitempty"`
	DC0ByCell   []Value  `json:"dc0_by_cell,omitempty"`

	Temperature   SeriesPayload `json:"temperature"`
	RelHumidity   SeriesPayload `json:"relative_humidity"`
	WindSpeed     SeriesPayload `json:"wind_speed"`
	Precipitation SeriesPayload `json:"precipitation"`
}

// ParseJob deserializes a RawJob's value into a JobSpec.
func ParseJob(raw RawJob) (JobSpec, error) {
	var spec JobSpec
	if err := json.Unmarshal(raw.Value, &spec); err != nil {
		return JobSpec{}, err
	}
	return spec, nil
}

// ResultSet is the computed output for one job: six day-major index grids
// with the same day and cell indexing, plus the final codes a caller needs
// to continue the recurrence in a later run.
type ResultSet struct {
	JobID      string      `json:"job_id"`
	GridID     string      `json:"grid_id"`
	Days       []time.Time `json:"days"`
	Cells      int         `json:"cells"`
	ComputedAt time.Time   `json:"computed_at"`

	FFMC [][]Value `json:"ffmc"`
	DMC  [][]Value `json:"dmc"`
	DC   [][]Value `json:"dc"`
	ISI  [][]Value `json:"isi"`
	BUI  [][]Value `json:"bui"`
	FWI  [][]Value `json:"fwi"`

	FinalFFMC []Value `json:"final_ffmc"`
	FinalDMC  []Value `json:"final_dmc"`
	FinalDC   []Value `json:"final_dc"`

	MissingCellDays int `json:"missing_cell_days"`
}

// Stamp records the computation time from the package clock.
func (r *ResultSet) Stamp() {
	r.ComputedAt = clock.Now()
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
