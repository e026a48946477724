package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/fire-weather-index/internal/align"
	"github.com/couchcryptid/fire-weather-index/internal/domain"
	"github.com/couchcryptid/fire-weather-index/internal/engine"
	"github.com/couchcryptid/fire-weather-index/internal/observability"
)

// Defaults are service-level fallbacks applied to jobs that omit the
// corresponding option.
type Defaults struct {
	// WindUnit is used when a job does not declare one. Empty means no
	// fallback and such jobs are rejected.
	WindUnit domain.WindUnit
	Codes    domain.Codes
	Workers  int
}

// IndexTransformer implements Transformer: it aligns a job's raw series
// into daily records and steps the recurrence over them.
type IndexTransformer struct {
	defaults Defaults
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewTransformer creates an IndexTransformer.
func NewTransformer(defaults Defaults, logger *slog.Logger, metrics *observability.Metrics) *IndexTransformer {
	if defaults.Codes == (domain.Codes{}) {
		defaults.Codes = domain.DefaultCodes
	}
	return &IndexTransformer{
		defaults: defaults,
		logger:   logger,
		metrics:  metrics,
	}
}

// Transform computes one job end to end and serializes the result set.
func (t *IndexTransformer) Transform(ctx context.Context, raw domain.RawJob) (domain.OutputEvent, error) {
	spec, err := domain.ParseJob(raw)
	if err != nil {
		return domain.OutputEvent{}, &TransformError{Reason: "parse", Err: err}
	}

	unit, err := t.resolveWindUnit(spec)
	if err != nil {
		return domain.OutputEvent{}, &TransformError{Reason: "unit", Err: err}
	}

	start := time.Time{}
	if spec.StartDate != nil {
		start = *spec.StartDate
	}
	end := time.Time{}
	if spec.EndDate != nil {
		end = *spec.EndDate
	}

	computeStart := time.Now()

	tbl, err := align.Daily(align.Inputs{
		Temperature:   spec.Temperature.Series(),
		RelHumidity:   spec.RelHumidity.Series(),
		WindSpeed:     convertWind(spec.WindSpeed.Series(), unit),
		Precipitation: spec.Precipitation.Series(),
	}, start, end)
	if err != nil {
		return domain.OutputEvent{}, &TransformError{Reason: "align", Err: err}
	}

	opts, err := t.engineOptions(spec, tbl.Cells)
	if err != nil {
		return domain.OutputEvent{}, &TransformError{Reason: "parse", Err: err}
	}

	res, err := engine.Run(ctx, tbl, opts)
	if err != nil {
		return domain.OutputEvent{}, &TransformError{Reason: "compute", Err: err}
	}

	t.metrics.ComputeDuration.Observe(time.Since(computeStart).Seconds())
	t.metrics.DaysPerJob.Observe(float64(len(res.Days)))
	t.metrics.CellDaysMissing.Add(float64(tbl.MaskedCellDays))

	result := buildResultSet(spec, tbl, res)
	t.logger.Debug("job computed",
		"job_id", result.JobID,
		"grid_id", result.GridID,
		"days", len(result.Days),
		"cells", result.Cells,
		"missing_cell_days", result.MissingCellDays,
	)

	return serializeResult(result)
}

// resolveWindUnit picks the job's declared unit or the service fallback.
// A job with neither is a configuration error.
func (t *IndexTransformer) resolveWindUnit(spec domain.JobSpec) (domain.WindUnit, error) {
	if spec.WindSpeedUnit != "" {
		return domain.ParseWindUnit(spec.WindSpeedUnit)
	}
	if t.defaults.WindUnit != "" {
		return t.defaults.WindUnit, nil
	}
	return "", fmt.Errorf("job %q declares no wind speed unit and no fallback is configured", spec.GridID)
}

// convertWind normalizes a wind series to km/h.
func convertWind(s domain.Series, unit domain.WindUnit) domain.Series {
	if unit == domain.KilometersPerHour {
		return s
	}
	out := make(domain.Series, len(s))
	for i, smp := range s {
		vals := make([]float64, len(smp.Values))
		for j, v := range smp.Values {
			vals[j] = unit.ToKilometersPerHour(v)
		}
		out[i] = domain.Sample{Time: smp.Time, Values: vals}
	}
	return out
}

// engineOptions builds initial state from the job's scalars and optional
// per-cell arrays. Any present array must match the cell count; absent
// fields fall back to the job scalars, then the service defaults.
func (t *IndexTransformer) engineOptions(spec domain.JobSpec, cells int) (engine.Options, error) {
	scalar := domain.Codes{
		FFMC: orDefault(spec.FFMC0, t.defaults.Codes.FFMC),
		DMC:  orDefault(spec.DMC0, t.defaults.Codes.DMC),
		DC:   orDefault(spec.DC0, t.defaults.Codes.DC),
	}

	opts := engine.Options{Initial: scalar, Workers: t.defaults.Workers}
	if spec.FFMC0ByCell == nil && spec.DMC0ByCell == nil && spec.DC0ByCell == nil {
		return opts, nil
	}

	for name, arr := range map[string][]domain.Value{
		"ffmc0_by_cell": spec.FFMC0ByCell,
		"dmc0_by_cell":  spec.DMC0ByCell,
		"dc0_by_cell":   spec.DC0ByCell,
	} {
		if arr != nil && len(arr) != cells {
			return engine.Options{}, fmt.Errorf("%s has %d entries for %d cells", name, len(arr), cells)
		}
	}

	byCell := make([]domain.Codes, cells)
	for c := range byCell {
		byCell[c] = domain.Codes{
			FFMC: cellOrScalar(spec.FFMC0ByCell, c, scalar.FFMC),
			DMC:  cellOrScalar(spec.DMC0ByCell, c, scalar.DMC),
			DC:   cellOrScalar(spec.DC0ByCell, c, scalar.DC),
		}
	}
	opts.InitialByCell = byCell
	return opts, nil
}

func orDefault(v *float64, def float64) float64 {
	if v != nil {
		return *v
	}
	return def
}

func cellOrScalar(arr []domain.Value, c int, scalar float64) float64 {
	if arr == nil {
		return scalar
	}
	return float64(arr[c])
}

// buildResultSet converts the engine output to its wire form.
func buildResultSet(spec domain.JobSpec, tbl *align.Table, res *engine.Results) domain.ResultSet {
	finalFFMC := make([]domain.Value, len(res.FinalCodes))
	finalDMC := make([]domain.Value, len(res.FinalCodes))
	finalDC := make([]domain.Value, len(res.FinalCodes))
	for c, codes := range res.FinalCodes {
		finalFFMC[c] = domain.Value(codes.FFMC)
		finalDMC[c] = domain.Value(codes.DMC)
		finalDC[c] = domain.Value(codes.DC)
	}

	result := domain.ResultSet{
		JobID:           uuid.NewString(),
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

// serializeResult marshals a ResultSet into an output event. The grid ID
// keys the message so one grid's results stay ordered within a partition.
func serializeResult(result domain.ResultSet) (domain.OutputEvent, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return domain.OutputEvent{}, &TransformError{Reason: "compute", Err: fmt.Errorf("serialize result set: %w", err)}
	}
	return domain.OutputEvent{
		Key:   []byte(result.GridID),
		Value: data,
		Headers: map[string]string{
			"job_id":      result.JobID,
			"grid_id":     result.GridID,
			"computed_at": result.ComputedAt.Format(time.RFC3339),
		},
	}, nil
}
