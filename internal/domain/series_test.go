package domain

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueJSON(t *testing.T) {
	t.Run("missing marshals as null", func(t *testing.T) {
		data, err := json.Marshal([]Value{1.5, Value(math.NaN()), 0})
		require.NoError(t, err)
		assert.JSONEq(t, `[1.5, null, 0]`, string(data))
	})

	t.Run("null unmarshals as missing", func(t *testing.T) {
		var vals []Value
		require.NoError(t, json.Unmarshal([]byte(`[1.5, null, 0]`), &vals))
		require.Len(t, vals, 3)
		assert.Equal(t, Value(1.5), vals[0])
		assert.True(t, math.IsNaN(float64(vals[1])))
		assert.Equal(t, Value(0), vals[2])
	})

	t.Run("rejects non-numeric input", func(t *testing.T) {
		var v Value
		assert.Error(t, json.Unmarshal([]byte(`"abc"`), &v))
	})
}

func TestSeriesPayloadSeries(t *testing.T) {
	ts := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	p := SeriesPayload{
		{Time: ts, Values: []Value{1, Value(math.NaN())}},
		{Time: ts.Add(time.Hour), Values: []Value{3, 4}},
	}

	s := p.Series()
	require.Len(t, s, 2)
	assert.Equal(t, ts, s[0].Time)
	assert.Equal(t, 1.0, s[0].Values[0])
	assert.True(t, IsMissing(s[0].Values[1]))
	assert.Equal(t, []float64{3, 4}, s[1].Values)
}

func TestParseJob(t *testing.T) {
	t.Run("full payload", func(t *testing.T) {
		value := []byte(`{
			"grid_id": "nz-otago",
			"wind_speed_unit": "m/s",
			"start_date": "2024-01-02T00:00:00Z",
			"ffmc0": 80.5,
			"dc0_by_cell": [15.0, null],
			"temperature": [{"time": "2024-01-01T00:00:00Z", "values": [12.5, null]}],
			"relative_humidity": [{"time": "2024-01-01T00:00:00Z", "values": [60, 65]}],
			"wind_speed": [{"time": "2024-01-01T00:00:00Z", "values": [3, 4]}],
			"precipitation": [{"time": "2024-01-01T00:00:00Z", "values": [0, 0.2]}]
		}`)

		spec, err := ParseJob(RawJob{Value: value})
		require.NoError(t, err)
		assert.Equal(t, "nz-otago", spec.GridID)
		assert.Equal(t, "m/s", spec.WindSpeedUnit)
		require.NotNil(t, spec.StartDate)
		assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), *spec.StartDate)
		assert.Nil(t, spec.EndDate)
		require.NotNil(t, spec.FFMC0)
		assert.Equal(t, 80.5, *spec.FFMC0)
		assert.Nil(t, spec.DMC0)
		require.Len(t, spec.DC0ByCell, 2)
		assert.True(t, math.IsNaN(float64(spec.DC0ByCell[1])))
		require.Len(t, spec.Temperature, 1)
		assert.True(t, math.IsNaN(float64(spec.Temperature[0].Values[1])))
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := ParseJob(RawJob{Value: []byte("{not json")})
		assert.Error(t, err)
	})
}

func TestResultSetStamp(t *testing.T) {
	at := time.Date(2024, 2, 15, 6, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(at))
	defer SetClock(nil)

	var r ResultSet
	r.Stamp()
	assert.Equal(t, at, r.ComputedAt)
}

func TestGrid(t *testing.T) {
	g := Grid([][]float64{{1, math.NaN()}, {3, 4}})
	require.Len(t, g, 2)
	assert.Equal(t, Value(1), g[0][0])
	assert.True(t, math.IsNaN(float64(g[0][1])))

	data, err := json.Marshal(g)
	require.NoError(t, err)
	assert.JSONEq(t, `[[1, null], [3, 4]]`, string(data))
}
