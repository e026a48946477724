package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/fire-weather-index/internal/domain"
)

const defaultBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "weather-series-jobs", cfg.KafkaSourceTopic)
	assert.Equal(t, "fire-weather-indices", cfg.KafkaSinkTopic)
	assert.Equal(t, "fire-weather-index", cfg.KafkaGroupID)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.BatchFlushInterval)
	assert.Zero(t, cfg.Workers)
	assert.Empty(t, cfg.WindSpeedUnit)
	assert.Equal(t, domain.DefaultCodes.FFMC, cfg.InitialFFMC)
	assert.Equal(t, domain.DefaultCodes.DMC, cfg.InitialDMC)
	assert.Equal(t, domain.DefaultCodes.DC, cfg.InitialDC)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SOURCE_TOPIC", "custom-source")
	t.Setenv("KAFKA_SINK_TOPIC", "custom-sink")
	t.Setenv("KAFKA_GROUP_ID", "custom-group")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("BATCH_SIZE", "100")
	t.Setenv("BATCH_FLUSH_INTERVAL", "1s")
	t.Setenv("ENGINE_WORKERS", "8")
	t.Setenv("WIND_SPEED_UNIT", "m/s")
	t.Setenv("INITIAL_FFMC", "80")
	t.Setenv("INITIAL_DMC", "12")
	t.Setenv("INITIAL_DC", "120")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-source", cfg.KafkaSourceTopic)
	assert.Equal(t, "custom-sink", cfg.KafkaSinkTopic)
	assert.Equal(t, "custom-group", cfg.KafkaGroupID)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, time.Second, cfg.BatchFlushInterval)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, domain.MetersPerSecond, cfg.WindSpeedUnit)
	assert.Equal(t, 80.0, cfg.InitialFFMC)
	assert.Equal(t, 12.0, cfg.InitialDMC)
	assert.Equal(t, 120.0, cfg.InitialDC)
}

func TestLoad_InvalidWindSpeedUnit(t *testing.T) {
	t.Setenv("WIND_SPEED_UNIT", "knots")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wind speed unit")
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidBatchSize(t *testing.T) {
	t.Setenv("BATCH_SIZE", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BATCH_SIZE")
}

func TestLoad_InvalidWorkers(t *testing.T) {
	t.Setenv("ENGINE_WORKERS", "-2")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ENGINE_WORKERS")
}

func TestLoad_InvalidInitialCode(t *testing.T) {
	t.Setenv("INITIAL_DC", "soggy")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INITIAL_DC")
}
