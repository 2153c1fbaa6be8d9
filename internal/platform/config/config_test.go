package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "time/tzdata"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(newViper())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, time.Hour, cfg.Dispatch.Interval)
	assert.Equal(t, 4, cfg.Dispatch.Workers)
	assert.Equal(t, 15*time.Minute, cfg.Dispatch.ClaimTTL)
	assert.Equal(t, "pgx", cfg.Database.IndexDriver)
	assert.Empty(t, cfg.Kafka.Brokers)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Amsterdam", loc.String())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://signalering@db/signalering")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,kafka-1:9092")
	t.Setenv("SIGNALERING_INTERVAL", "30m")
	t.Setenv("SIGNALERING_WORKERS", "8")
	t.Setenv("SIGNALERING_TIMEZONE", "UTC")

	cfg, err := load(newViper())
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, cfg.Dispatch.Interval)
	assert.Equal(t, 8, cfg.Dispatch.Workers)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, cfg.Database.URL, cfg.Database.IndexURL, "index falls back to the main database")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Run("unknown timezone", func(t *testing.T) {
		t.Setenv("SIGNALERING_TIMEZONE", "Mars/Olympus")
		_, err := load(newViper())
		assert.Error(t, err)
	})
	t.Run("zero workers", func(t *testing.T) {
		t.Setenv("SIGNALERING_WORKERS", "0")
		_, err := load(newViper())
		assert.Error(t, err)
	})
}
