package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"APP_ENV", "STORAGE_MODE", "CACHE_MODE", "KAFKA_BROKERS", "SWEEP_INTERVAL", "SWEEP_ON_START", "FETCH_PACING", "RETRY_BACKOFF", "CURRENCY"} {
		t.Setenv(key, "")
	}
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "dev", cfg.Env)
	require.Equal(t, StorageMemory, cfg.StorageMode)
	require.Equal(t, CacheMemory, cfg.CacheMode)
	require.Empty(t, cfg.KafkaBrokers)
	require.Equal(t, time.Hour, cfg.SweepInterval)
	require.True(t, cfg.SweepOnStart)
	require.Equal(t, 5*time.Second, cfg.FetchPacing)
	require.Equal(t, 24*time.Hour, cfg.QuoteValidity)
	require.Equal(t, []time.Duration{time.Second, 5 * time.Second, 30 * time.Second}, cfg.RetryBackoff)
	require.Equal(t, "USD", cfg.Currency)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORAGE_MODE", "MONGO")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("CACHE_MODE", "redis")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("SWEEP_ON_START", "off")
	t.Setenv("FETCH_PACING", "0s")
	t.Setenv("RETRY_BACKOFF", "2s, 10s")
	t.Setenv("CURRENCY", "eur")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, StorageMongo, cfg.StorageMode)
	require.Equal(t, CacheRedis, cfg.CacheMode)
	require.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	require.False(t, cfg.SweepOnStart)
	require.Zero(t, cfg.FetchPacing)
	require.Equal(t, []time.Duration{2 * time.Second, 10 * time.Second}, cfg.RetryBackoff)
	require.Equal(t, "EUR", cfg.Currency)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"mongo without uri": {"STORAGE_MODE": "mongo", "MONGO_URI": ""},
		"unknown storage":   {"STORAGE_MODE": "postgres"},
		"unknown cache":     {"CACHE_MODE": "memcached"},
		"zero workers":      {"FETCH_WORKERS": "0"},
		"bad duration":      {"SWEEP_INTERVAL": "hourly"},
		"zero interval":     {"SWEEP_INTERVAL": "0s"},
		"bad bool":          {"SWEEP_ON_START": "maybe"},
		"bad backoff":       {"RETRY_BACKOFF": "1s,soon"},
		"bad redis db":      {"REDIS_DB": "one"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
		})
	}
}
