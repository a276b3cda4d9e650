package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "HTTP_ADDR", "STORAGE_MODE", "MONGO_URI", "MONGO_DB", "KAFKA_BROKERS",
		"KAFKA_TOPIC_PREFIX", "KAFKA_RATES_TOPIC", "KAFKA_GROUP_ID", "IDEMP_TTL",
		"OUTBOX_POLL_INTERVAL", "RETRY_BACKOFF", "ARS_PER_USD", "RATE_TTL", "S3_USE_SSL",
		"S3_ENDPOINT", "S3_PUBLIC_ENDPOINT", "REPORT_EXPORT_ENABLED",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.StorageMode)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "rates.events.v1", cfg.KafkaRatesTopic)
	assert.Equal(t, []time.Duration{time.Second, 5 * time.Second, 30 * time.Second}, cfg.RetryBackoff)
	assert.False(t, cfg.ARSPerUSD.Valid)
	assert.Equal(t, cfg.S3Endpoint, cfg.S3PublicEndpoint)
}

func TestLoadParsesRateAndBrokers(t *testing.T) {
	clearEnv(t)
	t.Setenv("ARS_PER_USD", "1050.5")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("STORAGE_MODE", "MONGO")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	require.True(t, cfg.ARSPerUSD.Valid)
	assert.Equal(t, "1050.5", cfg.ARSPerUSD.Decimal.String())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, StorageMongo, cfg.StorageMode)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string][2]string{
		"negative rate":   {"ARS_PER_USD", "-3"},
		"garbage rate":    {"ARS_PER_USD", "abc"},
		"bad duration":    {"RATE_TTL", "soon"},
		"bad bool":        {"S3_USE_SSL", "maybe"},
		"unknown storage": {"STORAGE_MODE", "sqlite"},
		"mongo w/o uri":   {"STORAGE_MODE", "mongo"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(kv[0], kv[1])
			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			require.Error(t, err)
		})
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("HTTP_ADDR")
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("HTTP_ADDR=:9999\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.HTTPAddr)
}
