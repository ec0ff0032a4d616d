package bootstrap

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("CONFIG_FILE", path)
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Infra.Kafka.Brokers)
	assert.Equal(t, "trip-notifications", cfg.Infra.Kafka.Topics.TripNotifications)
	assert.Equal(t, Duration(10*time.Second), cfg.Travel.BookingTimeout)
	assert.Empty(t, cfg.Infra.Zookeeper.Servers)
}

func TestLoadConfigParsesDurationString(t *testing.T) {
	writeConfigFile(t, `
travel:
  booking_timeout: 30s
  policy_expression: "passengerCount <= 4"
`)

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, Duration(30*time.Second), cfg.Travel.BookingTimeout)
	assert.Equal(t, "passengerCount <= 4", cfg.Travel.PolicyExpression)
}

func TestLoadConfigRejectsBadDuration(t *testing.T) {
	writeConfigFile(t, `
travel:
  booking_timeout: soon
`)

	_, err := loadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "soon")
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	writeConfigFile(t, `
infra:
  redis:
    addr: file-redis:6379
travel:
  booking_timeout: 30s
`)
	t.Setenv("REDIS_ADDR", "env-redis:6379")
	t.Setenv("BOOKING_TIMEOUT", "5s")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("HIGH_DEMAND_COMMODITIES", "7, 9")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "env-redis:6379", cfg.Infra.Redis.Addr)
	assert.Equal(t, Duration(5*time.Second), cfg.Travel.BookingTimeout)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Infra.Kafka.Brokers)
	assert.Equal(t, []int64{7, 9}, cfg.Travel.HighDemandCommodities)
}
