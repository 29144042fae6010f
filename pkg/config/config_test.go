package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr())
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, []string{"propale.co"}, cfg.Redirect.LegacyHosts)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled())
	assert.False(t, cfg.Storage.Enabled())
	assert.Equal(t, time.Hour, cfg.Storage.PresignTTL())
	assert.Equal(t, "*/10 * * * *", cfg.Housekeeping.Schedule)
	assert.Equal(t, 2*time.Hour, cfg.Housekeeping.DraftMaxIdle())
}

func TestDatabaseConfig_URL(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "propale", Password: "p@ss", Name: "propale", SSLMode: "disable"}

	assert.Equal(t, "postgres://propale:p%40ss@db:5432/propale?sslmode=disable", d.URL())
	assert.Contains(t, d.DSN(), "dbname=propale")
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b "))
}
