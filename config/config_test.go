package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := New()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestNewDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 100*time.Millisecond, cfg.Redis.AcquireTimeout)
	assert.Equal(t, 500, cfg.Services.TraderPoolSize)
	assert.Equal(t, 100, cfg.Services.RequisitesPoolSize)
	assert.Equal(t, "trader_change_balance", cfg.Kafka.Topic)
	assert.Equal(t, 8, cfg.Workers.Count)
	assert.Equal(t, 100, cfg.Workers.QueueSize)
}

func TestNewOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092")
	t.Setenv("WORKER_COUNT", "4")
	t.Setenv("DB_CONN_MAX_LIFETIME", "1m")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 4, cfg.Workers.Count)
	assert.Equal(t, time.Minute, cfg.Database.ConnMaxLifetime)
}

func TestDSN(t *testing.T) {
	t.Run("individual fields", func(t *testing.T) {
		db := DatabaseConfig{
			Host: "db", Port: 5432, User: "u", Password: "p",
			Database: "payments", SSLMode: "disable",
		}
		assert.Equal(t, "host=db port=5432 user=u password=p dbname=payments sslmode=disable", db.DSN())
	})

	t.Run("connection string wins", func(t *testing.T) {
		db := DatabaseConfig{
			ConnectionString: "postgres://u:p@db:5432/payments",
			Host:             "ignored",
		}
		assert.Equal(t, "postgres://u:p@db:5432/payments", db.DSN())
	})
}

func TestLogStringRedactsPassword(t *testing.T) {
	db := DatabaseConfig{ConnectionString: "postgres://user:hunter2@db:5432/payments"}
	assert.NotContains(t, db.LogString(), "hunter2")
}

func TestValidateBounds(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("WORKER_COUNT", "-1")
	_, err := New()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "worker count")
}
