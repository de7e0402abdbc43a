package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY="

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("ENCRYPTION_KEY", testKey)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, 5*time.Second, cfg.Storage.TxTimeout)
	assert.Equal(t, 30*time.Second, cfg.Matching.LockTTL)
	assert.Equal(t, 256, cfg.Audit.Buffer)
	assert.Equal(t, 1000, cfg.Audit.MemoryLimit)
	assert.Empty(t, cfg.Redis.URL)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, int32(-1), cfg.Kafka.AuditPartitions)
	assert.Equal(t, int16(-1), cfg.Kafka.AuditReplication)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("ENCRYPTION_KEY", testKey)
	t.Setenv("SANTA_ADDR", ":9090")
	t.Setenv("SANTA_STORAGE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://santa@localhost/santa")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,,k1:9092")
	t.Setenv("REDIS_POOL_SIZE", "20")
	t.Setenv("SANTA_TX_TIMEOUT", "2s")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 20, cfg.Redis.PoolSize)
	assert.Equal(t, 2*time.Second, cfg.Storage.TxTimeout)
}

func TestFromEnvRequiresEncryptionKey(t *testing.T) {
	t.Setenv("ENCRYPTION_KEY", "")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ENCRYPTION_KEY")
}

func TestValidate(t *testing.T) {
	t.Setenv("ENCRYPTION_KEY", testKey)

	t.Run("postgres without url", func(t *testing.T) {
		t.Setenv("SANTA_STORAGE_DRIVER", "postgres")
		_, err := FromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DATABASE_URL")
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("SANTA_STORAGE_DRIVER", "mongo")
		_, err := FromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mongo")
	})
}
