package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	pstrings "secretsanta/pkg/platform/strings"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Server captures process level configuration.
type Server struct {
	Addr      string `env:"SANTA_ADDR" envDefault:":8080"`
	LogLevel  string `env:"SANTA_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"SANTA_LOG_FORMAT" envDefault:"json"`
	// EncryptionKey is the base64 AES-256 key for personal fields.
	EncryptionKey string `env:"ENCRYPTION_KEY,required,notEmpty"`

	Storage  StorageConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Matching MatchingConfig
	Audit    AuditConfig
}

type StorageConfig struct {
	Driver      string        `env:"SANTA_STORAGE_DRIVER" envDefault:"memory"`
	SQLitePath  string        `env:"SANTA_SQLITE_PATH" envDefault:"secretsanta.db"`
	DatabaseURL string        `env:"DATABASE_URL"`
	TxTimeout   time.Duration `env:"SANTA_TX_TIMEOUT" envDefault:"5s"`
}

// RedisConfig is optional; an empty URL disables Redis.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// KafkaConfig is optional; no brokers keeps audit events in memory.
type KafkaConfig struct {
	Brokers    []string `env:"KAFKA_BROKERS" envSeparator:","`
	AuditTopic string   `env:"KAFKA_AUDIT_TOPIC" envDefault:"secretsanta.audit"`

	// -1 leaves the value to the broker.
	AuditPartitions  int32 `env:"KAFKA_AUDIT_PARTITIONS" envDefault:"-1"`
	AuditReplication int16 `env:"KAFKA_AUDIT_REPLICATION" envDefault:"-1"`
}

type MatchingConfig struct {
	LockTTL time.Duration `env:"SANTA_MATCH_LOCK_TTL" envDefault:"30s"`
}

type AuditConfig struct {
	// Buffer is the async audit queue size; 0 emits synchronously.
	Buffer int `env:"SANTA_AUDIT_BUFFER" envDefault:"256"`

	// MemoryLimit caps events kept per activity when Kafka is not configured.
	MemoryLimit int `env:"SANTA_AUDIT_MEMORY_LIMIT" envDefault:"1000"`
}

// FromEnv parses and validates configuration from the environment.
func FromEnv() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Kafka.Brokers = pstrings.DedupeAndTrim(cfg.Kafka.Brokers)
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints env tags cannot express.
func (c Server) Validate() error {
	var errs []error
	switch c.Storage.Driver {
	case DriverMemory, DriverSQLite:
	case DriverPostgres:
		if strings.TrimSpace(c.Storage.DatabaseURL) == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown SANTA_STORAGE_DRIVER %q", c.Storage.Driver))
	}
	if c.Storage.TxTimeout <= 0 {
		errs = append(errs, errors.New("SANTA_TX_TIMEOUT must be positive"))
	}
	if c.Matching.LockTTL <= 0 {
		errs = append(errs, errors.New("SANTA_MATCH_LOCK_TTL must be positive"))
	}
	if c.Audit.Buffer < 0 {
		errs = append(errs, errors.New("SANTA_AUDIT_BUFFER must not be negative"))
	}
	return errors.Join(errs...)
}
