package config

import (
	"github.com/maxviazov/season-stats-service/internal/logger"
)

// Config is the root application configuration, populated by Load from YAML and APP_* env vars.
type Config struct {
	App       AppConfig           `mapstructure:"app"`
	Logger    logger.LoggerConfig `mapstructure:"logger"`
	Storage   StorageConfig       `mapstructure:"storage"`
	Postgres  PostgresConfig      `mapstructure:"postgres"`
	Redis     RedisConfig         `mapstructure:"redis"`
	Cache     CacheConfig         `mapstructure:"cache"`
	Stats     StatsConfig         `mapstructure:"stats"`
	Telemetry TelemetryConfig     `mapstructure:"telemetry"`
	Scheduler SchedulerConfig     `mapstructure:"scheduler"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env" validate:"oneof=dev staging prod"`
	Port int    `mapstructure:"port" validate:"gte=1,lte=65535"`
	// RequestTimeoutMs bounds every HTTP handler; zero disables the deadline.
	RequestTimeoutMs int `mapstructure:"request_timeout_ms" validate:"gte=0"`
}

type StorageConfig struct {
	// Driver selects the repository implementation: postgres in every real deployment,
	// memory for local runs and demos.
	Driver string `mapstructure:"driver" validate:"oneof=postgres memory"`
}

type PostgresConfig struct {
	Host              string `mapstructure:"host" validate:"required"`
	Port              int    `mapstructure:"port" validate:"gte=1,lte=65535"`
	User              string `mapstructure:"user" validate:"required"`
	Password          string `mapstructure:"password" validate:"required"`
	DBName            string `mapstructure:"db" validate:"required"`
	SSLMode           string `mapstructure:"sslmode"`
	MaxConns          int32  `mapstructure:"max_conns" validate:"gte=1"`
	MinConns          int32  `mapstructure:"min_conns" validate:"gte=0"`
	MaxConnLifetime   int    `mapstructure:"max_conn_lifetime_sec"`
	MaxConnIdleTime   int    `mapstructure:"max_conn_idle_time_sec"`
	HealthCheckPeriod int    `mapstructure:"health_check_period_sec"`
	SlowQueryMs       int    `mapstructure:"slow_query_ms" validate:"gte=0"`
	AutoMigrate       bool   `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	URL       string `mapstructure:"url"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db" validate:"gte=0"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type CacheConfig struct {
	Backend    string `mapstructure:"backend" validate:"oneof=redis memory"`
	TTLSeconds int    `mapstructure:"ttl_seconds" validate:"gte=0"`
}

type StatsConfig struct {
	// LockTimeoutMs bounds the wait for the stats lock; zero blocks until the lock is free.
	LockTimeoutMs int `mapstructure:"lock_timeout_ms" validate:"gte=0"`
}

type TelemetryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	OtlpEndpoint string `mapstructure:"otlp_endpoint"`
	OtlpInsecure bool   `mapstructure:"otlp_insecure"`
}

type SchedulerConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	SeasonCheckSpec string `mapstructure:"season_check_spec"`
}
