package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads the YAML file at path, overlays APP_* environment variables and validates the result.
// A .env file in the working directory is loaded first when present; real env vars win over it.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	setDefaults(v)

	var config Config
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config file not found: %w", err)
	}
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks every section; the postgres section is only required when it is the storage driver.
func (c *Config) Validate() error {
	val := validator.New()
	sections := []any{&c.App, &c.Storage, &c.Redis, &c.Cache, &c.Stats}
	if c.Storage.Driver == "postgres" {
		sections = append(sections, &c.Postgres)
	}
	for _, s := range sections {
		if err := val.Struct(s); err != nil {
			return fmt.Errorf("config validation error: %w", err)
		}
	}
	if c.Cache.Backend == "redis" && c.Redis.URL == "" {
		return errors.New("config validation error: redis.url is required for the redis cache backend")
	}
	return nil
}

// setDefaults registers every key so AutomaticEnv can override keys absent from the file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "season-stats-service")
	v.SetDefault("app.env", "prod")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.request_timeout_ms", 10000)

	v.SetDefault("storage.driver", "postgres")

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.db", "")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 1)
	v.SetDefault("postgres.max_conn_lifetime_sec", 3600)
	v.SetDefault("postgres.max_conn_idle_time_sec", 300)
	v.SetDefault("postgres.health_check_period_sec", 30)
	v.SetDefault("postgres.auto_migrate", false)
	v.SetDefault("postgres.slow_query_ms", 200)

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "stats")

	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.ttl_seconds", 0)

	v.SetDefault("stats.lock_timeout_ms", 0)

	v.SetDefault("telemetry.enabled", true)
	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.otlp_insecure", false)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.season_check_spec", "5 0 * * *")
}
