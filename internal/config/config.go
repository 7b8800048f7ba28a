// Package config loads worldctl settings from YAML with an environment
// overlay
package config

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/rpg-world/internal/errors"
	"github.com/KirkDiggler/rpg-world/internal/redis"
)

// EnvPrefix prefixes every environment variable read by Load
const EnvPrefix = "RPG_WORLD_"

// Config is the full application configuration
type Config struct {
	Redis     RedisConfig     `yaml:"redis" envPrefix:"REDIS_"`
	Engine    EngineConfig    `yaml:"engine" envPrefix:"ENGINE_"`
	Log       LogConfig       `yaml:"log" envPrefix:"LOG_"`
	Telemetry TelemetryConfig `yaml:"telemetry" envPrefix:"TELEMETRY_"`
}

// RedisConfig selects a single instance by Endpoint, or a sentinel group
// by SentinelMaster and SentinelAddrs
type RedisConfig struct {
	Endpoint        string        `yaml:"endpoint" env:"ENDPOINT"`
	SentinelMaster  string        `yaml:"sentinel_master" env:"SENTINEL_MASTER"`
	SentinelAddrs   []string      `yaml:"sentinel_addrs" env:"SENTINEL_ADDRS" envSeparator:","`
	DB              int           `yaml:"db" env:"DB"`
	Password        string        `yaml:"password" env:"PASSWORD"`
	UseTLS          bool          `yaml:"use_tls" env:"USE_TLS"`
	PoolSize        int           `yaml:"pool_size" env:"POOL_SIZE"`
	MinIdleConns    int           `yaml:"min_idle_conns" env:"MIN_IDLE_CONNS"`
	MaxRetries      int           `yaml:"max_retries" env:"MAX_RETRIES"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" env:"CONN_MAX_IDLE_TIME"`
}

// EngineConfig tunes the world engine
type EngineConfig struct {
	// MaxTxAttempts bounds retries of conflicting world transactions
	MaxTxAttempts    int `yaml:"max_tx_attempts" env:"MAX_TX_ATTEMPTS"`
	RecentEventLimit int `yaml:"recent_event_limit" env:"RECENT_EVENT_LIMIT"`
}

// LogConfig controls the default slog logger
type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

// TelemetryConfig controls OpenTelemetry providers
type TelemetryConfig struct {
	ServiceName   string `yaml:"service_name" env:"SERVICE_NAME"`
	EnableMetrics bool   `yaml:"enable_metrics" env:"ENABLE_METRICS"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Redis: RedisConfig{
			Endpoint:        "localhost:6379",
			PoolSize:        10,
			MinIdleConns:    2,
			MaxRetries:      3,
			ConnMaxIdleTime: 5 * time.Minute,
		},
		Engine: EngineConfig{
			MaxTxAttempts:    10,
			RecentEventLimit: 20,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "rpg-world",
		},
	}
}

// Load reads path over the defaults, applies the environment and
// validates. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read config %s", path)
		}
		if err := decode(bytes.NewReader(data), cfg); err != nil {
			return nil, err
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, errors.InvalidArgumentf("invalid environment: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromReader decodes YAML over the defaults without reading the
// environment
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := decode(r, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return errors.InvalidArgumentf("invalid config yaml: %v", err)
	}
	return nil
}

// Validate checks the configuration for values that cannot work
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Redis.Endpoint == "" && c.Redis.SentinelMaster == "" {
		vb.Field("redis.endpoint", "endpoint or sentinel_master is required")
	}
	if c.Redis.SentinelMaster != "" && len(c.Redis.SentinelAddrs) == 0 {
		vb.Field("redis.sentinel_addrs", "required with sentinel_master")
	}
	if c.Redis.PoolSize < 0 {
		vb.Field("redis.pool_size", "cannot be negative")
	}
	if c.Engine.MaxTxAttempts < 1 {
		vb.Field("engine.max_tx_attempts", "must be at least 1")
	}
	if c.Engine.RecentEventLimit < 1 {
		vb.Field("engine.recent_event_limit", "must be at least 1")
	}
	if _, ok := parseLevel(c.Log.Level); !ok {
		vb.Fieldf("log.level", "unknown level %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		vb.Fieldf("log.format", "unknown format %q", c.Log.Format)
	}

	return vb.Build()
}

// RedisClient connects to the configured redis
func (c *Config) RedisClient() (redis.Client, error) {
	opts := &redis.Options{
		PoolSize:        c.Redis.PoolSize,
		MinIdleConns:    c.Redis.MinIdleConns,
		ConnMaxIdleTime: c.Redis.ConnMaxIdleTime,
		MaxRetries:      c.Redis.MaxRetries,
		DB:              c.Redis.DB,
		Password:        c.Redis.Password,
		UseTLS:          c.Redis.UseTLS,
	}
	if c.Redis.SentinelMaster != "" {
		return redis.NewFailoverClient(c.Redis.SentinelMaster, c.Redis.SentinelAddrs, opts)
	}
	return redis.NewClient(c.Redis.Endpoint, opts)
}

// Logger builds a slog logger for the configured level and format
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.Log.Level)
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}
