package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/charlesng35/usercache/pkg/validator"
)

// Config represents the runtime configuration of the user cache service.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Monitoring  MonitoringConfig  `mapstructure:"monitoring"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	LogLevel        string        `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
	LogFormat       string        `mapstructure:"log_format" validate:"omitempty,oneof=json console"`
	TemplatesDir    string        `mapstructure:"templates_dir" validate:"required"`
	PublicDir       string        `mapstructure:"public_dir" validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gte=0"`
}

// DatabaseConfig describes the connection to the users database.
type DatabaseConfig struct {
	Driver          string            `mapstructure:"driver" validate:"oneof=postgres postgresql mysql sqlite"`
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port" validate:"min=0,max=65535"`
	Name            string            `mapstructure:"name"`
	User            string            `mapstructure:"user"`
	Password        string            `mapstructure:"password"`
	DSN             string            `mapstructure:"dsn"`
	Path            string            `mapstructure:"path"`
	Options         map[string]string `mapstructure:"options"`
	MaxOpenConns    int               `mapstructure:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration     `mapstructure:"conn_max_lifetime" validate:"gte=0"`
}

// CacheConfig selects and tunes the cache backend.
type CacheConfig struct {
	Driver   string            `mapstructure:"driver" validate:"oneof=redis memory database"`
	UsersTTL time.Duration     `mapstructure:"users_ttl" validate:"gt=0"`
	Redis    RedisCacheConfig  `mapstructure:"redis"`
	Memory   MemoryCacheConfig `mapstructure:"memory"`
}

// RedisCacheConfig holds Redis connection options.
type RedisCacheConfig struct {
	Host      string        `mapstructure:"host"`
	Port      int           `mapstructure:"port" validate:"min=1,max=65535"`
	Username  string        `mapstructure:"username"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db" validate:"gte=0"`
	TLS       bool          `mapstructure:"tls"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"gte=0"`
	KeyPrefix string        `mapstructure:"key_prefix"`
}

// MemoryCacheConfig tunes the in-process cache.
type MemoryCacheConfig struct {
	Capacity uint64 `mapstructure:"capacity"`
}

// MonitoringConfig enables health checks and metrics.
type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
	Health     HealthConfig     `mapstructure:"health_check"`
}

// PrometheusConfig toggles metrics endpoints.
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint" validate:"omitempty,startswith=/"`
}

// HealthConfig toggles the readiness endpoint.
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// MaintenanceConfig schedules background jobs.
type MaintenanceConfig struct {
	CacheCleanupSchedule string `mapstructure:"cache_cleanup_schedule"`
}

// legacyEnv lists the unprefixed variable names accepted for each key.
var legacyEnv = map[string]string{
	"server.port":       "PORT",
	"database.host":     "DB_HOST",
	"database.port":     "DB_PORT",
	"database.name":     "DB_NAME",
	"database.user":     "DB_USER",
	"database.password": "DB_PASSWORD",
	"cache.redis.host":  "REDIS_HOST",
	"cache.redis.port":  "REDIS_PORT",
}

const envPrefix = "USERCACHE"

// LoadConfig builds the configuration from defaults, an optional config.yaml
// and the environment. A path may name a directory to search or a file.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		if path == "" {
			continue
		}
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			v.SetConfigFile(path)
			v.SetConfigType(strings.TrimPrefix(filepath.Ext(path), "."))
			continue
		}
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		prefixed := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, fmt.Errorf("config: bind env %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	return &config, nil
}

// ValidateConfig reports every invalid setting in cfg.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil configuration")
	}
	if err := validator.ValidateStruct(cfg); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	db := cfg.Database
	switch strings.ToLower(db.Driver) {
	case "postgres", "postgresql", "mysql":
		if strings.TrimSpace(db.DSN) == "" && (strings.TrimSpace(db.Name) == "" || strings.TrimSpace(db.User) == "") {
			return errors.New("config: database.name and database.user are required unless database.dsn is set")
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "json")
	v.SetDefault("server.templates_dir", "templates")
	v.SetDefault("server.public_dir", "public")
	v.SetDefault("server.shutdown_timeout", "15s")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.path", "./data/usercache.sqlite")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")

	v.SetDefault("cache.driver", "redis")
	v.SetDefault("cache.users_ttl", "60s")
	v.SetDefault("cache.redis.host", "localhost")
	v.SetDefault("cache.redis.port", 6379)
	v.SetDefault("cache.redis.username", "")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.tls", false)
	v.SetDefault("cache.redis.timeout", "5s")
	v.SetDefault("cache.redis.key_prefix", "")
	v.SetDefault("cache.memory.capacity", 1024)

	v.SetDefault("monitoring.prometheus.enabled", true)
	v.SetDefault("monitoring.prometheus.endpoint", "/metrics")
	v.SetDefault("monitoring.health_check.enabled", true)

	v.SetDefault("maintenance.cache_cleanup_schedule", "@every 5m")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
