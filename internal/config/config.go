// Package config defines all configuration structures for the deadline
// engine.  No I/O or parsing logic lives here, only plain data types and
// validation.
package config

import (
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds tunables for the ops HTTP surface (health, metrics).
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	MigrationPath   string        `mapstructure:"migration_path"`
}

// RedisConfig holds Redis connection parameters.  Redis is optional: an
// empty Addr disables the hot-deadline cache and the distributed sweep lock.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds event-producer parameters.  An empty Brokers list
// disables event publishing entirely.
type KafkaConfig struct {
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	BatchSize    int           `mapstructure:"batch_size"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	MaxRetries   int           `mapstructure:"max_retries"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// EngineConfig holds the deadline-calculation parameters.
type EngineConfig struct {
	// DefaultJurisdiction is used when a calculation request does not name
	// one.  Must be a supported jurisdiction code; "EU" by default.
	DefaultJurisdiction string `mapstructure:"default_jurisdiction"`

	// BusinessWeekdays is the weekly working-day mask as ISO weekday numbers
	// (1=Monday … 7=Sunday).  Defaults to Monday–Friday.
	BusinessWeekdays []int `mapstructure:"business_weekdays"`

	// CalendarCacheYears is the pre-warm horizon: calendars are built for
	// [current year − 1, current year + CalendarCacheYears).
	CalendarCacheYears int `mapstructure:"calendar_cache_years"`

	// EarlyWarningDays lists the days-before-deadline thresholds at which
	// warning events fire, each at most once per deadline.
	EarlyWarningDays []int `mapstructure:"early_warning_days"`

	// WeekendAdjustment selects the direction a deadline landing on a
	// non-business day is moved: "next_business_day" or
	// "previous_business_day".
	WeekendAdjustment string `mapstructure:"weekend_adjustment"`

	// DueSoonWindowDays is the days-remaining threshold at and below which an
	// upcoming deadline becomes DUE_SOON.
	DueSoonWindowDays int `mapstructure:"due_soon_window_days"`

	// AutoSweep enables the periodic status sweep.
	AutoSweep bool `mapstructure:"auto_sweep"`

	// SweepInterval is the period between status sweeps.
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level            string   `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format           string   `mapstructure:"format"` // "json" | "console"
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure for the engine process.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Log      LogConfig      `mapstructure:"log"`
}

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start the process.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}

	// Database
	if c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
	}
	if c.Database.User == "" {
		return fmt.Errorf("config: database.user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("config: database.db_name is required")
	}
	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("config: database.max_open_conns must be ≥ 1, got %d", c.Database.MaxOpenConns)
	}

	// Redis is optional; only validate when configured.
	if c.Redis.Addr != "" && c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be ≥ 0, got %d", c.Redis.DB)
	}

	// Kafka is optional; only validate when configured.
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return fmt.Errorf("config: kafka.topic is required when brokers are set")
	}

	// Engine
	if c.Engine.DefaultJurisdiction == "" {
		return fmt.Errorf("config: engine.default_jurisdiction is required")
	}
	if len(c.Engine.BusinessWeekdays) == 0 {
		return fmt.Errorf("config: engine.business_weekdays must contain at least one weekday")
	}
	for _, wd := range c.Engine.BusinessWeekdays {
		if wd < 1 || wd > 7 {
			return fmt.Errorf("config: engine.business_weekdays entry %d is out of range [1, 7]", wd)
		}
	}
	if c.Engine.CalendarCacheYears < 1 {
		return fmt.Errorf("config: engine.calendar_cache_years must be ≥ 1, got %d", c.Engine.CalendarCacheYears)
	}
	switch c.Engine.WeekendAdjustment {
	case "next_business_day", "previous_business_day":
	default:
		return fmt.Errorf("config: engine.weekend_adjustment %q is invalid; expected next_business_day|previous_business_day",
			c.Engine.WeekendAdjustment)
	}
	if c.Engine.DueSoonWindowDays < 0 {
		return fmt.Errorf("config: engine.due_soon_window_days must be ≥ 0, got %d", c.Engine.DueSoonWindowDays)
	}
	for _, d := range c.Engine.EarlyWarningDays {
		if d < 0 {
			return fmt.Errorf("config: engine.early_warning_days entry %d must be ≥ 0", d)
		}
	}
	if c.Engine.AutoSweep && c.Engine.SweepInterval <= 0 {
		return fmt.Errorf("config: engine.sweep_interval must be positive when auto_sweep is enabled")
	}

	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}
