package config

import "time"

// ApplyDefaults fills every zero-valued field of cfg with a sensible
// default.  It is called after unmarshalling and before Validate, so a
// minimal config file only needs to name what it overrides.
func ApplyDefaults(cfg *Config) {
	// Server
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8084
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 10 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15 * time.Second
	}

	// Database
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "deadline"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "deadline_engine"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 30 * time.Minute
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 5 * time.Minute
	}
	if cfg.Database.MigrationPath == "" {
		cfg.Database.MigrationPath = "migrations"
	}

	// Redis (Addr intentionally left empty: Redis stays off unless asked for)
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = 10
	}
	if cfg.Redis.MinIdleConns == 0 {
		cfg.Redis.MinIdleConns = 2
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = 5 * time.Second
	}
	if cfg.Redis.ReadTimeout == 0 {
		cfg.Redis.ReadTimeout = 3 * time.Second
	}
	if cfg.Redis.WriteTimeout == 0 {
		cfg.Redis.WriteTimeout = 3 * time.Second
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = 15 * time.Minute
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = "deadline"
	}

	// Kafka (Brokers intentionally left empty: publishing stays off unless asked for)
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = "deadline.events"
	}
	if cfg.Kafka.BatchSize == 0 {
		cfg.Kafka.BatchSize = 100
	}
	if cfg.Kafka.BatchTimeout == 0 {
		cfg.Kafka.BatchTimeout = 100 * time.Millisecond
	}
	if cfg.Kafka.MaxRetries == 0 {
		cfg.Kafka.MaxRetries = 3
	}
	if cfg.Kafka.WriteTimeout == 0 {
		cfg.Kafka.WriteTimeout = 10 * time.Second
	}

	// Engine
	if cfg.Engine.DefaultJurisdiction == "" {
		cfg.Engine.DefaultJurisdiction = "EU"
	}
	if len(cfg.Engine.BusinessWeekdays) == 0 {
		cfg.Engine.BusinessWeekdays = []int{1, 2, 3, 4, 5} // Monday–Friday
	}
	if cfg.Engine.CalendarCacheYears == 0 {
		cfg.Engine.CalendarCacheYears = 5
	}
	if len(cfg.Engine.EarlyWarningDays) == 0 {
		cfg.Engine.EarlyWarningDays = []int{30, 14, 7, 3, 1}
	}
	if cfg.Engine.WeekendAdjustment == "" {
		cfg.Engine.WeekendAdjustment = "next_business_day"
	}
	if cfg.Engine.DueSoonWindowDays == 0 {
		cfg.Engine.DueSoonWindowDays = 3
	}
	if cfg.Engine.SweepInterval == 0 {
		cfg.Engine.SweepInterval = time.Hour
	}

	// Log
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if len(cfg.Log.OutputPaths) == 0 {
		cfg.Log.OutputPaths = []string{"stdout"}
	}
	if len(cfg.Log.ErrorOutputPaths) == 0 {
		cfg.Log.ErrorOutputPaths = []string{"stderr"}
	}
}

// Default returns a Config populated entirely with defaults.  Mainly useful
// for tests and for the seed command, which needs engine parameters without
// a config file.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
