package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Loader reads configuration from a YAML file and the environment and keeps
// the parsed Config available for hot reload.
type Loader struct {
	v   *viper.Viper
	mu  sync.RWMutex
	cfg *Config
}

// NewLoader builds a Loader bound to the given config file path.  path may
// be empty, in which case only defaults and environment variables apply.
//
// Environment variables override file values using the DEADLINE_ prefix with
// underscores for nesting, e.g. DEADLINE_DATABASE_HOST=db.internal.
func NewLoader(path string) *Loader {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	}
	v.SetEnvPrefix("DEADLINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	registerKeys(v)
	return &Loader{v: v}
}

// registerKeys declares every config key to viper so that environment
// overrides reach Unmarshal even when the key is absent from the file.
func registerKeys(v *viper.Viper) {
	keys := []string{
		"server.port", "server.read_timeout", "server.write_timeout", "server.shutdown_timeout",
		"database.host", "database.port", "database.user", "database.password",
		"database.db_name", "database.ssl_mode", "database.max_open_conns",
		"database.max_idle_conns", "database.conn_max_lifetime", "database.conn_max_idle_time",
		"database.migration_path",
		"redis.addr", "redis.password", "redis.db", "redis.pool_size", "redis.min_idle_conns",
		"redis.dial_timeout", "redis.read_timeout", "redis.write_timeout",
		"redis.default_ttl", "redis.key_prefix",
		"kafka.brokers", "kafka.topic", "kafka.batch_size", "kafka.batch_timeout",
		"kafka.max_retries", "kafka.write_timeout",
		"engine.default_jurisdiction", "engine.business_weekdays", "engine.calendar_cache_years",
		"engine.early_warning_days", "engine.weekend_adjustment", "engine.due_soon_window_days",
		"engine.auto_sweep", "engine.sweep_interval",
		"log.level", "log.format", "log.output_paths", "log.error_output_paths",
	}
	for _, k := range keys {
		v.SetDefault(k, nil)
	}
}

// Load parses the config file (when set), applies environment overrides and
// defaults, validates, and returns the resulting Config.
func (l *Loader) Load() (*Config, error) {
	if l.v.ConfigFileUsed() != "" {
		if err := l.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", l.v.ConfigFileUsed(), err)
		}
	}

	cfg := &Config{}
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshalling: %w", err)
	}
	ApplyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.cfg = cfg
	l.mu.Unlock()
	return cfg, nil
}

// Current returns the most recently loaded Config, or nil before Load.
func (l *Loader) Current() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cfg
}

// Watch re-reads the config file whenever it changes on disk and invokes
// onChange with the new Config.  Reload failures leave the previous Config
// in place and are reported through onError.  Watch is a no-op without a
// config file.
func (l *Loader) Watch(onChange func(*Config), onError func(error)) {
	if l.v.ConfigFileUsed() == "" {
		return
	}
	l.v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := l.Load()
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		if onChange != nil {
			onChange(cfg)
		}
	})
	l.v.WatchConfig()
}

// Load is a package-level convenience wrapping NewLoader(path).Load().
func Load(path string) (*Config, error) {
	return NewLoader(path).Load()
}
