// Package postgres manages the PostgreSQL connection pool and schema
// migrations.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"github.com/complyops/deadline-engine/internal/config"
	"github.com/complyops/deadline-engine/internal/infrastructure/monitoring/logging"
)

// Connection owns the database handle and its pool settings.
type Connection struct {
	db     *sql.DB
	cfg    config.DatabaseConfig
	logger logging.Logger
}

// NewConnection opens and pings a PostgreSQL connection.
func NewConnection(cfg config.DatabaseConfig, logger logging.Logger) (*Connection, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	db, err := sql.Open("postgres", buildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("postgres: opening connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: pinging %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	logger.Info("connected to postgres",
		logging.String("host", cfg.Host),
		logging.Int("port", cfg.Port),
		logging.String("database", cfg.DBName),
	)
	return &Connection{db: db, cfg: cfg, logger: logger}, nil
}

// NewConnectionWithDB wraps an existing handle; tests pass sqlmock handles
// through here.
func NewConnectionWithDB(db *sql.DB, logger logging.Logger) *Connection {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Connection{db: db, logger: logger}
}

func buildDSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
}

// DB exposes the underlying handle to the repositories.
func (c *Connection) DB() *sql.DB { return c.db }

// Close shuts the pool down.
func (c *Connection) Close() error { return c.db.Close() }

// HealthCheck pings the database with a short deadline.
func (c *Connection) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return c.db.PingContext(ctx)
}

// RunMigrations applies all pending migrations from the configured path.
func (c *Connection) RunMigrations() error {
	driver, err := postgres.WithInstance(c.db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("postgres: creating migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://"+c.cfg.MigrationPath, c.cfg.DBName, driver)
	if err != nil {
		return fmt.Errorf("postgres: initializing migrations: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("postgres: applying migrations: %w", err)
	}
	c.logger.Info("migrations applied", logging.String("path", c.cfg.MigrationPath))
	return nil
}
