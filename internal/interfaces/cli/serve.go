package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/complyops/deadline-engine/internal/config"
	"github.com/complyops/deadline-engine/internal/domain/calendar"
	"github.com/complyops/deadline-engine/internal/domain/deadline"
	"github.com/complyops/deadline-engine/internal/infrastructure/database/postgres"
	"github.com/complyops/deadline-engine/internal/infrastructure/database/postgres/repositories"
	redisdb "github.com/complyops/deadline-engine/internal/infrastructure/database/redis"
	"github.com/complyops/deadline-engine/internal/infrastructure/messaging/kafka"
	"github.com/complyops/deadline-engine/internal/infrastructure/monitoring/logging"
	"github.com/complyops/deadline-engine/internal/infrastructure/monitoring/prometheus"
	httpserver "github.com/complyops/deadline-engine/internal/interfaces/http"
	"github.com/complyops/deadline-engine/internal/interfaces/http/handlers"
	"github.com/complyops/deadline-engine/internal/interfaces/http/middleware"
)

func newServeCmd(opts *RootOptions) *cobra.Command {
	var migrateFirst bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the status monitor and the ops HTTP surface",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime(opts)
			if err != nil {
				return err
			}
			return runServe(cfg, logger, migrateFirst)
		},
	}
	cmd.Flags().BoolVar(&migrateFirst, "migrate", false, "apply pending schema migrations before serving")
	return cmd
}

func runServe(cfg *config.Config, logger logging.Logger, migrateFirst bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting deadline engine",
		logging.String("version", Version),
		logging.Int("port", cfg.Server.Port),
	)

	// Postgres
	conn, err := postgres.NewConnection(cfg.Database, logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	if migrateFirst {
		if err := conn.RunMigrations(); err != nil {
			return err
		}
	}

	ruleRepo := repositories.NewPostgresRuleRepo(conn, logger)
	if seeded, err := ruleRepo.SeedDefaultsIfEmpty(ctx); err != nil {
		return err
	} else if seeded > 0 {
		logger.Info("default rules seeded", logging.Int("count", seeded))
	}

	var deadlineRepo deadline.DeadlineRepository = repositories.NewPostgresDeadlineRepo(conn, logger)

	checkers := []handlers.HealthChecker{
		handlers.CheckerFunc{ComponentName: "postgres", CheckFunc: conn.HealthCheck},
	}

	// Redis is optional: without it the engine runs uncached and sweeps
	// without cross-replica locking.
	var locker deadline.SweepLocker
	if cfg.Redis.Addr != "" {
		rdb, err := redisdb.NewClient(cfg.Redis, logger)
		if err != nil {
			return err
		}
		defer rdb.Close()

		cache := redisdb.NewRedisCache(rdb, logger,
			redisdb.WithPrefix(cfg.Redis.KeyPrefix+":"),
			redisdb.WithDefaultTTL(cfg.Redis.DefaultTTL),
		)
		deadlineRepo = redisdb.NewCachedDeadlineRepository(deadlineRepo, cache, logger, cfg.Redis.DefaultTTL)
		locker = redisdb.NewSweepLock(rdb, logger, cfg.Redis.KeyPrefix+":lock:sweep", cfg.Engine.SweepInterval)
		checkers = append(checkers, handlers.CheckerFunc{ComponentName: "redis", CheckFunc: rdb.HealthCheck})
	} else {
		logger.Info("Redis not configured, running without cache or sweep lock")
	}

	// Kafka is optional: without brokers, events are discarded.
	var publisher deadline.EventPublisher = deadline.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafka.NewEventPublisher(cfg.Kafka, logger)
		if err != nil {
			return err
		}
		defer producer.Close()
		publisher = producer
	} else {
		logger.Info("Kafka not configured, deadline events will be discarded")
	}

	// Metrics
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            "deadline_engine",
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, logger)
	if err != nil {
		return err
	}
	engineMetrics := prometheus.NewEngineMetrics(collector)

	// Holiday calendars
	builder, err := calendar.NewBuilder(cfg.Engine.BusinessWeekdays)
	if err != nil {
		return err
	}
	calCache := calendar.NewCache(builder, logger)
	calCache.Prewarm(time.Now().UTC().Year(), cfg.Engine.CalendarCacheYears)
	arith := calendar.NewArithmetic(calCache)

	// Status monitor
	monitor := deadline.NewStatusMonitor(deadlineRepo, arith, locker, publisher, engineMetrics, logger, deadline.MonitorConfig{
		Interval:          cfg.Engine.SweepInterval,
		DueSoonWindowDays: cfg.Engine.DueSoonWindowDays,
		EarlyWarningDays:  cfg.Engine.EarlyWarningDays,
	})
	if cfg.Engine.AutoSweep {
		go monitor.Run(ctx)
	} else {
		logger.Info("auto sweep disabled")
	}

	// Ops HTTP surface
	router := httpserver.NewRouter(httpserver.RouterConfig{
		HealthHandler:    handlers.NewHealthHandler(Version, checkers...),
		StatsHandler:     handlers.NewStatsHandler(engineMetrics, calCache),
		Logger:           logger,
		LoggingConfig:    middleware.DefaultLoggingConfig(),
		MetricsCollector: collector,
	})
	server := httpserver.NewServer(cfg.Server.Port, router, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Stop(shutdownCtx)
}
