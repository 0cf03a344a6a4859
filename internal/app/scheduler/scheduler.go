// Package scheduler содержит приложение планировщика: cron‑задачи над подписками.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/quickmarket/internal/cache"
	"github.com/magabrotheeeer/quickmarket/internal/config"
	"github.com/magabrotheeeer/quickmarket/internal/grpc/health"
	"github.com/magabrotheeeer/quickmarket/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/quickmarket/internal/lib/sl"
	schedulerservice "github.com/magabrotheeeer/quickmarket/internal/services/scheduler"
	"github.com/magabrotheeeer/quickmarket/internal/storage/repository"
)

const (
	dbRetries    = 10
	dbRetryDelay = 3 * time.Second
)

// App представляет приложение планировщика.
type App struct {
	schedulerService *schedulerservice.SchedulerService
	cron             *cron.Cron
	probe            *health.Server
	probeListener    net.Listener
	db               *repository.Storage
	cache            *cache.Cache
	conn             *amqp.Connection
	ch               *amqp.Channel
	logger           *slog.Logger
}

func waitForDB(ctx context.Context, cfg config.Storage) (*repository.Storage, error) {
	var lastErr error
	for range dbRetries {
		db, err := repository.New(ctx, cfg)
		if err == nil {
			return db, nil
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(dbRetryDelay):
		}
	}
	return nil, fmt.Errorf("database not ready after retries: %w", lastErr)
}

// New создает новый экземпляр приложения планировщика.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.NotificationQueues())
	if err != nil {
		closeResources(nil, conn, logger)
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	db, err := waitForDB(ctx, cfg.Storage)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("cache not initialized: %w", err)
	}

	lis, err := net.Listen("tcp", cfg.Probe.GRPCAddress)
	if err != nil {
		_ = cacheRedis.Close()
		_ = db.Close()
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("failed to listen for health probes: %w", err)
	}
	probe := health.New(logger, cfg.Probe.Interval, map[string]health.Checker{
		"storage": db.Ping,
		"cache":   cacheRedis.Ping,
	})

	schedulerService := schedulerservice.NewSchedulerService(
		db,
		rabbitmq.NewPublisher(ch),
		schedulerservice.NewRedisLocker(cacheRedis.Db, cfg.Scheduler.LockTTL),
		cfg.Scheduler.ReminderDays,
		logger,
	)

	return &App{
		schedulerService: schedulerService,
		cron:             cron.New(cron.WithSeconds()),
		probe:            probe,
		probeListener:    lis,
		db:               db,
		cache:            cacheRedis,
		conn:             conn,
		ch:               ch,
		logger:           logger,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", sl.Err(err))
		}
	}
}

// Register добавляет задачи в расписание.
func (a *App) Register(ctx context.Context, cfg config.Scheduler) error {
	if _, err := a.cron.AddFunc(cfg.ExpireSpec, func() { a.schedulerService.RunExpire(ctx) }); err != nil {
		return fmt.Errorf("invalid expire schedule %q: %w", cfg.ExpireSpec, err)
	}
	if _, err := a.cron.AddFunc(cfg.ReminderSpec, func() { a.schedulerService.RunReminders(ctx) }); err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", cfg.ReminderSpec, err)
	}
	return nil
}

// Run запускает планировщик и ждёт отмены ctx. Запущенные задачи дорабатывают до конца.
func (a *App) Run(ctx context.Context) error {
	probeErr := make(chan error, 1)
	go func() { probeErr <- a.probe.Serve(ctx, a.probeListener) }()

	a.cron.Start()
	a.logger.Info("scheduler started", slog.Int("jobs", len(a.cron.Entries())))

	<-ctx.Done()
	if err := <-probeErr; err != nil {
		a.logger.Error("health server stopped with error", sl.Err(err))
	}

	a.logger.Info("shutting down scheduler service")
	<-a.cron.Stop().Done()

	closeResources(a.ch, a.conn, a.logger)
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close cache", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
	return nil
}
