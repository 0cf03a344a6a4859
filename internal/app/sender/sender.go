// Package sender содержит приложение, которое читает очереди уведомлений и отправляет письма.
package sender

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/quickmarket/internal/config"
	"github.com/magabrotheeeer/quickmarket/internal/grpc/health"
	"github.com/magabrotheeeer/quickmarket/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/quickmarket/internal/lib/sl"
	"github.com/magabrotheeeer/quickmarket/internal/lib/smtp"
	senderservice "github.com/magabrotheeeer/quickmarket/internal/services/sender"
)

// App представляет приложение отправки писем.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.SenderService
	probe         *health.Server
	probeListener net.Listener
	logger        *slog.Logger
}

// New подключается к RabbitMQ и объявляет очереди уведомлений.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.NotificationQueues())
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	lis, err := net.Listen("tcp", cfg.Probe.GRPCAddress)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to listen for health probes: %w", err)
	}
	probe := health.New(logger, cfg.Probe.Interval, map[string]health.Checker{
		"rabbitmq": func(context.Context) error {
			if conn.IsClosed() {
				return errors.New("rabbitmq connection closed")
			}
			return nil
		},
	})

	transport := smtp.NewTransport(cfg.SMTP, logger)
	senderService := senderservice.NewSenderService(cfg.Frontend, logger, transport)

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderService,
		probe:         probe,
		probeListener: lis,
		logger:        logger,
	}, nil
}

// Run запускает потребителей всех очередей и ждёт отмены ctx.
func (a *App) Run(ctx context.Context) error {
	handlers := a.senderService.Handlers()
	consumers := make([]*rabbitmq.Consumer, 0, len(rabbitmq.NotificationQueues()))
	for _, q := range rabbitmq.NotificationQueues() {
		handler, ok := handlers[q.RoutingKey]
		if !ok {
			return fmt.Errorf("no handler for routing key %s", q.RoutingKey)
		}
		consumer, err := rabbitmq.ConsumerMessage(ctx, a.ch, q.QueueName, handler, a.logger)
		if err != nil {
			a.logger.Error("failed to start consumer", slog.String("queue", q.QueueName), sl.Err(err))
			return err
		}
		consumers = append(consumers, consumer)
		a.logger.Info("consumer started", slog.String("queue", q.QueueName))
	}

	probeErr := make(chan error, 1)
	go func() { probeErr <- a.probe.Serve(ctx, a.probeListener) }()

	<-ctx.Done()
	a.logger.Info("sender service shutting down gracefully")
	if err := <-probeErr; err != nil {
		a.logger.Error("health server stopped with error", sl.Err(err))
	}
	for _, c := range consumers {
		c.Wait()
	}

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	return nil
}
