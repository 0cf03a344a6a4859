package quickmarket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/quickmarket/internal/cache"
	"github.com/magabrotheeeer/quickmarket/internal/config"
	"github.com/magabrotheeeer/quickmarket/internal/lib/jwt"
	"github.com/magabrotheeeer/quickmarket/internal/lib/orderwindow"
	"github.com/magabrotheeeer/quickmarket/internal/lib/password"
	"github.com/magabrotheeeer/quickmarket/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/quickmarket/internal/lib/sl"
	"github.com/magabrotheeeer/quickmarket/internal/migrations"
	"github.com/magabrotheeeer/quickmarket/internal/oauth"
	"github.com/magabrotheeeer/quickmarket/internal/paymentprovider"
	authservice "github.com/magabrotheeeer/quickmarket/internal/services/auth"
	catalogservice "github.com/magabrotheeeer/quickmarket/internal/services/catalog"
	orderservice "github.com/magabrotheeeer/quickmarket/internal/services/order"
	paymentservice "github.com/magabrotheeeer/quickmarket/internal/services/payment"
	subservice "github.com/magabrotheeeer/quickmarket/internal/services/subscription"
	userservice "github.com/magabrotheeeer/quickmarket/internal/services/user"
	"github.com/magabrotheeeer/quickmarket/internal/storage/repository"
)

const shutdownTimeout = 15 * time.Second

// App: HTTP API вместе с открытыми соединениями.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New подключается к PostgreSQL, Redis и RabbitMQ, накатывает миграции и собирает роутер.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.Storage.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cache not initialized: %w", err)
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.NotificationQueues())
	if err != nil {
		_ = conn.Close()
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}
	publisher := rabbitmq.NewPublisher(ch)

	subscriptionService := subservice.NewSubscriptionService(db, cacheRedis, cfg.Cache.PackagesTTL, logger)
	services := Services{
		Auth: authservice.NewAuthService(
			db,
			jwt.NewJWTMaker(cfg.JWTToken.SecretKey, cfg.JWTToken.TokenTTL),
			password.NewHasher(password.DefaultCost),
			publisher,
			oauth.NewGoogle(cfg.GoogleOAuth),
			cfg.Frontend,
			logger,
		),
		Users:        userservice.NewUserService(db, logger),
		Subscription: subscriptionService,
		Catalog:      catalogservice.NewCatalogService(db, subscriptionService, cacheRedis, cfg.Cache.CategoriesTTL, logger),
		Orders:       orderservice.NewOrderService(db, subscriptionService, publisher, logger),
		Payments:     paymentservice.New(db, paymentprovider.NewClient(cfg.Paystack), cfg.Frontend.URL, logger),
		DB:           db,
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, services, Options{
		OrderWindow:  orderwindow.New(cfg.OrderWindow.Days, cfg.OrderWindowLocation()),
		RateRPS:      cfg.RateLimit.RPS,
		RateBurst:    cfg.RateLimit.Burst,
		ErrorDetails: !cfg.IsProduction(),
		SecureCookie: cfg.IsProduction(),
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
		conn:   conn,
		ch:     ch,
	}, nil
}

// Run запускает сервер и останавливает его при отмене ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err = a.server.Shutdown(timeoutCtx)
	}
	a.close()
	return err
}

func (a *App) close() {
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close cache", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
}
