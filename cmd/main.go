package main

import (
	"account-ledger/internal/api"
	"account-ledger/internal/api/middleware"
	"account-ledger/internal/config"
	"account-ledger/internal/domain/account"
	"account-ledger/internal/event"
	"account-ledger/internal/infrastructure/identity"
	"account-ledger/internal/infrastructure/logging"
	"account-ledger/internal/infrastructure/memory"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

// @title Account Ledger API
// @version 1.0
// @description In-memory customer accounts with an append-only statement of credits and debits.
// @description Every route except POST /account identifies the customer by the cpf header.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @BasePath /
func main() {
	cfg, logger := initializeApp()

	publisher, mqConn := initializePublisher(cfg.RabbitMQ, logger)
	defer closeConnection(mqConn, logger)

	redisClient := initializeRedisClient(cfg.Redis, logger)
	defer closeRedisClient(redisClient, logger)

	rateLimiter := initializeRateLimiter(cfg, redisClient, logger)
	defer rateLimiter.Stop()

	registry, accountService := initializeServices(cfg, publisher, logger)
	router := api.SetupRouter(accountService, registry, rateLimiter, cfg, logger)

	srv, serverErrors, shutdownChan := startServer(cfg, router, logger)
	handleShutdown(srv, shutdownChan, serverErrors, logger)
}

func initializeApp() (*config.Config, *slog.Logger) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.Logger)
	logger.Info("Application starting...", "port", cfg.Server.Port, "identity_header", cfg.Server.Identity.Header)

	return cfg, logger
}

// initializePublisher returns a RabbitMQ publisher when enabled, otherwise a
// publisher that drops every event. The connection is nil in the latter case.
func initializePublisher(cfg config.RabbitMQConfig, logger *slog.Logger) (event.EventPublisher, io.Closer) {
	if !cfg.Enabled {
		logger.Info("RabbitMQ disabled, account events will not be published")
		return event.NoopPublisher{}, nil
	}

	logger.Info("Connecting to RabbitMQ...", "host", cfg.Host, "port", cfg.Port)
	conn, err := amqp.Dial(cfg.URL())
	if err != nil {
		logger.Error("Failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}

	publisher, err := event.NewRabbitMQEventPublisher(conn, cfg.ExchangeName, logger)
	if err != nil {
		logger.Error("Failed to initialize RabbitMQ publisher", "error", err)
		_ = conn.Close()
		os.Exit(1)
	}
	return publisher, conn
}

func closeConnection(conn io.Closer, logger *slog.Logger) {
	if conn == nil {
		return
	}
	logger.Info("Closing RabbitMQ connection...")
	if err := conn.Close(); err != nil {
		logger.Warn("Failed to close RabbitMQ connection", "error", err)
	}
}

// initializeRedisClient returns nil when Redis is disabled.
func initializeRedisClient(cfg config.RedisConfig, logger *slog.Logger) *redis.Client {
	if !cfg.Enabled {
		logger.Info("Redis disabled, rate limits are tracked per process")
		return nil
	}

	logger.Info("Initializing Redis client...", "addr", cfg.Addr, "db", cfg.DB)
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", "error", err, "addr", cfg.Addr)
		_ = rdb.Close()
		os.Exit(1)
	}

	logger.Info("Redis client connected successfully.", "addr", cfg.Addr)
	return rdb
}

func closeRedisClient(rdb *redis.Client, logger *slog.Logger) {
	if rdb == nil {
		return
	}
	logger.Info("Closing Redis client connection...")
	if err := rdb.Close(); err != nil {
		logger.Error("Failed to close Redis client connection gracefully", "error", err)
	}
}

func initializeRateLimiter(cfg *config.Config, rdb *redis.Client, logger *slog.Logger) *middleware.RateLimiterMiddleware {
	var shared redis.Cmdable
	if rdb != nil {
		shared = rdb
	}
	return middleware.NewRateLimiterMiddleware(cfg.Server.RateLimit, shared, logger)
}

func initializeServices(cfg *config.Config, publisher event.EventPublisher, logger *slog.Logger) (*memory.CustomerRegistry, account.AccountService) {
	logger.Info("Initializing application components...")

	loc, err := cfg.Ledger.Location()
	if err != nil {
		logger.Warn("Invalid ledger time zone, falling back to local", "timeZone", cfg.Ledger.TimeZone, "error", err)
		loc = time.Local
	}

	registry := memory.NewCustomerRegistry(identity.NewUUIDSource(), logger)
	svc := account.NewAccountService(registry, logger,
		account.WithClock(account.SystemClock{}),
		account.WithLocation(loc),
		account.WithEventPublisher(publisher),
	)
	return registry, svc
}

func startServer(cfg *config.Config, router http.Handler, logger *slog.Logger) (*http.Server, <-chan error, <-chan os.Signal) {
	logger.Info("Setting up HTTP server...", "port", cfg.Server.Port)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("Server listening on port %d", cfg.Server.Port))
		err := srv.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			serverErrors <- err
		} else {
			logger.Info("Server closed gracefully.")
			serverErrors <- nil
		}
	}()
	return srv, serverErrors, shutdownChan
}

func handleShutdown(srv *http.Server, shutdownChan <-chan os.Signal, serverErrors <-chan error, logger *slog.Logger) {
	logger.Info("Shutdown handler started. Waiting for signal or server error...")

	select {
	case sig := <-shutdownChan:
		logger.Info("Shutdown signal received.", "signal", sig.String())
	case err := <-serverErrors:
		if err != nil {
			logger.Error("Server exited unexpectedly before signal", "error", err)
			os.Exit(1)
		}
		logger.Info("Server goroutine finished before signal.")
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	logger.Info("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", "error", err)
		if err := srv.Close(); err != nil {
			logger.Error("HTTP server forced close failed", "error", err)
		}
	} else {
		logger.Info("HTTP server gracefully stopped.")
	}

	select {
	case err := <-serverErrors:
		if err != nil {
			logger.Warn("Server goroutine exited with unexpected error after shutdown", "error", err)
		}
	case <-time.After(5 * time.Second):
		logger.Warn("Timed out waiting for server goroutine confirmation.")
	}

	logger.Info("Application shutdown process complete.")
}
