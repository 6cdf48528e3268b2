package main

import (
	"account-ledger/internal/config"
	"account-ledger/internal/event"
	"account-ledger/internal/infrastructure/logging"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestInitializeApp(t *testing.T) {
	t.Setenv("SERVER_PORT", "4444")

	cfg, log := initializeApp()

	require.NotNil(t, cfg)
	assert.NotNil(t, log)
	assert.Equal(t, 4444, cfg.Server.Port)
}

func TestInitializePublisher_Disabled(t *testing.T) {
	logger := logging.NewLogger(config.LoggerConfig{})

	pub, conn := initializePublisher(config.RabbitMQConfig{Enabled: false}, logger)

	assert.IsType(t, event.NoopPublisher{}, pub)
	assert.Nil(t, conn)
}

func TestInitializeRedisClient_Disabled(t *testing.T) {
	logger := logging.NewLogger(config.LoggerConfig{})

	rdb := initializeRedisClient(config.RedisConfig{Enabled: false}, logger)
	assert.Nil(t, rdb)
	closeRedisClient(rdb, logger)
}

func TestInitializeRateLimiter_InMemory(t *testing.T) {
	logger := logging.NewLogger(config.LoggerConfig{})
	cfg := &config.Config{Server: config.ServerConfig{
		RateLimit: config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 1},
	}}

	limiter := initializeRateLimiter(cfg, nil, logger)
	defer limiter.Stop()

	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestInitializeServices(t *testing.T) {
	logger := logging.NewLogger(config.LoggerConfig{})
	cfg := &config.Config{Ledger: config.LedgerConfig{TimeZone: "Nowhere/Invalid"}}

	registry, svc := initializeServices(cfg, event.NoopPublisher{}, logger)
	require.NotNil(t, registry)
	require.NotNil(t, svc)

	ctx := context.Background()
	cust, err := svc.OpenAccount(ctx, "111", "Ana")
	require.NoError(t, err)
	require.NoError(t, svc.Deposit(ctx, cust, decimal.NewFromInt(10), "first"))

	balance, err := svc.GetBalance(ctx, cust)
	require.NoError(t, err)
	assert.Equal(t, "10", balance.String())
	assert.Equal(t, 1, registry.Count(ctx))
}

func TestCloseConnection(t *testing.T) {
	logger := logging.NewLogger(config.LoggerConfig{})

	closed := false
	closeConnection(closerFunc(func() error { closed = true; return nil }), logger)
	assert.True(t, closed)

	closeConnection(closerFunc(func() error { return errors.New("already closed") }), logger)
	closeConnection(nil, logger)
}

func TestStartServer(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:         0,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
			IdleTimeout:  5 * time.Second,
		},
	}
	logger := logging.NewLogger(config.LoggerConfig{})

	srv, serverErrors, shutdownChan := startServer(cfg, http.NewServeMux(), logger)
	t.Cleanup(func() { _ = srv.Close() })

	assert.NotNil(t, srv)
	assert.NotNil(t, serverErrors)
	assert.NotNil(t, shutdownChan)
}

func TestHandleShutdown(t *testing.T) {
	logger := logging.NewLogger(config.LoggerConfig{})
	srv := &http.Server{}
	shutdownChan := make(chan os.Signal, 1)
	serverErrors := make(chan error, 1)

	shutdownChan <- syscall.SIGINT
	serverErrors <- nil

	done := make(chan struct{})
	go func() {
		handleShutdown(srv, shutdownChan, serverErrors, logger)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("shutdown did not complete")
	}
}
