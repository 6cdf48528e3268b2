package api

import (
	_ "account-ledger/docs"
	"account-ledger/internal/api/handler"
	mw "account-ledger/internal/api/middleware"
	"account-ledger/internal/config"
	"account-ledger/internal/domain/account"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/traceid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

const requestTimeout = 60 * time.Second

func SetupRouter(accountService account.AccountService, finder mw.CustomerFinder, rateLimiter *mw.RateLimiterMiddleware, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	router := chi.NewRouter()

	setupMiddleware(router, rateLimiter, logger)
	setupMetricsEndpoint(router, cfg, logger)
	setupSwaggerEndpoint(router, logger)
	setupAccountRoutes(router, accountService, finder, cfg, logger)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	return router
}

func setupMiddleware(router *chi.Mux, rateLimiter *mw.RateLimiterMiddleware, logger *slog.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(traceid.Middleware)
	router.Use(mw.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(requestTimeout))
	router.Use(rateLimiter.Middleware)
	router.Use(mw.MetricsMiddleware())
}

func setupMetricsEndpoint(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	logger.Info("Setting up Prometheus metrics endpoint", "path", metricsPath)
	router.Handle(metricsPath, promhttp.Handler())
}

func setupSwaggerEndpoint(router *chi.Mux, logger *slog.Logger) {
	logger.Info("Setting up Swagger UI endpoint", "path", "/swagger/")
	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
}

func setupAccountRoutes(router *chi.Mux, svc account.AccountService, finder mw.CustomerFinder, cfg *config.Config, logger *slog.Logger) {
	h := handler.NewAccountHandler(svc, logger)

	router.Post("/account", h.OpenAccount)

	router.Group(func(r chi.Router) {
		r.Use(mw.CustomerGate(finder, cfg.Server.Identity.Header, logger))

		r.Get("/account", h.GetAccount)
		r.Put("/account", h.UpdateAccount)
		r.Delete("/account", h.CloseAccount)

		r.Get("/statement", h.GetStatement)
		r.Get("/statement/date", h.GetStatementByDate)

		r.Post("/deposit", h.Deposit)
		r.Post("/withdraw", h.Withdraw)
		r.Get("/balance", h.GetBalance)
	})
}
