package api_test

import (
	"account-ledger/internal/api"
	"account-ledger/internal/api/handler/dto"
	mw "account-ledger/internal/api/middleware"
	"account-ledger/internal/config"
	"account-ledger/internal/domain/account"
	"account-ledger/internal/infrastructure/identity"
	"account-ledger/internal/infrastructure/memory"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) *chi.Mux {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := memory.NewCustomerRegistry(identity.NewUUIDSource(), logger)
	svc := account.NewAccountService(registry, logger,
		account.WithClock(account.ClockFunc(func() time.Time {
			return time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)
		})),
		account.WithLocation(time.UTC),
	)

	cfg := &config.Config{
		Server: config.ServerConfig{
			Identity: config.IdentityConfig{Header: "cpf"},
		},
		Metrics: config.MetricsConfig{Path: "/metrics"},
	}

	limiter := mw.NewRateLimiterMiddleware(cfg.Server.RateLimit, nil, logger)
	t.Cleanup(limiter.Stop)
	return api.SetupRouter(svc, registry, limiter, cfg, logger)
}

func do(t *testing.T, router http.Handler, method, target, cpf, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if cpf != "" {
		req.Header.Set("cpf", cpf)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_AccountLifecycle(t *testing.T) {
	router := setupRouter(t)

	rec := do(t, router, http.MethodPost, "/account", "", `{"cpf":"111","name":"Ana"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"message":"Customer created!"}`, rec.Body.String())

	rec = do(t, router, http.MethodPost, "/account", "", `{"cpf":"111","name":"Ana"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, router, http.MethodPost, "/deposit", "111", `{"description":"salary","amount":500}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"message":"Successfully deposited!"}`, rec.Body.String())

	rec = do(t, router, http.MethodPost, "/withdraw", "111", `{"amount":200}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, router, http.MethodPost, "/withdraw", "111", `{"amount":400}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, router, http.MethodGet, "/balance", "111", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var balance dto.BalanceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &balance))
	assert.Equal(t, "Success!", balance.Message)
	assert.True(t, balance.Balance.Equal(decimal.NewFromInt(300)))

	rec = do(t, router, http.MethodGet, "/statement", "111", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var ops []dto.OperationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ops))
	require.Len(t, ops, 2)
	assert.Equal(t, "credit", ops[0].Type)
	assert.Equal(t, "debit", ops[1].Type)

	rec = do(t, router, http.MethodGet, "/statement/date?date=2024-01-05", "111", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ops))
	assert.Len(t, ops, 2)

	rec = do(t, router, http.MethodGet, "/statement/date?date=2024-01-06", "111", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(t, router, http.MethodGet, "/statement/date?date=not-a-date", "111", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPut, "/account", "111", `{"name":"Ana Maria"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"message":"Account updated!"}`, rec.Body.String())

	rec = do(t, router, http.MethodGet, "/account", "111", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var acct dto.AccountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &acct))
	assert.Equal(t, "Ana Maria", acct.Name)
	assert.Equal(t, "111", acct.CPF)
	assert.Len(t, acct.Statement, 2)

	rec = do(t, router, http.MethodDelete, "/account", "111", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Account deleted!"}`, rec.Body.String())

	rec = do(t, router, http.MethodGet, "/balance", "111", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_Gate(t *testing.T) {
	router := setupRouter(t)

	rec := do(t, router, http.MethodGet, "/balance", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodGet, "/balance", "999", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Customer not found!")
}

func TestRouter_OperationalEndpoints(t *testing.T) {
	router := setupRouter(t)

	rec := do(t, router, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = do(t, router, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "account_ledger_http_requests_total")
}

func TestRouter_SwaggerDocs(t *testing.T) {
	router := setupRouter(t)

	rec := do(t, router, http.MethodGet, "/swagger/doc.json", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var doc struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths map[string]map[string]interface{} `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "Account Ledger API", doc.Info.Title)
	assert.Contains(t, doc.Paths, "/balance")
	assert.Contains(t, doc.Paths["/account"], "put")
	assert.Contains(t, doc.Paths["/statement/date"], "get")

	rec = do(t, router, http.MethodGet, "/swagger", "", "")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/swagger/index.html", rec.Header().Get("Location"))
}

func TestRouter_RateLimited(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := memory.NewCustomerRegistry(identity.NewUUIDSource(), logger)
	svc := account.NewAccountService(registry, logger)
	cfg := &config.Config{
		Server: config.ServerConfig{
			RateLimit: config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 1},
		},
	}
	limiter := mw.NewRateLimiterMiddleware(cfg.Server.RateLimit, nil, logger)
	t.Cleanup(limiter.Stop)
	router := api.SetupRouter(svc, registry, limiter, cfg, logger)

	rec := do(t, router, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "RATE_LIMITED")
}
