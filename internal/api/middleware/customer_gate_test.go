package middleware

import (
	"account-ledger/internal/domain/customer"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFinder struct {
	customers map[string]*customer.Customer
	err       error
}

func (s *stubFinder) FindByTaxID(_ context.Context, taxID string) (*customer.Customer, error) {
	if s.err != nil {
		return nil, s.err
	}
	cust, ok := s.customers[taxID]
	if !ok {
		return nil, customer.ErrNotFound
	}
	return cust, nil
}

func TestCustomerGate(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ana := customer.NewCustomer("id-1", "111", "Ana")
	finder := &stubFinder{customers: map[string]*customer.Customer{"111": ana}}

	var resolved *customer.Customer
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cust, ok := CustomerFromContext(r.Context())
		if ok {
			resolved = cust
		}
		w.WriteHeader(http.StatusOK)
	})

	t.Run("should resolve known customer from header", func(t *testing.T) {
		resolved = nil
		req := httptest.NewRequest(http.MethodGet, "/balance", nil)
		req.Header.Set("cpf", "111")
		rec := httptest.NewRecorder()

		CustomerGate(finder, "cpf", logger)(nextHandler).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, resolved)
		assert.Equal(t, "id-1", resolved.ID)
	})

	t.Run("should reject missing header", func(t *testing.T) {
		resolved = nil
		req := httptest.NewRequest(http.MethodGet, "/balance", nil)
		rec := httptest.NewRecorder()

		CustomerGate(finder, "cpf", logger)(nextHandler).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Nil(t, resolved)
	})

	t.Run("should reject unknown customer", func(t *testing.T) {
		resolved = nil
		req := httptest.NewRequest(http.MethodGet, "/balance", nil)
		req.Header.Set("cpf", "999")
		rec := httptest.NewRecorder()

		CustomerGate(finder, "cpf", logger)(nextHandler).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Nil(t, resolved)

		var response map[string]map[string]string
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, "Customer not found!", response["error"]["message"])
		assert.Equal(t, "NOT_FOUND", response["error"]["code"])
	})

	t.Run("should honour custom header name", func(t *testing.T) {
		resolved = nil
		req := httptest.NewRequest(http.MethodGet, "/balance", nil)
		req.Header.Set("X-Tax-ID", "111")
		rec := httptest.NewRecorder()

		CustomerGate(finder, "X-Tax-ID", logger)(nextHandler).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotNil(t, resolved)
	})

	t.Run("should fail closed on finder error", func(t *testing.T) {
		resolved = nil
		broken := &stubFinder{err: errors.New("boom")}
		req := httptest.NewRequest(http.MethodGet, "/balance", nil)
		req.Header.Set("cpf", "111")
		rec := httptest.NewRecorder()

		CustomerGate(broken, "cpf", logger)(nextHandler).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Nil(t, resolved)
	})
}

func TestCustomerFromContext_Empty(t *testing.T) {
	cust, ok := CustomerFromContext(context.Background())
	assert.False(t, ok)
	assert.Nil(t, cust)
}
