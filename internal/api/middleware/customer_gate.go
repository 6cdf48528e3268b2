package middleware

import (
	"account-ledger/internal/domain/customer"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

type contextKey string

const customerContextKey contextKey = "customer"

// CustomerFinder resolves a tax ID to a registered customer.
type CustomerFinder interface {
	FindByTaxID(ctx context.Context, taxID string) (*customer.Customer, error)
}

// CustomerGate resolves the customer named by the header before the wrapped
// handler runs. Requests without a resolvable customer never reach it.
func CustomerGate(finder CustomerFinder, header string, logger *slog.Logger) func(http.Handler) http.Handler {
	if finder == nil {
		panic("customer finder cannot be nil")
	}
	if header == "" {
		header = "cpf"
	}
	logger = logger.With("component", "CustomerGate")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			taxID := strings.TrimSpace(r.Header.Get(header))
			if taxID == "" {
				logger.WarnContext(r.Context(), "CustomerGate: Missing identity header", "header", header)
				writeJSONError(w, http.StatusBadRequest, "Missing '"+header+"' header", "INVALID_ARGUMENT")
				return
			}

			cust, err := finder.FindByTaxID(r.Context(), taxID)
			if err != nil {
				if errors.Is(err, customer.ErrNotFound) {
					logger.WarnContext(r.Context(), "CustomerGate: Customer not found")
					writeJSONError(w, http.StatusNotFound, customer.ErrNotFound.Message, "NOT_FOUND")
					return
				}
				logger.ErrorContext(r.Context(), "CustomerGate: Failed to resolve customer", slog.Any("error", err))
				writeJSONError(w, http.StatusInternalServerError, "An unexpected error occurred.", "INTERNAL")
				return
			}

			logger.DebugContext(r.Context(), "CustomerGate: Customer resolved", "customerID", cust.ID)
			next.ServeHTTP(w, r.WithContext(WithCustomer(r.Context(), cust)))
		})
	}
}

func WithCustomer(ctx context.Context, cust *customer.Customer) context.Context {
	return context.WithValue(ctx, customerContextKey, cust)
}

// CustomerFromContext returns the customer stored by CustomerGate.
func CustomerFromContext(ctx context.Context) (*customer.Customer, bool) {
	cust, ok := ctx.Value(customerContextKey).(*customer.Customer)
	return cust, ok && cust != nil
}
