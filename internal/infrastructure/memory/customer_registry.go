package memory

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"account-ledger/internal/domain/customer"
	"account-ledger/internal/pkg/apperrors"
)

// CustomerRegistry keeps customers in process memory. A single RWMutex guards
// the tax ID index, so lookups never observe a half-created or half-removed record.
type CustomerRegistry struct {
	mu      sync.RWMutex
	byTaxID map[string]*customer.Customer
	ids     customer.IdentifierSource
	logger  *slog.Logger
}

var _ customer.Registry = (*CustomerRegistry)(nil)

func NewCustomerRegistry(ids customer.IdentifierSource, logger *slog.Logger) *CustomerRegistry {
	if ids == nil {
		panic("IdentifierSource cannot be nil for CustomerRegistry")
	}
	if logger == nil {

		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerRegistry, using default stderr handler")
	}
	return &CustomerRegistry{
		byTaxID: make(map[string]*customer.Customer),
		ids:     ids,
		logger:  logger.With("component", "CustomerRegistry"),
	}
}

func (r *CustomerRegistry) Create(ctx context.Context, taxID, name string) (*customer.Customer, error) {
	if taxID == "" {
		return nil, fmt.Errorf("%w: tax ID cannot be empty", apperrors.ErrInvalidArgument)
	}

	r.logger.DebugContext(ctx, "Attempting to register new customer", slog.String("taxID", taxID))

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byTaxID[taxID]; exists {
		r.logger.WarnContext(ctx, "Failed to register customer, tax ID already taken", slog.String("taxID", taxID))
		return nil, customer.ErrAlreadyExists
	}

	cust := customer.NewCustomer(r.ids.NewID(), taxID, name)
	r.byTaxID[taxID] = cust

	r.logger.InfoContext(ctx, "Customer registered successfully", slog.String("customerID", cust.ID))
	return cust.Snapshot(), nil
}

func (r *CustomerRegistry) FindByTaxID(ctx context.Context, taxID string) (*customer.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cust, ok := r.byTaxID[taxID]
	if !ok {
		r.logger.DebugContext(ctx, "Customer not found", slog.String("taxID", taxID))
		return nil, customer.ErrNotFound
	}
	return cust.Snapshot(), nil
}

func (r *CustomerRegistry) Rename(ctx context.Context, cust *customer.Customer, newName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, err := r.lookupLocked(cust)
	if err != nil {
		r.logger.WarnContext(ctx, "Cannot rename unknown customer", slog.Any("error", err))
		return err
	}
	stored.Rename(newName)
	cust.Rename(newName)

	r.logger.InfoContext(ctx, "Customer renamed", slog.String("customerID", stored.ID))
	return nil
}

func (r *CustomerRegistry) Remove(ctx context.Context, cust *customer.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, err := r.lookupLocked(cust)
	if err != nil {
		r.logger.WarnContext(ctx, "Cannot remove unknown customer", slog.Any("error", err))
		return err
	}
	delete(r.byTaxID, stored.TaxID)
	stored.Statement.Close()

	r.logger.InfoContext(ctx, "Customer removed", slog.String("customerID", stored.ID))
	return nil
}

func (r *CustomerRegistry) Count(_ context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byTaxID)
}

// lookupLocked resolves cust by its key and checks the stored record is the
// same one; a stale handle to a removed and re-created key does not match.
func (r *CustomerRegistry) lookupLocked(cust *customer.Customer) (*customer.Customer, error) {
	if cust == nil {
		return nil, fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}
	stored, ok := r.byTaxID[cust.TaxID]
	if !ok || !stored.SameIdentity(cust) {
		return nil, customer.ErrNotFound
	}
	return stored, nil
}
