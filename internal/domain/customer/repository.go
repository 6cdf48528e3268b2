package customer

import (
	"account-ledger/internal/pkg/apperrors"
	"context"
)

var (
	ErrNotFound = &apperrors.AppError{
		Code:    "NOT_FOUND",
		Message: "Customer not found!",
		Cause:   apperrors.ErrNotFound,
	}

	ErrAlreadyExists = &apperrors.AppError{
		Code:    "ALREADY_EXISTS",
		Message: "Customer already exists!",
		Cause:   apperrors.ErrAlreadyExists,
	}
)

// IdentifierSource supplies globally unique opaque identifiers.
type IdentifierSource interface {
	NewID() string
}

// Registry owns every customer record, keyed by tax ID.
type Registry interface {
	// Create fails with ErrAlreadyExists if taxID is already registered.
	Create(ctx context.Context, taxID, name string) (*Customer, error)

	FindByTaxID(ctx context.Context, taxID string) (*Customer, error)

	Rename(ctx context.Context, customer *Customer, newName string) error

	// Remove deletes the record matching customer's identity and closes its ledger.
	Remove(ctx context.Context, customer *Customer) error

	Count(ctx context.Context) int
}
