package identity

import (
	"account-ledger/internal/domain/customer"

	"github.com/google/uuid"
)

// UUIDSource hands out random (version 4) UUIDs.
type UUIDSource struct{}

var _ customer.IdentifierSource = UUIDSource{}

func NewUUIDSource() UUIDSource {
	return UUIDSource{}
}

func (UUIDSource) NewID() string {
	return uuid.NewString()
}
