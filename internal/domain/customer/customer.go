package customer

import "account-ledger/internal/domain/statement"

// Customer is an account holder. ID and TaxID never change after creation;
// Statement is owned by the customer and goes away with it.
type Customer struct {
	ID        string            `json:"id"`
	TaxID     string            `json:"cpf"`
	Name      string            `json:"name"`
	Statement *statement.Ledger `json:"-"`
}

func NewCustomer(id, taxID, name string) *Customer {
	return &Customer{
		ID:        id,
		TaxID:     taxID,
		Name:      name,
		Statement: statement.NewLedger(),
	}
}

// Snapshot copies the customer's fields. The ledger handle is shared since the
// ledger synchronizes itself.
func (c *Customer) Snapshot() *Customer {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// SameIdentity reports whether other refers to the same registered record.
func (c *Customer) SameIdentity(other *Customer) bool {
	if c == nil || other == nil {
		return false
	}
	return c.ID == other.ID && c.TaxID == other.TaxID
}

func (c *Customer) Rename(name string) {
	c.Name = name
}
