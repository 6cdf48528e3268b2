package statement

import (
	"time"

	"github.com/shopspring/decimal"
)

type OperationType string

const (
	Credit OperationType = "credit"
	Debit  OperationType = "debit"
)

// Operation is a single immutable statement entry. It has no wire form of
// its own; handlers and events map it to their own shapes.
type Operation struct {
	Type        OperationType
	Amount      decimal.Decimal
	CreatedAt   time.Time
	Description string
}

func NewCredit(amount decimal.Decimal, description string, at time.Time) Operation {
	return Operation{
		Type:        Credit,
		Amount:      amount,
		CreatedAt:   at,
		Description: description,
	}
}

// NewDebit builds a debit entry. Debits never carry a description.
func NewDebit(amount decimal.Decimal, at time.Time) Operation {
	return Operation{
		Type:      Debit,
		Amount:    amount,
		CreatedAt: at,
	}
}

// Signed returns the amount as it contributes to the balance.
func (o Operation) Signed() decimal.Decimal {
	if o.Type == Credit {
		return o.Amount
	}
	return o.Amount.Neg()
}
