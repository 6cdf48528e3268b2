package statement

import (
	"account-ledger/internal/pkg/apperrors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrClosed = &apperrors.AppError{
		Code:    "NOT_FOUND",
		Message: "statement ledger is closed",
		Cause:   apperrors.ErrNotFound,
	}

	ErrInsufficientFunds = &apperrors.AppError{
		Code:    "INSUFFICIENT_FUNDS",
		Message: "Insufficient funds!",
		Cause:   apperrors.ErrInsufficientFunds,
	}
)

// Ledger is the append-only statement of one customer. Each ledger carries its
// own lock, so customers never contend with each other.
type Ledger struct {
	mu     sync.RWMutex
	ops    []Operation
	closed bool
}

func NewLedger() *Ledger {
	return &Ledger{}
}

func (l *Ledger) Append(op Operation) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrClosed
	}
	l.ops = append(l.ops, op)
	return nil
}

// DebitIfSufficient appends op only if the current balance covers op.Amount.
// The balance check and the append happen under the same write lock.
// It returns the balance after the debit.
func (l *Ledger) DebitIfSufficient(op Operation) (decimal.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return decimal.Zero, ErrClosed
	}
	balance := Balance(l.ops)
	if balance.LessThan(op.Amount) {
		return balance, ErrInsufficientFunds
	}
	l.ops = append(l.ops, op)
	return balance.Sub(op.Amount), nil
}

// All returns a copy of the full history in insertion order.
func (l *Ledger) All() []Operation {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Operation, len(l.ops))
	copy(out, l.ops)
	return out
}

// OnDate returns the operations created on the same calendar day as day, both
// sides evaluated in loc.
func (l *Ledger) OnDate(day time.Time, loc *time.Location) []Operation {
	if loc == nil {
		loc = time.Local
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Operation, 0)
	for _, op := range l.ops {
		if sameDay(op.CreatedAt, day, loc) {
			out = append(out, op)
		}
	}
	return out
}

func (l *Ledger) Balance() decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Balance(l.ops)
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.ops)
}

// Close rejects all further appends. Reads keep working on the existing history.
func (l *Ledger) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
}

func (l *Ledger) Closed() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.closed
}

func sameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}
