package memory

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"account-ledger/internal/domain/customer"
	"account-ledger/internal/domain/statement"
	"account-ledger/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sequenceSource struct {
	n atomic.Int64
}

func (s *sequenceSource) NewID() string {
	return fmt.Sprintf("id-%d", s.n.Add(1))
}

func newTestRegistry() *CustomerRegistry {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewCustomerRegistry(&sequenceSource{}, logger)
}

func TestCustomerRegistry_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		reg := newTestRegistry()

		cust, err := reg.Create(ctx, "111", "Ana")

		require.NoError(t, err)
		assert.Equal(t, "id-1", cust.ID)
		assert.Equal(t, "111", cust.TaxID)
		assert.Equal(t, "Ana", cust.Name)
		assert.Equal(t, 0, cust.Statement.Len())
		assert.Equal(t, 1, reg.Count(ctx))
	})

	t.Run("Error - Duplicate tax ID", func(t *testing.T) {
		reg := newTestRegistry()
		_, err := reg.Create(ctx, "111", "Ana")
		require.NoError(t, err)

		dup, err := reg.Create(ctx, "111", "Someone Else")

		assert.Nil(t, dup)
		assert.ErrorIs(t, err, customer.ErrAlreadyExists)
		assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
		assert.Equal(t, 1, reg.Count(ctx))
	})

	t.Run("Error - Empty tax ID", func(t *testing.T) {
		reg := newTestRegistry()
		_, err := reg.Create(ctx, "", "Ana")
		assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
		assert.Equal(t, 0, reg.Count(ctx))
	})

	t.Run("Concurrent creates with the same key register once", func(t *testing.T) {
		reg := newTestRegistry()
		const workers = 32

		var wg sync.WaitGroup
		var created atomic.Int32
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := reg.Create(ctx, "111", "Ana"); err == nil {
					created.Add(1)
				} else {
					assert.ErrorIs(t, err, customer.ErrAlreadyExists)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), created.Load())
		assert.Equal(t, 1, reg.Count(ctx))
	})
}

func TestCustomerRegistry_FindByTaxID(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry()
	created, err := reg.Create(ctx, "111", "Ana")
	require.NoError(t, err)

	t.Run("Success", func(t *testing.T) {
		found, err := reg.FindByTaxID(ctx, "111")
		require.NoError(t, err)
		assert.True(t, created.SameIdentity(found))
		assert.Same(t, created.Statement, found.Statement)
	})

	t.Run("Error - Never registered", func(t *testing.T) {
		found, err := reg.FindByTaxID(ctx, "999")
		assert.Nil(t, found)
		assert.ErrorIs(t, err, customer.ErrNotFound)
	})

	t.Run("Returned record is a copy", func(t *testing.T) {
		found, err := reg.FindByTaxID(ctx, "111")
		require.NoError(t, err)
		found.Name = "Tampered"

		again, err := reg.FindByTaxID(ctx, "111")
		require.NoError(t, err)
		assert.Equal(t, "Ana", again.Name)
	})
}

func TestCustomerRegistry_Rename(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		reg := newTestRegistry()
		cust, err := reg.Create(ctx, "111", "Ana")
		require.NoError(t, err)

		require.NoError(t, reg.Rename(ctx, cust, "Ana Maria"))

		assert.Equal(t, "Ana Maria", cust.Name)
		found, err := reg.FindByTaxID(ctx, "111")
		require.NoError(t, err)
		assert.Equal(t, "Ana Maria", found.Name)
	})

	t.Run("Names need not be unique", func(t *testing.T) {
		reg := newTestRegistry()
		a, err := reg.Create(ctx, "111", "Ana")
		require.NoError(t, err)
		_, err = reg.Create(ctx, "222", "Bia")
		require.NoError(t, err)

		assert.NoError(t, reg.Rename(ctx, a, "Bia"))
	})

	t.Run("Error - Removed customer", func(t *testing.T) {
		reg := newTestRegistry()
		cust, err := reg.Create(ctx, "111", "Ana")
		require.NoError(t, err)
		require.NoError(t, reg.Remove(ctx, cust))

		assert.ErrorIs(t, reg.Rename(ctx, cust, "Ghost"), customer.ErrNotFound)
	})

	t.Run("Error - Nil customer", func(t *testing.T) {
		reg := newTestRegistry()
		assert.ErrorIs(t, reg.Rename(ctx, nil, "x"), apperrors.ErrInvalidArgument)
	})
}

func TestCustomerRegistry_Remove(t *testing.T) {
	ctx := context.Background()

	t.Run("Removes only the identified record", func(t *testing.T) {
		reg := newTestRegistry()
		first, err := reg.Create(ctx, "111", "Ana")
		require.NoError(t, err)
		second, err := reg.Create(ctx, "222", "Bia")
		require.NoError(t, err)
		third, err := reg.Create(ctx, "333", "Caio")
		require.NoError(t, err)

		require.NoError(t, reg.Remove(ctx, second))

		assert.Equal(t, 2, reg.Count(ctx))
		_, err = reg.FindByTaxID(ctx, "222")
		assert.ErrorIs(t, err, customer.ErrNotFound)

		for _, c := range []*customer.Customer{first, third} {
			found, err := reg.FindByTaxID(ctx, c.TaxID)
			require.NoError(t, err)
			assert.True(t, c.SameIdentity(found))
		}
	})

	t.Run("Closes the removed ledger", func(t *testing.T) {
		reg := newTestRegistry()
		cust, err := reg.Create(ctx, "111", "Ana")
		require.NoError(t, err)
		require.NoError(t, reg.Remove(ctx, cust))

		err = cust.Statement.Append(statement.NewCredit(decimal.NewFromInt(1), "", time.Now()))
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("Stale handle does not remove a re-created key", func(t *testing.T) {
		reg := newTestRegistry()
		original, err := reg.Create(ctx, "111", "Ana")
		require.NoError(t, err)
		require.NoError(t, reg.Remove(ctx, original))
		recreated, err := reg.Create(ctx, "111", "Ana Again")
		require.NoError(t, err)

		assert.ErrorIs(t, reg.Remove(ctx, original), customer.ErrNotFound)

		found, err := reg.FindByTaxID(ctx, "111")
		require.NoError(t, err)
		assert.True(t, recreated.SameIdentity(found))
	})

	t.Run("Error - Unknown customer", func(t *testing.T) {
		reg := newTestRegistry()
		ghost := customer.NewCustomer("id-x", "999", "Ghost")
		assert.ErrorIs(t, reg.Remove(ctx, ghost), customer.ErrNotFound)
	})
}
