package account

import (
	"account-ledger/internal/domain/customer"
	"account-ledger/internal/domain/statement"
	"account-ledger/internal/event"
	"account-ledger/internal/infrastructure/monitoring"
	"account-ledger/internal/pkg/apperrors"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the accepted format of statement date filters.
const DateLayout = "2006-01-02"

const inputValidationPassed = "Input validation passed"

var ErrInsufficientFunds = statement.ErrInsufficientFunds

// Clock supplies the timestamp of new statement entries.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ClockFunc adapts a plain function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

type AccountService interface {
	OpenAccount(ctx context.Context, taxID, name string) (*customer.Customer, error)
	GetAccount(ctx context.Context, cust *customer.Customer) (*customer.Customer, error)
	UpdateAccount(ctx context.Context, cust *customer.Customer, newName string) error
	CloseAccount(ctx context.Context, cust *customer.Customer) error
	GetStatement(ctx context.Context, cust *customer.Customer) ([]statement.Operation, error)
	GetStatementByDate(ctx context.Context, cust *customer.Customer, date string) ([]statement.Operation, error)
	Deposit(ctx context.Context, cust *customer.Customer, amount decimal.Decimal, description string) error
	Withdraw(ctx context.Context, cust *customer.Customer, amount decimal.Decimal) error
	GetBalance(ctx context.Context, cust *customer.Customer) (decimal.Decimal, error)
}

var _ AccountService = (*accountService)(nil)

type accountService struct {
	registry customer.Registry
	pub      event.EventPublisher
	clock    Clock
	loc      *time.Location
	logger   *slog.Logger
}

type Option func(*accountService)

func WithClock(c Clock) Option {
	return func(s *accountService) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLocation sets the zone in which statement dates are compared.
func WithLocation(loc *time.Location) Option {
	return func(s *accountService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithEventPublisher(pub event.EventPublisher) Option {
	return func(s *accountService) {
		if pub != nil {
			s.pub = pub
		}
	}
}

func NewAccountService(registry customer.Registry, logger *slog.Logger, opts ...Option) AccountService {
	if registry == nil {
		panic("customer registry cannot be nil")
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewAccountService, using default stderr handler")
	}

	s := &accountService{
		registry: registry,
		pub:      event.NoopPublisher{},
		clock:    SystemClock{},
		loc:      time.Local,
		logger:   logger.With(slog.String("component", "accountService")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newAccountEventPayload(cust *customer.Customer) event.AccountEventPayload {
	return event.AccountEventPayload{
		CustomerID: cust.ID,
		TaxID:      cust.TaxID,
		Name:       cust.Name,
	}
}

func (s *accountService) OpenAccount(ctx context.Context, taxID, name string) (*customer.Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to open new account")

	taxID = strings.TrimSpace(taxID)
	name = strings.TrimSpace(name)
	if taxID == "" {
		s.logger.WarnContext(ctx, "Validation failed: tax ID is empty")
		return nil, apperrors.NewValidationError("cpf", "cannot be empty")
	}
	if name == "" {
		s.logger.WarnContext(ctx, "Validation failed: name is empty", slog.String("taxID", taxID))
		return nil, apperrors.NewValidationError("name", "cannot be empty")
	}
	logger := s.logger.With(slog.String("taxID", taxID))
	logger.DebugContext(ctx, inputValidationPassed)

	cust, err := s.registry.Create(ctx, taxID, name)
	if err != nil {
		if errors.Is(err, customer.ErrAlreadyExists) {
			logger.WarnContext(ctx, "Account already exists for tax ID")
			return nil, customer.ErrAlreadyExists
		}
		logger.ErrorContext(ctx, "Registry failed to create customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to open account: %w", err)
	}
	logger = logger.With(slog.String("customerID", cust.ID))
	monitoring.RecordAccountOpened(s.registry.Count(ctx))

	opened := event.AccountOpenedEvent{
		Timestamp: s.clock.Now(),
		Payload:   newAccountEventPayload(cust),
	}
	if pubErr := s.pub.PublishAccountOpened(ctx, opened); pubErr != nil {
		logger.ErrorContext(ctx, "Account opened, but FAILED to publish opened event", slog.Any("error", pubErr))
	}

	logger.InfoContext(ctx, "Successfully opened account")
	return cust, nil
}

func (s *accountService) GetAccount(ctx context.Context, cust *customer.Customer) (*customer.Customer, error) {
	if cust == nil {
		return nil, fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}

	current, err := s.registry.FindByTaxID(ctx, cust.TaxID)
	if err != nil || !current.SameIdentity(cust) {
		s.logger.WarnContext(ctx, "Account no longer registered", slog.String("customerID", cust.ID))
		return nil, customer.ErrNotFound
	}
	return current, nil
}

func (s *accountService) UpdateAccount(ctx context.Context, cust *customer.Customer, newName string) error {
	if cust == nil {
		return fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}
	logger := s.logger.With(slog.String("customerID", cust.ID))
	logger.InfoContext(ctx, "Attempting to update account name")

	newName = strings.TrimSpace(newName)
	if newName == "" {
		logger.WarnContext(ctx, "Validation failed: new name is empty")
		return apperrors.NewValidationError("name", "cannot be empty")
	}

	if err := s.registry.Rename(ctx, cust, newName); err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			logger.WarnContext(ctx, "Customer not found by registry for update")
			return customer.ErrNotFound
		}
		logger.ErrorContext(ctx, "Registry failed to rename customer", slog.Any("error", err))
		return fmt.Errorf("failed to update account %s: %w", cust.ID, err)
	}

	updated := event.AccountUpdatedEvent{
		Timestamp: s.clock.Now(),
		Payload:   newAccountEventPayload(cust),
	}
	if pubErr := s.pub.PublishAccountUpdated(ctx, updated); pubErr != nil {
		logger.ErrorContext(ctx, "Account updated, but FAILED to publish updated event", slog.Any("error", pubErr))
	}

	logger.InfoContext(ctx, "Successfully updated account name")
	return nil
}

func (s *accountService) CloseAccount(ctx context.Context, cust *customer.Customer) error {
	if cust == nil {
		return fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}
	logger := s.logger.With(slog.String("customerID", cust.ID))
	logger.InfoContext(ctx, "Attempting to close account")

	if err := s.registry.Remove(ctx, cust); err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			logger.WarnContext(ctx, "Customer not found by registry for removal")
			return customer.ErrNotFound
		}
		logger.ErrorContext(ctx, "Registry failed to remove customer", slog.Any("error", err))
		return fmt.Errorf("failed to close account %s: %w", cust.ID, err)
	}
	monitoring.RecordAccountClosed(s.registry.Count(ctx))

	closed := event.AccountClosedEvent{
		Timestamp: s.clock.Now(),
		Payload:   newAccountEventPayload(cust),
	}
	if pubErr := s.pub.PublishAccountClosed(ctx, closed); pubErr != nil {
		logger.ErrorContext(ctx, "Account closed, but FAILED to publish closed event", slog.Any("error", pubErr))
	}

	logger.InfoContext(ctx, "Successfully closed account")
	return nil
}

func (s *accountService) GetStatement(ctx context.Context, cust *customer.Customer) ([]statement.Operation, error) {
	ledger, err := s.ledgerOf(ctx, cust)
	if err != nil {
		return nil, err
	}
	return ledger.All(), nil
}

func (s *accountService) GetStatementByDate(ctx context.Context, cust *customer.Customer, date string) ([]statement.Operation, error) {
	ledger, err := s.ledgerOf(ctx, cust)
	if err != nil {
		return nil, err
	}

	day, err := time.ParseInLocation(DateLayout, strings.TrimSpace(date), s.loc)
	if err != nil {
		s.logger.WarnContext(ctx, "Validation failed: unparseable statement date", slog.String("date", date))
		return nil, fmt.Errorf("%w: %q is not a %s date", apperrors.ErrInvalidDate, date, DateLayout)
	}
	return ledger.OnDate(day, s.loc), nil
}

func (s *accountService) Deposit(ctx context.Context, cust *customer.Customer, amount decimal.Decimal, description string) error {
	ledger, err := s.ledgerOf(ctx, cust)
	if err != nil {
		return err
	}
	logger := s.logger.With(slog.String("customerID", cust.ID), slog.String("amount", amount.String()))
	logger.InfoContext(ctx, "Attempting to deposit")

	if !amount.IsPositive() {
		logger.WarnContext(ctx, "Validation failed: deposit amount must be positive")
		monitoring.RecordRejected("invalid_amount")
		return fmt.Errorf("%w: deposit amount must be positive", apperrors.ErrInvalidAmount)
	}

	op := statement.NewCredit(amount, strings.TrimSpace(description), s.clock.Now())
	if err := ledger.Append(op); err != nil {
		logger.WarnContext(ctx, "Ledger rejected deposit", slog.Any("error", err))
		return customer.ErrNotFound
	}
	monitoring.RecordOperation(string(statement.Credit))
	s.publishOperation(ctx, cust, op)

	logger.InfoContext(ctx, "Successfully deposited")
	return nil
}

func (s *accountService) Withdraw(ctx context.Context, cust *customer.Customer, amount decimal.Decimal) error {
	ledger, err := s.ledgerOf(ctx, cust)
	if err != nil {
		return err
	}
	logger := s.logger.With(slog.String("customerID", cust.ID), slog.String("amount", amount.String()))
	logger.InfoContext(ctx, "Attempting to withdraw")

	if !amount.IsPositive() {
		logger.WarnContext(ctx, "Validation failed: withdrawal amount must be positive")
		monitoring.RecordRejected("invalid_amount")
		return fmt.Errorf("%w: withdrawal amount must be positive", apperrors.ErrInvalidAmount)
	}

	op := statement.NewDebit(amount, s.clock.Now())
	balance, err := ledger.DebitIfSufficient(op)
	if err != nil {
		if errors.Is(err, statement.ErrInsufficientFunds) {
			logger.WarnContext(ctx, "Business rule failed: insufficient funds", slog.String("balance", balance.String()))
			monitoring.RecordRejected("insufficient_funds")
			return ErrInsufficientFunds
		}
		logger.WarnContext(ctx, "Ledger rejected withdrawal", slog.Any("error", err))
		return customer.ErrNotFound
	}
	monitoring.RecordOperation(string(statement.Debit))
	s.publishOperation(ctx, cust, op)

	logger.InfoContext(ctx, "Successfully withdrew", slog.String("balance", balance.String()))
	return nil
}

func (s *accountService) GetBalance(ctx context.Context, cust *customer.Customer) (decimal.Decimal, error) {
	ledger, err := s.ledgerOf(ctx, cust)
	if err != nil {
		return decimal.Zero, err
	}
	return ledger.Balance(), nil
}

// ledgerOf returns the statement of a still-registered customer.
func (s *accountService) ledgerOf(ctx context.Context, cust *customer.Customer) (*statement.Ledger, error) {
	if cust == nil || cust.Statement == nil {
		return nil, fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}
	if cust.Statement.Closed() {
		s.logger.WarnContext(ctx, "Statement access on closed account", slog.String("customerID", cust.ID))
		return nil, customer.ErrNotFound
	}
	return cust.Statement, nil
}

func (s *accountService) publishOperation(ctx context.Context, cust *customer.Customer, op statement.Operation) {
	recorded := event.OperationRecordedEvent{
		CustomerID:  cust.ID,
		Type:        string(op.Type),
		Amount:      op.Amount,
		Description: op.Description,
		CreatedAt:   op.CreatedAt,
	}
	if err := s.pub.PublishOperationRecorded(ctx, recorded); err != nil {
		s.logger.ErrorContext(ctx, "Operation recorded, but FAILED to publish event", slog.Any("error", err))
	}
}
