package event

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type EventPublisher interface {
	PublishAccountOpened(ctx context.Context, event AccountOpenedEvent) error
	PublishAccountUpdated(ctx context.Context, event AccountUpdatedEvent) error
	PublishAccountClosed(ctx context.Context, event AccountClosedEvent) error
	PublishOperationRecorded(ctx context.Context, event OperationRecordedEvent) error
}

type AccountEventPayload struct {
	CustomerID string `json:"customerId"`
	TaxID      string `json:"cpf"`
	Name       string `json:"name"`
}

type AccountOpenedEvent struct {
	Timestamp time.Time           `json:"timestamp"`
	Payload   AccountEventPayload `json:"payload"`
}

type AccountUpdatedEvent struct {
	Timestamp time.Time           `json:"timestamp"`
	Payload   AccountEventPayload `json:"payload"`
}

type AccountClosedEvent struct {
	Timestamp time.Time           `json:"timestamp"`
	Payload   AccountEventPayload `json:"payload"`
}

type OperationRecordedEvent struct {
	CustomerID  string          `json:"customerId"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// NoopPublisher drops every event. Used when no broker is configured.
type NoopPublisher struct{}

var _ EventPublisher = NoopPublisher{}

func (NoopPublisher) PublishAccountOpened(context.Context, AccountOpenedEvent) error   { return nil }
func (NoopPublisher) PublishAccountUpdated(context.Context, AccountUpdatedEvent) error { return nil }
func (NoopPublisher) PublishAccountClosed(context.Context, AccountClosedEvent) error   { return nil }
func (NoopPublisher) PublishOperationRecorded(context.Context, OperationRecordedEvent) error {
	return nil
}
