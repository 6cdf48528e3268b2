package account_test

import (
	"account-ledger/internal/domain/customer"
	"account-ledger/internal/event"
	"context"

	"github.com/stretchr/testify/mock"
)

type MockEventPublisher struct {
	mock.Mock
}

var _ event.EventPublisher = (*MockEventPublisher)(nil)

func (_m *MockEventPublisher) PublishAccountOpened(ctx context.Context, e event.AccountOpenedEvent) error {
	return _m.Called(ctx, e).Error(0)
}

func (_m *MockEventPublisher) PublishAccountUpdated(ctx context.Context, e event.AccountUpdatedEvent) error {
	return _m.Called(ctx, e).Error(0)
}

func (_m *MockEventPublisher) PublishAccountClosed(ctx context.Context, e event.AccountClosedEvent) error {
	return _m.Called(ctx, e).Error(0)
}

func (_m *MockEventPublisher) PublishOperationRecorded(ctx context.Context, e event.OperationRecordedEvent) error {
	return _m.Called(ctx, e).Error(0)
}

type MockRegistry struct {
	mock.Mock
}

var _ customer.Registry = (*MockRegistry)(nil)

func (_m *MockRegistry) Create(ctx context.Context, taxID, name string) (*customer.Customer, error) {
	ret := _m.Called(ctx, taxID, name)

	var r0 *customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}
	return r0, ret.Error(1)
}

func (_m *MockRegistry) FindByTaxID(ctx context.Context, taxID string) (*customer.Customer, error) {
	ret := _m.Called(ctx, taxID)

	var r0 *customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}
	return r0, ret.Error(1)
}

func (_m *MockRegistry) Rename(ctx context.Context, cust *customer.Customer, newName string) error {
	return _m.Called(ctx, cust, newName).Error(0)
}

func (_m *MockRegistry) Remove(ctx context.Context, cust *customer.Customer) error {
	return _m.Called(ctx, cust).Error(0)
}

func (_m *MockRegistry) Count(ctx context.Context) int {
	return _m.Called(ctx).Int(0)
}
