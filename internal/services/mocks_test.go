package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/clearbooks/backend/internal/models"
)

type MockAccountStore struct {
	mock.Mock
}

func (m *MockAccountStore) GetAccounts(ctx context.Context, organizationID string) ([]models.Account, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Account), args.Error(1)
}

func (m *MockAccountStore) InsertAccounts(ctx context.Context, accounts []models.Account) error {
	args := m.Called(ctx, accounts)
	return args.Error(0)
}

type MockPayeeStore struct {
	mock.Mock
}

func (m *MockPayeeStore) GetPayees(ctx context.Context, organizationID string) ([]models.Payee, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Payee), args.Error(1)
}

func (m *MockPayeeStore) InsertPayees(ctx context.Context, payees []models.Payee) error {
	args := m.Called(ctx, payees)
	return args.Error(0)
}

type MockClassStore struct {
	mock.Mock
}

func (m *MockClassStore) GetClasses(ctx context.Context, organizationID string) ([]models.Class, error) {
	args := m.Called(ctx, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Class), args.Error(1)
}

func (m *MockClassStore) InsertClasses(ctx context.Context, classes []models.Class) error {
	args := m.Called(ctx, classes)
	return args.Error(0)
}

type MockTransactionWriter struct {
	mock.Mock
}

func (m *MockTransactionWriter) CreateTransactionWithEntries(ctx context.Context, organizationID string, input TransactionInput, entries []EntryInput) (*models.Transaction, error) {
	args := m.Called(ctx, organizationID, input, entries)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}
