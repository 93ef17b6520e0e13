package pipeline

import (
	"context"
	"errors"
	"sync"

	"github.com/dvloznov/hikmacash/internal/domain"
)

// mockAuth maps fixed tokens to user ids.
type mockAuth struct {
	tokens map[string]string
}

func (m *mockAuth) Resolve(_ context.Context, credential string) (string, error) {
	if userID, ok := m.tokens[credential]; ok {
		return userID, nil
	}
	return "", errors.New("unknown token")
}

func newMockAuth() *mockAuth {
	return &mockAuth{tokens: map[string]string{
		"token-a": "user-a",
		"token-b": "user-b",
	}}
}

// mockRecordStore is a function-field RecordStore that records every call.
type mockRecordStore struct {
	mu    sync.Mutex
	calls []string

	ListTransactionsFunc        func(ctx context.Context, userID string) ([]domain.Transaction, error)
	ListCategoriesFunc          func(ctx context.Context, userID string) ([]domain.Category, error)
	GetEnterpriseSettingFunc    func(ctx context.Context, userID string) (*domain.EnterpriseSetting, error)
	ReplaceTransactionsFunc     func(ctx context.Context, userID string, txs []domain.Transaction) error
	ReplaceCategoriesFunc       func(ctx context.Context, userID string, cats []domain.Category) error
	UpsertEnterpriseSettingFunc func(ctx context.Context, setting domain.EnterpriseSetting) error
}

func (m *mockRecordStore) record(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, op)
}

func (m *mockRecordStore) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mockRecordStore) ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error) {
	m.record("ListTransactions")
	if m.ListTransactionsFunc != nil {
		return m.ListTransactionsFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockRecordStore) ListCategories(ctx context.Context, userID string) ([]domain.Category, error) {
	m.record("ListCategories")
	if m.ListCategoriesFunc != nil {
		return m.ListCategoriesFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockRecordStore) GetEnterpriseSetting(ctx context.Context, userID string) (*domain.EnterpriseSetting, error) {
	m.record("GetEnterpriseSetting")
	if m.GetEnterpriseSettingFunc != nil {
		return m.GetEnterpriseSettingFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockRecordStore) ReplaceTransactions(ctx context.Context, userID string, txs []domain.Transaction) error {
	m.record("ReplaceTransactions")
	if m.ReplaceTransactionsFunc != nil {
		return m.ReplaceTransactionsFunc(ctx, userID, txs)
	}
	return nil
}

func (m *mockRecordStore) ReplaceCategories(ctx context.Context, userID string, cats []domain.Category) error {
	m.record("ReplaceCategories")
	if m.ReplaceCategoriesFunc != nil {
		return m.ReplaceCategoriesFunc(ctx, userID, cats)
	}
	return nil
}

func (m *mockRecordStore) UpsertEnterpriseSetting(ctx context.Context, setting domain.EnterpriseSetting) error {
	m.record("UpsertEnterpriseSetting")
	if m.UpsertEnterpriseSettingFunc != nil {
		return m.UpsertEnterpriseSettingFunc(ctx, setting)
	}
	return nil
}
