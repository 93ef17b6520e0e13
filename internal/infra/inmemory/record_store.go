// Package inmemory provides map-backed record and object stores for local
// development and tests. Data is lost on restart.
package inmemory

import (
	"context"
	"sync"

	"github.com/dvloznov/hikmacash/internal/domain"
)

// RecordStore keeps every user's records in memory and is safe for concurrent use.
// Replace operations stage a full copy and swap it in under the write lock, so
// readers observe either the old collection or the new one.
type RecordStore struct {
	mu           sync.RWMutex
	transactions map[string][]domain.Transaction
	categories   map[string][]domain.Category
	settings     map[string]string

	// FailWith, when set, is called before every operation with the method
	// name and user id. A non-nil result is returned without touching data.
	FailWith func(op, userID string) error
}

// NewRecordStore creates an empty in-memory record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		transactions: make(map[string][]domain.Transaction),
		categories:   make(map[string][]domain.Category),
		settings:     make(map[string]string),
	}
}

func (s *RecordStore) fail(op, userID string) error {
	if s.FailWith == nil {
		return nil
	}
	return s.FailWith(op, userID)
}

// ListTransactions returns a copy of the user's transactions in stored order.
func (s *RecordStore) ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.fail("ListTransactions", userID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneTransactions(s.transactions[userID]), nil
}

// ListCategories returns a copy of the user's categories in stored order.
func (s *RecordStore) ListCategories(ctx context.Context, userID string) ([]domain.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.fail("ListCategories", userID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Category{}, s.categories[userID]...), nil
}

// GetEnterpriseSetting returns nil when the user has no setting.
func (s *RecordStore) GetEnterpriseSetting(ctx context.Context, userID string) (*domain.EnterpriseSetting, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.fail("GetEnterpriseSetting", userID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	name, ok := s.settings[userID]
	if !ok {
		return nil, nil
	}
	return &domain.EnterpriseSetting{UserID: userID, Name: name}, nil
}

// ReplaceTransactions swaps the user's transactions for txs.
func (s *RecordStore) ReplaceTransactions(ctx context.Context, userID string, txs []domain.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.fail("ReplaceTransactions", userID); err != nil {
		return err
	}

	staged := cloneTransactions(txs)
	for i := range staged {
		staged[i].UserID = userID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions[userID] = staged
	return nil
}

// ReplaceCategories swaps the user's categories for cats.
func (s *RecordStore) ReplaceCategories(ctx context.Context, userID string, cats []domain.Category) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.fail("ReplaceCategories", userID); err != nil {
		return err
	}

	staged := append([]domain.Category{}, cats...)
	for i := range staged {
		staged[i].UserID = userID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[userID] = staged
	return nil
}

// UpsertEnterpriseSetting creates or overwrites the user's setting.
func (s *RecordStore) UpsertEnterpriseSetting(ctx context.Context, setting domain.EnterpriseSetting) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.fail("UpsertEnterpriseSetting", setting.UserID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[setting.UserID] = setting.Name
	return nil
}

// cloneTransactions copies txs including the client pointers.
func cloneTransactions(txs []domain.Transaction) []domain.Transaction {
	out := make([]domain.Transaction, len(txs))
	copy(out, txs)
	for i := range out {
		if out[i].Client != nil {
			client := *out[i].Client
			out[i].Client = &client
		}
	}
	return out
}
