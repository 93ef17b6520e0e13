package pipeline

import (
	"context"

	"github.com/dvloznov/hikmacash/internal/domain"
	"github.com/dvloznov/hikmacash/internal/gcs"
)

// AuthResolver turns a caller credential into a user id.
type AuthResolver interface {
	// Resolve returns the user id the credential belongs to, or an error
	// when the credential is missing, expired or otherwise invalid.
	Resolve(ctx context.Context, credential string) (string, error)
}

// RecordStore provides the user-scoped record operations the pipeline needs.
// Every method acts only on rows owned by userID.
type RecordStore interface {
	ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error)
	ListCategories(ctx context.Context, userID string) ([]domain.Category, error)

	// GetEnterpriseSetting returns nil and no error when the user has none.
	GetEnterpriseSetting(ctx context.Context, userID string) (*domain.EnterpriseSetting, error)

	// ReplaceTransactions deletes the user's transactions and inserts txs as
	// one atomic unit. On error the previous rows remain.
	ReplaceTransactions(ctx context.Context, userID string, txs []domain.Transaction) error

	// ReplaceCategories is the category counterpart of ReplaceTransactions.
	ReplaceCategories(ctx context.Context, userID string, cats []domain.Category) error

	UpsertEnterpriseSetting(ctx context.Context, setting domain.EnterpriseSetting) error
}

// ObjectStore receives export artifacts and signs download URLs for them.
type ObjectStore = gcs.ObjectStore
