package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/dvloznov/hikmacash/internal/codec"
	"github.com/dvloznov/hikmacash/internal/domain"
	"github.com/dvloznov/hikmacash/internal/logger"
	"github.com/google/uuid"
)

// ImportResult reports which parts of the user's data were replaced.
type ImportResult struct {
	TransactionsReplaced  bool
	TransactionCount      int
	CategoriesReplaced    bool
	CategoryCount         int
	EnterpriseNameUpdated bool
}

// Importer replaces a user's records with the contents of an export document.
type Importer struct {
	auth  AuthResolver
	store RecordStore
	newID func() string
}

// ImporterOption configures an Importer.
type ImporterOption func(*Importer)

// WithIDGenerator sets the function that assigns ids to records that arrive
// without one. The default is uuid.NewString.
func WithIDGenerator(newID func() string) ImporterOption {
	return func(i *Importer) { i.newID = newID }
}

// NewImporter creates an Importer.
func NewImporter(auth AuthResolver, store RecordStore, opts ...ImporterOption) *Importer {
	i := &Importer{
		auth:  auth,
		store: store,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Import parses raw as an export document and applies it to the caller's
// data. Every present field is validated before anything is written.
// Transactions, categories and the enterprise name are then written in that
// order, each as its own atomic unit; the first failure stops the import and
// earlier units stay applied.
func (im *Importer) Import(ctx context.Context, credential string, raw []byte) (*ImportResult, error) {
	userID, err := resolveUser(ctx, im.auth, credential)
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx).With().Str("user_id", userID).Logger()

	payload, err := codec.DecodeJSON(raw)
	if err != nil {
		log.Warn().Err(err).Msg("Rejected import document")
		return nil, err
	}
	if err := domain.ValidatePayload(payload); err != nil {
		log.Warn().Err(err).Msg("Rejected import document")
		return nil, err
	}

	// Owner ids in the document are never trusted.
	payload.Stamp(userID, im.newID)

	result := &ImportResult{}

	if payload.Transactions.Set {
		txs := payload.Transactions.Value
		if err := im.store.ReplaceTransactions(ctx, userID, txs); err != nil {
			log.Error().Err(err).Msg("Failed to replace transactions")
			return nil, fmt.Errorf("%w: replace transactions: %w", domain.ErrPersistenceFailure, err)
		}
		result.TransactionsReplaced = true
		result.TransactionCount = len(txs)
	}

	if payload.Categories.Set {
		cats := payload.Categories.Value
		if err := im.store.ReplaceCategories(ctx, userID, cats); err != nil {
			log.Error().Err(err).Msg("Failed to replace categories")
			return nil, fmt.Errorf("%w: replace categories: %w", domain.ErrPersistenceFailure, err)
		}
		result.CategoriesReplaced = true
		result.CategoryCount = len(cats)
	}

	if name := strings.TrimSpace(payload.EnterpriseName.Value); payload.EnterpriseName.Set && name != "" {
		setting := domain.EnterpriseSetting{UserID: userID, Name: name}
		if err := im.store.UpsertEnterpriseSetting(ctx, setting); err != nil {
			log.Error().Err(err).Msg("Failed to update enterprise name")
			return nil, fmt.Errorf("%w: upsert enterprise setting: %w", domain.ErrPersistenceFailure, err)
		}
		result.EnterpriseNameUpdated = true
	}

	log.Info().
		Bool("transactions_replaced", result.TransactionsReplaced).
		Int("transactions", result.TransactionCount).
		Bool("categories_replaced", result.CategoriesReplaced).
		Int("categories", result.CategoryCount).
		Bool("enterprise_name_updated", result.EnterpriseNameUpdated).
		Msg("Import applied")

	return result, nil
}
