// Package bigquery implements the record store on BigQuery. Replaces run as
// multi-statement transactions so a failed import leaves the previous rows.
package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/hikmacash/internal/domain"
)

// Dataset identifies the project and dataset holding the record tables.
type Dataset struct {
	ProjectID string
	DatasetID string
}

// Table returns the backtick-quoted fully qualified table name.
func (d Dataset) Table(name string) string {
	return fmt.Sprintf("`%s.%s.%s`", d.ProjectID, d.DatasetID, name)
}

// BigQueryRecordStore is the BigQuery implementation of the pipeline's
// RecordStore. It holds a shared client to avoid a new connection per call.
type BigQueryRecordStore struct {
	client *bigquery.Client
	ds     Dataset
	owned  bool
}

// NewBigQueryRecordStore creates a client for ds.ProjectID. Close releases it.
func NewBigQueryRecordStore(ctx context.Context, ds Dataset) (*BigQueryRecordStore, error) {
	client, err := bigquery.NewClient(ctx, ds.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("NewBigQueryRecordStore: creating client: %w", err)
	}
	return &BigQueryRecordStore{client: client, ds: ds, owned: true}, nil
}

// NewBigQueryRecordStoreWithClient wraps an existing client; Close leaves it open.
func NewBigQueryRecordStoreWithClient(client *bigquery.Client, ds Dataset) *BigQueryRecordStore {
	return &BigQueryRecordStore{client: client, ds: ds}
}

// Close closes the client if the store created it.
func (r *BigQueryRecordStore) Close() error {
	if r.owned && r.client != nil {
		return r.client.Close()
	}
	return nil
}

func (r *BigQueryRecordStore) ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error) {
	return ListTransactionsWithClient(ctx, r.client, r.ds, userID)
}

func (r *BigQueryRecordStore) ListCategories(ctx context.Context, userID string) ([]domain.Category, error) {
	return ListCategoriesWithClient(ctx, r.client, r.ds, userID)
}

func (r *BigQueryRecordStore) GetEnterpriseSetting(ctx context.Context, userID string) (*domain.EnterpriseSetting, error) {
	return GetEnterpriseSettingWithClient(ctx, r.client, r.ds, userID)
}

func (r *BigQueryRecordStore) ReplaceTransactions(ctx context.Context, userID string, txs []domain.Transaction) error {
	return ReplaceTransactionsWithClient(ctx, r.client, r.ds, userID, txs)
}

func (r *BigQueryRecordStore) ReplaceCategories(ctx context.Context, userID string, cats []domain.Category) error {
	return ReplaceCategoriesWithClient(ctx, r.client, r.ds, userID, cats)
}

func (r *BigQueryRecordStore) UpsertEnterpriseSetting(ctx context.Context, setting domain.EnterpriseSetting) error {
	return UpsertEnterpriseSettingWithClient(ctx, r.client, r.ds, setting)
}
