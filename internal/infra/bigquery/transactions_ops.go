package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/hikmacash/internal/domain"
	"google.golang.org/api/iterator"
)

const transactionsTable = "transactions"

func listTransactionsSQL(ds Dataset) string {
	return `
		SELECT
		  id,
		  user_id,
		  date,
		  type,
		  category,
		  client,
		  description,
		  CAST(amount AS STRING) AS amount
		FROM ` + ds.Table(transactionsTable) + `
		WHERE user_id = @user_id
		ORDER BY seq, id`
}

func replaceTransactionsSQL(ds Dataset) string {
	return replaceScript(
		ds.Table(transactionsTable),
		"user_id, id, seq, date, type, category, client, description, amount",
		"@user_id, r.id, r.seq, r.date, r.type, r.category, NULLIF(r.client, ''), r.description, r.amount",
	)
}

// ListTransactionsWithClient returns the user's transactions in import order
// using the provided BigQuery client.
func ListTransactionsWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, userID string) ([]domain.Transaction, error) {
	q := client.Query(listTransactionsSQL(ds))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListTransactions: query read: %w", err)
	}

	txs := []domain.Transaction{}
	for {
		var r TransactionRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListTransactions: iter next: %w", err)
		}
		tx, err := r.toDomain()
		if err != nil {
			return nil, fmt.Errorf("ListTransactions: %w", err)
		}
		txs = append(txs, tx)
	}

	return txs, nil
}

// ReplaceTransactionsWithClient swaps the user's transactions for txs in a
// single multi-statement transaction.
func ReplaceTransactionsWithClient(ctx context.Context, client *bigquery.Client, ds Dataset, userID string, txs []domain.Transaction) error {
	params := []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "rows", Value: toTransactionParams(txs)},
	}
	if err := runDML(ctx, client, replaceTransactionsSQL(ds), params); err != nil {
		return fmt.Errorf("ReplaceTransactions: %w", err)
	}
	return nil
}
