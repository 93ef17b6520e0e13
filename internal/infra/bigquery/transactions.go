package bigquery

import (
	"fmt"
	"math/big"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/dvloznov/hikmacash/internal/domain"
	"github.com/shopspring/decimal"
)

// TransactionRow is a row read from the transactions table. Amount is read
// as a string so no precision is lost on the way to decimal.Decimal.
type TransactionRow struct {
	ID          string              `bigquery:"id"`
	UserID      string              `bigquery:"user_id"`
	Date        civil.Date          `bigquery:"date"`
	Type        string              `bigquery:"type"`
	Category    string              `bigquery:"category"`
	Client      bigquery.NullString `bigquery:"client"`
	Description bigquery.NullString `bigquery:"description"`
	Amount      string              `bigquery:"amount"`
}

// transactionParam is one element of the @rows array parameter. Client is
// empty for none and turned into NULL by the script.
type transactionParam struct {
	ID          string     `bigquery:"id"`
	Seq         int64      `bigquery:"seq"`
	Date        civil.Date `bigquery:"date"`
	Type        string     `bigquery:"type"`
	Category    string     `bigquery:"category"`
	Client      string     `bigquery:"client"`
	Description string     `bigquery:"description"`
	Amount      *big.Rat   `bigquery:"amount"`
}

func toTransactionParams(txs []domain.Transaction) []transactionParam {
	params := make([]transactionParam, 0, len(txs))
	for i, tx := range txs {
		params = append(params, transactionParam{
			ID:          tx.ID,
			Seq:         int64(i),
			Date:        tx.Date,
			Type:        string(tx.Type),
			Category:    tx.Category,
			Client:      tx.ClientName(),
			Description: tx.Description,
			Amount:      tx.Amount.Rat(),
		})
	}
	return params
}

func (r TransactionRow) toDomain() (domain.Transaction, error) {
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("transaction %s: parse amount %q: %w", r.ID, r.Amount, err)
	}

	tx := domain.Transaction{
		ID:          r.ID,
		UserID:      r.UserID,
		Date:        r.Date,
		Type:        domain.Kind(r.Type),
		Category:    r.Category,
		Description: r.Description.StringVal,
		Amount:      amount,
	}
	if r.Client.Valid && r.Client.StringVal != "" {
		client := r.Client.StringVal
		tx.Client = &client
	}
	return tx, nil
}
