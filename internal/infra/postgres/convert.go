package postgres

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/hikmacash/internal/domain"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

func toPgDate(d civil.Date) pgtype.Date {
	return pgtype.Date{Time: d.In(time.UTC), Valid: true}
}

func fromPgDate(d pgtype.Date) civil.Date {
	if !d.Valid {
		return civil.Date{}
	}
	return civil.DateOf(d.Time)
}

func toPgNumeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}

// transactionRows lays out txs in transactionColumns order for COPY.
func transactionRows(userID string, txs []domain.Transaction) [][]any {
	rows := make([][]any, len(txs))
	for i, tx := range txs {
		rows[i] = []any{
			userID,
			tx.ID,
			int32(i),
			toPgDate(tx.Date),
			string(tx.Type),
			tx.Category,
			tx.Client,
			tx.Description,
			toPgNumeric(tx.Amount),
		}
	}
	return rows
}

// categoryRows lays out cats in categoryColumns order for COPY.
func categoryRows(userID string, cats []domain.Category) [][]any {
	rows := make([][]any, len(cats))
	for i, c := range cats {
		rows[i] = []any{userID, c.ID, int32(i), c.Name, string(c.Type)}
	}
	return rows
}

func parseAmount(text string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse amount %q: %w", text, err)
	}
	return d, nil
}
