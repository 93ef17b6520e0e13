package domain

import (
	"errors"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

func validTransaction() Transaction {
	return Transaction{
		Date:        civil.Date{Year: 2024, Month: 6, Day: 1},
		Type:        KindExpense,
		Category:    "Food",
		Description: "Groceries",
		Amount:      decimal.RequireFromString("12.50"),
	}
}

func TestValidatePayload(t *testing.T) {
	badType := validTransaction()
	badType.Type = "transfer"

	noCategory := validTransaction()
	noCategory.Category = "  "

	noDate := validTransaction()
	noDate.Date = civil.Date{}

	tests := []struct {
		name    string
		payload ImportPayload
		wantErr bool
	}{
		{
			name:    "empty payload",
			payload: ImportPayload{},
			wantErr: false,
		},
		{
			name:    "valid transactions and categories",
			payload: ImportPayload{
				Transactions: Some([]Transaction{validTransaction()}),
				Categories:   Some([]Category{{Name: "Food", Type: KindExpense}}),
			},
			wantErr: false,
		},
		{
			name:    "unknown transaction type",
			payload: ImportPayload{Transactions: Some([]Transaction{validTransaction(), badType})},
			wantErr: true,
		},
		{
			name:    "blank transaction category",
			payload: ImportPayload{Transactions: Some([]Transaction{noCategory})},
			wantErr: true,
		},
		{
			name:    "missing date",
			payload: ImportPayload{Transactions: Some([]Transaction{noDate})},
			wantErr: true,
		},
		{
			name:    "category without name",
			payload: ImportPayload{Categories: Some([]Category{{Type: KindIncome}})},
			wantErr: true,
		},
		{
			name:    "category with bad type",
			payload: ImportPayload{Categories: Some([]Category{{Name: "Salary", Type: "INCOME"}})},
			wantErr: true,
		},
		{
			name: "transaction category not among categories",
			payload: ImportPayload{
				Transactions: Some([]Transaction{validTransaction()}),
				Categories:   Some([]Category{{Name: "Rent", Type: KindExpense}}),
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePayload(&tt.payload)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidatePayload() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrMalformedPayload) {
				t.Errorf("ValidatePayload() error = %v, want ErrMalformedPayload", err)
			}
		})
	}
}

func TestKindValid(t *testing.T) {
	tests := []struct {
		kind Kind
		want bool
	}{
		{KindIncome, true},
		{KindExpense, true},
		{"", false},
		{"Income", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if got := tt.kind.Valid(); got != tt.want {
				t.Errorf("Kind(%q).Valid() = %v, want %v", tt.kind, got, tt.want)
			}
		})
	}
}
