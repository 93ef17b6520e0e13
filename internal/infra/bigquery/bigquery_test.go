package bigquery

import (
	"math/big"
	"strings"
	"testing"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/dvloznov/hikmacash/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

var testDataset = Dataset{ProjectID: "proj", DatasetID: "hikmacash"}

func TestDatasetTable(t *testing.T) {
	if got, want := testDataset.Table("transactions"), "`proj.hikmacash.transactions`"; got != want {
		t.Errorf("Table() = %q, want %q", got, want)
	}
}

func TestReplaceScripts(t *testing.T) {
	tests := []struct {
		name   string
		sql    string
		target string
	}{
		{"transactions", replaceTransactionsSQL(testDataset), "`proj.hikmacash.transactions`"},
		{"categories", replaceCategoriesSQL(testDataset), "`proj.hikmacash.categories`"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Statement order matters: the delete and insert must share one transaction.
			steps := []string{
				"BEGIN TRANSACTION;",
				"DELETE FROM " + tt.target + " WHERE user_id = @user_id;",
				"INSERT INTO " + tt.target,
				"FROM UNNEST(@rows) AS r;",
				"COMMIT TRANSACTION;",
				"EXCEPTION WHEN ERROR THEN",
				"ROLLBACK TRANSACTION;",
				"RAISE USING MESSAGE",
			}
			pos := 0
			for _, step := range steps {
				i := strings.Index(tt.sql[pos:], step)
				if i < 0 {
					t.Fatalf("script is missing %q after offset %d:\n%s", step, pos, tt.sql)
				}
				pos += i + len(step)
			}
		})
	}
}

func TestUpsertEnterpriseSettingSQL(t *testing.T) {
	sql := upsertEnterpriseSettingSQL(testDataset)
	for _, want := range []string{"MERGE `proj.hikmacash.enterprise_settings`", "WHEN MATCHED", "WHEN NOT MATCHED", "@enterprise_name"} {
		if !strings.Contains(sql, want) {
			t.Errorf("upsert SQL missing %q", want)
		}
	}
}

func TestToTransactionParams(t *testing.T) {
	client := "Acme"
	txs := []domain.Transaction{
		{ID: "t1", Date: civil.Date{Year: 2024, Month: 6, Day: 1}, Type: domain.KindIncome, Category: "Sales", Client: &client, Description: "Invoice", Amount: decimal.RequireFromString("1500.25")},
		{ID: "t2", Date: civil.Date{Year: 2024, Month: 6, Day: 2}, Type: domain.KindExpense, Category: "Office", Amount: decimal.RequireFromString("12.35")},
	}

	got := toTransactionParams(txs)
	if len(got) != 2 {
		t.Fatalf("params = %d, want 2", len(got))
	}
	if got[0].Seq != 0 || got[1].Seq != 1 {
		t.Errorf("seq = %d, %d; want 0, 1", got[0].Seq, got[1].Seq)
	}
	if got[0].Client != "Acme" || got[1].Client != "" {
		t.Errorf("clients = %q, %q", got[0].Client, got[1].Client)
	}
	if got[0].Amount.Cmp(big.NewRat(600100, 400)) != 0 {
		t.Errorf("amount = %s, want 1500.25", got[0].Amount.FloatString(2))
	}

	if empty := toTransactionParams(nil); empty == nil || len(empty) != 0 {
		t.Errorf("toTransactionParams(nil) = %#v, want empty non-nil slice", empty)
	}
}

func TestTransactionRowToDomain(t *testing.T) {
	tests := []struct {
		name       string
		row        TransactionRow
		wantClient *string
		wantErr    bool
	}{
		{
			name:       "with client",
			row:        TransactionRow{ID: "t1", Amount: "1500", Client: bigquery.NullString{StringVal: "Acme", Valid: true}},
			wantClient: ptr("Acme"),
		},
		{
			name: "null client",
			row:  TransactionRow{ID: "t2", Amount: "12.35"},
		},
		{
			name:    "bad amount",
			row:     TransactionRow{ID: "t3", Amount: "twelve"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.row.toDomain()
			if (err != nil) != tt.wantErr {
				t.Fatalf("toDomain() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if diff := cmp.Diff(tt.wantClient, got.Client); diff != "" {
				t.Errorf("client mismatch (-want +got):\n%s", diff)
			}
			if !got.Amount.Equal(decimal.RequireFromString(tt.row.Amount)) {
				t.Errorf("amount = %s, want %s", got.Amount, tt.row.Amount)
			}
		})
	}
}

func TestToCategoryParams(t *testing.T) {
	got := toCategoryParams([]domain.Category{{ID: "c1", Name: "Rent", Type: domain.KindExpense}})
	want := []categoryParam{{ID: "c1", Seq: 0, Name: "Rent", Type: "expense"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}
}

func ptr(s string) *string { return &s }
