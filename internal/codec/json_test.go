package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/hikmacash/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

var decimalEqual = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func sampleSnapshot() domain.Snapshot {
	client := "Globex"
	return domain.Snapshot{
		Transactions: []domain.Transaction{
			{
				ID:          "t1",
				UserID:      "u1",
				Date:        civil.Date{Year: 2024, Month: 5, Day: 30},
				Type:        domain.KindIncome,
				Category:    "Sales",
				Client:      &client,
				Description: "Invoice 42",
				Amount:      decimal.RequireFromString("1500.00"),
			},
			{
				ID:          "t2",
				UserID:      "u1",
				Date:        civil.Date{Year: 2024, Month: 5, Day: 31},
				Type:        domain.KindExpense,
				Category:    "Food",
				Description: "Lunch",
				Amount:      decimal.RequireFromString("12.35"),
			},
		},
		Categories: []domain.Category{
			{ID: "c1", UserID: "u1", Name: "Food", Type: domain.KindExpense},
		},
		EnterpriseName: "Acme",
	}
}

func TestJSONRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		snap domain.Snapshot
	}{
		{"full snapshot", sampleSnapshot()},
		{"no enterprise name", domain.Snapshot{
			Transactions: sampleSnapshot().Transactions,
			Categories:   []domain.Category{},
		}},
		{"empty collections", domain.Snapshot{
			Transactions:   []domain.Transaction{},
			Categories:     []domain.Category{},
			EnterpriseName: "Solo",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodeJSON(tt.snap)
			if err != nil {
				t.Fatalf("EncodeJSON: %v", err)
			}

			p, err := DecodeJSON(data)
			if err != nil {
				t.Fatalf("DecodeJSON: %v", err)
			}

			got := domain.Snapshot{
				Transactions:   p.Transactions.Value,
				Categories:     p.Categories.Value,
				EnterpriseName: p.EnterpriseName.Value,
			}
			if diff := cmp.Diff(tt.snap, got, decimalEqual); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
			if !p.Transactions.Set || !p.Categories.Set {
				t.Errorf("collections should be present after decode")
			}
			if p.EnterpriseName.Set != (tt.snap.EnterpriseName != "") {
				t.Errorf("EnterpriseName.Set = %v for %q", p.EnterpriseName.Set, tt.snap.EnterpriseName)
			}
		})
	}
}

func TestEncodeJSONShape(t *testing.T) {
	data, err := EncodeJSON(sampleSnapshot())
	if err != nil {
		t.Fatalf("EncodeJSON: %v", err)
	}

	if !bytes.Contains(data, []byte("\n  \"transactions\"")) {
		t.Errorf("expected indented output, got:\n%s", data)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for _, key := range []string{"transactions", "categories", "enterpriseName"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}

	var txs []map[string]interface{}
	if err := json.Unmarshal(raw["transactions"], &txs); err != nil {
		t.Fatalf("Unmarshal transactions: %v", err)
	}
	if _, ok := txs[0]["amount"].(float64); !ok {
		t.Errorf("amount should be a JSON number, got %T", txs[0]["amount"])
	}
	if got := txs[0]["date"]; got != "2024-05-30" {
		t.Errorf("date = %v, want 2024-05-30", got)
	}
	if _, ok := txs[1]["client"]; ok {
		t.Errorf("absent client should be omitted")
	}
}

func TestEncodeJSONDeterministic(t *testing.T) {
	a, err := EncodeJSON(sampleSnapshot())
	if err != nil {
		t.Fatalf("EncodeJSON: %v", err)
	}
	b, err := EncodeJSON(sampleSnapshot())
	if err != nil {
		t.Fatalf("EncodeJSON: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Errorf("two encodings of the same snapshot differ")
	}
}

func TestDecodeJSONMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"not json", "hello"},
		{"array", `[{"name":"Food"}]`},
		{"null", "null"},
		{"string", `"transactions"`},
		{"truncated", `{"transactions": [`},
		{"wrong field type", `{"transactions": {"id": "t1"}}`},
		{"bad date", `{"transactions": [{"date": "yesterday", "type": "income"}]}`},
		{"bad amount", `{"transactions": [{"date": "2024-01-01", "amount": "lots"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeJSON([]byte(tt.input))
			if !errors.Is(err, domain.ErrMalformedPayload) {
				t.Errorf("DecodeJSON(%q) error = %v, want ErrMalformedPayload", tt.input, err)
			}
		})
	}
}

func TestDecodeJSONCategoriesOnly(t *testing.T) {
	p, err := DecodeJSON([]byte(`{"categories":[{"name":"Food","type":"expense"}]}`))
	if err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	if p.Transactions.Set {
		t.Errorf("transactions should be absent")
	}
	want := []domain.Category{{Name: "Food", Type: domain.KindExpense}}
	if diff := cmp.Diff(want, p.Categories.Value); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}
}

// Stores disagree on trailing zeros (BigQuery NUMERIC reads 12.50 back as
// 12.5); the artifact must not depend on it.
func TestEncodeIgnoresAmountScale(t *testing.T) {
	withScale := sampleSnapshot()
	withScale.Transactions[1].Amount = decimal.RequireFromString("12.50")

	trimmed := sampleSnapshot()
	trimmed.Transactions[0].Amount = decimal.RequireFromString("1500")
	trimmed.Transactions[1].Amount = decimal.RequireFromString("12.5")

	a, err := EncodeJSON(withScale)
	if err != nil {
		t.Fatalf("EncodeJSON: %v", err)
	}
	b, err := EncodeJSON(trimmed)
	if err != nil {
		t.Fatalf("EncodeJSON: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Errorf("JSON differs by amount scale:\n%s\n---\n%s", a, b)
	}
	if !bytes.Contains(a, []byte(`"amount": 12.5`)) {
		t.Errorf("expected trimmed amount in:\n%s", a)
	}

	x, err := EncodeExcel(withScale, exportDay)
	if err != nil {
		t.Fatalf("EncodeExcel: %v", err)
	}
	y, err := EncodeExcel(trimmed, exportDay)
	if err != nil {
		t.Fatalf("EncodeExcel: %v", err)
	}
	if !bytes.Equal(x, y) {
		t.Error("spreadsheet differs by amount scale")
	}
}
