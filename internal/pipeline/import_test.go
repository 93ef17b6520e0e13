package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/dvloznov/hikmacash/internal/domain"
	"github.com/dvloznov/hikmacash/internal/infra/inmemory"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"
)

var decimalEqual = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return "gen-" + string(rune('0'+n))
	}
}

func TestImport_ExportedDocumentRoundTrips(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewRecordStore()
	seedStore(t, store, "user-a", acmeTransactions(), []domain.Category{
		{ID: "c1", Name: "Sales", Type: domain.KindIncome},
		{ID: "c2", Name: "Office", Type: domain.KindExpense},
	})
	objects := inmemory.NewObjectStore("b")

	exp := NewExporter(newMockAuth(), store, objects, WithClock(fixedClock), WithTempDir(t.TempDir()))
	res, err := exp.Export(ctx, "token-a", ExportRequest{Format: "json", EnterpriseName: "Acme"})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	obj, _ := objects.Get(res.Key)

	imp := NewImporter(newMockAuth(), store)
	if _, err := imp.Import(ctx, "token-b", obj.Data); err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	wantTxs, _ := store.ListTransactions(ctx, "user-a")
	gotTxs, _ := store.ListTransactions(ctx, "user-b")
	ignoreOwner := cmpopts.IgnoreFields(domain.Transaction{}, "UserID")
	if diff := cmp.Diff(wantTxs, gotTxs, decimalEqual, ignoreOwner); diff != "" {
		t.Errorf("transactions mismatch (-want +got):\n%s", diff)
	}
	for _, tx := range gotTxs {
		if tx.UserID != "user-b" {
			t.Errorf("transaction %s owned by %q, want user-b", tx.ID, tx.UserID)
		}
	}

	setting, _ := store.GetEnterpriseSetting(ctx, "user-b")
	if setting == nil || setting.Name != "Acme" {
		t.Errorf("enterprise setting = %+v, want Acme", setting)
	}
}

func TestImport_ReplacesExactly(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewRecordStore()
	seedStore(t, store, "user-a", acmeTransactions(), nil)

	doc := []byte(`{"transactions":[{"id":"n1","date":"2024-07-01","type":"expense","category":"Rent","description":"July","amount":900}]}`)
	got, err := NewImporter(newMockAuth(), store).Import(ctx, "token-a", doc)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if !got.TransactionsReplaced || got.TransactionCount != 1 || got.CategoriesReplaced {
		t.Errorf("ImportResult = %+v", got)
	}

	txs, _ := store.ListTransactions(ctx, "user-a")
	if len(txs) != 1 || txs[0].ID != "n1" || !txs[0].Amount.Equal(decimal.NewFromInt(900)) {
		t.Errorf("transactions after import = %+v", txs)
	}
}

func TestImport_EmptyCollectionClears(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewRecordStore()
	seedStore(t, store, "user-a", acmeTransactions(), []domain.Category{{ID: "c1", Name: "Sales", Type: domain.KindIncome}})

	if _, err := NewImporter(newMockAuth(), store).Import(ctx, "token-a", []byte(`{"transactions":[],"categories":null}`)); err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	txs, _ := store.ListTransactions(ctx, "user-a")
	if len(txs) != 0 {
		t.Errorf("transactions = %d, want 0", len(txs))
	}
	cats, _ := store.ListCategories(ctx, "user-a")
	if len(cats) != 1 {
		t.Errorf("categories = %d, want 1 (null must leave them alone)", len(cats))
	}
}

func TestImport_CategoriesOnly(t *testing.T) {
	ctx := context.Background()
	backing := inmemory.NewRecordStore()
	seedStore(t, backing, "user-a", acmeTransactions(), []domain.Category{{ID: "c1", Name: "Sales", Type: domain.KindIncome}})

	store := &mockRecordStore{
		ReplaceTransactionsFunc: backing.ReplaceTransactions,
		ReplaceCategoriesFunc:   backing.ReplaceCategories,
	}

	imp := NewImporter(newMockAuth(), store, WithIDGenerator(sequentialIDs()))
	got, err := imp.Import(ctx, "token-a", []byte(`{"categories":[{"name":"Rent","type":"expense"}]}`))
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if got.TransactionsReplaced || !got.CategoriesReplaced || got.EnterpriseNameUpdated {
		t.Errorf("ImportResult = %+v", got)
	}
	if diff := cmp.Diff([]string{"ReplaceCategories"}, store.Calls()); diff != "" {
		t.Errorf("store calls mismatch (-want +got):\n%s", diff)
	}

	cats, _ := backing.ListCategories(ctx, "user-a")
	want := []domain.Category{{ID: "gen-1", UserID: "user-a", Name: "Rent", Type: domain.KindExpense}}
	if diff := cmp.Diff(want, cats); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}
	txs, _ := backing.ListTransactions(ctx, "user-a")
	if len(txs) != 2 {
		t.Errorf("transactions = %d, want untouched 2", len(txs))
	}
}

func TestImport_StampsCallerOwnership(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewRecordStore()
	seedStore(t, store, "user-b", acmeTransactions(), nil)

	doc := []byte(`{"transactions":[{"id":"x","userId":"user-b","date":"2024-06-01","type":"income","category":"Sales","client":"","description":"","amount":1}]}`)
	if _, err := NewImporter(newMockAuth(), store).Import(ctx, "token-a", doc); err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	mine, _ := store.ListTransactions(ctx, "user-a")
	if len(mine) != 1 || mine[0].UserID != "user-a" || mine[0].Client != nil {
		t.Errorf("user-a transactions = %+v", mine)
	}
	theirs, _ := store.ListTransactions(ctx, "user-b")
	if len(theirs) != 2 {
		t.Errorf("user-b transactions = %d, want untouched 2", len(theirs))
	}
}

func TestImport_RejectsBeforeWriting(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `hello`},
		{"top-level array", `[{"transactions":[]}]`},
		{"unknown kind", `{"transactions":[{"date":"2024-06-01","type":"refund","category":"Sales","amount":1}]}`},
		{"blank category", `{"transactions":[{"date":"2024-06-01","type":"income","category":" ","amount":1}]}`},
		{"bad date", `{"transactions":[{"date":"2024-13-45","type":"income","category":"Sales","amount":1}]}`},
		{"blank category name", `{"transactions":[],"categories":[{"name":"","type":"income"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockRecordStore{}
			_, err := NewImporter(newMockAuth(), store).Import(context.Background(), "token-a", []byte(tt.doc))
			if !errors.Is(err, domain.ErrMalformedPayload) {
				t.Fatalf("Import() error = %v, want ErrMalformedPayload", err)
			}
			if calls := store.Calls(); len(calls) != 0 {
				t.Errorf("store calls = %v, want none", calls)
			}
		})
	}
}

func TestImport_Unauthorized(t *testing.T) {
	store := &mockRecordStore{}
	_, err := NewImporter(newMockAuth(), store).Import(context.Background(), "nope", []byte(`{}`))
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("Import() error = %v, want ErrUnauthorized", err)
	}
	if calls := store.Calls(); len(calls) != 0 {
		t.Errorf("store calls = %v, want none", calls)
	}
}

func TestImport_FailedReplaceKeepsPriorState(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewRecordStore()
	seedStore(t, store, "user-a", acmeTransactions(), []domain.Category{{ID: "c1", Name: "Sales", Type: domain.KindIncome}})

	dbErr := errors.New("deadlock detected")
	var attempted []string
	store.FailWith = func(op, userID string) error {
		attempted = append(attempted, op)
		if op == "ReplaceTransactions" {
			return dbErr
		}
		return nil
	}

	doc := []byte(`{"transactions":[],"categories":[],"enterpriseName":"New"}`)
	_, err := NewImporter(newMockAuth(), store).Import(ctx, "token-a", doc)
	if !errors.Is(err, domain.ErrPersistenceFailure) || !errors.Is(err, dbErr) {
		t.Fatalf("Import() error = %v, want ErrPersistenceFailure wrapping cause", err)
	}
	if diff := cmp.Diff([]string{"ReplaceTransactions"}, attempted); diff != "" {
		t.Errorf("attempted operations mismatch (-want +got):\n%s", diff)
	}

	store.FailWith = nil
	txs, _ := store.ListTransactions(ctx, "user-a")
	if len(txs) != 2 {
		t.Errorf("transactions = %d, want prior 2", len(txs))
	}
	cats, _ := store.ListCategories(ctx, "user-a")
	if len(cats) != 1 {
		t.Errorf("categories = %d, want prior 1", len(cats))
	}
}

func TestImport_CompletedUnitsStayApplied(t *testing.T) {
	ctx := context.Background()
	store := inmemory.NewRecordStore()
	seedStore(t, store, "user-a", acmeTransactions(), []domain.Category{{ID: "c1", Name: "Sales", Type: domain.KindIncome}})
	store.FailWith = func(op, userID string) error {
		if op == "ReplaceCategories" {
			return errors.New("timeout")
		}
		return nil
	}

	_, err := NewImporter(newMockAuth(), store).Import(ctx, "token-a", []byte(`{"transactions":[],"categories":[]}`))
	if !errors.Is(err, domain.ErrPersistenceFailure) {
		t.Fatalf("Import() error = %v, want ErrPersistenceFailure", err)
	}

	store.FailWith = nil
	txs, _ := store.ListTransactions(ctx, "user-a")
	if len(txs) != 0 {
		t.Errorf("transactions = %d, want replaced with 0", len(txs))
	}
	cats, _ := store.ListCategories(ctx, "user-a")
	if len(cats) != 1 {
		t.Errorf("categories = %d, want prior 1", len(cats))
	}
}

func TestImport_EnterpriseName(t *testing.T) {
	tests := []struct {
		name       string
		doc        string
		wantUpsert bool
	}{
		{"set", `{"enterpriseName":"Acme"}`, true},
		{"empty", `{"enterpriseName":""}`, false},
		{"whitespace", `{"enterpriseName":"   "}`, false},
		{"null", `{"enterpriseName":null}`, false},
		{"absent", `{}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *domain.EnterpriseSetting
			store := &mockRecordStore{
				UpsertEnterpriseSettingFunc: func(_ context.Context, s domain.EnterpriseSetting) error {
					got = &s
					return nil
				},
			}

			res, err := NewImporter(newMockAuth(), store).Import(context.Background(), "token-a", []byte(tt.doc))
			if err != nil {
				t.Fatalf("Import() error = %v", err)
			}
			if res.EnterpriseNameUpdated != tt.wantUpsert || (got != nil) != tt.wantUpsert {
				t.Fatalf("upsert = %+v, want called %v", got, tt.wantUpsert)
			}
			if got != nil && (got.UserID != "user-a" || got.Name != "Acme") {
				t.Errorf("upserted setting = %+v", got)
			}
		})
	}
}
