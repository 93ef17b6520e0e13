package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvloznov/hikmacash/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// PostgresRecordStore keeps records in PostgreSQL. Each replace runs in its
// own transaction: DELETE then COPY, committed together or not at all.
type PostgresRecordStore struct {
	db DB
}

// NewPostgresRecordStore creates a store over db, usually a *pgxpool.Pool.
func NewPostgresRecordStore(db DB) *PostgresRecordStore {
	return &PostgresRecordStore{db: db}
}

// ListTransactions returns the user's transactions in import order.
func (s *PostgresRecordStore) ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error) {
	rows, err := s.db.Query(ctx, listTransactionsSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("ListTransactions: query: %w", err)
	}
	defer rows.Close()

	txs := []domain.Transaction{}
	for rows.Next() {
		var (
			tx     domain.Transaction
			date   pgtype.Date
			kind   string
			amount string
		)
		if err := rows.Scan(&tx.ID, &tx.UserID, &date, &kind, &tx.Category, &tx.Client, &tx.Description, &amount); err != nil {
			return nil, fmt.Errorf("ListTransactions: scan: %w", err)
		}
		tx.Date = fromPgDate(date)
		tx.Type = domain.Kind(kind)
		if tx.Amount, err = parseAmount(amount); err != nil {
			return nil, fmt.Errorf("ListTransactions: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListTransactions: iterate: %w", err)
	}
	return txs, nil
}

// ListCategories returns the user's categories in import order.
func (s *PostgresRecordStore) ListCategories(ctx context.Context, userID string) ([]domain.Category, error) {
	rows, err := s.db.Query(ctx, listCategoriesSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("ListCategories: query: %w", err)
	}
	defer rows.Close()

	cats := []domain.Category{}
	for rows.Next() {
		var (
			c    domain.Category
			kind string
		)
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &kind); err != nil {
			return nil, fmt.Errorf("ListCategories: scan: %w", err)
		}
		c.Type = domain.Kind(kind)
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListCategories: iterate: %w", err)
	}
	return cats, nil
}

// GetEnterpriseSetting returns nil when the user has no setting.
func (s *PostgresRecordStore) GetEnterpriseSetting(ctx context.Context, userID string) (*domain.EnterpriseSetting, error) {
	var setting domain.EnterpriseSetting
	err := s.db.QueryRow(ctx, getEnterpriseSettingSQL, userID).Scan(&setting.UserID, &setting.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetEnterpriseSetting: %w", err)
	}
	return &setting, nil
}

// ReplaceTransactions deletes the user's transactions and copies in txs.
func (s *PostgresRecordStore) ReplaceTransactions(ctx context.Context, userID string, txs []domain.Transaction) error {
	err := s.replace(ctx, "transactions", userID, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, deleteTransactionsSQL, userID); err != nil {
			return fmt.Errorf("delete: %w", err)
		}
		return copyRows(ctx, tx, "transactions", transactionColumns, transactionRows(userID, txs))
	})
	if err != nil {
		return fmt.Errorf("ReplaceTransactions: %w", err)
	}
	return nil
}

// ReplaceCategories deletes the user's categories and copies in cats.
func (s *PostgresRecordStore) ReplaceCategories(ctx context.Context, userID string, cats []domain.Category) error {
	err := s.replace(ctx, "categories", userID, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, deleteCategoriesSQL, userID); err != nil {
			return fmt.Errorf("delete: %w", err)
		}
		return copyRows(ctx, tx, "categories", categoryColumns, categoryRows(userID, cats))
	})
	if err != nil {
		return fmt.Errorf("ReplaceCategories: %w", err)
	}
	return nil
}

// UpsertEnterpriseSetting creates or overwrites the user's setting.
func (s *PostgresRecordStore) UpsertEnterpriseSetting(ctx context.Context, setting domain.EnterpriseSetting) error {
	if _, err := s.db.Exec(ctx, upsertEnterpriseSettingSQL, setting.UserID, setting.Name); err != nil {
		return fmt.Errorf("UpsertEnterpriseSetting: %w", err)
	}
	return nil
}

// replace runs fn in a transaction holding the (collection, user) advisory lock.
func (s *PostgresRecordStore) replace(ctx context.Context, collection, userID string, fn func(pgx.Tx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // no-op after commit

	if _, err := tx.Exec(ctx, advisoryLockSQL, collection+":"+userID); err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func copyRows(ctx context.Context, tx pgx.Tx, table string, columns []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	n, err := tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("copy into %s: %w", table, err)
	}
	if int(n) != len(rows) {
		return fmt.Errorf("copy into %s: wrote %d of %d rows", table, n, len(rows))
	}
	return nil
}
