package domain

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Kind classifies a transaction or category as money coming in or going out.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// Transaction is one income or expense entry owned by a single user.
// Amount is positive; the sign is carried by Type.
type Transaction struct {
	ID          string          `json:"id,omitempty"`
	UserID      string          `json:"userId,omitempty"`
	Date        civil.Date      `json:"date"`
	Type        Kind            `json:"type"`
	Category    string          `json:"category"`
	Client      *string         `json:"client,omitempty"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// ClientName returns the client or the empty string when none is set.
func (t Transaction) ClientName() string {
	if t.Client == nil {
		return ""
	}
	return *t.Client
}

// Category is a user-defined label for transactions of one kind.
type Category struct {
	ID     string `json:"id,omitempty"`
	UserID string `json:"userId,omitempty"`
	Name   string `json:"name"`
	Type   Kind   `json:"type"`
}

// EnterpriseSetting holds the display name printed on generated artifacts.
// There is at most one per user.
type EnterpriseSetting struct {
	UserID string `json:"userId"`
	Name   string `json:"enterpriseName"`
}

// Snapshot is the complete set of records exported for one user.
type Snapshot struct {
	Transactions   []Transaction
	Categories     []Category
	EnterpriseName string
}
