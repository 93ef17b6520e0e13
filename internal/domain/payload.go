package domain

import (
	"bytes"
	"encoding/json"
)

// Optional marks a JSON field whose presence matters. A missing key and an
// explicit null both leave Set false.
type Optional[T any] struct {
	Value T
	Set   bool
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// IsZero lets encoding/json drop unset fields tagged omitzero.
func (o Optional[T]) IsZero() bool {
	return !o.Set
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		o.Value, o.Set = zero, false
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Set = true
	return nil
}

// ImportPayload is the parsed form of an uploaded export document. Each
// collection is replaced only when its key is present.
type ImportPayload struct {
	Transactions   Optional[[]Transaction] `json:"transactions,omitzero"`
	Categories     Optional[[]Category]    `json:"categories,omitzero"`
	EnterpriseName Optional[string]        `json:"enterpriseName,omitzero"`
}

// Stamp assigns every record to userID, overriding whatever owner the
// uploaded document claimed. newID fills in missing record ids.
func (p *ImportPayload) Stamp(userID string, newID func() string) {
	for i := range p.Transactions.Value {
		tx := &p.Transactions.Value[i]
		tx.UserID = userID
		if tx.ID == "" {
			tx.ID = newID()
		}
		if tx.Client != nil && *tx.Client == "" {
			tx.Client = nil
		}
	}
	for i := range p.Categories.Value {
		cat := &p.Categories.Value[i]
		cat.UserID = userID
		if cat.ID == "" {
			cat.ID = newID()
		}
	}
}
