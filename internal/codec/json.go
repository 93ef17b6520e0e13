package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dvloznov/hikmacash/internal/domain"
	"github.com/shopspring/decimal"
)

func init() {
	// Amounts are written as JSON numbers, matching documents exported before.
	decimal.MarshalJSONWithoutQuotes = true
}

// document is the on-disk shape of a JSON export.
type document struct {
	Transactions   []domain.Transaction `json:"transactions"`
	Categories     []domain.Category    `json:"categories"`
	EnterpriseName string               `json:"enterpriseName,omitempty"`
}

// EncodeJSON writes snap as an indented JSON document.
func EncodeJSON(snap domain.Snapshot) ([]byte, error) {
	doc := document{
		Transactions:   snap.Transactions,
		Categories:     snap.Categories,
		EnterpriseName: snap.EnterpriseName,
	}
	if doc.Transactions == nil {
		doc.Transactions = []domain.Transaction{}
	}
	if doc.Categories == nil {
		doc.Categories = []domain.Category{}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("EncodeJSON: marshal: %w", err)
	}
	return data, nil
}

// DecodeJSON parses an uploaded document. The top level must be an object;
// keys that are absent or null leave the matching collection untouched.
func DecodeJSON(data []byte) (*domain.ImportPayload, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: top level is not a JSON object", domain.ErrMalformedPayload)
	}

	var p domain.ImportPayload
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedPayload, err)
	}
	return &p, nil
}
