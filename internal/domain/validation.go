package domain

import (
	"fmt"
	"strings"
)

// ValidatePayload checks every present field of p before anything is written,
// so a bad record late in the document cannot leave an import half applied.
// Category names on transactions are not checked against the category list.
func ValidatePayload(p *ImportPayload) error {
	for i, tx := range p.Transactions.Value {
		if err := validateTransaction(tx); err != nil {
			return fmt.Errorf("%w: transaction %d: %w", ErrMalformedPayload, i, err)
		}
	}
	for i, cat := range p.Categories.Value {
		if err := validateCategory(cat); err != nil {
			return fmt.Errorf("%w: category %d: %w", ErrMalformedPayload, i, err)
		}
	}
	return nil
}

func validateTransaction(tx Transaction) error {
	if !tx.Date.IsValid() {
		return fmt.Errorf("invalid date %q", tx.Date.String())
	}
	if !tx.Type.Valid() {
		return fmt.Errorf("invalid type %q", tx.Type)
	}
	if strings.TrimSpace(tx.Category) == "" {
		return fmt.Errorf("category is required")
	}
	return nil
}

func validateCategory(cat Category) error {
	if strings.TrimSpace(cat.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if !cat.Type.Valid() {
		return fmt.Errorf("invalid type %q", cat.Type)
	}
	return nil
}
