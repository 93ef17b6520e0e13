package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/dvloznov/hikmacash/internal/domain"
)

// StaticResolver resolves every credential to a fixed user. The CLI uses it
// when an operator acts on behalf of a user named on the command line.
type StaticResolver struct {
	UserID string
}

// Resolve returns the configured user id, or ErrUnauthorized when none is set.
func (r StaticResolver) Resolve(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
	}
	userID := strings.TrimSpace(r.UserID)
	if userID == "" {
		return "", fmt.Errorf("%w: no user configured", domain.ErrUnauthorized)
	}
	return userID, nil
}
