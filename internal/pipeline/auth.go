package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvloznov/hikmacash/internal/domain"
)

// resolveUser maps every resolver failure to domain.ErrUnauthorized.
// Whether a blank credential is acceptable is the resolver's decision.
func resolveUser(ctx context.Context, auth AuthResolver, credential string) (string, error) {
	userID, err := auth.Resolve(ctx, credential)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
	}
	if userID == "" {
		return "", fmt.Errorf("%w: credential resolved to no user", domain.ErrUnauthorized)
	}
	return userID, nil
}
