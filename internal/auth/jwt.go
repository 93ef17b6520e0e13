// Package auth resolves bearer credentials issued by the identity service.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dvloznov/hikmacash/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// JWTResolver validates HS256 tokens and returns their subject as the user id.
type JWTResolver struct {
	secret []byte
	parser *jwt.Parser
}

// NewJWTResolver creates a resolver for tokens signed with secret. Issuer and
// audience are checked only when non-empty.
func NewJWTResolver(secret, issuer, audience string) (*JWTResolver, error) {
	if secret == "" {
		return nil, errors.New("NewJWTResolver: secret is required")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}

	return &JWTResolver{
		secret: []byte(secret),
		parser: jwt.NewParser(opts...),
	}, nil
}

// Resolve implements pipeline.AuthResolver. A "Bearer " prefix is tolerated.
func (r *JWTResolver) Resolve(_ context.Context, credential string) (string, error) {
	raw := strings.TrimSpace(credential)
	if after, ok := strings.CutPrefix(raw, "Bearer "); ok {
		raw = strings.TrimSpace(after)
	}
	if raw == "" {
		return "", fmt.Errorf("%w: empty token", domain.ErrUnauthorized)
	}

	claims := &jwt.RegisteredClaims{}
	_, err := r.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return r.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: token has no subject", domain.ErrUnauthorized)
	}
	return claims.Subject, nil
}
