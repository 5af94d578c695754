package auth

import (
	"context"
	"fmt"

	"github.com/yardsketch/yardsketch-engine/pkg/apperrors"
)

// GetOwnerIDFromContext extracts the owner identifier from JWT claims in the
// context. The subject claim is preferred; email is the fallback for tokens
// minted without a stable subject. Returns empty string if not authenticated.
func GetOwnerIDFromContext(ctx context.Context) string {
	claims, ok := GetClaims(ctx)
	if !ok || claims == nil {
		return ""
	}
	if claims.Subject != "" {
		return claims.Subject
	}
	return claims.Email
}

// RequireOwnerIDFromContext extracts the owner identifier from context and
// returns an error if not found. Use this when the operation requires an
// authenticated owner.
func RequireOwnerIDFromContext(ctx context.Context) (string, error) {
	ownerID := GetOwnerIDFromContext(ctx)
	if ownerID == "" {
		return "", fmt.Errorf("owner ID not found in context: %w", apperrors.ErrUnauthorized)
	}
	return ownerID, nil
}
