package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// TokenValidator defines the interface for JWT token validation.
// This abstraction enables testing with mock implementations.
type TokenValidator interface {
	// ValidateToken validates a JWT token string and returns the claims.
	// Returns an error if the token is invalid, expired, or has an
	// unauthorized issuer.
	ValidateToken(tokenString string) (*Claims, error)
}

// JWKSConfig contains configuration for the JWKS client.
type JWKSConfig struct {
	// EnableVerification controls whether JWT signatures are verified.
	// Set to false for development mode (parses tokens without verification).
	EnableVerification bool
	// Issuer is the only accepted token issuer.
	Issuer string
	// JWKSURL is the issuer's JWKS endpoint.
	JWKSURL string
}

// JWKSClient validates JWT tokens using the session provider's JWKS
// (JSON Web Key Set) endpoint.
type JWKSClient struct {
	jwks   keyfunc.Keyfunc
	config *JWKSConfig
}

// NewJWKSClient creates a new JWKS client. If verification is enabled, the
// key set is fetched up front; a failing JWKS endpoint is a startup error.
func NewJWKSClient(config *JWKSConfig) (*JWKSClient, error) {
	client := &JWKSClient{config: config}

	if !config.EnableVerification {
		return client, nil
	}

	if config.JWKSURL == "" {
		return nil, fmt.Errorf("jwks_url is required when verification is enabled")
	}

	jwks, err := keyfunc.NewDefaultCtx(context.Background(), []string{config.JWKSURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS client for %s: %w", config.JWKSURL, err)
	}
	client.jwks = jwks

	return client, nil
}

// ValidateToken validates a JWT token and returns the claims.
// If verification is disabled, it parses the token without signature
// validation. Otherwise it verifies the RSA signature against the JWKS keys
// and checks the issuer.
func (c *JWKSClient) ValidateToken(tokenString string) (*Claims, error) {
	if !c.config.EnableVerification {
		return c.parseUnverifiedToken(tokenString)
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		claims, ok := token.Claims.(*Claims)
		if !ok {
			return nil, errors.New("invalid claims type")
		}

		if c.config.Issuer != "" && claims.Issuer != c.config.Issuer {
			return nil, fmt.Errorf("unauthorized issuer: %s", claims.Issuer)
		}

		keyfuncFn := c.jwks.KeyfuncCtx(context.Background())
		return keyfuncFn(token)
	})
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, errors.New("invalid claims type")
	}

	return claims, nil
}

// parseUnverifiedToken parses a JWT without verifying the signature.
// Used in development mode when EnableVerification is false.
func (c *JWKSClient) parseUnverifiedToken(tokenString string) (*Claims, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	token, _, err := parser.ParseUnverified(tokenString, &Claims{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, errors.New("invalid claims type")
	}

	return claims, nil
}

// Ensure JWKSClient implements TokenValidator at compile time.
var _ TokenValidator = (*JWKSClient)(nil)
