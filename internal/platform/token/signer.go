// Package token signs and verifies HS256 JWTs carrying arbitrary claims.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrMissingSecret is returned when signing or parsing without a secret.
	ErrMissingSecret = errors.New("token: secret must not be empty")
	// ErrTokenExpired is returned for tokens past their exp claim.
	ErrTokenExpired = errors.New("token: expired")
	// ErrTokenInvalid is returned for malformed or tampered tokens.
	ErrTokenInvalid = errors.New("token: invalid")
)

// Reserved claim names managed by the signer.
const (
	ClaimIssuedAt  = "iat"
	ClaimExpiresAt = "exp"
	ClaimID        = "jti"
	ClaimIssuer    = "iss"
)

// HMACSigner issues HS256 tokens.
type HMACSigner struct {
	issuer string
	now    func() time.Time
}

// Option configures HMACSigner.
type Option func(*HMACSigner)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *HMACSigner) {
		if now != nil {
			s.now = now
		}
	}
}

// NewHMACSigner constructs a signer stamping the given issuer.
func NewHMACSigner(issuer string, opts ...Option) *HMACSigner {
	s := &HMACSigner{issuer: issuer, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sign copies claims, adds iat/exp/jti (and iss when configured) and signs
// the result with secret.
func (s *HMACSigner) Sign(claims map[string]any, secret string, expiresIn time.Duration) (string, error) {
	if secret == "" {
		return "", ErrMissingSecret
	}
	if expiresIn <= 0 {
		return "", fmt.Errorf("token: expiry must be positive, got %s", expiresIn)
	}

	now := s.now()
	mapClaims := make(jwt.MapClaims, len(claims)+4)
	for k, v := range claims {
		mapClaims[k] = v
	}
	mapClaims[ClaimIssuedAt] = jwt.NewNumericDate(now)
	mapClaims[ClaimExpiresAt] = jwt.NewNumericDate(now.Add(expiresIn))
	mapClaims[ClaimID] = uuid.NewString()
	if s.issuer != "" {
		mapClaims[ClaimIssuer] = s.issuer
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, mapClaims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Parse verifies tokenString against secret and returns its claims. It is the
// counterpart of Sign for confirming an activation token.
func (s *HMACSigner) Parse(tokenString, secret string) (jwt.MapClaims, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}

	parserOptions := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(s.issuer))
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, parserOptions...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
