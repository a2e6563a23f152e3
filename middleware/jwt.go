package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken is returned when the token is malformed or its signature does not verify
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned when the token has expired
	ErrTokenExpired = errors.New("token expired")
)

type tokenClaims struct {
	OrgID string `json:"org_id"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// HS256Validator validates tokens signed with a shared secret
type HS256Validator struct {
	secret []byte
	issuer string
}

// NewHS256Validator creates a validator. An empty issuer accepts any issuer.
func NewHS256Validator(secret, issuer string) *HS256Validator {
	return &HS256Validator{secret: []byte(secret), issuer: issuer}
}

// ValidateToken verifies the signature and expiry and returns the claims.
// A validator without a secret rejects every token.
func (v *HS256Validator) ValidateToken(_ context.Context, tokenString string) (*Claims, error) {
	if len(v.secret) == 0 {
		return nil, fmt.Errorf("%w: no signing secret configured", ErrInvalidToken)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	tc, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims := &Claims{
		Sub:   tc.Subject,
		OrgID: tc.OrgID,
		Email: tc.Email,
		Iss:   tc.Issuer,
	}
	if tc.ExpiresAt != nil {
		claims.Exp = tc.ExpiresAt.Unix()
	}
	if tc.IssuedAt != nil {
		claims.Iat = tc.IssuedAt.Unix()
	}
	return claims, nil
}

// IssueToken signs a token for a user of an organization. Production tokens
// come from the platform's auth system.
func IssueToken(secret, issuer string, orgID, userID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &tokenClaims{
		OrgID: orgID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
