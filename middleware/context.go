package middleware

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	ClaimsKey    contextKey = "claims"
	OrgIDKey     contextKey = "org_id"
	UserIDKey    contextKey = "user_id"
)

// Claims are the bearer token claims the service relies on. Tokens are
// issued by the platform's auth system; sub is the user id.
type Claims struct {
	Sub   string `json:"sub"`
	OrgID string `json:"org_id"`
	Email string `json:"email,omitempty"`
	Iss   string `json:"iss"`
	Exp   int64  `json:"exp"`
	Iat   int64  `json:"iat"`
}

// fromContext returns the typed value stored under key, or the zero value.
func fromContext[T any](ctx context.Context, key contextKey) T {
	v, _ := ctx.Value(key).(T)
	return v
}

// GetRequestIDFromContext returns the request id, or "" outside a request.
func GetRequestIDFromContext(ctx context.Context) string {
	return fromContext[string](ctx, RequestIDKey)
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetClaimsFromContext returns the validated token claims set by RequireAuth.
func GetClaimsFromContext(ctx context.Context) *Claims {
	return fromContext[*Claims](ctx, ClaimsKey)
}

func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, ClaimsKey, claims)
}

// GetOrgIDFromContext returns the tenant organization, or uuid.Nil when
// ExtractTenant has not run.
func GetOrgIDFromContext(ctx context.Context) uuid.UUID {
	return fromContext[uuid.UUID](ctx, OrgIDKey)
}

func WithOrgID(ctx context.Context, orgID uuid.UUID) context.Context {
	return context.WithValue(ctx, OrgIDKey, orgID)
}

// GetUserIDFromContext returns the authenticated user, or uuid.Nil.
func GetUserIDFromContext(ctx context.Context) uuid.UUID {
	return fromContext[uuid.UUID](ctx, UserIDKey)
}

func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}
