package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/upb/genos-ai/services"
	"github.com/upb/genos-ai/utils"
	"go.uber.org/zap"
)

// OrgLimiter checks a per-organization limit
type OrgLimiter interface {
	Check(ctx context.Context, orgID uuid.UUID) error
}

// RateLimit rejects requests of organizations over their limit with 429.
// It must run after ExtractTenant.
func RateLimit(limiter OrgLimiter, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			orgID := GetOrgIDFromContext(ctx)
			if orgID == uuid.Nil {
				_ = utils.WriteUnauthorized(w, "Missing tenant information")
				return
			}

			if err := limiter.Check(ctx, orgID); err != nil {
				logger.Info("request rate limited",
					zap.String("request_id", GetRequestIDFromContext(ctx)),
					zap.String("org_id", orgID.String()))
				_ = utils.WriteTooManyRequests(w, err.Error(), services.GetErrorDetails(err))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
