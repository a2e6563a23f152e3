package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/upb/genos-ai/middleware"
	"github.com/upb/genos-ai/models"
	"github.com/upb/genos-ai/services/routing"
	"github.com/upb/genos-ai/utils"
	"go.uber.org/zap"
)

// ProviderStatusReader reports registered providers and their circuits
type ProviderStatusReader interface {
	Status() []routing.ProviderStatus
}

// BalanceReader reads an organization's token balance
type BalanceReader interface {
	Balance(ctx context.Context, orgID uuid.UUID) (*models.TokenBalance, error)
}

// AccountHandler serves provider status and token balance
type AccountHandler struct {
	providers ProviderStatusReader
	billing   BalanceReader
	logger    *zap.Logger
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(providers ProviderStatusReader, billing BalanceReader, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{providers: providers, billing: billing, logger: logger}
}

// HandleProviders handles GET /api/v1/ai/providers
func (h *AccountHandler) HandleProviders(w http.ResponseWriter, r *http.Request) {
	logWriteError(h.logger, utils.WriteOK(w, h.providers.Status()))
}

// HandleBalance handles GET /api/v1/ai/balance
func (h *AccountHandler) HandleBalance(w http.ResponseWriter, r *http.Request) {
	orgID := middleware.GetOrgIDFromContext(r.Context())
	if orgID == uuid.Nil {
		_ = utils.WriteUnauthorized(w, "Missing tenant information")
		return
	}

	balance, err := h.billing.Balance(r.Context(), orgID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	logWriteError(h.logger, utils.WriteOK(w, balance))
}
