package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/upb/genos-ai/middleware"
	"github.com/upb/genos-ai/services/generation"
	"github.com/upb/genos-ai/utils"
	"go.uber.org/zap"
)

// IndexRequest is the body of POST /api/v1/ai/index
type IndexRequest struct {
	Type    string `json:"type" validate:"required,oneof=brand content all"`
	BrandID string `json:"brand_id,omitempty" validate:"omitempty,uuid"`
}

// IndexRunner indexes an organization's brands and content
type IndexRunner interface {
	Index(ctx context.Context, req *generation.IndexRequest) (*generation.IndexResult, error)
}

// IndexHandler handles RAG indexing requests
type IndexHandler struct {
	indexer IndexRunner
	logger  *zap.Logger
}

// NewIndexHandler creates a new IndexHandler
func NewIndexHandler(indexer IndexRunner, logger *zap.Logger) *IndexHandler {
	return &IndexHandler{indexer: indexer, logger: logger}
}

// HandleIndex handles POST /api/v1/ai/index
func (h *IndexHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	orgID := middleware.GetOrgIDFromContext(ctx)
	if orgID == uuid.Nil {
		_ = utils.WriteUnauthorized(w, "Missing tenant information")
		return
	}

	var body IndexRequest
	if err := utils.DecodeJSON(r, &body); err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}
	if err := utils.ValidateStruct(&body); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	req := &generation.IndexRequest{
		OrgID:     orgID,
		UserID:    middleware.GetUserIDFromContext(ctx),
		Type:      generation.IndexType(body.Type),
		RequestID: requestID,
	}
	if body.BrandID != "" {
		brandID, _ := uuid.Parse(body.BrandID)
		req.BrandID = &brandID
	}

	result, err := h.indexer.Index(ctx, req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("rag index completed",
		zap.String("request_id", requestID),
		zap.String("org_id", orgID.String()),
		zap.String("type", body.Type),
		zap.Int("indexed", result.Indexed))

	logWriteError(h.logger, utils.WriteOK(w, result))
}
