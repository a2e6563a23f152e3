package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/upb/genos-ai/middleware"
	"github.com/upb/genos-ai/models"
	"github.com/upb/genos-ai/services/feedback"
	"github.com/upb/genos-ai/utils"
	"go.uber.org/zap"
)

// FeedbackRequest is the body of POST /api/v1/ai/feedback
type FeedbackRequest struct {
	GenerationID string `json:"generation_id" validate:"required,uuid"`
	Rating       string `json:"rating" validate:"required,oneof=positive negative"`
	Comment      string `json:"comment,omitempty" validate:"omitempty,max=2000"`
}

// FeedbackStore records and pages generation feedback
type FeedbackStore interface {
	Submit(ctx context.Context, orgID, userID, generationID uuid.UUID, rating models.FeedbackRating, comment string) (*models.Feedback, error)
	List(ctx context.Context, orgID uuid.UUID, page, pageSize int) (*feedback.Page, error)
}

// FeedbackHandler handles the feedback endpoints
type FeedbackHandler struct {
	store  FeedbackStore
	logger *zap.Logger
}

// NewFeedbackHandler creates a new FeedbackHandler
func NewFeedbackHandler(store FeedbackStore, logger *zap.Logger) *FeedbackHandler {
	return &FeedbackHandler{store: store, logger: logger}
}

// HandleSubmit handles POST /api/v1/ai/feedback
func (h *FeedbackHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orgID := middleware.GetOrgIDFromContext(ctx)
	userID := middleware.GetUserIDFromContext(ctx)
	if orgID == uuid.Nil || userID == uuid.Nil {
		_ = utils.WriteUnauthorized(w, "Missing tenant information")
		return
	}

	var body FeedbackRequest
	if err := utils.DecodeJSON(r, &body); err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}
	if err := utils.ValidateStruct(&body); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	generationID, _ := uuid.Parse(body.GenerationID)
	f, err := h.store.Submit(ctx, orgID, userID, generationID, models.FeedbackRating(body.Rating), body.Comment)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	logWriteError(h.logger, utils.WriteCreated(w, f))
}

// HandleList handles GET /api/v1/ai/feedback?page&pageSize
func (h *FeedbackHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orgID := middleware.GetOrgIDFromContext(ctx)
	if orgID == uuid.Nil {
		_ = utils.WriteUnauthorized(w, "Missing tenant information")
		return
	}

	page, err := utils.QueryInt(r, "page", 0)
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}
	pageSize, err := utils.QueryInt(r, "pageSize", feedback.DefaultPageSize)
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	result, err := h.store.List(ctx, orgID, page, pageSize)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	logWriteError(h.logger, utils.WriteOK(w, result))
}
