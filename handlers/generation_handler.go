package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/upb/genos-ai/middleware"
	"github.com/upb/genos-ai/models"
	"github.com/upb/genos-ai/services/audit"
	"github.com/upb/genos-ai/services/generation"
	"github.com/upb/genos-ai/utils"
	"go.uber.org/zap"
)

// GenerateRequest is the body of POST /api/v1/ai/generate
type GenerateRequest struct {
	Prompt            string `json:"prompt" validate:"required,min=1,max=5000"`
	ContentType       string `json:"content_type" validate:"required,oneof=post caption blog email hashtags title story reel"`
	BrandID           string `json:"brand_id" validate:"required,uuid"`
	Platform          string `json:"platform,omitempty" validate:"omitempty,max=50"`
	Tone              string `json:"tone,omitempty" validate:"omitempty,max=100"`
	Language          string `json:"language,omitempty" validate:"omitempty,max=16"`
	PreferredProvider string `json:"preferred_provider,omitempty" validate:"omitempty,oneof=claude gemini granite"`
	UseRAG            *bool  `json:"use_rag,omitempty"`
}

// Generator runs the generation pipeline
type Generator interface {
	Generate(ctx context.Context, req *generation.Request) (*generation.Response, error)
}

// HistoryReader pages a user's generation history
type HistoryReader interface {
	History(ctx context.Context, orgID, userID uuid.UUID, limit, offset int) (*audit.HistoryPage, error)
}

// GenerationHandler handles generation and history requests
type GenerationHandler struct {
	generator Generator
	history   HistoryReader
	logger    *zap.Logger
}

// NewGenerationHandler creates a new GenerationHandler
func NewGenerationHandler(generator Generator, history HistoryReader, logger *zap.Logger) *GenerationHandler {
	return &GenerationHandler{
		generator: generator,
		history:   history,
		logger:    logger,
	}
}

// HandleGenerate handles POST /api/v1/ai/generate
func (h *GenerationHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	orgID := middleware.GetOrgIDFromContext(ctx)
	userID := middleware.GetUserIDFromContext(ctx)
	if orgID == uuid.Nil || userID == uuid.Nil {
		h.logger.Error("missing tenant information in context", zap.String("request_id", requestID))
		_ = utils.WriteUnauthorized(w, "Missing tenant information")
		return
	}

	var body GenerateRequest
	if err := utils.DecodeJSON(r, &body); err != nil {
		h.logger.Warn("failed to parse request body",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	if err := utils.ValidateStruct(&body); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	// validated above
	brandID, _ := uuid.Parse(body.BrandID)

	resp, err := h.generator.Generate(ctx, &generation.Request{
		OrgID:             orgID,
		UserID:            userID,
		BrandID:           brandID,
		Prompt:            body.Prompt,
		ContentType:       models.ContentType(body.ContentType),
		Platform:          body.Platform,
		Tone:              body.Tone,
		Language:          body.Language,
		PreferredProvider: models.Provider(body.PreferredProvider),
		UseRAG:            body.UseRAG,
		RequestID:         requestID,
	})
	if err != nil {
		h.logger.Warn("generation failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	logWriteError(h.logger, utils.WriteOK(w, resp))
}

// HandleHistory handles GET /api/v1/ai/history?limit&offset. The page is
// written as is, without the data envelope.
func (h *GenerationHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orgID := middleware.GetOrgIDFromContext(ctx)
	userID := middleware.GetUserIDFromContext(ctx)
	if orgID == uuid.Nil || userID == uuid.Nil {
		_ = utils.WriteUnauthorized(w, "Missing tenant information")
		return
	}

	limit, err := utils.QueryInt(r, "limit", audit.DefaultHistoryLimit)
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}
	offset, err := utils.QueryInt(r, "offset", 0)
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	page, err := h.history.History(ctx, orgID, userID, limit, offset)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	logWriteError(h.logger, utils.WriteJSON(w, http.StatusOK, page))
}
