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

// ImproveRequest is the body of POST /api/v1/ai/improve
type ImproveRequest struct {
	Content     string `json:"content" validate:"required,min=1,max=10000"`
	Instruction string `json:"instruction" validate:"required,min=1,max=2000"`
	BrandID     string `json:"brand_id" validate:"required,uuid"`
}

// SuggestRequest is the body of POST /api/v1/ai/suggest
type SuggestRequest struct {
	Content string `json:"content" validate:"required,min=1,max=5000"`
	Type    string `json:"type" validate:"required,oneof=hashtags title excerpt cta"`
	BrandID string `json:"brand_id" validate:"required,uuid"`
}

// Assistant rewrites content and proposes suggestions for it
type Assistant interface {
	Improve(ctx context.Context, req *generation.ImproveRequest) (*generation.Response, error)
	Suggest(ctx context.Context, req *generation.SuggestRequest) (*generation.Response, error)
}

// AssistHandler handles the improve and suggest endpoints
type AssistHandler struct {
	assistant Assistant
	logger    *zap.Logger
}

// NewAssistHandler creates a new AssistHandler
func NewAssistHandler(assistant Assistant, logger *zap.Logger) *AssistHandler {
	return &AssistHandler{assistant: assistant, logger: logger}
}

// HandleImprove handles POST /api/v1/ai/improve
func (h *AssistHandler) HandleImprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orgID, userID, ok := h.tenant(w, r)
	if !ok {
		return
	}

	var body ImproveRequest
	if !h.decode(w, r, &body) {
		return
	}
	brandID, _ := uuid.Parse(body.BrandID)

	resp, err := h.assistant.Improve(ctx, &generation.ImproveRequest{
		OrgID:       orgID,
		UserID:      userID,
		BrandID:     brandID,
		Content:     body.Content,
		Instruction: body.Instruction,
		RequestID:   middleware.GetRequestIDFromContext(ctx),
	})
	h.respond(w, r, "improve", resp, err)
}

// HandleSuggest handles POST /api/v1/ai/suggest
func (h *AssistHandler) HandleSuggest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orgID, userID, ok := h.tenant(w, r)
	if !ok {
		return
	}

	var body SuggestRequest
	if !h.decode(w, r, &body) {
		return
	}
	brandID, _ := uuid.Parse(body.BrandID)

	resp, err := h.assistant.Suggest(ctx, &generation.SuggestRequest{
		OrgID:     orgID,
		UserID:    userID,
		BrandID:   brandID,
		Content:   body.Content,
		Type:      generation.SuggestType(body.Type),
		RequestID: middleware.GetRequestIDFromContext(ctx),
	})
	h.respond(w, r, "suggest", resp, err)
}

func (h *AssistHandler) tenant(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	orgID := middleware.GetOrgIDFromContext(r.Context())
	userID := middleware.GetUserIDFromContext(r.Context())
	if orgID == uuid.Nil || userID == uuid.Nil {
		_ = utils.WriteUnauthorized(w, "Missing tenant information")
		return uuid.Nil, uuid.Nil, false
	}
	return orgID, userID, true
}

func (h *AssistHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := utils.DecodeJSON(r, dst); err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return false
	}
	if err := utils.ValidateStruct(dst); err != nil {
		HandleValidationError(w, err, h.logger)
		return false
	}
	return true
}

func (h *AssistHandler) respond(w http.ResponseWriter, r *http.Request, op string, resp *generation.Response, err error) {
	if err != nil {
		h.logger.Warn(op+" failed",
			zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}
	logWriteError(h.logger, utils.WriteOK(w, resp))
}
