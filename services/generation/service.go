package generation

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/upb/genos-ai/models"
	"github.com/upb/genos-ai/services"
	"github.com/upb/genos-ai/services/audit"
	"github.com/upb/genos-ai/services/guardrails"
	"github.com/upb/genos-ai/services/prompt"
	"github.com/upb/genos-ai/services/rag"
	"github.com/upb/genos-ai/services/routing"
	"go.uber.org/zap"
)

// MaxPromptLength is the longest accepted user prompt, in characters
const MaxPromptLength = 5000

// GenerationService orchestrates the generation pipeline: brand context,
// retrieval, routing, audit, debit and output checks.
type GenerationService struct {
	brands    BrandLoader
	retriever Retriever
	ragOpts   rag.Options
	router    Router
	audit     AuditRecorder
	billing   Debiter
	logger    *zap.Logger
}

// NewGenerationService creates a new generation service. retriever may be
// nil, which disables retrieval.
func NewGenerationService(
	brands BrandLoader,
	retriever Retriever,
	ragOpts rag.Options,
	router Router,
	auditRecorder AuditRecorder,
	billing Debiter,
	logger *zap.Logger,
) *GenerationService {
	return &GenerationService{
		brands:    brands,
		retriever: retriever,
		ragOpts:   ragOpts,
		router:    router,
		audit:     auditRecorder,
		billing:   billing,
		logger:    logger,
	}
}

// Generate runs the full pipeline. Exactly one audit entry is written for a
// successful call and none for a failed one.
func (s *GenerationService) Generate(ctx context.Context, req *Request) (*Response, error) {
	return s.generate(ctx, req, MaxPromptLength)
}

func (s *GenerationService) generate(ctx context.Context, req *Request, maxPromptLength int) (*Response, error) {
	if err := validate(req, maxPromptLength); err != nil {
		return nil, err
	}

	threadID := uuid.New()
	start := time.Now()
	log := s.logger.With(
		zap.String("thread_id", threadID.String()),
		zap.String("org_id", req.OrgID.String()))

	log.Info("starting generation pipeline",
		zap.String("content_type", string(req.ContentType)),
		zap.String("platform", req.Platform))

	// Step 1: input guardrails
	log.Debug("step 1: checking prompt for credentials")
	if err := guardrails.CheckInput(req.Prompt); err != nil {
		log.Warn("prompt rejected", zap.Any("details", services.GetErrorDetails(err)))
		return nil, err
	}

	// Step 2: brand context
	log.Debug("step 2: loading brand context", zap.String("brand_id", req.BrandID.String()))
	brand, err := s.brands.Load(ctx, req.BrandID, req.OrgID)
	if err != nil {
		return nil, err
	}

	// Step 3: retrieval
	finalPrompt := req.Prompt
	summary := RAGSummary{}
	contextLength := 0
	if req.ragRequested() && s.retriever != nil {
		log.Debug("step 3: retrieving context")
		opts := s.ragOpts
		if len(opts.SourceTypes) == 0 {
			opts.SourceTypes = rag.DefaultSourceTypes
		}
		rc := s.retriever.Retrieve(ctx, req.OrgID, req.Prompt, opts)
		if rc.ContextText != "" {
			finalPrompt = rag.Augment(rc, req.Prompt)
			contextLength = utf8.RuneCountInString(rc.ContextText)
			summary = RAGSummary{
				Enabled:        true,
				Documents:      len(rc.Documents),
				TokensEstimate: rc.TokensEstimate,
			}
		}
	} else {
		log.Debug("step 3: retrieval skipped")
	}

	// Step 4: routing and generation
	decision := routing.Route(req.ContentType, req.PreferredProvider)
	log.Debug("step 4: generating",
		zap.String("provider", string(decision.Provider)),
		zap.String("model", decision.Model))

	result, err := s.router.Execute(ctx, decision, models.GenerationRequest{
		Prompt:       finalPrompt,
		ContentType:  req.ContentType,
		Platform:     req.Platform,
		Tone:         req.Tone,
		Language:     req.Language,
		BrandPackage: *brand,
		ThreadID:     threadID,
		UserID:       req.UserID,
		OrgID:        req.OrgID,
	})
	if err != nil {
		log.Error("generation failed",
			zap.String("provider", string(decision.Provider)),
			zap.Error(err))
		return nil, err
	}
	resp := result.Response

	// Step 5: audit
	log.Debug("step 5: recording audit entry")
	details := models.GenerationAuditDetails{
		ContentType:      req.ContentType,
		Platform:         req.Platform,
		BrandID:          req.BrandID,
		PromptLength:     utf8.RuneCountInString(req.Prompt),
		Provider:         decision.Provider,
		RAGEnabled:       summary.Enabled,
		RAGContextLength: contextLength,
	}
	if result.FallbackFrom != "" {
		details.FallbackProvider = result.Provider
	}

	entry, err := s.audit.RecordGeneration(ctx, audit.GenerationEntry{
		OrgID:     req.OrgID,
		UserID:    req.UserID,
		RequestID: req.RequestID,
		Response:  resp,
		Details:   details,
	})
	if err != nil {
		return nil, err
	}

	// Step 6: debit
	log.Debug("step 6: debiting tokens", zap.Int("tokens_used", resp.TokensUsed))
	debit := s.billing.Debit(ctx, req.OrgID, int64(resp.TokensUsed), entry.ID, threadID)

	// Step 7: output guardrails
	log.Debug("step 7: verifying output")
	verdict := guardrails.VerifyOutput(resp.Content, guardrails.Constraints{
		ForbiddenWords:    brand.ForbiddenWords,
		MandatoryElements: brand.MandatoryElements,
		MaxLength:         prompt.PlatformCharLimit(req.Platform),
	})
	if !verdict.Passed {
		log.Warn("generated content failed guardrails",
			zap.Int("score", verdict.Score),
			zap.Int("flags", len(verdict.Flags)))
	}

	log.Info("generation pipeline completed",
		zap.String("provider", string(result.Provider)),
		zap.String("model", resp.Model),
		zap.Int("tokens_used", resp.TokensUsed),
		zap.Duration("latency", time.Since(start)))

	return &Response{
		GenerationResponse: *resp,
		Provider:           result.Provider,
		FallbackFrom:       result.FallbackFrom,
		AuditID:            entry.ID,
		Guardrails:         verdict,
		Debit:              debit,
		RAG:                summary,
	}, nil
}

func validate(req *Request, maxPromptLength int) error {
	if req.OrgID == uuid.Nil {
		return invalid("org_id", "organization is required", services.ErrInvalidInput)
	}
	if req.BrandID == uuid.Nil {
		return invalid("brand_id", "brand_id is required", services.ErrInvalidInput)
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return invalid("prompt", "prompt is required", services.ErrEmptyPrompt)
	}
	if utf8.RuneCountInString(req.Prompt) > maxPromptLength {
		return invalid("prompt", "prompt is too long", services.ErrPromptTooLong)
	}
	if !req.ContentType.IsValid() {
		return invalid("content_type", "unsupported content type", services.ErrInvalidContentType)
	}
	if req.PreferredProvider != "" && !req.PreferredProvider.IsValid() {
		return invalid("preferred_provider", "unknown provider", services.ErrInvalidProvider)
	}
	return nil
}

// invalid returns a fresh validation error wrapping cause, so the shared
// sentinels are never mutated.
func invalid(field, message string, cause error) error {
	return services.NewDomainError(services.ErrorTypeValidation, message, cause).WithDetail("field", field)
}
