package generation

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/upb/genos-ai/models"
	"github.com/upb/genos-ai/services"
)

const (
	MaxImproveContentLength     = 10000
	MaxImproveInstructionLength = 2000
	MaxSuggestContentLength     = 5000

	// bound on the assembled prompt; the templates add a few hundred chars
	maxAssistPromptLength = 16000
)

// SuggestType is the kind of suggestion asked of POST /ai/suggest
type SuggestType string

const (
	SuggestHashtags SuggestType = "hashtags"
	SuggestTitle    SuggestType = "title"
	SuggestExcerpt  SuggestType = "excerpt"
	SuggestCTA      SuggestType = "cta"
)

type suggestion struct {
	contentType models.ContentType
	template    string
}

var suggestions = map[SuggestType]suggestion{
	SuggestHashtags: {models.ContentTypeHashtags, "Gere 10-15 hashtags relevantes para o seguinte conteúdo:\n\n%s\n\nRetorne apenas as hashtags, uma por linha, começando com #."},
	SuggestTitle:    {models.ContentTypeTitle, "Sugira 5 títulos alternativos para o seguinte conteúdo:\n\n%s\n\nRetorne apenas os títulos, um por linha, numerados."},
	SuggestExcerpt:  {models.ContentTypeCaption, "Crie um resumo/excerpt de 1-2 frases para o seguinte conteúdo:\n\n%s\n\nRetorne apenas o excerpt."},
	SuggestCTA:      {models.ContentTypeCaption, "Sugira 5 CTAs (call-to-action) para o seguinte conteúdo:\n\n%s\n\nRetorne apenas os CTAs, um por linha, numerados."},
}

const improveTemplate = "Melhore o seguinte conteúdo conforme a instrução.\n\nCONTEÚDO ORIGINAL:\n%s\n\nINSTRUÇÃO:\n%s\n\nRetorne apenas o conteúdo melhorado, sem explicações adicionais."

// IsValid reports whether t is a known suggestion type
func (t SuggestType) IsValid() bool {
	_, ok := suggestions[t]
	return ok
}

// ImproveRequest asks for existing content to be rewritten following an
// instruction
type ImproveRequest struct {
	OrgID       uuid.UUID
	UserID      uuid.UUID
	BrandID     uuid.UUID
	Content     string
	Instruction string
	RequestID   string
}

// SuggestRequest asks for hashtags, titles, an excerpt or CTAs for content
type SuggestRequest struct {
	OrgID     uuid.UUID
	UserID    uuid.UUID
	BrandID   uuid.UUID
	Content   string
	Type      SuggestType
	RequestID string
}

// Improve rewrites content through the generation pipeline as a post.
func (s *GenerationService) Improve(ctx context.Context, req *ImproveRequest) (*Response, error) {
	if err := checkText("content", req.Content, MaxImproveContentLength); err != nil {
		return nil, err
	}
	if err := checkText("instruction", req.Instruction, MaxImproveInstructionLength); err != nil {
		return nil, err
	}

	return s.generate(ctx, &Request{
		OrgID:       req.OrgID,
		UserID:      req.UserID,
		BrandID:     req.BrandID,
		Prompt:      fmt.Sprintf(improveTemplate, req.Content, req.Instruction),
		ContentType: models.ContentTypePost,
		RequestID:   req.RequestID,
	}, maxAssistPromptLength)
}

// Suggest produces suggestions of the requested type for content.
func (s *GenerationService) Suggest(ctx context.Context, req *SuggestRequest) (*Response, error) {
	if err := checkText("content", req.Content, MaxSuggestContentLength); err != nil {
		return nil, err
	}
	sg, ok := suggestions[req.Type]
	if !ok {
		return nil, invalid("type", "unsupported suggestion type", services.ErrInvalidInput)
	}

	return s.generate(ctx, &Request{
		OrgID:       req.OrgID,
		UserID:      req.UserID,
		BrandID:     req.BrandID,
		Prompt:      fmt.Sprintf(sg.template, req.Content),
		ContentType: sg.contentType,
		RequestID:   req.RequestID,
	}, maxAssistPromptLength)
}

func checkText(field, text string, max int) error {
	if strings.TrimSpace(text) == "" {
		return invalid(field, field+" is required", services.ErrEmptyPrompt)
	}
	if utf8.RuneCountInString(text) > max {
		return invalid(field, field+" is too long", services.ErrPromptTooLong)
	}
	return nil
}
