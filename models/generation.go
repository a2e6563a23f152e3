package models

import (
	"time"

	"github.com/google/uuid"
)

// Provider names a generation backend.
type Provider string

const (
	ProviderClaude  Provider = "claude"
	ProviderGemini  Provider = "gemini"
	ProviderGranite Provider = "granite"
)

// IsValid reports whether p names a known provider.
func (p Provider) IsValid() bool {
	switch p {
	case ProviderClaude, ProviderGemini, ProviderGranite:
		return true
	}
	return false
}

// GenerationRequest carries everything a provider needs to generate content.
// Prompt is the user prompt, possibly already augmented with retrieved context.
type GenerationRequest struct {
	Prompt       string
	ContentType  ContentType
	Platform     string
	Tone         string
	Language     string
	BrandPackage BrandIdentityPackage
	ThreadID     uuid.UUID
	UserID       uuid.UUID
	OrgID        uuid.UUID
	// Model selects a specific backend model; empty means the provider default.
	Model string
}

// GenerationResponse is the canonical provider output. TokensUsed is the
// backend-reported input plus output count and is the billing input.
type GenerationResponse struct {
	Content     string    `json:"content"`
	Model       string    `json:"model"`
	ThreadID    uuid.UUID `json:"threadId"`
	TokensUsed  int       `json:"tokensUsed"`
	GeneratedAt time.Time `json:"generatedAt"`
}
