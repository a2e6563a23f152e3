package generation

import (
	"context"

	"github.com/google/uuid"
	"github.com/upb/genos-ai/models"
	"github.com/upb/genos-ai/services/audit"
	"github.com/upb/genos-ai/services/guardrails"
	"github.com/upb/genos-ai/services/rag"
	"github.com/upb/genos-ai/services/routing"
)

// Request represents a generation request from the client
type Request struct {
	// Authentication context
	OrgID  uuid.UUID
	UserID uuid.UUID

	BrandID     uuid.UUID
	Prompt      string
	ContentType models.ContentType
	Platform    string
	Tone        string
	Language    string

	// Optional; empty uses the static routing table
	PreferredProvider models.Provider
	// nil means enabled
	UseRAG            *bool

	RequestID string
}

func (r *Request) ragRequested() bool {
	return r.UseRAG == nil || *r.UseRAG
}

// Response is the generation result returned to the client
type Response struct {
	models.GenerationResponse

	Provider     models.Provider     `json:"provider"`
	FallbackFrom models.Provider     `json:"fallbackFrom,omitempty"`
	AuditID      uuid.UUID           `json:"auditId"`
	Guardrails   guardrails.Result   `json:"guardrails"`
	Debit        *models.DebitResult `json:"debit"`
	RAG          RAGSummary          `json:"rag"`
}

// RAGSummary reports what retrieval contributed to the prompt
type RAGSummary struct {
	Enabled        bool `json:"enabled"`
	Documents      int  `json:"documents"`
	TokensEstimate int  `json:"tokensEstimate"`
}

// BrandLoader loads a tenant-scoped brand identity
type BrandLoader interface {
	Load(ctx context.Context, brandID, orgID uuid.UUID) (*models.BrandIdentityPackage, error)
}

// Retriever returns a rendered context; failures yield an empty one
type Retriever interface {
	Retrieve(ctx context.Context, orgID uuid.UUID, query string, opts rag.Options) models.RAGContext
}

// Router executes a routing decision
type Router interface {
	Execute(ctx context.Context, decision routing.Decision, req models.GenerationRequest) (*routing.Result, error)
}

// AuditRecorder records successful generations
type AuditRecorder interface {
	RecordGeneration(ctx context.Context, entry audit.GenerationEntry) (*models.AuditLog, error)
}

// Debiter charges an organization for the tokens of a recorded generation
type Debiter interface {
	Debit(ctx context.Context, orgID uuid.UUID, amount int64, auditID, threadID uuid.UUID) *models.DebitResult
}
