package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of action being audited
type AuditAction string

const (
	AuditActionAIGenerate AuditAction = "ai_generate"
	AuditActionRAGIndex   AuditAction = "rag_index"
)

// AuditLog is an append-only, tenant-scoped audit entry. A row with action
// ai_generate is the source of truth for token billing.
type AuditLog struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	OrganizationID uuid.UUID       `json:"organization_id" db:"organization_id"`
	UserID         *uuid.UUID      `json:"user_id,omitempty" db:"user_id"`
	Action         AuditAction     `json:"action" db:"action"`
	Details        json.RawMessage `json:"details" db:"details"`
	AIModel        *string         `json:"ai_model,omitempty" db:"ai_model"`
	TokensUsed     *int            `json:"tokens_used,omitempty" db:"tokens_used"`
	ThreadID       *uuid.UUID      `json:"thread_id,omitempty" db:"thread_id"`
	RequestID      string          `json:"request_id,omitempty" db:"request_id"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the AuditLog model
func (AuditLog) TableName() string {
	return "audit_log"
}

// NewAuditLog creates a new AuditLog instance
func NewAuditLog(orgID uuid.UUID, action AuditAction) *AuditLog {
	return &AuditLog{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Action:         action,
		Details:        json.RawMessage(`{}`),
		CreatedAt:      time.Now().UTC(),
	}
}

// WithUser sets the user ID
func (a *AuditLog) WithUser(userID uuid.UUID) *AuditLog {
	if userID != uuid.Nil {
		a.UserID = &userID
	}
	return a
}

// WithDetails sets the details
func (a *AuditLog) WithDetails(details interface{}) *AuditLog {
	if data, err := json.Marshal(details); err == nil {
		a.Details = data
	}
	return a
}

// WithRequest sets the request id of the HTTP call that produced the entry.
func (a *AuditLog) WithRequest(requestID string) *AuditLog {
	a.RequestID = requestID
	return a
}

// WithGeneration sets the generation usage columns.
func (a *AuditLog) WithGeneration(model string, tokensUsed int, threadID uuid.UUID) *AuditLog {
	a.AIModel = &model
	a.TokensUsed = &tokensUsed
	a.ThreadID = &threadID
	return a
}

// GenerationAuditDetails is the details payload of an ai_generate entry.
type GenerationAuditDetails struct {
	ContentType      ContentType `json:"content_type"`
	Platform         string      `json:"platform,omitempty"`
	BrandID          uuid.UUID   `json:"brand_id"`
	PromptLength     int         `json:"prompt_length"`
	Provider         Provider    `json:"provider"`
	FallbackProvider Provider    `json:"fallback_provider,omitempty"`
	RAGEnabled       bool        `json:"rag_enabled"`
	RAGContextLength int         `json:"rag_context_length"`
}

// IndexAuditDetails is the details payload of a rag_index entry.
type IndexAuditDetails struct {
	Type    string     `json:"type"`
	BrandID *uuid.UUID `json:"brand_id,omitempty"`
	Indexed int        `json:"indexed"`
}
