package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Source types stored alongside embeddings.
const (
	SourceTypeBrand       = "brand"
	SourceTypeContentItem = "content_item"
)

// IndexItem is a piece of content to embed and store for retrieval.
type IndexItem struct {
	ID       string
	Content  string
	Source   string
	Metadata map[string]interface{}
}

// ContentEmbedding is a row of content_embeddings, keyed by
// (org_id, source_id, source_type).
type ContentEmbedding struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	OrgID       uuid.UUID       `json:"org_id" db:"org_id"`
	SourceID    string          `json:"source_id" db:"source_id"`
	SourceType  string          `json:"source_type" db:"source_type"`
	ContentText string          `json:"content_text" db:"content_text"`
	Embedding   []float64       `json:"-" db:"embedding"`
	Metadata    json.RawMessage `json:"metadata" db:"metadata"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the ContentEmbedding model
func (ContentEmbedding) TableName() string {
	return "content_embeddings"
}

// EmbeddingMatch is one row returned by the similarity search.
type EmbeddingMatch struct {
	SourceID    string  `json:"source_id"`
	ContentText string  `json:"content_text"`
	SourceType  string  `json:"source_type"`
	Similarity  float64 `json:"similarity"`
}

// MatchQuery holds the similarity search parameters.
type MatchQuery struct {
	Embedding   []float64
	OrgID       uuid.UUID
	Threshold   float64
	Count       int
	SourceTypes []string
}

// RAGDocument is a retrieved document with similarity in [0,1].
type RAGDocument struct {
	ID         string  `json:"id"`
	Content    string  `json:"content"`
	Source     string  `json:"source"`
	Similarity float64 `json:"similarity"`
}

// RAGContext is the rendered retrieval result injected into prompts.
type RAGContext struct {
	Documents      []RAGDocument `json:"documents"`
	ContextText    string        `json:"contextText"`
	TokensEstimate int           `json:"tokensEstimate"`
}

// EmptyRAGContext returns the context used whenever retrieval yields nothing.
func EmptyRAGContext() RAGContext {
	return RAGContext{Documents: []RAGDocument{}}
}
