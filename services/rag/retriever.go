package rag

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/upb/genos-ai/models"
	"github.com/upb/genos-ai/repositories"
	"go.uber.org/zap"
)

// Retrieval defaults
const (
	DefaultTopK                = 5
	DefaultSimilarityThreshold = 0.3
)

// Context markers and the separator placed before the user prompt.
const (
	contextStart  = "--- CONTEXTO RECUPERADO (RAG) ---"
	contextEnd    = "--- FIM DO CONTEXTO ---"
	requestMarker = "--- SOLICITAÇÃO DO USUÁRIO ---"
	charsPerToken = 4
)

// Options tunes a retrieval. A zero TopK and a nil SimilarityThreshold take
// the defaults; an explicit threshold of 0 disables filtering. Nil
// SourceTypes searches every source type.
type Options struct {
	TopK                int
	SimilarityThreshold *float64
	SourceTypes         []string
}

// Threshold returns a similarity threshold for Options.
func Threshold(v float64) *float64 {
	return &v
}

// DefaultSourceTypes are searched during generation.
var DefaultSourceTypes = []string{models.SourceTypeBrand, models.SourceTypeContentItem}

func (o Options) withDefaults() Options {
	if o.TopK <= 0 {
		o.TopK = DefaultTopK
	}
	if o.SimilarityThreshold == nil {
		o.SimilarityThreshold = Threshold(DefaultSimilarityThreshold)
	}
	return o
}

// Retriever runs tenant-scoped similarity search and renders prompt context.
type Retriever struct {
	embeddings Embeddings
	repo       repositories.EmbeddingRepository
	logger     *zap.Logger
}

// NewRetriever creates a RAG retriever
func NewRetriever(embeddings Embeddings, repo repositories.EmbeddingRepository, logger *zap.Logger) *Retriever {
	return &Retriever{embeddings: embeddings, repo: repo, logger: logger}
}

// Retrieve never fails: any embedding or query error yields an empty context.
func (r *Retriever) Retrieve(ctx context.Context, orgID uuid.UUID, query string, opts Options) models.RAGContext {
	opts = opts.withDefaults()
	threshold := *opts.SimilarityThreshold

	vector, err := r.embeddings.EmbedOne(ctx, query)
	if err != nil {
		r.logger.Warn("rag query embedding failed, continuing without context",
			zap.String("org_id", orgID.String()),
			zap.Error(err))
		return models.EmptyRAGContext()
	}

	matches, err := r.repo.Match(ctx, models.MatchQuery{
		Embedding:   vector,
		OrgID:       orgID,
		Threshold:   threshold,
		Count:       opts.TopK,
		SourceTypes: opts.SourceTypes,
	})
	if err != nil {
		r.logger.Warn("rag similarity search failed, continuing without context",
			zap.String("org_id", orgID.String()),
			zap.Error(err))
		return models.EmptyRAGContext()
	}

	docs := make([]models.RAGDocument, 0, len(matches))
	for _, m := range matches {
		if m.Similarity < threshold {
			continue
		}
		docs = append(docs, models.RAGDocument{
			ID:         m.SourceID,
			Content:    m.ContentText,
			Source:     m.SourceType,
			Similarity: m.Similarity,
		})
		if len(docs) == opts.TopK {
			break
		}
	}

	return Render(docs)
}

// Render builds the context block for a set of documents.
func Render(docs []models.RAGDocument) models.RAGContext {
	if len(docs) == 0 {
		return models.EmptyRAGContext()
	}

	blocks := make([]string, len(docs))
	for i, doc := range docs {
		blocks[i] = fmt.Sprintf("[Referência %d — %s (relevância: %d%%)]\n%s",
			i+1, doc.Source, int(math.Round(doc.Similarity*100)), doc.Content)
	}

	text := contextStart + "\n" + strings.Join(blocks, "\n\n") + "\n" + contextEnd

	return models.RAGContext{
		Documents:      docs,
		ContextText:    text,
		TokensEstimate: (utf8.RuneCountInString(text) + charsPerToken - 1) / charsPerToken,
	}
}

// Augment prefixes the user prompt with retrieved context. An empty context
// leaves the prompt unchanged.
func Augment(rc models.RAGContext, prompt string) string {
	if rc.ContextText == "" {
		return prompt
	}
	return rc.ContextText + "\n\n" + requestMarker + "\n" + prompt
}
