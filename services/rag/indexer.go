package rag

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/upb/genos-ai/models"
	"github.com/upb/genos-ai/repositories"
	"github.com/upb/genos-ai/services"
	"github.com/upb/genos-ai/services/embedding"
	"go.uber.org/zap"
)

// MaxStoredChars caps the stored content_text. Embeddings use the full text.
const MaxStoredChars = 8000

// Embeddings is the embedding surface used by indexing and retrieval
type Embeddings interface {
	EmbedAll(ctx context.Context, texts []string) ([][]float64, error)
	EmbedOne(ctx context.Context, text string) ([]float64, error)
}

// Indexer embeds content and upserts it into the vector store
type Indexer struct {
	embeddings Embeddings
	repo       repositories.EmbeddingRepository
	logger     *zap.Logger
}

// NewIndexer creates a RAG indexer
func NewIndexer(embeddings Embeddings, repo repositories.EmbeddingRepository, logger *zap.Logger) *Indexer {
	return &Indexer{embeddings: embeddings, repo: repo, logger: logger}
}

// Index embeds every item and upserts the rows in chunks of embedding.BatchSize.
// Chunks written before a storage failure stay written.
func (ix *Indexer) Index(ctx context.Context, orgID uuid.UUID, items []models.IndexItem) error {
	if len(items) == 0 {
		return nil
	}

	texts := make([]string, len(items))
	for i, item := range items {
		texts[i] = item.Content
	}

	vectors, err := ix.embeddings.EmbedAll(ctx, texts)
	if err != nil {
		chunk := 0
		var batchErr *embedding.BatchError
		if errors.As(err, &batchErr) {
			chunk = batchErr.Batch
		}
		return services.NewIndexingError("embedding", chunk, err)
	}

	for chunk, r := range embedding.Split(len(items), embedding.BatchSize) {
		rows := make([]*models.ContentEmbedding, 0, r.End-r.Start)
		for i := r.Start; i < r.End; i++ {
			row, err := toRow(orgID, items[i], vectors[i])
			if err != nil {
				return services.NewIndexingError("storage", chunk, err)
			}
			rows = append(rows, row)
		}

		if err := ix.repo.Upsert(ctx, rows); err != nil {
			ix.logger.Error("failed to store embeddings",
				zap.String("org_id", orgID.String()),
				zap.Int("chunk", chunk),
				zap.Int("written", r.Start),
				zap.Error(err))
			return services.NewIndexingError("storage", chunk, err)
		}
	}

	ix.logger.Info("indexed content",
		zap.String("org_id", orgID.String()),
		zap.Int("items", len(items)))

	return nil
}

// IndexBrand indexes a brand's identity as a single document.
func (ix *Indexer) IndexBrand(ctx context.Context, orgID uuid.UUID, b *models.Brand) error {
	return ix.Index(ctx, orgID, []models.IndexItem{BrandItem(b)})
}

// IndexContentItems indexes historical content as style reference.
func (ix *Indexer) IndexContentItems(ctx context.Context, orgID uuid.UUID, items []*models.ContentItem) error {
	out := make([]models.IndexItem, len(items))
	for i, item := range items {
		out[i] = ContentItem(item)
	}
	return ix.Index(ctx, orgID, out)
}

// BrandItem renders a brand into its index document.
func BrandItem(b *models.Brand) models.IndexItem {
	lines := []string{"Marca: " + b.Name}

	add := func(label string, value *string) {
		if value != nil && strings.TrimSpace(*value) != "" {
			lines = append(lines, label+strings.TrimSpace(*value))
		}
	}

	add("Voz: ", b.BrandVoice)
	add("Público-alvo: ", b.TargetAudience)
	add("Indústria: ", b.Industry)

	var pillars []string
	for _, p := range b.ContentPillars {
		if p = strings.TrimSpace(p); p != "" {
			pillars = append(pillars, p)
		}
	}
	if len(pillars) > 0 {
		lines = append(lines, "Pilares: "+strings.Join(pillars, ", "))
	}

	add("Palavras proibidas: ", b.ForbiddenWords)
	add("Elementos obrigatórios: ", b.MandatoryElements)

	return models.IndexItem{
		ID:       b.ID.String(),
		Content:  strings.Join(lines, "\n"),
		Source:   models.SourceTypeBrand,
		Metadata: map[string]interface{}{"brand_name": b.Name},
	}
}

// ContentItem renders a content item into its index document.
func ContentItem(item *models.ContentItem) models.IndexItem {
	platform := []string(item.Platform)
	if platform == nil {
		platform = []string{}
	}
	return models.IndexItem{
		ID:      item.ID.String(),
		Content: item.Title + "\n\n" + item.Content,
		Source:  models.SourceTypeContentItem,
		Metadata: map[string]interface{}{
			"type":     item.Type,
			"platform": platform,
		},
	}
}

func toRow(orgID uuid.UUID, item models.IndexItem, vector []float64) (*models.ContentEmbedding, error) {
	metadata := item.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return nil, err
	}

	return &models.ContentEmbedding{
		OrgID:       orgID,
		SourceID:    item.ID,
		SourceType:  item.Source,
		ContentText: truncate(item.Content, MaxStoredChars),
		Embedding:   vector,
		Metadata:    raw,
	}, nil
}

// truncate keeps at most n characters.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
