package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/upb/genos-ai/models"
	"github.com/upb/genos-ai/repositories"
	"go.uber.org/zap"
)

// EmbeddingRepository implements repositories.EmbeddingRepository on pgvector
type EmbeddingRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewEmbeddingRepository creates a new embedding repository
func NewEmbeddingRepository(db *DB, logger *zap.Logger) repositories.EmbeddingRepository {
	return &EmbeddingRepository{db: db, logger: logger}
}

// Upsert writes all rows in a single statement
func (r *EmbeddingRepository) Upsert(ctx context.Context, rows []*models.ContentEmbedding) error {
	if len(rows) == 0 {
		return nil
	}

	const cols = 6
	var sb strings.Builder
	sb.WriteString(`INSERT INTO content_embeddings (org_id, source_id, source_type, content_text, embedding, metadata) VALUES `)
	args := make([]interface{}, 0, len(rows)*cols)
	for i, row := range rows {
		if i > 0 {
			sb.WriteString(", ")
		}
		n := i * cols
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d::vector, $%d)", n+1, n+2, n+3, n+4, n+5, n+6)

		metadata := row.Metadata
		if len(metadata) == 0 {
			metadata = []byte(`{}`)
		}
		args = append(args, row.OrgID, row.SourceID, row.SourceType, row.ContentText, VectorLiteral(row.Embedding), metadata)
	}
	sb.WriteString(` ON CONFLICT (org_id, source_id, source_type) DO UPDATE SET
		content_text = EXCLUDED.content_text,
		embedding = EXCLUDED.embedding,
		metadata = EXCLUDED.metadata,
		updated_at = now()`)

	if _, err := GetExecutor(ctx, r.db).ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("failed to upsert embeddings: %w", err)
	}

	r.logger.Debug("embeddings upserted", zap.Int("rows", len(rows)))
	return nil
}

// Match calls match_content_embeddings. A nil SourceTypes searches all types.
func (r *EmbeddingRepository) Match(ctx context.Context, q models.MatchQuery) ([]models.EmbeddingMatch, error) {
	query := `
		SELECT source_id, content_text, source_type, similarity
		FROM match_content_embeddings($1::vector, $2, $3, $4, $5)
	`

	var filter interface{}
	if len(q.SourceTypes) > 0 {
		filter = pq.Array(q.SourceTypes)
	}

	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, query,
		VectorLiteral(q.Embedding), q.OrgID, q.Threshold, q.Count, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to match embeddings: %w", err)
	}
	defer rows.Close()

	var matches []models.EmbeddingMatch
	for rows.Next() {
		var m models.EmbeddingMatch
		if err := rows.Scan(&m.SourceID, &m.ContentText, &m.SourceType, &m.Similarity); err != nil {
			return nil, fmt.Errorf("failed to scan embedding match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate embedding matches: %w", err)
	}

	return matches, nil
}

// VectorLiteral renders a pgvector text literal such as [0.1,0.2].
func VectorLiteral(v []float64) string {
	var sb strings.Builder
	sb.Grow(len(v) * 10)
	sb.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	}
	sb.WriteByte(']')
	return sb.String()
}
