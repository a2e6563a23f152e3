package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/upb/genos-ai/models"
	"github.com/upb/genos-ai/repositories"
	"go.uber.org/zap"
)

// ContentItemRepository implements repositories.ContentItemRepository
type ContentItemRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewContentItemRepository creates a new content item repository
func NewContentItemRepository(db *DB, logger *zap.Logger) repositories.ContentItemRepository {
	return &ContentItemRepository{db: db, logger: logger}
}

// ListIndexable returns the organization's items in any of the given statuses
func (r *ContentItemRepository) ListIndexable(ctx context.Context, orgID uuid.UUID, statuses []models.ContentStatus, limit int) ([]*models.ContentItem, error) {
	query := `
		SELECT id, org_id, brand_id, title, content, type, platform, status, created_at
		FROM content_items
		WHERE org_id = $1 AND status = ANY($2)
		ORDER BY created_at DESC
		LIMIT $3
	`

	statusStrings := make([]string, len(statuses))
	for i, s := range statuses {
		statusStrings[i] = string(s)
	}

	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, query, orgID, pq.Array(statusStrings), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list content items: %w", err)
	}
	defer rows.Close()

	var items []*models.ContentItem
	for rows.Next() {
		item := &models.ContentItem{}
		if err := rows.Scan(
			&item.ID,
			&item.OrgID,
			&item.BrandID,
			&item.Title,
			&item.Content,
			&item.Type,
			&item.Platform,
			&item.Status,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan content item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate content items: %w", err)
	}

	return items, nil
}
