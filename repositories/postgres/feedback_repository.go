package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/upb/genos-ai/models"
	"github.com/upb/genos-ai/repositories"
	"go.uber.org/zap"
)

// FeedbackRepository implements repositories.FeedbackRepository
type FeedbackRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewFeedbackRepository creates a new feedback repository
func NewFeedbackRepository(db *DB, logger *zap.Logger) repositories.FeedbackRepository {
	return &FeedbackRepository{db: db, logger: logger}
}

// Insert stores a feedback row
func (r *FeedbackRepository) Insert(ctx context.Context, f *models.Feedback) error {
	query := `
		INSERT INTO ai_feedback (id, org_id, user_id, generation_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		f.ID, f.OrgID, f.UserID, f.GenerationID, f.Rating, f.Comment, f.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert feedback: %w", err)
	}

	r.logger.Debug("feedback inserted",
		zap.String("id", f.ID.String()),
		zap.String("rating", string(f.Rating)))
	return nil
}

// ListByOrg returns a page of the organization's feedback, newest first,
// and the total row count
func (r *FeedbackRepository) ListByOrg(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*models.Feedback, int, error) {
	exec := GetExecutor(ctx, r.db)

	var total int
	if err := exec.QueryRowContext(ctx, `SELECT COUNT(*) FROM ai_feedback WHERE org_id = $1`, orgID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count feedback: %w", err)
	}

	query := `
		SELECT id, org_id, user_id, generation_id, rating, comment, created_at
		FROM ai_feedback
		WHERE org_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := exec.QueryContext(ctx, query, orgID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	items := make([]*models.Feedback, 0, limit)
	for rows.Next() {
		f := &models.Feedback{}
		if err := rows.Scan(&f.ID, &f.OrgID, &f.UserID, &f.GenerationID, &f.Rating, &f.Comment, &f.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan feedback: %w", err)
		}
		items = append(items, f)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate feedback: %w", err)
	}

	return items, total, nil
}
