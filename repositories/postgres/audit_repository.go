package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/upb/genos-ai/models"
	"github.com/upb/genos-ai/repositories"
	"go.uber.org/zap"
)

// AuditRepository implements the repositories.AuditRepository interface
type AuditRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *DB, logger *zap.Logger) repositories.AuditRepository {
	return &AuditRepository{db: db, logger: logger}
}

// Insert inserts a new audit log entry
func (r *AuditRepository) Insert(ctx context.Context, log *models.AuditLog) error {
	query := `
		INSERT INTO audit_log (
			id, organization_id, user_id, action, details,
			ai_model, tokens_used, thread_id, request_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		log.ID,
		log.OrganizationID,
		log.UserID,
		log.Action,
		[]byte(log.Details),
		log.AIModel,
		log.TokensUsed,
		log.ThreadID,
		log.RequestID,
		log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}

	r.logger.Debug("audit log inserted", zap.String("id", log.ID.String()), zap.String("action", string(log.Action)))
	return nil
}

// ListByAction lists entries for (org, user, action), newest first
func (r *AuditRepository) ListByAction(ctx context.Context, orgID, userID uuid.UUID, action models.AuditAction, limit, offset int) ([]*models.AuditLog, int, error) {
	exec := GetExecutor(ctx, r.db)

	var total int
	countQuery := `SELECT COUNT(*) FROM audit_log WHERE organization_id = $1 AND user_id = $2 AND action = $3`
	if err := exec.QueryRowContext(ctx, countQuery, orgID, userID, action).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	query := `
		SELECT id, organization_id, user_id, action, details,
		       ai_model, tokens_used, thread_id, request_id, created_at
		FROM audit_log
		WHERE organization_id = $1 AND user_id = $2 AND action = $3
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5
	`

	rows, err := exec.QueryContext(ctx, query, orgID, userID, action, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query audit logs: %w", err)
	}
	defer rows.Close()

	logs := make([]*models.AuditLog, 0, limit)
	for rows.Next() {
		log := &models.AuditLog{}
		var details []byte
		var requestID *string
		if err := rows.Scan(
			&log.ID,
			&log.OrganizationID,
			&log.UserID,
			&log.Action,
			&details,
			&log.AIModel,
			&log.TokensUsed,
			&log.ThreadID,
			&requestID,
			&log.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan audit log: %w", err)
		}
		log.Details = details
		if requestID != nil {
			log.RequestID = *requestID
		}
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate audit logs: %w", err)
	}

	return logs, total, nil
}
