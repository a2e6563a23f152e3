package audit

import (
	"context"

	"github.com/google/uuid"
	"github.com/upb/genos-ai/models"
	"github.com/upb/genos-ai/services"
)

// History paging bounds
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// HistoryPage is one page of a user's generation history
type HistoryPage struct {
	Data   []*models.AuditLog `json:"data"`
	Total  int                `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

// ClampPage applies the default and maximum page size and a non-negative offset.
func ClampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// History lists the user's ai_generate entries, newest first.
func (s *AuditService) History(ctx context.Context, orgID, userID uuid.UUID, limit, offset int) (*HistoryPage, error) {
	limit, offset = ClampPage(limit, offset)

	logs, total, err := s.auditRepo.ListByAction(ctx, orgID, userID, models.AuditActionAIGenerate, limit, offset)
	if err != nil {
		return nil, services.WrapInternal("failed to load generation history", err)
	}
	if logs == nil {
		logs = []*models.AuditLog{}
	}

	return &HistoryPage{Data: logs, Total: total, Limit: limit, Offset: offset}, nil
}
