package feedback

import (
	"context"

	"github.com/google/uuid"
	"github.com/upb/genos-ai/models"
	"github.com/upb/genos-ai/repositories"
	"github.com/upb/genos-ai/services"
	"go.uber.org/zap"
)

// Paging bounds for List
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page is one page of an organization's feedback
type Page struct {
	Items    []*models.Feedback `json:"items"`
	Total    int                `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"pageSize"`
}

// FeedbackService records and lists ratings on generations
type FeedbackService struct {
	repo   repositories.FeedbackRepository
	logger *zap.Logger
}

// NewFeedbackService creates a new feedback service
func NewFeedbackService(repo repositories.FeedbackRepository, logger *zap.Logger) *FeedbackService {
	return &FeedbackService{repo: repo, logger: logger}
}

// Submit stores a rating for a generation.
func (s *FeedbackService) Submit(ctx context.Context, orgID, userID, generationID uuid.UUID, rating models.FeedbackRating, comment string) (*models.Feedback, error) {
	if generationID == uuid.Nil {
		return nil, invalid("generation_id", "generation_id is required")
	}
	if !rating.IsValid() {
		return nil, invalid("rating", "rating must be positive or negative")
	}

	f := models.NewFeedback(orgID, userID, generationID, rating, comment)
	if err := s.repo.Insert(ctx, f); err != nil {
		s.logger.Error("failed to store feedback",
			zap.String("org_id", orgID.String()),
			zap.String("generation_id", generationID.String()),
			zap.Error(err))
		return nil, services.WrapInternal("failed to store feedback", err)
	}
	return f, nil
}

// List returns the organization's feedback, newest first. page is zero-based.
func (s *FeedbackService) List(ctx context.Context, orgID uuid.UUID, page, pageSize int) (*Page, error) {
	if page < 0 {
		page = 0
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	items, total, err := s.repo.ListByOrg(ctx, orgID, pageSize, page*pageSize)
	if err != nil {
		return nil, services.WrapInternal("failed to list feedback", err)
	}
	if items == nil {
		items = []*models.Feedback{}
	}

	return &Page{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

func invalid(field, message string) error {
	return services.NewDomainError(services.ErrorTypeValidation, message, services.ErrInvalidInput).WithDetail("field", field)
}
