package generation

import (
	"context"

	"github.com/google/uuid"
	"github.com/upb/genos-ai/models"
	"github.com/upb/genos-ai/repositories"
	"github.com/upb/genos-ai/services"
	"github.com/upb/genos-ai/services/rag"
	"go.uber.org/zap"
)

// IndexType selects what an indexing run covers
type IndexType string

const (
	IndexTypeBrand   IndexType = "brand"
	IndexTypeContent IndexType = "content"
	IndexTypeAll     IndexType = "all"
)

// DefaultContentItemLimit caps the content items indexed per run
const DefaultContentItemLimit = 200

// IsValid reports whether t is a known index type
func (t IndexType) IsValid() bool {
	return t == IndexTypeBrand || t == IndexTypeContent || t == IndexTypeAll
}

// IndexRequest represents an indexing run request
type IndexRequest struct {
	OrgID     uuid.UUID
	UserID    uuid.UUID
	Type      IndexType
	BrandID   *uuid.UUID
	RequestID string
}

// IndexResult is the outcome of an indexing run
type IndexResult struct {
	Indexed int       `json:"indexed"`
	Type    IndexType `json:"type"`
}

// ItemIndexer embeds and stores items for an organization
type ItemIndexer interface {
	Index(ctx context.Context, orgID uuid.UUID, items []models.IndexItem) error
}

// IndexAuditor queues the audit entry of an indexing run
type IndexAuditor interface {
	LogIndexRun(orgID, userID uuid.UUID, requestID string, details models.IndexAuditDetails) error
}

// IndexService loads an organization's brands and reference content and
// feeds them to the retrieval store
type IndexService struct {
	brands       repositories.BrandRepository
	contentItems repositories.ContentItemRepository
	indexer      ItemIndexer
	audit        IndexAuditor
	contentLimit int
	logger       *zap.Logger
}

// NewIndexService creates a new IndexService instance
func NewIndexService(
	brands repositories.BrandRepository,
	contentItems repositories.ContentItemRepository,
	indexer ItemIndexer,
	auditor IndexAuditor,
	contentLimit int,
	logger *zap.Logger,
) *IndexService {
	if contentLimit <= 0 {
		contentLimit = DefaultContentItemLimit
	}
	return &IndexService{
		brands:       brands,
		contentItems: contentItems,
		indexer:      indexer,
		audit:        auditor,
		contentLimit: contentLimit,
		logger:       logger,
	}
}

// Index runs an indexing pass. Brands and content items are upserted, so
// repeating a run replaces the stored rows.
func (s *IndexService) Index(ctx context.Context, req *IndexRequest) (*IndexResult, error) {
	if req.OrgID == uuid.Nil {
		return nil, invalid("org_id", "organization is required", services.ErrInvalidInput)
	}
	if !req.Type.IsValid() {
		return nil, invalid("type", "type must be brand, content or all", services.ErrInvalidInput)
	}

	var items []models.IndexItem

	if req.Type == IndexTypeBrand || req.Type == IndexTypeAll {
		brands, err := s.brands.ListByOrg(ctx, req.OrgID, req.BrandID)
		if err != nil {
			return nil, services.WrapInternal("failed to list brands", err)
		}
		if req.BrandID != nil && len(brands) == 0 {
			return nil, services.ErrBrandNotFound
		}
		for _, b := range brands {
			items = append(items, rag.BrandItem(b))
		}
	}

	if req.Type == IndexTypeContent || req.Type == IndexTypeAll {
		contents, err := s.contentItems.ListIndexable(ctx, req.OrgID, models.IndexableStatuses, s.contentLimit)
		if err != nil {
			return nil, services.WrapInternal("failed to list content items", err)
		}
		for _, c := range contents {
			items = append(items, rag.ContentItem(c))
		}
	}

	s.logger.Info("indexing organization content",
		zap.String("org_id", req.OrgID.String()),
		zap.String("type", string(req.Type)),
		zap.Int("items", len(items)))

	if err := s.indexer.Index(ctx, req.OrgID, items); err != nil {
		return nil, err
	}

	result := &IndexResult{Indexed: len(items), Type: req.Type}

	if s.audit != nil {
		details := models.IndexAuditDetails{Type: string(req.Type), BrandID: req.BrandID, Indexed: result.Indexed}
		if err := s.audit.LogIndexRun(req.OrgID, req.UserID, req.RequestID, details); err != nil {
			s.logger.Warn("failed to queue index audit event", zap.Error(err))
		}
	}

	return result, nil
}
