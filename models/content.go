package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ContentType is the kind of content a generation request asks for.
type ContentType string

const (
	ContentTypePost     ContentType = "post"
	ContentTypeCaption  ContentType = "caption"
	ContentTypeBlog     ContentType = "blog"
	ContentTypeEmail    ContentType = "email"
	ContentTypeHashtags ContentType = "hashtags"
	ContentTypeTitle    ContentType = "title"
	ContentTypeStory    ContentType = "story"
	ContentTypeReel     ContentType = "reel"
)

// AllContentTypes lists every supported content type.
var AllContentTypes = []ContentType{
	ContentTypePost, ContentTypeCaption, ContentTypeBlog, ContentTypeEmail,
	ContentTypeHashtags, ContentTypeTitle, ContentTypeStory, ContentTypeReel,
}

// IsValid reports whether c is a supported content type.
func (c ContentType) IsValid() bool {
	for _, ct := range AllContentTypes {
		if c == ct {
			return true
		}
	}
	return false
}

// ContentStatus is the editorial status of a content item.
type ContentStatus string

const (
	ContentStatusDraft     ContentStatus = "draft"
	ContentStatusApproved  ContentStatus = "approved"
	ContentStatusPublished ContentStatus = "published"
)

// IndexableStatuses are the statuses whose items feed the RAG store.
var IndexableStatuses = []ContentStatus{ContentStatusPublished, ContentStatusApproved}

// ContentItem is historical content kept as style reference for retrieval.
type ContentItem struct {
	ID        uuid.UUID      `json:"id" db:"id"`
	OrgID     uuid.UUID      `json:"org_id" db:"org_id"`
	BrandID   *uuid.UUID     `json:"brand_id,omitempty" db:"brand_id"`
	Title     string         `json:"title" db:"title"`
	Content   string         `json:"content" db:"content"`
	Type      string         `json:"type" db:"type"`
	Platform  pq.StringArray `json:"platform" db:"platform"`
	Status    ContentStatus  `json:"status" db:"status"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the ContentItem model
func (ContentItem) TableName() string {
	return "content_items"
}
