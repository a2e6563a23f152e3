package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// DefaultLanguage is used when neither the request nor the brand sets a language.
const DefaultLanguage = "pt-BR"

// Brand is a row of the brands table. Optional columns are nullable, so they
// are pointers here; callers should go through BrandContextLoader to get a
// normalized BrandIdentityPackage.
type Brand struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	OrganizationID    uuid.UUID       `json:"organization_id" db:"organization_id"`
	Name              string          `json:"name" db:"name"`
	BrandVoice        *string         `json:"brand_voice,omitempty" db:"brand_voice"`
	TargetAudience    *string         `json:"target_audience,omitempty" db:"target_audience"`
	Industry          *string         `json:"industry,omitempty" db:"industry"`
	ContentPillars    pq.StringArray  `json:"content_pillars" db:"content_pillars"`
	ForbiddenWords    *string         `json:"forbidden_words,omitempty" db:"forbidden_words"`
	MandatoryElements *string         `json:"mandatory_elements,omitempty" db:"mandatory_elements"`
	RegionalExpertise json.RawMessage `json:"regional_expertise,omitempty" db:"regional_expertise"`
	TargetLanguage    *string         `json:"target_language,omitempty" db:"target_language"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Brand model
func (Brand) TableName() string {
	return "brands"
}

// BrandIdentityPackage is the normalized, request-scoped view of a brand used
// to steer generation. No field is ever nil.
type BrandIdentityPackage struct {
	OrgID             uuid.UUID              `json:"org_id"`
	BrandID           uuid.UUID              `json:"brand_id"`
	BrandName         string                 `json:"brand_name"`
	BrandVoice        string                 `json:"brand_voice"`
	TargetAudience    string                 `json:"target_audience"`
	Industry          string                 `json:"industry"`
	ContentPillars    []string               `json:"content_pillars"`
	ForbiddenWords    []string               `json:"forbidden_words"`
	MandatoryElements []string               `json:"mandatory_elements"`
	RegionalExpertise map[string]interface{} `json:"regional_expertise"`
	TargetLanguage    string                 `json:"target_language"`
}

// HasIdentity reports whether any identity field carries data.
func (b BrandIdentityPackage) HasIdentity() bool {
	return b.BrandVoice != "" || b.TargetAudience != "" || b.Industry != "" ||
		len(b.ContentPillars) > 0 || len(b.RegionalExpertise) > 0
}
