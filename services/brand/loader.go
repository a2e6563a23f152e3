package brand

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/upb/genos-ai/models"
	"github.com/upb/genos-ai/repositories"
	"github.com/upb/genos-ai/services"
	"go.uber.org/zap"
)

// Loader loads tenant-scoped brand identities. Nothing is cached between requests.
type Loader struct {
	repo   repositories.BrandRepository
	logger *zap.Logger
}

// NewLoader creates a brand context loader
func NewLoader(repo repositories.BrandRepository, logger *zap.Logger) *Loader {
	return &Loader{repo: repo, logger: logger}
}

// Load returns the brand's identity package, or services.ErrBrandNotFound when
// the brand does not exist or belongs to another organization.
func (l *Loader) Load(ctx context.Context, brandID, orgID uuid.UUID) (*models.BrandIdentityPackage, error) {
	b, err := l.repo.GetForOrg(ctx, brandID, orgID)
	if err != nil {
		return nil, services.WrapInternal("failed to load brand", err)
	}
	if b == nil {
		l.logger.Debug("brand not found for organization",
			zap.String("brand_id", brandID.String()),
			zap.String("org_id", orgID.String()))
		return nil, services.ErrBrandNotFound
	}

	pkg := Normalize(b)
	return &pkg, nil
}

// Normalize converts a brand row into an identity package with every
// nullable field replaced by an empty value.
func Normalize(b *models.Brand) models.BrandIdentityPackage {
	pkg := models.BrandIdentityPackage{
		OrgID:             b.OrganizationID,
		BrandID:           b.ID,
		BrandName:         b.Name,
		BrandVoice:        deref(b.BrandVoice),
		TargetAudience:    deref(b.TargetAudience),
		Industry:          deref(b.Industry),
		ContentPillars:    []string{},
		ForbiddenWords:    SplitList(deref(b.ForbiddenWords)),
		MandatoryElements: SplitList(deref(b.MandatoryElements)),
		RegionalExpertise: map[string]interface{}{},
		TargetLanguage:    deref(b.TargetLanguage),
	}

	for _, p := range b.ContentPillars {
		if p = strings.TrimSpace(p); p != "" {
			pkg.ContentPillars = append(pkg.ContentPillars, p)
		}
	}

	if len(b.RegionalExpertise) > 0 {
		var regional map[string]interface{}
		if err := json.Unmarshal(b.RegionalExpertise, &regional); err == nil && regional != nil {
			pkg.RegionalExpertise = regional
		}
	}

	if pkg.TargetLanguage == "" {
		pkg.TargetLanguage = models.DefaultLanguage
	}

	return pkg
}

// SplitList splits a legacy comma separated column into trimmed entries.
// Empty input and empty entries produce nothing.
func SplitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
