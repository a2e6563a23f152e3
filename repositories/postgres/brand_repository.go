package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/upb/genos-ai/models"
	"github.com/upb/genos-ai/repositories"
	"go.uber.org/zap"
)

const brandColumns = `id, organization_id, name, brand_voice, target_audience, industry,
	content_pillars, forbidden_words, mandatory_elements, regional_expertise,
	target_language, created_at, updated_at`

// BrandRepository implements repositories.BrandRepository
type BrandRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewBrandRepository creates a new brand repository
func NewBrandRepository(db *DB, logger *zap.Logger) repositories.BrandRepository {
	return &BrandRepository{db: db, logger: logger}
}

// GetForOrg loads a brand only if it belongs to orgID
func (r *BrandRepository) GetForOrg(ctx context.Context, brandID, orgID uuid.UUID) (*models.Brand, error) {
	query := `SELECT ` + brandColumns + ` FROM brands WHERE id = $1 AND organization_id = $2`

	brand, err := scanBrand(GetExecutor(ctx, r.db).QueryRowContext(ctx, query, brandID, orgID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get brand: %w", err)
	}
	return brand, nil
}

// ListByOrg lists brands of an organization, or one brand when brandID is set
func (r *BrandRepository) ListByOrg(ctx context.Context, orgID uuid.UUID, brandID *uuid.UUID) ([]*models.Brand, error) {
	query := `SELECT ` + brandColumns + ` FROM brands WHERE organization_id = $1`
	args := []interface{}{orgID}
	if brandID != nil {
		query += ` AND id = $2`
		args = append(args, *brandID)
	}
	query += ` ORDER BY created_at`

	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}
	defer rows.Close()

	var brands []*models.Brand
	for rows.Next() {
		brand, err := scanBrand(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan brand: %w", err)
		}
		brands = append(brands, brand)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate brands: %w", err)
	}
	return brands, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBrand(row rowScanner) (*models.Brand, error) {
	b := &models.Brand{}
	var regional []byte
	err := row.Scan(
		&b.ID,
		&b.OrganizationID,
		&b.Name,
		&b.BrandVoice,
		&b.TargetAudience,
		&b.Industry,
		&b.ContentPillars,
		&b.ForbiddenWords,
		&b.MandatoryElements,
		&regional,
		&b.TargetLanguage,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.RegionalExpertise = regional
	return b, nil
}
