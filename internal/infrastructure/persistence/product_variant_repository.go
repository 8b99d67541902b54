package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/product-dimension/internal/domain/catalog"
	"github.com/erp/product-dimension/internal/domain/shared"
	"github.com/erp/product-dimension/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProductVariantRepository implements ProductVariantRepository using GORM.
// Every write re-persists the owning template's mirror columns before its
// transaction (or savepoint, when already inside one) completes.
type GormProductVariantRepository struct {
	db *gorm.DB
}

// NewGormProductVariantRepository creates a new GormProductVariantRepository
func NewGormProductVariantRepository(db *gorm.DB) *GormProductVariantRepository {
	return &GormProductVariantRepository{db: db}
}

// FindByID finds a variant by its ID
func (r *GormProductVariantRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.ProductVariant, error) {
	var model models.ProductVariantModel
	if err := r.db.WithContext(ctx).Take(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByTemplateID finds a template's variants, primary first
func (r *GormProductVariantRepository) FindByTemplateID(ctx context.Context, templateID uuid.UUID) ([]*catalog.ProductVariant, error) {
	return findVariantsByTemplateID(r.db.WithContext(ctx), templateID)
}

// Save creates or updates a variant and re-syncs its template's mirrors
func (r *GormProductVariantRepository) Save(ctx context.Context, variant *catalog.ProductVariant) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(models.ProductVariantModelFromDomain(variant)).Error; err != nil {
			return err
		}
		return syncTemplateMirrors(tx, variant.TemplateID)
	})
}

// Delete deletes a variant and re-syncs its template's mirrors
func (r *GormProductVariantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model models.ProductVariantModel
		if err := tx.Select("id", "template_id").Take(&model, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}
		if err := tx.Delete(&models.ProductVariantModel{}, "id = ?", id).Error; err != nil {
			return err
		}
		return syncTemplateMirrors(tx, model.TemplateID)
	})
}

// DeleteByTemplateID deletes all variants of a template and resets its mirrors
func (r *GormProductVariantRepository) DeleteByTemplateID(ctx context.Context, templateID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.ProductVariantModel{}, "template_id = ?", templateID).Error; err != nil {
			return err
		}
		return syncTemplateMirrors(tx, templateID)
	})
}

func findVariantsByTemplateID(db *gorm.DB, templateID uuid.UUID) ([]*catalog.ProductVariant, error) {
	var variantModels []models.ProductVariantModel
	if err := db.
		Where("template_id = ?", templateID).
		Order("created_at ASC, id ASC").
		Find(&variantModels).Error; err != nil {
		return nil, err
	}

	variants := make([]*catalog.ProductVariant, len(variantModels))
	for i := range variantModels {
		variants[i] = variantModels[i].ToDomain()
	}
	return variants, nil
}

// syncTemplateMirrors copies the primary variant's mirrored attributes onto
// the template row, or resets them to their defaults when the template has
// no variant left. Volume and density are copied as stored on the variant.
func syncTemplateMirrors(tx *gorm.DB, templateID uuid.UUID) error {
	var primary models.ProductVariantModel
	err := tx.Where("template_id = ?", templateID).
		Order("created_at ASC, id ASC").
		Limit(1).
		Take(&primary).Error

	var mirror catalog.Values
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		mirror = catalog.MirrorOf(nil)
	case err != nil:
		return fmt.Errorf("failed to load primary variant of template %s: %w", templateID, err)
	default:
		mirror = catalog.MirrorOf(primary.ToDomain())
	}

	updates := make(map[string]any, len(mirror))
	for f, v := range mirror {
		updates[f.String()] = v
	}
	return tx.Model(&models.ProductTemplateModel{}).
		Where("id = ?", templateID).
		UpdateColumns(updates).Error
}

// Ensure GormProductVariantRepository implements ProductVariantRepository
var _ catalog.ProductVariantRepository = (*GormProductVariantRepository)(nil)
