package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/product-dimension/internal/domain/catalog"
	"github.com/erp/product-dimension/internal/domain/shared"
	"github.com/erp/product-dimension/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProductTemplateRepository implements ProductTemplateRepository using GORM
type GormProductTemplateRepository struct {
	db *gorm.DB
}

// NewGormProductTemplateRepository creates a new GormProductTemplateRepository
func NewGormProductTemplateRepository(db *gorm.DB) *GormProductTemplateRepository {
	return &GormProductTemplateRepository{db: db}
}

// FindByID finds a template with its variants
func (r *GormProductTemplateRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.ProductTemplate, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByCode finds a template with its variants by code
func (r *GormProductTemplateRepository) FindByCode(ctx context.Context, code string) (*catalog.ProductTemplate, error) {
	return r.findOne(ctx, "code = ?", strings.ToUpper(code))
}

func (r *GormProductTemplateRepository) findOne(ctx context.Context, query string, arg any) (*catalog.ProductTemplate, error) {
	var model models.ProductTemplateModel
	if err := r.db.WithContext(ctx).Where(query, arg).Take(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	variants, err := findVariantsByTemplateID(r.db.WithContext(ctx), model.ID)
	if err != nil {
		return nil, err
	}
	template := model.ToDomain()
	template.Variants = variants
	return template, nil
}

// FindAll finds templates matching the filter. Variants are not loaded.
func (r *GormProductTemplateRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.ProductTemplate, error) {
	var templateModels []models.ProductTemplateModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ProductTemplateModel{}), filter)
	query = applyPaging(query, filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, ProductTemplateSortFields, "code")
	if err := query.Find(&templateModels).Error; err != nil {
		return nil, err
	}

	templates := make([]catalog.ProductTemplate, len(templateModels))
	for i := range templateModels {
		templates[i] = *templateModels[i].ToDomain()
	}
	return templates, nil
}

// Count counts templates matching the filter
func (r *GormProductTemplateRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ProductTemplateModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByCode checks if a template code is taken
func (r *GormProductTemplateRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ProductTemplateModel{}).
		Where("code = ?", strings.ToUpper(code)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates the template's own columns. The mirror columns
// are never taken from the aggregate: they only change through
// syncTemplateMirrors.
func (r *GormProductTemplateRepository) Save(ctx context.Context, template *catalog.ProductTemplate) error {
	db := r.db.WithContext(ctx)
	result := db.Model(&models.ProductTemplateModel{}).
		Where("id = ?", template.ID).
		Updates(map[string]any{
			"code":        template.Code,
			"name":        template.Name,
			"description": template.Description,
			"weight":      template.Weight,
			"version":     template.Version,
			"updated_at":  template.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	// A new row starts from default mirrors; the first variant save fills them.
	model := models.ProductTemplateModelFromDomain(template)
	model.ResetMirrors()
	return db.Create(model).Error
}

// Delete deletes a template. Variants must be removed first through the
// variant repository.
func (r *GormProductTemplateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ProductTemplateModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilter applies the search term without ordering or pagination
func (r *GormProductTemplateRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(code) LIKE ? OR LOWER(name) LIKE ?", pattern, pattern)
	}
	return query
}

// Ensure GormProductTemplateRepository implements ProductTemplateRepository
var _ catalog.ProductTemplateRepository = (*GormProductTemplateRepository)(nil)
