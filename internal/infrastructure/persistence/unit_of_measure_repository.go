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

// GormUnitOfMeasureRepository implements UnitOfMeasureRepository using GORM
type GormUnitOfMeasureRepository struct {
	db *gorm.DB
}

// NewGormUnitOfMeasureRepository creates a new GormUnitOfMeasureRepository
func NewGormUnitOfMeasureRepository(db *gorm.DB) *GormUnitOfMeasureRepository {
	return &GormUnitOfMeasureRepository{db: db}
}

// FindByID finds a unit by its ID
func (r *GormUnitOfMeasureRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.UnitOfMeasure, error) {
	var model models.UnitOfMeasureModel
	if err := r.db.WithContext(ctx).Take(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCode finds a unit by its code
func (r *GormUnitOfMeasureRepository) FindByCode(ctx context.Context, code string) (*catalog.UnitOfMeasure, error) {
	var model models.UnitOfMeasureModel
	if err := r.db.WithContext(ctx).Take(&model, "code = ?", strings.ToUpper(code)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds units matching the filter
func (r *GormUnitOfMeasureRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.UnitOfMeasure, error) {
	var unitModels []models.UnitOfMeasureModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.UnitOfMeasureModel{}), filter)
	query = applyPaging(query, filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir, UnitOfMeasureSortFields, "code")
	if err := query.Find(&unitModels).Error; err != nil {
		return nil, err
	}

	units := make([]catalog.UnitOfMeasure, len(unitModels))
	for i := range unitModels {
		units[i] = *unitModels[i].ToDomain()
	}
	return units, nil
}

// Count counts units matching the filter
func (r *GormUnitOfMeasureRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.UnitOfMeasureModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByCode checks if a unit code is taken
func (r *GormUnitOfMeasureRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.UnitOfMeasureModel{}).
		Where("code = ?", strings.ToUpper(code)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a unit
func (r *GormUnitOfMeasureRepository) Save(ctx context.Context, unit *catalog.UnitOfMeasure) error {
	return r.db.WithContext(ctx).Save(models.UnitOfMeasureModelFromDomain(unit)).Error
}

func (r *GormUnitOfMeasureRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(code) LIKE ? OR LOWER(name) LIKE ?", pattern, pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "category":
			query = query.Where("category = ?", value)
		case "active":
			query = query.Where("active = ?", value)
		}
	}
	return query
}

// Ensure GormUnitOfMeasureRepository implements UnitOfMeasureRepository
var _ catalog.UnitOfMeasureRepository = (*GormUnitOfMeasureRepository)(nil)
