package catalog

import (
	"context"

	"github.com/erp/product-dimension/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductTemplateRepository defines the interface for template persistence
type ProductTemplateRepository interface {
	// FindByID finds a template with its variants
	FindByID(ctx context.Context, id uuid.UUID) (*ProductTemplate, error)

	// FindByCode finds a template with its variants by code
	FindByCode(ctx context.Context, code string) (*ProductTemplate, error)

	// FindAll finds templates matching the filter. Variants are not loaded.
	FindAll(ctx context.Context, filter shared.Filter) ([]ProductTemplate, error)

	// Count counts templates matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// ExistsByCode checks if a template code is taken
	ExistsByCode(ctx context.Context, code string) (bool, error)

	// Save creates or updates the template's own fields. Mirror columns are
	// never written here; they follow the primary variant.
	Save(ctx context.Context, template *ProductTemplate) error

	// Delete deletes a template
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductVariantRepository defines the interface for variant persistence.
// Every write re-persists the owning template's mirrors in the same transaction.
type ProductVariantRepository interface {
	// FindByID finds a variant by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*ProductVariant, error)

	// FindByTemplateID finds a template's variants, primary first
	FindByTemplateID(ctx context.Context, templateID uuid.UUID) ([]*ProductVariant, error)

	// Save creates or updates a variant
	Save(ctx context.Context, variant *ProductVariant) error

	// Delete deletes a variant
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteByTemplateID deletes all variants of a template
	DeleteByTemplateID(ctx context.Context, templateID uuid.UUID) error
}

// UnitOfMeasureRepository defines the interface for unit of measure persistence
type UnitOfMeasureRepository interface {
	// FindByID finds a unit by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*UnitOfMeasure, error)

	// FindByCode finds a unit by its code
	FindByCode(ctx context.Context, code string) (*UnitOfMeasure, error)

	// FindAll finds units matching the filter; Filters["category"] and
	// Filters["active"] narrow the result
	FindAll(ctx context.Context, filter shared.Filter) ([]UnitOfMeasure, error)

	// Count counts units matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// ExistsByCode checks if a unit code is taken
	ExistsByCode(ctx context.Context, code string) (bool, error)

	// Save creates or updates a unit
	Save(ctx context.Context, unit *UnitOfMeasure) error
}
