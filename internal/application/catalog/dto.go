package catalog

import (
	"fmt"
	"time"

	"github.com/erp/product-dimension/internal/domain/catalog"
	"github.com/erp/product-dimension/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DimensionInput carries the physical attributes a request may write.
// Nil pointers are absent keys and leave the stored value untouched.
// Clear lists fields to reset to their defaults (zero, or no unit).
type DimensionInput struct {
	WeightInUoM    *decimal.Decimal `json:"weight_in_uom" binding:"omitempty,gte=0"`
	WeightUoMID    *uuid.UUID       `json:"weight_uom_id"`
	Height         *decimal.Decimal `json:"height" binding:"omitempty,gte=0"`
	Length         *decimal.Decimal `json:"length" binding:"omitempty,gte=0"`
	Width          *decimal.Decimal `json:"width" binding:"omitempty,gte=0"`
	DimensionUoMID *uuid.UUID       `json:"dimension_uom_id"`
	Volume         *decimal.Decimal `json:"volume" binding:"omitempty,gte=0"`
	Density        *decimal.Decimal `json:"density" binding:"omitempty,gte=0"`
	Clear          []string         `json:"clear" binding:"omitempty,max=9"`
}

// Values returns only the keys the caller supplied
func (in DimensionInput) Values() catalog.Values {
	values := catalog.Values{}
	for _, name := range in.Clear {
		f := catalog.Field(name)
		switch {
		case f.IsUnitRef():
			values[f] = (*uuid.UUID)(nil)
		case f.Valid():
			values[f] = decimal.Zero
		default:
			// left for Validate to reject
			values[f] = nil
		}
	}
	putDecimal(values, catalog.FieldWeightInUoM, in.WeightInUoM)
	putRef(values, catalog.FieldWeightUoMID, in.WeightUoMID)
	putDecimal(values, catalog.FieldHeight, in.Height)
	putDecimal(values, catalog.FieldLength, in.Length)
	putDecimal(values, catalog.FieldWidth, in.Width)
	putRef(values, catalog.FieldDimensionUoMID, in.DimensionUoMID)
	putDecimal(values, catalog.FieldVolume, in.Volume)
	putDecimal(values, catalog.FieldDensity, in.Density)
	return values
}

// MirroredValues is Values for requests that write through the template.
// Clearing a field the template does not mirror, such as its own weight,
// is rejected rather than dropped.
func (in DimensionInput) MirroredValues() (catalog.Values, error) {
	for _, name := range in.Clear {
		f := catalog.Field(name)
		if f.Valid() && !f.IsMirrored() {
			return nil, shared.NewDomainError("INVALID_FIELD", fmt.Sprintf("Field %s is not mirrored from the variant", f))
		}
	}
	values := in.Values()
	if err := values.Validate(); err != nil {
		return nil, err
	}
	return values, nil
}

func putDecimal(values catalog.Values, f catalog.Field, d *decimal.Decimal) {
	if d != nil {
		values[f] = *d
	}
}

func putRef(values catalog.Values, f catalog.Field, id *uuid.UUID) {
	if id != nil {
		ref := *id
		values[f] = &ref
	}
}

// CreateProductTemplateRequest represents a request to create a new template.
// Weight is the template's own weight in kilograms.
type CreateProductTemplateRequest struct {
	Code        string           `json:"code" binding:"required,min=1,max=50"`
	Name        string           `json:"name" binding:"required,min=1,max=200"`
	Description string           `json:"description" binding:"max=2000"`
	Weight      *decimal.Decimal `json:"weight" binding:"omitempty,gte=0"`
	DimensionInput
}

// UpdateProductTemplateRequest represents a request to update a template.
// Mirrored attributes are written through to the template's variants.
type UpdateProductTemplateRequest struct {
	Name        *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string          `json:"description" binding:"omitempty,max=2000"`
	Weight      *decimal.Decimal `json:"weight" binding:"omitempty,gte=0"`
	DimensionInput
}

// PropagateRequest re-applies creation values to a template's variants
type PropagateRequest struct {
	DimensionInput
}

// UpdateProductVariantRequest represents a request to write a variant's attributes
type UpdateProductVariantRequest struct {
	Weight *decimal.Decimal `json:"weight" binding:"omitempty,gte=0"`
	DimensionInput
}

// Values returns the supplied keys including the variant's own weight
func (r UpdateProductVariantRequest) Values() catalog.Values {
	values := r.DimensionInput.Values()
	putDecimal(values, catalog.FieldWeight, r.Weight)
	return values
}

// DimensionsResponse holds the physical attributes of a template or variant
type DimensionsResponse struct {
	WeightInUoM    decimal.Decimal `json:"weight_in_uom"`
	WeightUoMID    *uuid.UUID      `json:"weight_uom_id"`
	Height         decimal.Decimal `json:"height"`
	Length         decimal.Decimal `json:"length"`
	Width          decimal.Decimal `json:"width"`
	DimensionUoMID *uuid.UUID      `json:"dimension_uom_id"`
	Volume         decimal.Decimal `json:"volume"`
	Density        decimal.Decimal `json:"density"`
}

// ProductTemplateResponse represents a template in API responses
type ProductTemplateResponse struct {
	ID          uuid.UUID       `json:"id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Weight      decimal.Decimal `json:"weight"`
	DimensionsResponse
	Variants  []ProductVariantResponse `json:"variants"`
	CreatedAt time.Time                `json:"created_at"`
	UpdatedAt time.Time                `json:"updated_at"`
	Version   int                      `json:"version"`
}

// ProductTemplateListResponse represents a list item for templates
type ProductTemplateListResponse struct {
	ID     uuid.UUID       `json:"id"`
	Code   string          `json:"code"`
	Name   string          `json:"name"`
	Weight decimal.Decimal `json:"weight"`
	DimensionsResponse
	CreatedAt time.Time `json:"created_at"`
}

// ProductVariantResponse represents a variant in API responses
type ProductVariantResponse struct {
	ID         uuid.UUID       `json:"id"`
	TemplateID uuid.UUID       `json:"template_id"`
	Code       string          `json:"code"`
	Weight     decimal.Decimal `json:"weight"`
	DimensionsResponse
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProductTemplateListFilter represents filter options for template list
type ProductTemplateListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToProductTemplateResponse converts a domain ProductTemplate to ProductTemplateResponse
func ToProductTemplateResponse(t *catalog.ProductTemplate) ProductTemplateResponse {
	variants := make([]ProductVariantResponse, 0, len(t.Variants))
	for _, v := range t.Variants {
		variants = append(variants, ToProductVariantResponse(v))
	}
	return ProductTemplateResponse{
		ID:                 t.ID,
		Code:               t.Code,
		Name:               t.Name,
		Description:        t.Description,
		Weight:             t.Weight,
		DimensionsResponse: templateDimensions(t),
		Variants:           variants,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
		Version:            t.Version,
	}
}

// ToProductTemplateListResponse converts a domain ProductTemplate to ProductTemplateListResponse
func ToProductTemplateListResponse(t *catalog.ProductTemplate) ProductTemplateListResponse {
	return ProductTemplateListResponse{
		ID:                 t.ID,
		Code:               t.Code,
		Name:               t.Name,
		Weight:             t.Weight,
		DimensionsResponse: templateDimensions(t),
		CreatedAt:          t.CreatedAt,
	}
}

// ToProductTemplateListResponses converts a slice of templates to list responses
func ToProductTemplateListResponses(templates []catalog.ProductTemplate) []ProductTemplateListResponse {
	responses := make([]ProductTemplateListResponse, len(templates))
	for i := range templates {
		responses[i] = ToProductTemplateListResponse(&templates[i])
	}
	return responses
}

// ToProductVariantResponse converts a domain ProductVariant to ProductVariantResponse
func ToProductVariantResponse(v *catalog.ProductVariant) ProductVariantResponse {
	return ProductVariantResponse{
		ID:         v.ID,
		TemplateID: v.TemplateID,
		Code:       v.Code,
		Weight:     v.Weight,
		DimensionsResponse: DimensionsResponse{
			WeightInUoM:    v.WeightInUoM,
			WeightUoMID:    v.WeightUoMID,
			Height:         v.Height,
			Length:         v.Length,
			Width:          v.Width,
			DimensionUoMID: v.DimensionUoMID,
			Volume:         v.Volume,
			Density:        v.Density,
		},
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

func templateDimensions(t *catalog.ProductTemplate) DimensionsResponse {
	return DimensionsResponse{
		WeightInUoM:    t.WeightInUoM,
		WeightUoMID:    t.WeightUoMID,
		Height:         t.Height,
		Length:         t.Length,
		Width:          t.Width,
		DimensionUoMID: t.DimensionUoMID,
		Volume:         t.Volume,
		Density:        t.Density,
	}
}

// CreateUnitOfMeasureRequest represents a request to create a unit of measure
type CreateUnitOfMeasureRequest struct {
	Code     string          `json:"code" binding:"required,min=1,max=20"`
	Name     string          `json:"name" binding:"required,min=1,max=50"`
	Category string          `json:"category" binding:"required,oneof=weight length volume"`
	Factor   decimal.Decimal `json:"factor" binding:"required,gt=0"`
}

// UpdateUnitOfMeasureRequest represents a request to update a unit of measure
type UpdateUnitOfMeasureRequest struct {
	Name   *string          `json:"name" binding:"omitempty,min=1,max=50"`
	Factor *decimal.Decimal `json:"factor" binding:"omitempty,gt=0"`
}

// UnitOfMeasureResponse represents a unit of measure in API responses
type UnitOfMeasureResponse struct {
	ID        uuid.UUID       `json:"id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Factor    decimal.Decimal `json:"factor"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Version   int             `json:"version"`
}

// UnitOfMeasureListFilter represents filter options for unit list
type UnitOfMeasureListFilter struct {
	Search   string `form:"search"`
	Category string `form:"category" binding:"omitempty,oneof=weight length volume"`
	Active   *bool  `form:"active"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToUnitOfMeasureResponse converts a domain UnitOfMeasure to UnitOfMeasureResponse
func ToUnitOfMeasureResponse(u *catalog.UnitOfMeasure) UnitOfMeasureResponse {
	return UnitOfMeasureResponse{
		ID:        u.ID,
		Code:      u.Code,
		Name:      u.Name,
		Category:  string(u.Category),
		Factor:    u.Factor,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
		Version:   u.Version,
	}
}

// ToUnitOfMeasureResponses converts a slice of units to responses
func ToUnitOfMeasureResponses(units []catalog.UnitOfMeasure) []UnitOfMeasureResponse {
	responses := make([]UnitOfMeasureResponse, len(units))
	for i := range units {
		responses[i] = ToUnitOfMeasureResponse(&units[i])
	}
	return responses
}
