package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/product-dimension/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductTemplate is the logical product definition shared by its variants.
// It is the aggregate root for templates and their variants.
//
// The eight mirrored attributes are stored copies of the primary variant's
// values. Domain code only changes them through SyncMirrors.
type ProductTemplate struct {
	shared.BaseAggregateRoot
	Code        string
	Name        string
	Description string
	// Weight is displayed as "Weight in Kg" and is independent of the variants' weight
	Weight decimal.Decimal

	WeightInUoM    decimal.Decimal
	WeightUoMID    *uuid.UUID
	Height         decimal.Decimal
	Length         decimal.Decimal
	Width          decimal.Decimal
	DimensionUoMID *uuid.UUID
	Volume         decimal.Decimal
	Density        decimal.Decimal

	// Variants are ordered by creation; the first one is the primary variant
	Variants []*ProductVariant
}

// NewProductTemplate creates a new template without variants
func NewProductTemplate(code, name string) (*ProductTemplate, error) {
	if err := validateProductCode(code); err != nil {
		return nil, err
	}
	if err := validateProductName(name); err != nil {
		return nil, err
	}

	template := &ProductTemplate{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(code),
		Name:              name,
		Weight:            decimal.Zero,
		WeightInUoM:       decimal.Zero,
		Height:            decimal.Zero,
		Length:            decimal.Zero,
		Width:             decimal.Zero,
		Volume:            decimal.Zero,
		Density:           decimal.Zero,
	}

	template.AddDomainEvent(NewProductTemplateCreatedEvent(template))

	return template, nil
}

// Update updates the template's basic information
func (t *ProductTemplate) Update(name, description string) error {
	if err := validateProductName(name); err != nil {
		return err
	}

	t.Name = name
	t.Description = description
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	t.AddDomainEvent(NewProductTemplateUpdatedEvent(t))

	return nil
}

// SetWeight sets the template's own weight in kilograms
func (t *ProductTemplate) SetWeight(weight decimal.Decimal) error {
	weight, err := FieldWeight.Fit(weight)
	if err != nil {
		return err
	}

	t.Weight = weight
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// NewPrimaryVariant creates the template's first variant. It carries the
// template code and default physical attributes.
func (t *ProductTemplate) NewPrimaryVariant() (*ProductVariant, error) {
	if len(t.Variants) > 0 {
		return nil, shared.NewDomainError("VARIANT_EXISTS", "Template already has a primary variant")
	}
	variant, err := NewProductVariant(t.ID, t.Code)
	if err != nil {
		return nil, err
	}
	t.Variants = append(t.Variants, variant)
	return variant, nil
}

// PrimaryVariant returns the variant the template mirrors, or nil when the
// template has no variants
func (t *ProductTemplate) PrimaryVariant() *ProductVariant {
	if len(t.Variants) == 0 {
		return nil
	}
	return t.Variants[0]
}

// Variant returns the template's variant with the given id
func (t *ProductTemplate) Variant(id uuid.UUID) *ProductVariant {
	for _, v := range t.Variants {
		if v.ID == id {
			return v
		}
	}
	return nil
}

// Mirror returns the stored mirror value of f
func (t *ProductTemplate) Mirror(f Field) any {
	switch f {
	case FieldWeightInUoM:
		return t.WeightInUoM
	case FieldWeightUoMID:
		return cloneRef(t.WeightUoMID)
	case FieldHeight:
		return t.Height
	case FieldLength:
		return t.Length
	case FieldWidth:
		return t.Width
	case FieldDimensionUoMID:
		return cloneRef(t.DimensionUoMID)
	case FieldVolume:
		return t.Volume
	case FieldDensity:
		return t.Density
	}
	return nil
}

// MirrorValues returns all stored mirror values
func (t *ProductTemplate) MirrorValues() Values {
	out := make(Values, len(mirroredFields))
	for _, f := range mirroredFields {
		out[f] = t.Mirror(f)
	}
	return out
}

// MirrorOf returns the mirrored attributes of variant. A nil variant yields
// the defaults: zero quantities and no unit references.
func MirrorOf(variant *ProductVariant) Values {
	if variant == nil {
		out := make(Values, len(mirroredFields))
		for _, f := range mirroredFields {
			if f.IsUnitRef() {
				out[f] = (*uuid.UUID)(nil)
			} else {
				out[f] = decimal.Zero
			}
		}
		return out
	}
	return variant.Values(mirroredFields...)
}

// SyncMirrors copies the primary variant's attributes onto the template and
// returns the fields that changed
func (t *ProductTemplate) SyncMirrors() []Field {
	source := MirrorOf(t.PrimaryVariant())

	var changed []Field
	for _, f := range mirroredFields {
		if f.IsUnitRef() {
			ref, _, _ := source.UnitRef(f)
			if t.setMirrorRef(f, ref) {
				changed = append(changed, f)
			}
			continue
		}
		d, _, _ := source.Decimal(f)
		if t.setMirrorDecimal(f, d) {
			changed = append(changed, f)
		}
	}

	if len(changed) > 0 {
		t.UpdatedAt = time.Now()
		t.AddDomainEvent(NewProductTemplateMirrorsSyncedEvent(t, changed))
	}
	return changed
}

// WriteMirrored forwards a write of mirrored attributes to every variant and
// re-syncs the template. Without variants the values have nowhere to go and
// the mirrors stay at their defaults.
func (t *ProductTemplate) WriteMirrored(values Values) error {
	for _, f := range values.Fields() {
		if !f.IsMirrored() {
			return shared.NewDomainError("INVALID_FIELD", fmt.Sprintf("Field %s is not mirrored from the variant", f))
		}
	}
	if err := values.Validate(); err != nil {
		return err
	}
	for _, v := range t.Variants {
		if err := v.Write(values); err != nil {
			return err
		}
	}
	t.SyncMirrors()
	return nil
}

func (t *ProductTemplate) setMirrorDecimal(f Field, d decimal.Decimal) bool {
	var target *decimal.Decimal
	switch f {
	case FieldWeightInUoM:
		target = &t.WeightInUoM
	case FieldHeight:
		target = &t.Height
	case FieldLength:
		target = &t.Length
	case FieldWidth:
		target = &t.Width
	case FieldVolume:
		target = &t.Volume
	case FieldDensity:
		target = &t.Density
	default:
		return false
	}
	if target.Equal(d) {
		return false
	}
	*target = d
	return true
}

func (t *ProductTemplate) setMirrorRef(f Field, ref *uuid.UUID) bool {
	target := &t.WeightUoMID
	if f == FieldDimensionUoMID {
		target = &t.DimensionUoMID
	}
	if sameRef(*target, ref) {
		return false
	}
	*target = cloneRef(ref)
	return true
}

func validateProductCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Product code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Product code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !isAllowedCodeRune(r) {
			return shared.NewDomainError("INVALID_CODE", "Product code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func validateProductName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}
