package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/product-dimension/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductVariant is the sellable unit of a template. It owns the
// authoritative physical attributes the template mirrors.
type ProductVariant struct {
	shared.BaseEntity
	TemplateID     uuid.UUID
	Code           string
	Weight         decimal.Decimal
	WeightInUoM    decimal.Decimal
	WeightUoMID    *uuid.UUID
	Height         decimal.Decimal
	Length         decimal.Decimal
	Width          decimal.Decimal
	DimensionUoMID *uuid.UUID
	Volume         decimal.Decimal
	Density        decimal.Decimal
}

// NewProductVariant creates a variant with every physical attribute at its default
func NewProductVariant(templateID uuid.UUID, code string) (*ProductVariant, error) {
	if templateID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TEMPLATE", "Template ID cannot be empty")
	}
	if err := validateProductCode(code); err != nil {
		return nil, err
	}

	return &ProductVariant{
		BaseEntity:  shared.NewBaseEntity(),
		TemplateID:  templateID,
		Code:        strings.ToUpper(code),
		Weight:      decimal.Zero,
		WeightInUoM: decimal.Zero,
		Height:      decimal.Zero,
		Length:      decimal.Zero,
		Width:       decimal.Zero,
		Volume:      decimal.Zero,
		Density:     decimal.Zero,
	}, nil
}

// Write applies values to the variant. Nothing is applied unless every
// value is valid.
func (v *ProductVariant) Write(values Values) error {
	if err := values.Validate(); err != nil {
		return err
	}
	for _, f := range values.Fields() {
		if err := v.set(f, values); err != nil {
			return err
		}
	}
	v.UpdatedAt = time.Now()
	return nil
}

// Get returns the current value of f: decimal.Decimal for quantities,
// *uuid.UUID for unit references
func (v *ProductVariant) Get(f Field) any {
	switch f {
	case FieldWeight:
		return v.Weight
	case FieldWeightInUoM:
		return v.WeightInUoM
	case FieldWeightUoMID:
		return cloneRef(v.WeightUoMID)
	case FieldHeight:
		return v.Height
	case FieldLength:
		return v.Length
	case FieldWidth:
		return v.Width
	case FieldDimensionUoMID:
		return cloneRef(v.DimensionUoMID)
	case FieldVolume:
		return v.Volume
	case FieldDensity:
		return v.Density
	}
	return nil
}

// Values returns the requested fields as a mapping
func (v *ProductVariant) Values(fields ...Field) Values {
	out := make(Values, len(fields))
	for _, f := range fields {
		out[f] = v.Get(f)
	}
	return out
}

// RefreshMeasures recomputes volume and density after a write that touched
// their inputs, unless the write set them explicitly. dimensionUnit and
// weightUnit are the units the variant currently references.
// A derived value its column cannot hold fails with INVALID_DIMENSION and
// leaves the variant unchanged.
func (v *ProductVariant) RefreshMeasures(written Values, dimensionUnit, weightUnit *UnitOfMeasure) ([]Field, error) {
	var refreshed []Field
	volume, density := v.Volume, v.Density
	if written.Touches(volumeInputs...) && !written.Has(FieldVolume) {
		computed, err := FieldVolume.Fit(ComputeVolume(v.Height, v.Length, v.Width, dimensionUnit))
		if err != nil {
			return nil, err
		}
		volume = computed
		refreshed = append(refreshed, FieldVolume)
	}
	if written.Touches(densityInputs...) && !written.Has(FieldDensity) {
		computed, err := FieldDensity.Fit(ComputeDensity(v.WeightInUoM, weightUnit, volume))
		if err != nil {
			return nil, err
		}
		density = computed
		refreshed = append(refreshed, FieldDensity)
	}
	v.Volume, v.Density = volume, density
	return refreshed, nil
}

func (v *ProductVariant) set(f Field, values Values) error {
	if f.IsUnitRef() {
		ref, _, err := values.UnitRef(f)
		if err != nil {
			return err
		}
		if f == FieldWeightUoMID {
			v.WeightUoMID = ref
		} else {
			v.DimensionUoMID = ref
		}
		return nil
	}

	d, _, err := values.Decimal(f)
	if err != nil {
		return err
	}
	if d, err = f.Fit(d); err != nil {
		return err
	}
	switch f {
	case FieldWeight:
		v.Weight = d
	case FieldWeightInUoM:
		v.WeightInUoM = d
	case FieldHeight:
		v.Height = d
	case FieldLength:
		v.Length = d
	case FieldWidth:
		v.Width = d
	case FieldVolume:
		v.Volume = d
	case FieldDensity:
		v.Density = d
	default:
		return shared.NewDomainError("INVALID_FIELD", fmt.Sprintf("Unknown field %q", f))
	}
	return nil
}

func cloneRef(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}

func sameRef(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
