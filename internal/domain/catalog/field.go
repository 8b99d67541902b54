package catalog

import (
	"fmt"
	"slices"

	"github.com/erp/product-dimension/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Field names a physical attribute carried by both templates and variants.
// The value is also the persisted column name.
type Field string

const (
	FieldWeight         Field = "weight"
	FieldWeightInUoM    Field = "weight_in_uom"
	FieldWeightUoMID    Field = "weight_uom_id"
	FieldHeight         Field = "height"
	FieldLength         Field = "length"
	FieldWidth          Field = "width"
	FieldDimensionUoMID Field = "dimension_uom_id"
	FieldVolume         Field = "volume"
	FieldDensity        Field = "density"
)

// allFields is the canonical field order used for iteration and output
var allFields = []Field{
	FieldWeight,
	FieldWeightInUoM,
	FieldWeightUoMID,
	FieldHeight,
	FieldLength,
	FieldWidth,
	FieldDimensionUoMID,
	FieldVolume,
	FieldDensity,
}

var mirroredFields = []Field{
	FieldWeightInUoM,
	FieldWeightUoMID,
	FieldHeight,
	FieldLength,
	FieldWidth,
	FieldDimensionUoMID,
	FieldVolume,
	FieldDensity,
}

// Volume and density are left out: the variant derives them from these six.
var createPropagatedFields = []Field{
	FieldWeightInUoM,
	FieldWeightUoMID,
	FieldHeight,
	FieldLength,
	FieldWidth,
	FieldDimensionUoMID,
}

// AllFields returns every physical attribute in canonical order
func AllFields() []Field {
	return slices.Clone(allFields)
}

// MirroredFields returns the template attributes that mirror the primary variant
func MirroredFields() []Field {
	return slices.Clone(mirroredFields)
}

// CreatePropagatedFields returns the attributes copied onto the variant
// when a template is created
func CreatePropagatedFields() []Field {
	return slices.Clone(createPropagatedFields)
}

// ParseField converts a column name into a Field
func ParseField(name string) (Field, error) {
	f := Field(name)
	if !f.Valid() {
		return "", shared.NewDomainError("INVALID_FIELD", fmt.Sprintf("Unknown field %q", name))
	}
	return f, nil
}

// Valid reports whether f is a known attribute
func (f Field) Valid() bool {
	return slices.Contains(allFields, f)
}

// IsMirrored reports whether the template mirrors f from its primary variant
func (f Field) IsMirrored() bool {
	return slices.Contains(mirroredFields, f)
}

// IsUnitRef reports whether f holds a unit of measure reference
func (f Field) IsUnitRef() bool {
	return f == FieldWeightUoMID || f == FieldDimensionUoMID
}

// String implements fmt.Stringer
func (f Field) String() string {
	return string(f)
}

// Values is a sparse field-to-value mapping. Only present keys are written.
// Decimal fields hold decimal.Decimal; unit references hold *uuid.UUID,
// where nil clears the reference.
type Values map[Field]any

// Has reports whether the mapping carries a value for f
func (v Values) Has(f Field) bool {
	_, ok := v[f]
	return ok
}

// Touches reports whether any of fields is present
func (v Values) Touches(fields ...Field) bool {
	for _, f := range fields {
		if v.Has(f) {
			return true
		}
	}
	return false
}

// Pick returns the subset of v restricted to fields that are present
func (v Values) Pick(fields ...Field) Values {
	picked := make(Values, len(fields))
	for _, f := range fields {
		if val, ok := v[f]; ok {
			picked[f] = val
		}
	}
	return picked
}

// Fields returns the present keys in canonical order, unknown keys last
func (v Values) Fields() []Field {
	fields := make([]Field, 0, len(v))
	for _, f := range allFields {
		if v.Has(f) {
			fields = append(fields, f)
		}
	}
	var unknown []Field
	for f := range v {
		if !f.Valid() {
			unknown = append(unknown, f)
		}
	}
	slices.Sort(unknown)
	return append(fields, unknown...)
}

// Clone returns a shallow copy
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for f, val := range v {
		out[f] = val
	}
	return out
}

// Decimal returns the decimal value of f
func (v Values) Decimal(f Field) (decimal.Decimal, bool, error) {
	raw, ok := v[f]
	if !ok {
		return decimal.Zero, false, nil
	}
	d, err := toDecimal(f, raw)
	return d, true, err
}

// UnitRef returns the unit of measure reference held by f
func (v Values) UnitRef(f Field) (*uuid.UUID, bool, error) {
	raw, ok := v[f]
	if !ok {
		return nil, false, nil
	}
	id, err := toUnitRef(f, raw)
	return id, true, err
}

// Validate checks that every key is known and every value has the right
// type and sign and fits its column
func (v Values) Validate() error {
	for _, f := range v.Fields() {
		if !f.Valid() {
			return shared.NewDomainError("INVALID_FIELD", fmt.Sprintf("Unknown field %q", f))
		}
		if f.IsUnitRef() {
			if _, _, err := v.UnitRef(f); err != nil {
				return err
			}
			continue
		}
		d, _, err := v.Decimal(f)
		if err != nil {
			return err
		}
		if _, err := f.Fit(d); err != nil {
			return err
		}
	}
	return nil
}

// Scale returns the number of decimal places the column of f keeps
func (f Field) Scale() int32 {
	if f == FieldDensity {
		return densityPrecision
	}
	return volumePrecision
}

// integer digits of the quantity columns: DECIMAL(18,6), DECIMAL(24,6)
// for volume and DECIMAL(18,4) for density
func (f Field) integerDigits() int32 {
	switch f {
	case FieldVolume:
		return 18
	case FieldDensity:
		return 14
	}
	return 12
}

// Fit rounds d to the scale of f's column. Negative values and values
// the column cannot hold are rejected.
func (f Field) Fit(d decimal.Decimal) (decimal.Decimal, error) {
	if d.IsNegative() {
		return decimal.Zero, shared.NewDomainError("INVALID_DIMENSION", fmt.Sprintf("%s cannot be negative", f))
	}
	rounded := d.Round(f.Scale())
	if rounded.GreaterThanOrEqual(decimal.New(1, f.integerDigits())) {
		return decimal.Zero, shared.NewDomainError("INVALID_DIMENSION",
			fmt.Sprintf("%s must be less than 1e%d", f, f.integerDigits()))
	}
	return rounded, nil
}

func toDecimal(f Field, raw any) (decimal.Decimal, error) {
	switch val := raw.(type) {
	case decimal.Decimal:
		return val, nil
	case *decimal.Decimal:
		if val == nil {
			return decimal.Zero, nil
		}
		return *val, nil
	case int:
		return decimal.NewFromInt(int64(val)), nil
	case int64:
		return decimal.NewFromInt(val), nil
	case float64:
		return decimal.NewFromFloat(val), nil
	case string:
		d, err := decimal.NewFromString(val)
		if err != nil {
			return decimal.Zero, invalidValue(f, raw)
		}
		return d, nil
	default:
		return decimal.Zero, invalidValue(f, raw)
	}
}

func toUnitRef(f Field, raw any) (*uuid.UUID, error) {
	switch val := raw.(type) {
	case nil:
		return nil, nil
	case *uuid.UUID:
		if val == nil || *val == uuid.Nil {
			return nil, nil
		}
		id := *val
		return &id, nil
	case uuid.UUID:
		if val == uuid.Nil {
			return nil, nil
		}
		return &val, nil
	case string:
		if val == "" {
			return nil, nil
		}
		id, err := uuid.Parse(val)
		if err != nil {
			return nil, invalidValue(f, raw)
		}
		return &id, nil
	default:
		return nil, invalidValue(f, raw)
	}
}

func invalidValue(f Field, raw any) error {
	return shared.NewDomainError("INVALID_FIELD_VALUE", fmt.Sprintf("Invalid value %v for field %s", raw, f))
}
