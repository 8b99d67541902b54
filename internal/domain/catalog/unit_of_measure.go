package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/product-dimension/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// UnitCategory groups units that can be converted into each other
type UnitCategory string

const (
	UnitCategoryWeight UnitCategory = "weight"
	UnitCategoryLength UnitCategory = "length"
	UnitCategoryVolume UnitCategory = "volume"
)

// IsValid checks if the category is known
func (c UnitCategory) IsValid() bool {
	switch c {
	case UnitCategoryWeight, UnitCategoryLength, UnitCategoryVolume:
		return true
	}
	return false
}

// UnitOfMeasure is a unit referenced by weight_uom_id and dimension_uom_id.
// Factor expresses how many reference units (kg, m, m³) one unit equals.
type UnitOfMeasure struct {
	shared.BaseAggregateRoot
	Code     string
	Name     string
	Category UnitCategory
	Factor   decimal.Decimal
	Active   bool
}

// NewUnitOfMeasure creates a new active unit of measure
func NewUnitOfMeasure(code, name string, category UnitCategory, factor decimal.Decimal) (*UnitOfMeasure, error) {
	if err := validateUnitCode(code); err != nil {
		return nil, err
	}
	if err := validateUnitName(name); err != nil {
		return nil, err
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", fmt.Sprintf("Unknown unit category %q", category))
	}
	if err := validateFactor(factor); err != nil {
		return nil, err
	}

	unit := &UnitOfMeasure{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(code),
		Name:              name,
		Category:          category,
		Factor:            factor,
		Active:            true,
	}
	unit.AddDomainEvent(NewUnitOfMeasureCreatedEvent(unit))

	return unit, nil
}

// Update changes the display name and conversion factor
func (u *UnitOfMeasure) Update(name string, factor decimal.Decimal) error {
	if err := validateUnitName(name); err != nil {
		return err
	}
	if err := validateFactor(factor); err != nil {
		return err
	}

	u.Name = name
	u.Factor = factor
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	u.AddDomainEvent(NewUnitOfMeasureUpdatedEvent(u))

	return nil
}

// Deactivate prevents new references to the unit. Existing references stay valid.
func (u *UnitOfMeasure) Deactivate() error {
	if !u.Active {
		return shared.NewDomainError("ALREADY_INACTIVE", "Unit of measure is already inactive")
	}
	u.Active = false
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	u.AddDomainEvent(NewUnitOfMeasureUpdatedEvent(u))
	return nil
}

// Activate makes the unit referenceable again
func (u *UnitOfMeasure) Activate() error {
	if u.Active {
		return shared.NewDomainError("ALREADY_ACTIVE", "Unit of measure is already active")
	}
	u.Active = true
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	u.AddDomainEvent(NewUnitOfMeasureUpdatedEvent(u))
	return nil
}

// ToReference converts a quantity in this unit into the category reference unit
func (u *UnitOfMeasure) ToReference(q decimal.Decimal) decimal.Decimal {
	return q.Mul(u.Factor)
}

// FromReference converts a quantity in the reference unit into this unit
func (u *UnitOfMeasure) FromReference(q decimal.Decimal) decimal.Decimal {
	if u.Factor.IsZero() {
		return decimal.Zero
	}
	return q.DivRound(u.Factor, 6)
}

// RequiredUnitCategory returns the category a unit reference field must point to
func RequiredUnitCategory(f Field) (UnitCategory, bool) {
	switch f {
	case FieldWeightUoMID:
		return UnitCategoryWeight, true
	case FieldDimensionUoMID:
		return UnitCategoryLength, true
	}
	return "", false
}

// CheckUnitReference verifies that u may be referenced by field f
func CheckUnitReference(f Field, u *UnitOfMeasure) error {
	want, ok := RequiredUnitCategory(f)
	if !ok {
		return shared.NewDomainError("INVALID_FIELD", fmt.Sprintf("Field %s does not reference a unit", f))
	}
	if u.Category != want {
		return shared.NewDomainError("INVALID_UOM",
			fmt.Sprintf("Unit %s is a %s unit, %s requires a %s unit", u.Code, u.Category, f, want))
	}
	if !u.Active {
		return shared.NewDomainError("INVALID_UOM", fmt.Sprintf("Unit %s is inactive", u.Code))
	}
	return nil
}

func validateUnitCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Unit code cannot be empty")
	}
	if len(code) > 20 {
		return shared.NewDomainError("INVALID_CODE", "Unit code cannot exceed 20 characters")
	}
	for _, r := range code {
		if !isAllowedCodeRune(r) {
			return shared.NewDomainError("INVALID_CODE", "Unit code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func validateUnitName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Unit name cannot be empty")
	}
	if len(name) > 50 {
		return shared.NewDomainError("INVALID_NAME", "Unit name cannot exceed 50 characters")
	}
	return nil
}

func validateFactor(factor decimal.Decimal) error {
	if !factor.IsPositive() {
		return shared.NewDomainError("INVALID_FACTOR", "Conversion factor must be positive")
	}
	return nil
}

func isAllowedCodeRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-'
}
