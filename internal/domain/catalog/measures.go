package catalog

import "github.com/shopspring/decimal"

const (
	volumePrecision  int32 = 6
	densityPrecision int32 = 4
)

// volumeInputs trigger a volume recomputation when written
var volumeInputs = []Field{FieldHeight, FieldLength, FieldWidth, FieldDimensionUoMID}

// densityInputs trigger a density recomputation when written
var densityInputs = []Field{
	FieldWeightInUoM,
	FieldWeightUoMID,
	FieldHeight,
	FieldLength,
	FieldWidth,
	FieldDimensionUoMID,
	FieldVolume,
}

// ComputeVolume returns height × length × width in cubic metres.
// A nil unit means the dimensions are already in metres.
func ComputeVolume(height, length, width decimal.Decimal, dimensionUnit *UnitOfMeasure) decimal.Decimal {
	v := height.Mul(length).Mul(width)
	if dimensionUnit != nil {
		f := dimensionUnit.Factor
		v = v.Mul(f).Mul(f).Mul(f)
	}
	return v.Round(volumePrecision)
}

// ComputeDensity returns the mass per cubic metre in kg/m³, or zero for an
// empty volume. A nil unit means the weight is already in kilograms.
func ComputeDensity(weight decimal.Decimal, weightUnit *UnitOfMeasure, volume decimal.Decimal) decimal.Decimal {
	if !volume.IsPositive() {
		return decimal.Zero
	}
	kg := weight
	if weightUnit != nil {
		kg = weightUnit.ToReference(weight)
	}
	return kg.DivRound(volume, densityPrecision)
}
