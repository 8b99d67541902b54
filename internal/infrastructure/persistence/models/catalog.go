package models

import (
	"github.com/erp/product-dimension/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductTemplateModel is the persistence model for the ProductTemplate aggregate.
// The mirror columns are written only by the variant repository's sync.
type ProductTemplateModel struct {
	AggregateModel
	Code        string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_product_templates_code"`
	Name        string          `gorm:"type:varchar(200);not null"`
	Description string          `gorm:"type:text"`
	Weight      decimal.Decimal `gorm:"column:weight;type:decimal(18,6);not null"`

	WeightInUoM    decimal.Decimal `gorm:"column:weight_in_uom;type:decimal(18,6);not null"`
	WeightUoMID    *uuid.UUID      `gorm:"column:weight_uom_id;type:uuid"`
	Height         decimal.Decimal `gorm:"column:height;type:decimal(18,6);not null"`
	Length         decimal.Decimal `gorm:"column:length;type:decimal(18,6);not null"`
	Width          decimal.Decimal `gorm:"column:width;type:decimal(18,6);not null"`
	DimensionUoMID *uuid.UUID      `gorm:"column:dimension_uom_id;type:uuid"`
	Volume         decimal.Decimal `gorm:"column:volume;type:decimal(24,6);not null"`
	Density        decimal.Decimal `gorm:"column:density;type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (ProductTemplateModel) TableName() string {
	return "product_templates"
}

// ToDomain converts the persistence model to a domain ProductTemplate without variants.
func (m *ProductTemplateModel) ToDomain() *catalog.ProductTemplate {
	return &catalog.ProductTemplate{
		BaseAggregateRoot: m.AggregateModel.ToDomain(),
		Code:              m.Code,
		Name:              m.Name,
		Description:       m.Description,
		Weight:            m.Weight,
		WeightInUoM:       m.WeightInUoM,
		WeightUoMID:       m.WeightUoMID,
		Height:            m.Height,
		Length:            m.Length,
		Width:             m.Width,
		DimensionUoMID:    m.DimensionUoMID,
		Volume:            m.Volume,
		Density:           m.Density,
	}
}

// FromDomain populates the persistence model from a domain ProductTemplate.
func (m *ProductTemplateModel) FromDomain(t *catalog.ProductTemplate) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.Code = t.Code
	m.Name = t.Name
	m.Description = t.Description
	m.Weight = t.Weight
	m.WeightInUoM = t.WeightInUoM
	m.WeightUoMID = t.WeightUoMID
	m.Height = t.Height
	m.Length = t.Length
	m.Width = t.Width
	m.DimensionUoMID = t.DimensionUoMID
	m.Volume = t.Volume
	m.Density = t.Density
}

// ResetMirrors sets the mirror columns to their defaults: zero quantities
// and no unit references.
func (m *ProductTemplateModel) ResetMirrors() {
	m.WeightInUoM = decimal.Zero
	m.WeightUoMID = nil
	m.Height = decimal.Zero
	m.Length = decimal.Zero
	m.Width = decimal.Zero
	m.DimensionUoMID = nil
	m.Volume = decimal.Zero
	m.Density = decimal.Zero
}

// ProductTemplateModelFromDomain creates a new persistence model from a domain ProductTemplate.
func ProductTemplateModelFromDomain(t *catalog.ProductTemplate) *ProductTemplateModel {
	m := &ProductTemplateModel{}
	m.FromDomain(t)
	return m
}

// ProductVariantModel is the persistence model for the ProductVariant entity.
type ProductVariantModel struct {
	BaseModel
	TemplateID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_product_variants_template"`
	Code           string          `gorm:"type:varchar(50);not null"`
	Weight         decimal.Decimal `gorm:"column:weight;type:decimal(18,6);not null"`
	WeightInUoM    decimal.Decimal `gorm:"column:weight_in_uom;type:decimal(18,6);not null"`
	WeightUoMID    *uuid.UUID      `gorm:"column:weight_uom_id;type:uuid"`
	Height         decimal.Decimal `gorm:"column:height;type:decimal(18,6);not null"`
	Length         decimal.Decimal `gorm:"column:length;type:decimal(18,6);not null"`
	Width          decimal.Decimal `gorm:"column:width;type:decimal(18,6);not null"`
	DimensionUoMID *uuid.UUID      `gorm:"column:dimension_uom_id;type:uuid"`
	Volume         decimal.Decimal `gorm:"column:volume;type:decimal(24,6);not null"`
	Density        decimal.Decimal `gorm:"column:density;type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (ProductVariantModel) TableName() string {
	return "product_variants"
}

// ToDomain converts the persistence model to a domain ProductVariant.
func (m *ProductVariantModel) ToDomain() *catalog.ProductVariant {
	return &catalog.ProductVariant{
		BaseEntity:     m.BaseModel.ToDomain(),
		TemplateID:     m.TemplateID,
		Code:           m.Code,
		Weight:         m.Weight,
		WeightInUoM:    m.WeightInUoM,
		WeightUoMID:    m.WeightUoMID,
		Height:         m.Height,
		Length:         m.Length,
		Width:          m.Width,
		DimensionUoMID: m.DimensionUoMID,
		Volume:         m.Volume,
		Density:        m.Density,
	}
}

// FromDomain populates the persistence model from a domain ProductVariant.
func (m *ProductVariantModel) FromDomain(v *catalog.ProductVariant) {
	m.FromDomainBaseEntity(v.BaseEntity)
	m.TemplateID = v.TemplateID
	m.Code = v.Code
	m.Weight = v.Weight
	m.WeightInUoM = v.WeightInUoM
	m.WeightUoMID = v.WeightUoMID
	m.Height = v.Height
	m.Length = v.Length
	m.Width = v.Width
	m.DimensionUoMID = v.DimensionUoMID
	m.Volume = v.Volume
	m.Density = v.Density
}

// ProductVariantModelFromDomain creates a new persistence model from a domain ProductVariant.
func ProductVariantModelFromDomain(v *catalog.ProductVariant) *ProductVariantModel {
	m := &ProductVariantModel{}
	m.FromDomain(v)
	return m
}

// UnitOfMeasureModel is the persistence model for the UnitOfMeasure aggregate.
type UnitOfMeasureModel struct {
	AggregateModel
	Code     string               `gorm:"type:varchar(20);not null;uniqueIndex:idx_units_of_measure_code"`
	Name     string               `gorm:"type:varchar(50);not null"`
	Category catalog.UnitCategory `gorm:"type:varchar(20);not null;index"`
	Factor   decimal.Decimal      `gorm:"type:decimal(24,12);not null"`
	Active   bool                 `gorm:"not null"`
}

// TableName returns the table name for GORM
func (UnitOfMeasureModel) TableName() string {
	return "units_of_measure"
}

// ToDomain converts the persistence model to a domain UnitOfMeasure.
func (m *UnitOfMeasureModel) ToDomain() *catalog.UnitOfMeasure {
	return &catalog.UnitOfMeasure{
		BaseAggregateRoot: m.AggregateModel.ToDomain(),
		Code:              m.Code,
		Name:              m.Name,
		Category:          m.Category,
		Factor:            m.Factor,
		Active:            m.Active,
	}
}

// FromDomain populates the persistence model from a domain UnitOfMeasure.
func (m *UnitOfMeasureModel) FromDomain(u *catalog.UnitOfMeasure) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.Code = u.Code
	m.Name = u.Name
	m.Category = u.Category
	m.Factor = u.Factor
	m.Active = u.Active
}

// UnitOfMeasureModelFromDomain creates a new persistence model from a domain UnitOfMeasure.
func UnitOfMeasureModelFromDomain(u *catalog.UnitOfMeasure) *UnitOfMeasureModel {
	m := &UnitOfMeasureModel{}
	m.FromDomain(u)
	return m
}

// CatalogModels lists the models of this package in dependency order,
// for AutoMigrate in tests and local SQLite runs.
func CatalogModels() []any {
	return []any{&UnitOfMeasureModel{}, &ProductTemplateModel{}, &ProductVariantModel{}}
}
