package catalog

import (
	"github.com/erp/product-dimension/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeProductTemplate = "ProductTemplate"
	AggregateTypeUnitOfMeasure   = "UnitOfMeasure"
)

// Event type constants
const (
	EventTypeProductTemplateCreated       = "ProductTemplateCreated"
	EventTypeProductTemplateUpdated       = "ProductTemplateUpdated"
	EventTypeProductTemplateMirrorsSynced = "ProductTemplateMirrorsSynced"
	EventTypeProductTemplateDeleted       = "ProductTemplateDeleted"
	EventTypeProductVariantUpdated        = "ProductVariantUpdated"
	EventTypeUnitOfMeasureCreated         = "UnitOfMeasureCreated"
	EventTypeUnitOfMeasureUpdated         = "UnitOfMeasureUpdated"
)

// ProductTemplateCreatedEvent is published when a new template is created
type ProductTemplateCreatedEvent struct {
	shared.BaseDomainEvent
	TemplateID uuid.UUID `json:"template_id"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
}

// NewProductTemplateCreatedEvent creates a new ProductTemplateCreatedEvent
func NewProductTemplateCreatedEvent(t *ProductTemplate) *ProductTemplateCreatedEvent {
	return &ProductTemplateCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductTemplateCreated, AggregateTypeProductTemplate, t.ID),
		TemplateID:      t.ID,
		Code:            t.Code,
		Name:            t.Name,
	}
}

// ProductTemplateUpdatedEvent is published when a template's own fields change
type ProductTemplateUpdatedEvent struct {
	shared.BaseDomainEvent
	TemplateID  uuid.UUID       `json:"template_id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Weight      decimal.Decimal `json:"weight"`
}

// NewProductTemplateUpdatedEvent creates a new ProductTemplateUpdatedEvent
func NewProductTemplateUpdatedEvent(t *ProductTemplate) *ProductTemplateUpdatedEvent {
	return &ProductTemplateUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductTemplateUpdated, AggregateTypeProductTemplate, t.ID),
		TemplateID:      t.ID,
		Code:            t.Code,
		Name:            t.Name,
		Description:     t.Description,
		Weight:          t.Weight,
	}
}

// ProductTemplateMirrorsSyncedEvent is published when the template's mirrored
// attributes were refreshed from its primary variant
type ProductTemplateMirrorsSyncedEvent struct {
	shared.BaseDomainEvent
	TemplateID    uuid.UUID `json:"template_id"`
	ChangedFields []Field   `json:"changed_fields"`
	Mirrors       Values    `json:"mirrors"`
}

// NewProductTemplateMirrorsSyncedEvent creates a new ProductTemplateMirrorsSyncedEvent
func NewProductTemplateMirrorsSyncedEvent(t *ProductTemplate, changed []Field) *ProductTemplateMirrorsSyncedEvent {
	return &ProductTemplateMirrorsSyncedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductTemplateMirrorsSynced, AggregateTypeProductTemplate, t.ID),
		TemplateID:      t.ID,
		ChangedFields:   changed,
		Mirrors:         t.MirrorValues(),
	}
}

// ProductTemplateDeletedEvent is published when a template and its variants are deleted
type ProductTemplateDeletedEvent struct {
	shared.BaseDomainEvent
	TemplateID uuid.UUID `json:"template_id"`
	Code       string    `json:"code"`
}

// NewProductTemplateDeletedEvent creates a new ProductTemplateDeletedEvent
func NewProductTemplateDeletedEvent(t *ProductTemplate) *ProductTemplateDeletedEvent {
	return &ProductTemplateDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductTemplateDeleted, AggregateTypeProductTemplate, t.ID),
		TemplateID:      t.ID,
		Code:            t.Code,
	}
}

// ProductVariantUpdatedEvent is published when fields were written on a variant.
// It belongs to the template aggregate.
type ProductVariantUpdatedEvent struct {
	shared.BaseDomainEvent
	TemplateID uuid.UUID `json:"template_id"`
	VariantID  uuid.UUID `json:"variant_id"`
	Fields     []Field   `json:"fields"`
}

// NewProductVariantUpdatedEvent creates a new ProductVariantUpdatedEvent
func NewProductVariantUpdatedEvent(v *ProductVariant, fields []Field) *ProductVariantUpdatedEvent {
	return &ProductVariantUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductVariantUpdated, AggregateTypeProductTemplate, v.TemplateID),
		TemplateID:      v.TemplateID,
		VariantID:       v.ID,
		Fields:          fields,
	}
}

// UnitOfMeasureCreatedEvent is published when a unit of measure is created
type UnitOfMeasureCreatedEvent struct {
	shared.BaseDomainEvent
	UnitID   uuid.UUID       `json:"unit_id"`
	Code     string          `json:"code"`
	Category UnitCategory    `json:"category"`
	Factor   decimal.Decimal `json:"factor"`
}

// NewUnitOfMeasureCreatedEvent creates a new UnitOfMeasureCreatedEvent
func NewUnitOfMeasureCreatedEvent(u *UnitOfMeasure) *UnitOfMeasureCreatedEvent {
	return &UnitOfMeasureCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUnitOfMeasureCreated, AggregateTypeUnitOfMeasure, u.ID),
		UnitID:          u.ID,
		Code:            u.Code,
		Category:        u.Category,
		Factor:          u.Factor,
	}
}

// UnitOfMeasureUpdatedEvent is published when a unit's name, factor or state changes
type UnitOfMeasureUpdatedEvent struct {
	shared.BaseDomainEvent
	UnitID uuid.UUID       `json:"unit_id"`
	Code   string          `json:"code"`
	Name   string          `json:"name"`
	Factor decimal.Decimal `json:"factor"`
	Active bool            `json:"active"`
}

// NewUnitOfMeasureUpdatedEvent creates a new UnitOfMeasureUpdatedEvent
func NewUnitOfMeasureUpdatedEvent(u *UnitOfMeasure) *UnitOfMeasureUpdatedEvent {
	return &UnitOfMeasureUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUnitOfMeasureUpdated, AggregateTypeUnitOfMeasure, u.ID),
		UnitID:          u.ID,
		Code:            u.Code,
		Name:            u.Name,
		Factor:          u.Factor,
		Active:          u.Active,
	}
}
