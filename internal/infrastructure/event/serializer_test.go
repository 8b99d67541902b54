package event

import (
	"testing"

	"github.com/erp/product-dimension/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogEventSerializer_RegisteredTypes(t *testing.T) {
	s := NewCatalogEventSerializer()

	assert.Equal(t, []string{
		catalog.EventTypeProductTemplateCreated,
		catalog.EventTypeProductTemplateDeleted,
		catalog.EventTypeProductTemplateMirrorsSynced,
		catalog.EventTypeProductTemplateUpdated,
		catalog.EventTypeProductVariantUpdated,
		catalog.EventTypeUnitOfMeasureCreated,
		catalog.EventTypeUnitOfMeasureUpdated,
	}, s.RegisteredTypes())
	assert.False(t, s.IsRegistered("Unknown"))
}

func TestCatalogEventSerializer_VariantUpdated(t *testing.T) {
	s := NewCatalogEventSerializer()
	variant := &catalog.ProductVariant{TemplateID: uuid.New()}
	variant.ID = uuid.New()
	original := catalog.NewProductVariantUpdatedEvent(variant, []catalog.Field{catalog.FieldHeight, catalog.FieldVolume})

	data, err := s.Serialize(original)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"fields":["height","volume"]`)

	decoded, err := s.Deserialize(catalog.EventTypeProductVariantUpdated, data)
	require.NoError(t, err)
	event, ok := decoded.(*catalog.ProductVariantUpdatedEvent)
	require.True(t, ok)
	assert.Equal(t, original.EventID(), event.EventID())
	assert.Equal(t, variant.ID, event.VariantID)
	assert.Equal(t, original.Fields, event.Fields)
}

func TestCatalogEventSerializer_UnitCreated(t *testing.T) {
	s := NewCatalogEventSerializer()
	unit, err := catalog.NewUnitOfMeasure("G", "Gram", catalog.UnitCategoryWeight, decimal.RequireFromString("0.001"))
	require.NoError(t, err)
	original := catalog.NewUnitOfMeasureCreatedEvent(unit)

	data, err := s.Serialize(original)
	require.NoError(t, err)
	decoded, err := s.Deserialize(catalog.EventTypeUnitOfMeasureCreated, data)
	require.NoError(t, err)

	event := decoded.(*catalog.UnitOfMeasureCreatedEvent)
	assert.True(t, event.Factor.Equal(unit.Factor))
	assert.Equal(t, catalog.UnitCategoryWeight, event.Category)
}

func TestEventSerializer_Deserialize_Errors(t *testing.T) {
	s := NewCatalogEventSerializer()

	_, err := s.Deserialize("Unknown", []byte(`{}`))
	assert.ErrorContains(t, err, "unknown event type")

	_, err = s.Deserialize(catalog.EventTypeProductTemplateCreated, []byte(`{`))
	assert.ErrorContains(t, err, "failed to unmarshal")
}
