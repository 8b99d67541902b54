package catalog

import (
	"testing"

	"github.com/erp/product-dimension/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProductVariant(t *testing.T) {
	t.Run("creates variant with defaults", func(t *testing.T) {
		templateID := uuid.New()
		variant, err := NewProductVariant(templateID, "sku-1")
		require.NoError(t, err)

		assert.Equal(t, templateID, variant.TemplateID)
		assert.Equal(t, "SKU-1", variant.Code)
		assert.True(t, variant.Height.IsZero())
		assert.Nil(t, variant.DimensionUoMID)
	})

	t.Run("requires a template", func(t *testing.T) {
		_, err := NewProductVariant(uuid.Nil, "SKU-1")
		require.Error(t, err)
	})
}

func TestProductVariant_Write(t *testing.T) {
	t.Run("writes only present keys", func(t *testing.T) {
		variant, _ := NewProductVariant(uuid.New(), "SKU-1")
		require.NoError(t, variant.Write(Values{FieldWidth: decimal.NewFromInt(4)}))

		require.NoError(t, variant.Write(Values{FieldHeight: decimal.NewFromInt(10)}))

		assert.True(t, variant.Height.Equal(decimal.NewFromInt(10)))
		assert.True(t, variant.Width.Equal(decimal.NewFromInt(4)))
	})

	t.Run("clears a unit reference with nil", func(t *testing.T) {
		variant, _ := NewProductVariant(uuid.New(), "SKU-1")
		require.NoError(t, variant.Write(Values{FieldDimensionUoMID: uuid.New()}))
		require.NotNil(t, variant.DimensionUoMID)

		require.NoError(t, variant.Write(Values{FieldDimensionUoMID: nil}))
		assert.Nil(t, variant.DimensionUoMID)
	})

	t.Run("is all or nothing", func(t *testing.T) {
		variant, _ := NewProductVariant(uuid.New(), "SKU-1")

		err := variant.Write(Values{FieldHeight: decimal.NewFromInt(10), FieldLength: "long"})
		require.Error(t, err)
		assert.True(t, variant.Height.IsZero())
	})

	t.Run("same write twice is a no-op", func(t *testing.T) {
		variant, _ := NewProductVariant(uuid.New(), "SKU-1")
		values := Values{FieldHeight: decimal.NewFromInt(10), FieldWeightUoMID: uuid.New()}

		require.NoError(t, variant.Write(values))
		first := variant.Values(AllFields()...)
		require.NoError(t, variant.Write(values))

		assert.Equal(t, first, variant.Values(AllFields()...))
	})
}

func TestProductVariant_RefreshMeasures(t *testing.T) {
	cm, _ := NewUnitOfMeasure("CM", "Centimetre", UnitCategoryLength, decimal.NewFromFloat(0.01))
	kg, _ := NewUnitOfMeasure("KG", "Kilogram", UnitCategoryWeight, decimal.NewFromInt(1))

	t.Run("recomputes volume and density from dimensions", func(t *testing.T) {
		variant, _ := NewProductVariant(uuid.New(), "SKU-1")
		written := Values{
			FieldHeight:      decimal.NewFromInt(10),
			FieldLength:      decimal.NewFromInt(20),
			FieldWidth:       decimal.NewFromInt(50),
			FieldWeightInUoM: decimal.NewFromInt(2),
		}
		require.NoError(t, variant.Write(written))

		refreshed, err := variant.RefreshMeasures(written, cm, kg)
		require.NoError(t, err)

		assert.Equal(t, []Field{FieldVolume, FieldDensity}, refreshed)
		assert.Equal(t, "0.01", variant.Volume.String())
		assert.Equal(t, "200", variant.Density.String())
	})

	t.Run("keeps explicitly written volume", func(t *testing.T) {
		variant, _ := NewProductVariant(uuid.New(), "SKU-1")
		written := Values{FieldHeight: decimal.NewFromInt(1), FieldVolume: decimal.NewFromInt(99)}
		require.NoError(t, variant.Write(written))

		refreshed, err := variant.RefreshMeasures(written, nil, nil)
		require.NoError(t, err)

		assert.Equal(t, []Field{FieldDensity}, refreshed)
		assert.True(t, variant.Volume.Equal(decimal.NewFromInt(99)))
	})

	t.Run("ignores writes that do not touch inputs", func(t *testing.T) {
		variant, _ := NewProductVariant(uuid.New(), "SKU-1")
		written := Values{FieldWeight: decimal.NewFromInt(1)}
		require.NoError(t, variant.Write(written))

		refreshed, err := variant.RefreshMeasures(written, nil, nil)
		require.NoError(t, err)
		assert.Empty(t, refreshed)
	})

	t.Run("rejects a volume its column cannot hold", func(t *testing.T) {
		variant, _ := NewProductVariant(uuid.New(), "SKU-1")
		written := Values{
			FieldHeight: decimal.New(1, 7),
			FieldLength: decimal.New(1, 7),
			FieldWidth:  decimal.New(1, 7),
		}
		require.NoError(t, variant.Write(written))

		_, err := variant.RefreshMeasures(written, nil, nil)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_DIMENSION", domainErr.Code)
		assert.True(t, variant.Volume.IsZero())
		assert.True(t, variant.Density.IsZero())
	})
}

func TestProductVariant_WriteRoundsToColumnScale(t *testing.T) {
	variant, _ := NewProductVariant(uuid.New(), "SKU-1")

	require.NoError(t, variant.Write(Values{
		FieldWidth:   "10.1234567",
		FieldDensity: "0.123456",
	}))

	assert.Equal(t, "10.123457", variant.Width.String())
	assert.Equal(t, "0.1235", variant.Density.String())

	err := variant.Write(Values{FieldHeight: "10.5", FieldLength: "1e13"})
	require.Error(t, err)
	assert.True(t, variant.Height.IsZero(), "nothing is applied when a value is rejected")
}
