package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	appcatalog "github.com/erp/product-dimension/internal/application/catalog"
	"github.com/erp/product-dimension/internal/domain/catalog"
	"github.com/erp/product-dimension/internal/domain/shared"
	"github.com/erp/product-dimension/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupCatalogTestDB creates an in-memory SQLite database with the catalog tables
func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.CatalogModels()...))
	return db
}

type catalogFixture struct {
	db        *gorm.DB
	templates *GormProductTemplateRepository
	variants  *GormProductVariantRepository
	units     *GormUnitOfMeasureRepository
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	db := setupCatalogTestDB(t)
	return &catalogFixture{
		db:        db,
		templates: NewGormProductTemplateRepository(db),
		variants:  NewGormProductVariantRepository(db),
		units:     NewGormUnitOfMeasureRepository(db),
	}
}

// createTemplate persists a template with its primary variant
func (f *catalogFixture) createTemplate(t *testing.T, code string) (*catalog.ProductTemplate, *catalog.ProductVariant) {
	t.Helper()
	ctx := context.Background()
	template, err := catalog.NewProductTemplate(code, "Template "+code)
	require.NoError(t, err)
	variant, err := template.NewPrimaryVariant()
	require.NoError(t, err)
	require.NoError(t, f.templates.Save(ctx, template))
	require.NoError(t, f.variants.Save(ctx, variant))
	return template, variant
}

func (f *catalogFixture) storedTemplate(t *testing.T, id uuid.UUID) *catalog.ProductTemplate {
	t.Helper()
	template, err := f.templates.FindByID(context.Background(), id)
	require.NoError(t, err)
	return template
}

func assertMirrorsEqualVariant(t *testing.T, template *catalog.ProductTemplate, variant *catalog.ProductVariant) {
	t.Helper()
	expected := catalog.MirrorOf(variant)
	for _, f := range catalog.MirroredFields() {
		if f.IsUnitRef() {
			want, _, _ := expected.UnitRef(f)
			got, _, _ := template.MirrorValues().UnitRef(f)
			assert.Equal(t, want, got, "mirror %s", f)
			continue
		}
		want, _, _ := expected.Decimal(f)
		got, _, _ := template.MirrorValues().Decimal(f)
		assert.True(t, want.Equal(got), "mirror %s: want %s, got %s", f, want, got)
	}
}

func TestGormProductTemplateRepository_FindByID(t *testing.T) {
	f := newCatalogFixture(t)
	template, variant := f.createTemplate(t, "tpl-1")

	stored := f.storedTemplate(t, template.ID)
	assert.Equal(t, "TPL-1", stored.Code)
	assert.Equal(t, 1, stored.Version)
	require.Len(t, stored.Variants, 1)
	assert.Equal(t, variant.ID, stored.Variants[0].ID)
	assert.Empty(t, stored.GetDomainEvents())

	_, err := f.templates.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)

	byCode, err := f.templates.FindByCode(context.Background(), "TPL-1")
	require.NoError(t, err)
	assert.Equal(t, template.ID, byCode.ID)

	byCode, err = f.templates.FindByCode(context.Background(), "tpl-1")
	require.NoError(t, err)
	assert.Equal(t, template.ID, byCode.ID)
	exists, err := f.templates.ExistsByCode(context.Background(), "Tpl-1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestGormProductVariantRepository_Save_SyncsTemplateMirrors(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)
	template, variant := f.createTemplate(t, "tpl-1")
	unitID := uuid.New()

	require.NoError(t, variant.Write(catalog.Values{
		catalog.FieldHeight:         decimal.NewFromFloat(2.5),
		catalog.FieldLength:         decimal.NewFromInt(4),
		catalog.FieldWidth:          decimal.NewFromInt(3),
		catalog.FieldWeightInUoM:    decimal.NewFromInt(12),
		catalog.FieldDimensionUoMID: &unitID,
		catalog.FieldVolume:         decimal.NewFromInt(30),
		catalog.FieldDensity:        decimal.NewFromFloat(0.4),
	}))
	require.NoError(t, f.variants.Save(ctx, variant))

	stored := f.storedTemplate(t, template.ID)
	assertMirrorsEqualVariant(t, stored, stored.Variants[0])
	assert.True(t, stored.Height.Equal(decimal.NewFromFloat(2.5)))
	assert.True(t, stored.Volume.Equal(decimal.NewFromInt(30)))
	require.NotNil(t, stored.DimensionUoMID)
	assert.Equal(t, unitID, *stored.DimensionUoMID)
	assert.Nil(t, stored.WeightUoMID)
}

func TestGormProductVariantRepository_Save_LeavesTemplateWeightAlone(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)
	template, variant := f.createTemplate(t, "tpl-1")
	require.NoError(t, template.SetWeight(decimal.NewFromInt(7)))
	require.NoError(t, f.templates.Save(ctx, template))

	require.NoError(t, variant.Write(catalog.Values{catalog.FieldWeight: decimal.NewFromInt(99)}))
	require.NoError(t, f.variants.Save(ctx, variant))

	stored := f.storedTemplate(t, template.ID)
	assert.True(t, stored.Weight.Equal(decimal.NewFromInt(7)))
	assert.True(t, stored.Variants[0].Weight.Equal(decimal.NewFromInt(99)))
}

func TestGormProductTemplateRepository_Save_NeverWritesMirrorColumns(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)
	template, variant := f.createTemplate(t, "tpl-1")
	require.NoError(t, variant.Write(catalog.Values{catalog.FieldHeight: decimal.NewFromInt(5)}))
	require.NoError(t, f.variants.Save(ctx, variant))

	// A stale in-memory copy must not overwrite the synced mirror
	template.Height = decimal.NewFromInt(1)
	require.NoError(t, template.Update("Renamed", "desc"))
	require.NoError(t, f.templates.Save(ctx, template))

	stored := f.storedTemplate(t, template.ID)
	assert.Equal(t, "Renamed", stored.Name)
	assert.Equal(t, 2, stored.Version)
	assert.True(t, stored.Height.Equal(decimal.NewFromInt(5)))
}

func TestGormProductVariantRepository_PrimaryVariantIsFirstCreated(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)
	template, primary := f.createTemplate(t, "tpl-1")

	second, err := catalog.NewProductVariant(template.ID, "tpl-1-b")
	require.NoError(t, err)
	second.CreatedAt = primary.CreatedAt.Add(time.Second)
	require.NoError(t, second.Write(catalog.Values{catalog.FieldLength: decimal.NewFromInt(80)}))
	require.NoError(t, f.variants.Save(ctx, second))

	stored := f.storedTemplate(t, template.ID)
	require.Len(t, stored.Variants, 2)
	assert.Equal(t, primary.ID, stored.Variants[0].ID)
	assert.True(t, stored.Length.IsZero(), "a secondary variant does not drive the mirror")

	require.NoError(t, primary.Write(catalog.Values{catalog.FieldLength: decimal.NewFromInt(20)}))
	require.NoError(t, f.variants.Save(ctx, primary))
	assert.True(t, f.storedTemplate(t, template.ID).Length.Equal(decimal.NewFromInt(20)))

	// Removing the primary promotes the next variant
	require.NoError(t, f.variants.Delete(ctx, primary.ID))
	stored = f.storedTemplate(t, template.ID)
	require.Len(t, stored.Variants, 1)
	assert.True(t, stored.Length.Equal(decimal.NewFromInt(80)))
}

func TestGormProductVariantRepository_DeleteResetsMirrors(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)
	template, variant := f.createTemplate(t, "tpl-1")
	unitID := uuid.New()
	require.NoError(t, variant.Write(catalog.Values{
		catalog.FieldWidth:       decimal.NewFromInt(9),
		catalog.FieldWeightUoMID: unitID.String(),
	}))
	require.NoError(t, f.variants.Save(ctx, variant))

	t.Run("delete of the only variant", func(t *testing.T) {
		require.NoError(t, f.variants.Delete(ctx, variant.ID))
		stored := f.storedTemplate(t, template.ID)
		assert.Empty(t, stored.Variants)
		assert.True(t, stored.Width.IsZero())
		assert.Nil(t, stored.WeightUoMID)
	})

	t.Run("unknown variant", func(t *testing.T) {
		assert.ErrorIs(t, f.variants.Delete(ctx, uuid.New()), shared.ErrNotFound)
	})
}

func TestGormProductVariantRepository_DeleteByTemplateID(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)
	template, variant := f.createTemplate(t, "tpl-1")
	require.NoError(t, variant.Write(catalog.Values{catalog.FieldHeight: decimal.NewFromInt(3)}))
	require.NoError(t, f.variants.Save(ctx, variant))

	require.NoError(t, f.variants.DeleteByTemplateID(ctx, template.ID))

	variants, err := f.variants.FindByTemplateID(ctx, template.ID)
	require.NoError(t, err)
	assert.Empty(t, variants)
	assert.True(t, f.storedTemplate(t, template.ID).Height.IsZero())

	require.NoError(t, f.templates.Delete(ctx, template.ID))
	assert.ErrorIs(t, f.templates.Delete(ctx, template.ID), shared.ErrNotFound)
}

func TestGormProductTemplateRepository_FindAllAndCount(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)
	f.createTemplate(t, "box-small")
	f.createTemplate(t, "box-large")
	f.createTemplate(t, "crate")

	filter := shared.Filter{Page: 1, PageSize: 1, OrderBy: "code", OrderDir: "asc", Search: "BOX"}
	templates, err := f.templates.FindAll(ctx, filter)
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, "BOX-LARGE", templates[0].Code)
	assert.Empty(t, templates[0].Variants)

	total, err := f.templates.Count(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	exists, err := f.templates.ExistsByCode(ctx, "CRATE")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestGormUnitOfMeasureRepository(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)

	kg, err := catalog.NewUnitOfMeasure("kg", "Kilogram", catalog.UnitCategoryWeight, decimal.NewFromInt(1))
	require.NoError(t, err)
	cm, err := catalog.NewUnitOfMeasure("cm", "Centimetre", catalog.UnitCategoryLength, decimal.RequireFromString("0.01"))
	require.NoError(t, err)
	require.NoError(t, f.units.Save(ctx, kg))
	require.NoError(t, f.units.Save(ctx, cm))

	t.Run("finds by code", func(t *testing.T) {
		found, err := f.units.FindByCode(ctx, "CM")
		require.NoError(t, err)
		assert.Equal(t, cm.ID, found.ID)
		assert.True(t, found.Factor.Equal(decimal.RequireFromString("0.01")))
		assert.Equal(t, catalog.UnitCategoryLength, found.Category)

		found, err = f.units.FindByCode(ctx, "cm")
		require.NoError(t, err)
		assert.Equal(t, cm.ID, found.ID)
		exists, err := f.units.ExistsByCode(ctx, "kg")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("filters by category and active", func(t *testing.T) {
		require.NoError(t, cm.Deactivate())
		require.NoError(t, f.units.Save(ctx, cm))

		units, err := f.units.FindAll(ctx, shared.Filter{Filters: map[string]any{"active": true}})
		require.NoError(t, err)
		require.Len(t, units, 1)
		assert.Equal(t, "KG", units[0].Code)

		count, err := f.units.Count(ctx, shared.Filter{Filters: map[string]any{"category": "length"}})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := f.units.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
		exists, err := f.units.ExistsByCode(ctx, "LB")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestGormTransactionScope(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture(t)
	template, _ := f.createTemplate(t, "tpl-1")
	scope := NewGormTransactionScope(f.db)

	t.Run("rolls back variant and mirror on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := scope.Execute(ctx, func(repos appcatalog.TransactionalRepositories) error {
			stored, err := repos.TemplateRepo().FindByID(ctx, template.ID)
			require.NoError(t, err)
			variant := stored.PrimaryVariant()
			require.NoError(t, variant.Write(catalog.Values{catalog.FieldHeight: decimal.NewFromInt(42)}))
			require.NoError(t, repos.VariantRepo().Save(ctx, variant))

			inTx, err := repos.TemplateRepo().FindByID(ctx, template.ID)
			require.NoError(t, err)
			assert.True(t, inTx.Height.Equal(decimal.NewFromInt(42)), "mirror is visible inside the transaction")
			return boom
		})
		assert.Same(t, boom, err)

		stored := f.storedTemplate(t, template.ID)
		assert.True(t, stored.Height.IsZero())
		assert.True(t, stored.Variants[0].Height.IsZero())
	})

	t.Run("commits on success", func(t *testing.T) {
		err := scope.Execute(ctx, func(repos appcatalog.TransactionalRepositories) error {
			stored, err := repos.TemplateRepo().FindByID(ctx, template.ID)
			if err != nil {
				return err
			}
			variant := stored.PrimaryVariant()
			if err := variant.Write(catalog.Values{catalog.FieldHeight: decimal.NewFromInt(8)}); err != nil {
				return err
			}
			return repos.VariantRepo().Save(ctx, variant)
		})
		require.NoError(t, err)
		assert.True(t, f.storedTemplate(t, template.ID).Height.Equal(decimal.NewFromInt(8)))
	})

	t.Run("decorates the unit repository", func(t *testing.T) {
		var decorated int
		scope := NewGormTransactionScope(f.db, WithUnitRepositoryDecorator(func(r catalog.UnitOfMeasureRepository) catalog.UnitOfMeasureRepository {
			decorated++
			return r
		}))
		require.NoError(t, scope.Execute(ctx, func(repos appcatalog.TransactionalRepositories) error {
			_, err := repos.UnitRepo().ExistsByCode(ctx, "KG")
			return err
		}))
		assert.Equal(t, 1, decorated)
	})
}
