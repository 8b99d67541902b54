package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/erp/product-dimension/internal/domain/catalog"
	"github.com/erp/product-dimension/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type templateServiceFixture struct {
	templateRepo *MockProductTemplateRepository
	variantRepo  *MockProductVariantRepository
	unitRepo     *MockUnitOfMeasureRepository
	publisher    *recordingPublisher
	metrics      *recordingMetrics
	service      *ProductTemplateService
}

func newTemplateServiceFixture() *templateServiceFixture {
	f := &templateServiceFixture{
		templateRepo: new(MockProductTemplateRepository),
		variantRepo:  new(MockProductVariantRepository),
		unitRepo:     new(MockUnitOfMeasureRepository),
		publisher:    &recordingPublisher{},
		metrics:      &recordingMetrics{},
	}
	scope := NewNoOpTransactionScope(f.templateRepo, f.variantRepo, f.unitRepo)
	f.service = NewProductTemplateService(f.templateRepo, f.variantRepo, scope)
	f.service.SetEventPublisher(f.publisher)
	f.service.SetMetrics(f.metrics)
	return f
}

func dec(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func newTemplate(t *testing.T) *catalog.ProductTemplate {
	t.Helper()
	template, err := catalog.NewProductTemplate("TPL-001", "Desk")
	require.NoError(t, err)
	_, err = template.NewPrimaryVariant()
	require.NoError(t, err)
	template.ClearDomainEvents()
	return template
}

func TestProductTemplateService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("propagates supplied dimensions to the variant", func(t *testing.T) {
		f := newTemplateServiceFixture()
		f.templateRepo.On("ExistsByCode", ctx, "TPL-001").Return(false, nil)
		f.templateRepo.On("Save", ctx, mock.AnythingOfType("*catalog.ProductTemplate")).Return(nil)
		f.variantRepo.On("Save", ctx, mock.AnythingOfType("*catalog.ProductVariant")).Return(nil)

		req := CreateProductTemplateRequest{Code: "TPL-001", Name: "Desk"}
		req.Height = dec(10)
		req.Length = dec(5)

		resp, err := f.service.Create(ctx, req)
		require.NoError(t, err)

		require.Len(t, resp.Variants, 1)
		variant := resp.Variants[0]
		assert.True(t, variant.Height.Equal(decimal.NewFromInt(10)))
		assert.True(t, variant.Length.Equal(decimal.NewFromInt(5)))
		assert.True(t, variant.Width.IsZero(), "absent keys keep their default")
		assert.Nil(t, variant.WeightUoMID)
		assert.True(t, resp.Height.Equal(decimal.NewFromInt(10)))
		assert.True(t, resp.Length.Equal(decimal.NewFromInt(5)))

		// saved once by creation, once by propagation
		f.variantRepo.AssertNumberOfCalls(t, "Save", 2)
		assert.Equal(t, 1, f.metrics.created)
		require.Len(t, f.metrics.propagated, 1)
		assert.Equal(t, []catalog.Field{catalog.FieldHeight, catalog.FieldLength}, f.metrics.propagated[0])
		assert.Equal(t, []string{WriteSourceCreate}, f.metrics.writes)
		assert.Contains(t, f.publisher.types(), catalog.EventTypeProductTemplateCreated)
		assert.Contains(t, f.publisher.types(), catalog.EventTypeProductTemplateMirrorsSynced)
	})

	t.Run("rejects unknown fields before touching storage", func(t *testing.T) {
		f := newTemplateServiceFixture()

		req := CreateProductTemplateRequest{Code: "TPL-001", Name: "Desk"}
		req.Clear = []string{"colour"}

		_, err := f.service.Create(ctx, req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Unknown field")
		f.templateRepo.AssertNotCalled(t, "ExistsByCode", mock.Anything, mock.Anything)
	})

	t.Run("rejects clearing the template weight", func(t *testing.T) {
		f := newTemplateServiceFixture()

		req := CreateProductTemplateRequest{Code: "TPL-001", Name: "Desk"}
		req.Height = dec(10)
		req.Clear = []string{string(catalog.FieldWeight)}

		_, err := f.service.Create(ctx, req)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_FIELD", domainErr.Code)
		f.templateRepo.AssertNotCalled(t, "ExistsByCode", mock.Anything, mock.Anything)
	})

	t.Run("does not force volume and density onto the variant", func(t *testing.T) {
		f := newTemplateServiceFixture()
		f.templateRepo.On("ExistsByCode", ctx, "TPL-001").Return(false, nil)
		f.templateRepo.On("Save", ctx, mock.Anything).Return(nil)
		f.variantRepo.On("Save", ctx, mock.Anything).Return(nil)

		req := CreateProductTemplateRequest{Code: "TPL-001", Name: "Desk"}
		req.Volume = dec(99)
		req.Density = dec(99)

		resp, err := f.service.Create(ctx, req)
		require.NoError(t, err)

		variant := resp.Variants[0]
		assert.True(t, variant.Volume.IsZero())
		assert.True(t, variant.Density.IsZero())
		assert.True(t, resp.Volume.IsZero())
		f.variantRepo.AssertNumberOfCalls(t, "Save", 1)
		assert.Empty(t, f.metrics.propagated)
	})

	t.Run("derives volume from propagated dimensions", func(t *testing.T) {
		f := newTemplateServiceFixture()
		f.templateRepo.On("ExistsByCode", ctx, "TPL-001").Return(false, nil)
		f.templateRepo.On("Save", ctx, mock.Anything).Return(nil)
		f.variantRepo.On("Save", ctx, mock.Anything).Return(nil)

		req := CreateProductTemplateRequest{Code: "TPL-001", Name: "Desk"}
		req.Height = dec(2)
		req.Length = dec(3)
		req.Width = dec(4)
		req.Volume = dec(99)

		resp, err := f.service.Create(ctx, req)
		require.NoError(t, err)

		assert.Equal(t, "24", resp.Variants[0].Volume.String())
		assert.Equal(t, "24", resp.Volume.String())
	})

	t.Run("keeps template weight independent", func(t *testing.T) {
		f := newTemplateServiceFixture()
		f.templateRepo.On("ExistsByCode", ctx, "TPL-001").Return(false, nil)
		f.templateRepo.On("Save", ctx, mock.Anything).Return(nil)
		f.variantRepo.On("Save", ctx, mock.Anything).Return(nil)

		req := CreateProductTemplateRequest{Code: "TPL-001", Name: "Desk", Weight: dec(7)}

		resp, err := f.service.Create(ctx, req)
		require.NoError(t, err)

		assert.True(t, resp.Weight.Equal(decimal.NewFromInt(7)))
		assert.True(t, resp.Variants[0].Weight.IsZero())
	})

	t.Run("does not write the variant when creation fails", func(t *testing.T) {
		f := newTemplateServiceFixture()
		f.templateRepo.On("ExistsByCode", ctx, "TPL-001").Return(true, nil)

		req := CreateProductTemplateRequest{Code: "TPL-001", Name: "Desk"}
		req.Height = dec(10)

		_, err := f.service.Create(ctx, req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
		f.variantRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		assert.Empty(t, f.publisher.types())
	})

	t.Run("returns the propagation failure unchanged", func(t *testing.T) {
		f := newTemplateServiceFixture()
		saveErr := errors.New("check constraint violated")
		f.templateRepo.On("ExistsByCode", ctx, "TPL-001").Return(false, nil)
		f.templateRepo.On("Save", ctx, mock.Anything).Return(nil)
		f.variantRepo.On("Save", ctx, mock.Anything).Return(nil).Once()
		f.variantRepo.On("Save", ctx, mock.Anything).Return(saveErr).Once()

		req := CreateProductTemplateRequest{Code: "TPL-001", Name: "Desk"}
		req.Width = dec(3)

		_, err := f.service.Create(ctx, req)
		assert.Same(t, saveErr, err)
		assert.Equal(t, 0, f.metrics.created)
		assert.Empty(t, f.publisher.types())
	})

	t.Run("rejects a weight unit from the length category", func(t *testing.T) {
		f := newTemplateServiceFixture()
		metre, err := catalog.NewUnitOfMeasure("M", "Metre", catalog.UnitCategoryLength, decimal.NewFromInt(1))
		require.NoError(t, err)
		f.templateRepo.On("ExistsByCode", ctx, "TPL-001").Return(false, nil)
		f.templateRepo.On("Save", ctx, mock.Anything).Return(nil)
		f.variantRepo.On("Save", ctx, mock.Anything).Return(nil)
		f.unitRepo.On("FindByID", ctx, metre.ID).Return(metre, nil)

		req := CreateProductTemplateRequest{Code: "TPL-001", Name: "Desk"}
		req.WeightUoMID = &metre.ID

		_, err = f.service.Create(ctx, req)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_UOM", domainErr.Code)
	})

	t.Run("rejects an unknown unit", func(t *testing.T) {
		f := newTemplateServiceFixture()
		missing := uuid.New()
		f.templateRepo.On("ExistsByCode", ctx, "TPL-001").Return(false, nil)
		f.templateRepo.On("Save", ctx, mock.Anything).Return(nil)
		f.variantRepo.On("Save", ctx, mock.Anything).Return(nil)
		f.unitRepo.On("FindByID", ctx, missing).Return(nil, shared.ErrNotFound)

		req := CreateProductTemplateRequest{Code: "TPL-001", Name: "Desk"}
		req.DimensionUoMID = &missing

		_, err := f.service.Create(ctx, req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Unit of measure not found")
	})
}

func TestProductTemplateService_Propagate(t *testing.T) {
	ctx := context.Background()

	t.Run("second call leaves the variant unchanged", func(t *testing.T) {
		f := newTemplateServiceFixture()
		template := newTemplate(t)
		f.templateRepo.On("FindByID", ctx, template.ID).Return(template, nil)
		f.variantRepo.On("Save", ctx, mock.Anything).Return(nil)

		req := PropagateRequest{}
		req.Height = dec(10)
		req.Width = dec(2)

		first, err := f.service.Propagate(ctx, template.ID, req)
		require.NoError(t, err)
		second, err := f.service.Propagate(ctx, template.ID, req)
		require.NoError(t, err)

		assert.Equal(t, first.Variants[0].DimensionsResponse, second.Variants[0].DimensionsResponse)
		assert.Equal(t, first.DimensionsResponse, second.DimensionsResponse)
		require.Len(t, f.metrics.synced, 1, "only the first call changes mirrors")
	})

	t.Run("requires a propagatable field", func(t *testing.T) {
		f := newTemplateServiceFixture()
		req := PropagateRequest{}
		req.Volume = dec(1)

		_, err := f.service.Propagate(ctx, uuid.New(), req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "No propagatable fields")
		f.templateRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("rejects clearing the template weight", func(t *testing.T) {
		f := newTemplateServiceFixture()
		req := PropagateRequest{}
		req.Height = dec(1)
		req.Clear = []string{string(catalog.FieldWeight)}

		_, err := f.service.Propagate(ctx, uuid.New(), req)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_FIELD", domainErr.Code)
		f.templateRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("returns not found", func(t *testing.T) {
		f := newTemplateServiceFixture()
		id := uuid.New()
		f.templateRepo.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)
		req := PropagateRequest{}
		req.Height = dec(1)

		_, err := f.service.Propagate(ctx, id, req)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestProductTemplateService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("writes mirrored attributes through to the variant", func(t *testing.T) {
		f := newTemplateServiceFixture()
		template := newTemplate(t)
		f.templateRepo.On("FindByID", ctx, template.ID).Return(template, nil)
		f.templateRepo.On("Save", ctx, template).Return(nil)
		f.variantRepo.On("Save", ctx, template.PrimaryVariant()).Return(nil)

		req := UpdateProductTemplateRequest{}
		req.Density = dec(300)

		resp, err := f.service.Update(ctx, template.ID, req)
		require.NoError(t, err)

		assert.True(t, resp.Variants[0].Density.Equal(decimal.NewFromInt(300)))
		assert.True(t, resp.Density.Equal(decimal.NewFromInt(300)))
		assert.Equal(t, []string{WriteSourceTemplate}, f.metrics.writes)
	})

	t.Run("changing template weight leaves variant weight alone", func(t *testing.T) {
		f := newTemplateServiceFixture()
		template := newTemplate(t)
		f.templateRepo.On("FindByID", ctx, template.ID).Return(template, nil)
		f.templateRepo.On("Save", ctx, template).Return(nil)

		resp, err := f.service.Update(ctx, template.ID, UpdateProductTemplateRequest{Weight: dec(12)})
		require.NoError(t, err)

		assert.True(t, resp.Weight.Equal(decimal.NewFromInt(12)))
		assert.True(t, resp.Variants[0].Weight.IsZero())
		f.variantRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("updates name and keeps description", func(t *testing.T) {
		f := newTemplateServiceFixture()
		template := newTemplate(t)
		template.Description = "Oak"
		f.templateRepo.On("FindByID", ctx, template.ID).Return(template, nil)
		f.templateRepo.On("Save", ctx, template).Return(nil)
		name := "Writing desk"

		resp, err := f.service.Update(ctx, template.ID, UpdateProductTemplateRequest{Name: &name})
		require.NoError(t, err)

		assert.Equal(t, "Writing desk", resp.Name)
		assert.Equal(t, "Oak", resp.Description)
	})
}

func TestProductTemplateService_UpdateVariant(t *testing.T) {
	ctx := context.Background()

	t.Run("template mirrors follow the variant", func(t *testing.T) {
		f := newTemplateServiceFixture()
		template := newTemplate(t)
		variant := template.PrimaryVariant()
		stored := *variant
		f.variantRepo.On("FindByID", ctx, variant.ID).Return(&stored, nil)
		f.templateRepo.On("FindByID", ctx, template.ID).Return(template, nil)
		f.variantRepo.On("Save", ctx, variant).Return(nil)

		req := UpdateProductVariantRequest{Weight: dec(4)}
		req.WeightInUoM = dec(4)

		resp, err := f.service.UpdateVariant(ctx, variant.ID, req)
		require.NoError(t, err)

		assert.True(t, resp.WeightInUoM.Equal(decimal.NewFromInt(4)))
		assert.True(t, resp.Weight.Equal(decimal.NewFromInt(4)))
		assert.True(t, template.WeightInUoM.Equal(decimal.NewFromInt(4)))
		assert.True(t, template.Weight.IsZero(), "template weight is not a mirror")
		assert.Contains(t, f.publisher.types(), catalog.EventTypeProductVariantUpdated)
	})

	t.Run("rejects an empty write", func(t *testing.T) {
		f := newTemplateServiceFixture()
		_, err := f.service.UpdateVariant(ctx, uuid.New(), UpdateProductVariantRequest{})
		require.Error(t, err)
	})

	t.Run("rejects unknown fields to clear", func(t *testing.T) {
		f := newTemplateServiceFixture()
		template := newTemplate(t)
		variant := template.PrimaryVariant()
		f.variantRepo.On("FindByID", ctx, variant.ID).Return(variant, nil)
		f.templateRepo.On("FindByID", ctx, template.ID).Return(template, nil)

		req := UpdateProductVariantRequest{}
		req.Clear = []string{"colour"}

		_, err := f.service.UpdateVariant(ctx, variant.ID, req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Unknown field")
		f.variantRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestProductTemplateService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newTemplateServiceFixture()
	template := newTemplate(t)
	f.templateRepo.On("FindByID", ctx, template.ID).Return(template, nil)
	f.variantRepo.On("DeleteByTemplateID", ctx, template.ID).Return(nil)
	f.templateRepo.On("Delete", ctx, template.ID).Return(nil)

	require.NoError(t, f.service.Delete(ctx, template.ID))

	f.variantRepo.AssertExpectations(t)
	f.templateRepo.AssertExpectations(t)
	assert.Equal(t, []string{catalog.EventTypeProductTemplateDeleted}, f.publisher.types())
}

func TestProductTemplateService_List(t *testing.T) {
	ctx := context.Background()
	f := newTemplateServiceFixture()
	template := newTemplate(t)
	expected := shared.Filter{Page: 1, PageSize: 20, OrderBy: "code", OrderDir: "asc", Search: "desk"}
	f.templateRepo.On("FindAll", ctx, expected).Return([]catalog.ProductTemplate{*template}, nil)
	f.templateRepo.On("Count", ctx, expected).Return(int64(1), nil)

	items, total, err := f.service.List(ctx, ProductTemplateListFilter{Search: "desk"})
	require.NoError(t, err)

	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "TPL-001", items[0].Code)
}
