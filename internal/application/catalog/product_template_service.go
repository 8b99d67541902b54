package catalog

import (
	"context"
	"errors"

	"github.com/erp/product-dimension/internal/domain/catalog"
	"github.com/erp/product-dimension/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductTemplateService handles template and variant operations.
// Every write runs inside one transaction; domain events are published after commit.
type ProductTemplateService struct {
	templateRepo   catalog.ProductTemplateRepository
	variantRepo    catalog.ProductVariantRepository
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	metrics        CatalogMetrics
	logger         *zap.Logger
}

// NewProductTemplateService creates a new ProductTemplateService
func NewProductTemplateService(
	templateRepo catalog.ProductTemplateRepository,
	variantRepo catalog.ProductVariantRepository,
	txScope TransactionScope,
) *ProductTemplateService {
	return &ProductTemplateService{
		templateRepo: templateRepo,
		variantRepo:  variantRepo,
		txScope:      txScope,
		metrics:      noopCatalogMetrics{},
		logger:       zap.NewNop(),
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ProductTemplateService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the metrics recorder
func (s *ProductTemplateService) SetMetrics(metrics CatalogMetrics) {
	if metrics == nil {
		metrics = noopCatalogMetrics{}
	}
	s.metrics = metrics
}

// SetLogger sets the logger
func (s *ProductTemplateService) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s.logger = logger
}

// Create creates a template with its primary variant, then writes the
// supplied weight and dimension values onto the variant. Volume and density
// are never taken from the request here; the variant derives them.
func (s *ProductTemplateService) Create(ctx context.Context, req CreateProductTemplateRequest) (*ProductTemplateResponse, error) {
	values, err := req.MirroredValues()
	if err != nil {
		return nil, err
	}

	var template *catalog.ProductTemplate
	var propagated []catalog.Field
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		template, err = s.createTemplate(ctx, repos, req)
		if err != nil {
			return err
		}
		propagated, err = s.propagateCreateValues(ctx, repos, template, values, WriteSourceCreate)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.TemplateCreated()
	if len(propagated) > 0 {
		s.metrics.FieldsPropagated(propagated)
	}
	s.publishDomainEvents(ctx, template)

	response := ToProductTemplateResponse(template)
	return &response, nil
}

// createTemplate is the plain creation: template plus a default primary variant
func (s *ProductTemplateService) createTemplate(ctx context.Context, repos TransactionalRepositories, req CreateProductTemplateRequest) (*catalog.ProductTemplate, error) {
	exists, err := repos.TemplateRepo().ExistsByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Product template with this code already exists")
	}

	template, err := catalog.NewProductTemplate(req.Code, req.Name)
	if err != nil {
		return nil, err
	}
	if req.Description != "" {
		if err := template.Update(req.Name, req.Description); err != nil {
			return nil, err
		}
	}
	if req.Weight != nil {
		if err := template.SetWeight(*req.Weight); err != nil {
			return nil, err
		}
	}

	variant, err := template.NewPrimaryVariant()
	if err != nil {
		return nil, err
	}
	if err := repos.TemplateRepo().Save(ctx, template); err != nil {
		return nil, err
	}
	if err := repos.VariantRepo().Save(ctx, variant); err != nil {
		return nil, err
	}
	template.SyncMirrors()

	return template, nil
}

// propagateCreateValues writes the creation-time subset of values onto the
// template's variants and returns the fields written
func (s *ProductTemplateService) propagateCreateValues(
	ctx context.Context,
	repos TransactionalRepositories,
	template *catalog.ProductTemplate,
	values catalog.Values,
	source string,
) ([]catalog.Field, error) {
	picked := values.Pick(catalog.CreatePropagatedFields()...)
	if len(picked) == 0 {
		return nil, nil
	}

	s.logger.Debug("propagating values to variants",
		zap.String("template_id", template.ID.String()),
		zap.Stringers("fields", picked.Fields()),
		zap.Int("variants", len(template.Variants)),
	)

	if err := s.writeVariants(ctx, repos, template, picked, source); err != nil {
		return nil, err
	}
	return picked.Fields(), nil
}

// Propagate re-applies the creation-time subset of values to an existing
// template's variants. Applying the same values twice leaves them unchanged.
func (s *ProductTemplateService) Propagate(ctx context.Context, templateID uuid.UUID, req PropagateRequest) (*ProductTemplateResponse, error) {
	values, err := req.MirroredValues()
	if err != nil {
		return nil, err
	}
	if len(values.Pick(catalog.CreatePropagatedFields()...)) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "No propagatable fields supplied")
	}

	var template *catalog.ProductTemplate
	var propagated []catalog.Field
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		template, err = repos.TemplateRepo().FindByID(ctx, templateID)
		if err != nil {
			return err
		}
		propagated, err = s.propagateCreateValues(ctx, repos, template, values, WriteSourcePropagate)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.FieldsPropagated(propagated)
	s.publishDomainEvents(ctx, template)

	response := ToProductTemplateResponse(template)
	return &response, nil
}

// writeVariants applies mirrored values to every variant of the template,
// recomputes the variants' measures and persists them
func (s *ProductTemplateService) writeVariants(
	ctx context.Context,
	repos TransactionalRepositories,
	template *catalog.ProductTemplate,
	values catalog.Values,
	source string,
) error {
	units := repos.UnitRepo()
	if err := checkUnitReferences(ctx, units, values); err != nil {
		return err
	}
	if err := template.WriteMirrored(values); err != nil {
		return err
	}

	written := values.Fields()
	for _, variant := range template.Variants {
		if err := refreshVariantMeasures(ctx, units, variant, values); err != nil {
			return err
		}
		if err := repos.VariantRepo().Save(ctx, variant); err != nil {
			return err
		}
		template.AddDomainEvent(catalog.NewProductVariantUpdatedEvent(variant, written))
		s.metrics.VariantWritten(source)
	}
	template.SyncMirrors()
	return nil
}

// GetByID retrieves a template with its variants
func (s *ProductTemplateService) GetByID(ctx context.Context, id uuid.UUID) (*ProductTemplateResponse, error) {
	template, err := s.templateRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	response := ToProductTemplateResponse(template)
	return &response, nil
}

// GetByCode retrieves a template by code
func (s *ProductTemplateService) GetByCode(ctx context.Context, code string) (*ProductTemplateResponse, error) {
	template, err := s.templateRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	response := ToProductTemplateResponse(template)
	return &response, nil
}

// List retrieves templates with filtering and pagination
func (s *ProductTemplateService) List(ctx context.Context, filter ProductTemplateListFilter) ([]ProductTemplateListResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "code"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
	}

	templates, err := s.templateRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.templateRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToProductTemplateListResponses(templates), total, nil
}

// Update updates the template's own fields and writes mirrored attributes
// through to its variants
func (s *ProductTemplateService) Update(ctx context.Context, id uuid.UUID, req UpdateProductTemplateRequest) (*ProductTemplateResponse, error) {
	values := req.Values()

	var template *catalog.ProductTemplate
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		template, err = repos.TemplateRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}

		if req.Name != nil || req.Description != nil {
			name := template.Name
			if req.Name != nil {
				name = *req.Name
			}
			description := template.Description
			if req.Description != nil {
				description = *req.Description
			}
			if err := template.Update(name, description); err != nil {
				return err
			}
		}
		if req.Weight != nil {
			if err := template.SetWeight(*req.Weight); err != nil {
				return err
			}
		}
		if err := repos.TemplateRepo().Save(ctx, template); err != nil {
			return err
		}

		if len(values) == 0 {
			return nil
		}
		return s.writeVariants(ctx, repos, template, values, WriteSourceTemplate)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, template)

	response := ToProductTemplateResponse(template)
	return &response, nil
}

// Delete deletes a template and its variants
func (s *ProductTemplateService) Delete(ctx context.Context, id uuid.UUID) error {
	var template *catalog.ProductTemplate
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		template, err = repos.TemplateRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := repos.VariantRepo().DeleteByTemplateID(ctx, id); err != nil {
			return err
		}
		return repos.TemplateRepo().Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	template.AddDomainEvent(catalog.NewProductTemplateDeletedEvent(template))
	s.publishDomainEvents(ctx, template)
	return nil
}

// GetVariant retrieves a variant by ID
func (s *ProductTemplateService) GetVariant(ctx context.Context, id uuid.UUID) (*ProductVariantResponse, error) {
	variant, err := s.variantRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	response := ToProductVariantResponse(variant)
	return &response, nil
}

// UpdateVariant writes attributes directly on a variant. The template's
// mirrors follow when the variant is its primary one.
func (s *ProductTemplateService) UpdateVariant(ctx context.Context, id uuid.UUID, req UpdateProductVariantRequest) (*ProductVariantResponse, error) {
	values := req.Values()
	if len(values) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "No fields supplied")
	}

	var template *catalog.ProductTemplate
	var variant *catalog.ProductVariant
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		found, err := repos.VariantRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		template, err = repos.TemplateRepo().FindByID(ctx, found.TemplateID)
		if err != nil {
			return err
		}
		variant = template.Variant(id)
		if variant == nil {
			return shared.ErrNotFound
		}

		units := repos.UnitRepo()
		if err := checkUnitReferences(ctx, units, values); err != nil {
			return err
		}
		if err := variant.Write(values); err != nil {
			return err
		}
		if err := refreshVariantMeasures(ctx, units, variant, values); err != nil {
			return err
		}
		if err := repos.VariantRepo().Save(ctx, variant); err != nil {
			return err
		}
		template.AddDomainEvent(catalog.NewProductVariantUpdatedEvent(variant, values.Fields()))
		template.SyncMirrors()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.VariantWritten(WriteSourceVariant)
	s.publishDomainEvents(ctx, template)

	response := ToProductVariantResponse(variant)
	return &response, nil
}

// publishDomainEvents publishes and clears the template's pending events
func (s *ProductTemplateService) publishDomainEvents(ctx context.Context, template *catalog.ProductTemplate) {
	events := template.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	for _, event := range events {
		if synced, ok := event.(*catalog.ProductTemplateMirrorsSyncedEvent); ok {
			s.metrics.MirrorsSynced(synced.ChangedFields)
		}
	}
	if s.eventPublisher != nil {
		// errors are logged by the event bus, not propagated
		_ = s.eventPublisher.Publish(ctx, events...)
	}
	template.ClearDomainEvents()
}

// checkUnitReferences verifies that every unit the values point to exists
// and belongs to the category its field requires
func checkUnitReferences(ctx context.Context, units catalog.UnitOfMeasureRepository, values catalog.Values) error {
	for _, f := range []catalog.Field{catalog.FieldWeightUoMID, catalog.FieldDimensionUoMID} {
		ref, ok, err := values.UnitRef(f)
		if err != nil {
			return err
		}
		if !ok || ref == nil {
			continue
		}
		unit, err := units.FindByID(ctx, *ref)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("INVALID_UOM", "Unit of measure not found")
			}
			return err
		}
		if err := catalog.CheckUnitReference(f, unit); err != nil {
			return err
		}
	}
	return nil
}

// refreshVariantMeasures recomputes volume and density using the units the
// variant references after the write
func refreshVariantMeasures(ctx context.Context, units catalog.UnitOfMeasureRepository, variant *catalog.ProductVariant, written catalog.Values) error {
	dimensionUnit, err := findUnit(ctx, units, variant.DimensionUoMID)
	if err != nil {
		return err
	}
	weightUnit, err := findUnit(ctx, units, variant.WeightUoMID)
	if err != nil {
		return err
	}
	_, err = variant.RefreshMeasures(written, dimensionUnit, weightUnit)
	return err
}

func findUnit(ctx context.Context, units catalog.UnitOfMeasureRepository, id *uuid.UUID) (*catalog.UnitOfMeasure, error) {
	if id == nil {
		return nil, nil
	}
	unit, err := units.FindByID(ctx, *id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_UOM", "Unit of measure not found")
		}
		return nil, err
	}
	return unit, nil
}
