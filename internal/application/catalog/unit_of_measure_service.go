package catalog

import (
	"context"
	"strings"

	"github.com/erp/product-dimension/internal/domain/catalog"
	"github.com/erp/product-dimension/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UnitOfMeasureService handles unit of measure operations
type UnitOfMeasureService struct {
	unitRepo       catalog.UnitOfMeasureRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewUnitOfMeasureService creates a new UnitOfMeasureService
func NewUnitOfMeasureService(unitRepo catalog.UnitOfMeasureRepository) *UnitOfMeasureService {
	return &UnitOfMeasureService{
		unitRepo: unitRepo,
		logger:   zap.NewNop(),
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *UnitOfMeasureService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetLogger sets the logger
func (s *UnitOfMeasureService) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s.logger = logger
}

// Create creates a new unit of measure
func (s *UnitOfMeasureService) Create(ctx context.Context, req CreateUnitOfMeasureRequest) (*UnitOfMeasureResponse, error) {
	exists, err := s.unitRepo.ExistsByCode(ctx, strings.ToUpper(req.Code))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Unit of measure with this code already exists")
	}

	unit, err := catalog.NewUnitOfMeasure(req.Code, req.Name, catalog.UnitCategory(req.Category), req.Factor)
	if err != nil {
		return nil, err
	}
	if err := s.unitRepo.Save(ctx, unit); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, unit)

	response := ToUnitOfMeasureResponse(unit)
	return &response, nil
}

// GetByID retrieves a unit of measure by ID
func (s *UnitOfMeasureService) GetByID(ctx context.Context, id uuid.UUID) (*UnitOfMeasureResponse, error) {
	unit, err := s.unitRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	response := ToUnitOfMeasureResponse(unit)
	return &response, nil
}

// List retrieves units of measure with filtering and pagination
func (s *UnitOfMeasureService) List(ctx context.Context, filter UnitOfMeasureListFilter) ([]UnitOfMeasureResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
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
		Filters:  make(map[string]any),
	}
	if filter.Category != "" {
		domainFilter.Filters["category"] = filter.Category
	}
	if filter.Active != nil {
		domainFilter.Filters["active"] = *filter.Active
	}

	units, err := s.unitRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.unitRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToUnitOfMeasureResponses(units), total, nil
}

// Update updates a unit's name and conversion factor
func (s *UnitOfMeasureService) Update(ctx context.Context, id uuid.UUID, req UpdateUnitOfMeasureRequest) (*UnitOfMeasureResponse, error) {
	unit, err := s.unitRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name := unit.Name
	if req.Name != nil {
		name = *req.Name
	}
	factor := unit.Factor
	if req.Factor != nil {
		factor = *req.Factor
	}
	if err := unit.Update(name, factor); err != nil {
		return nil, err
	}
	if err := s.unitRepo.Save(ctx, unit); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, unit)

	response := ToUnitOfMeasureResponse(unit)
	return &response, nil
}

// Deactivate stops a unit from being referenced by new writes
func (s *UnitOfMeasureService) Deactivate(ctx context.Context, id uuid.UUID) (*UnitOfMeasureResponse, error) {
	unit, err := s.unitRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := unit.Deactivate(); err != nil {
		return nil, err
	}
	if err := s.unitRepo.Save(ctx, unit); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, unit)

	response := ToUnitOfMeasureResponse(unit)
	return &response, nil
}

// SeedDefaults creates the given units when their code is not taken yet.
// It returns the number of units created.
func (s *UnitOfMeasureService) SeedDefaults(ctx context.Context, defaults []CreateUnitOfMeasureRequest) (int, error) {
	created := 0
	for _, req := range defaults {
		exists, err := s.unitRepo.ExistsByCode(ctx, strings.ToUpper(req.Code))
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}
		if _, err := s.Create(ctx, req); err != nil {
			return created, err
		}
		created++
	}
	if created > 0 {
		s.logger.Info("seeded units of measure", zap.Int("created", created))
	}
	return created, nil
}

func (s *UnitOfMeasureService) publishDomainEvents(ctx context.Context, unit *catalog.UnitOfMeasure) {
	events := unit.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(ctx, events...)
	}
	unit.ClearDomainEvents()
}
