package catalog

import (
	"context"
	"sync"

	"github.com/erp/product-dimension/internal/domain/catalog"
	"github.com/erp/product-dimension/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockProductTemplateRepository is a mock implementation of ProductTemplateRepository
type MockProductTemplateRepository struct {
	mock.Mock
}

func (m *MockProductTemplateRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.ProductTemplate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ProductTemplate), args.Error(1)
}

func (m *MockProductTemplateRepository) FindByCode(ctx context.Context, code string) (*catalog.ProductTemplate, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ProductTemplate), args.Error(1)
}

func (m *MockProductTemplateRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.ProductTemplate, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.ProductTemplate), args.Error(1)
}

func (m *MockProductTemplateRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductTemplateRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductTemplateRepository) Save(ctx context.Context, template *catalog.ProductTemplate) error {
	args := m.Called(ctx, template)
	return args.Error(0)
}

func (m *MockProductTemplateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockProductVariantRepository is a mock implementation of ProductVariantRepository
type MockProductVariantRepository struct {
	mock.Mock
}

func (m *MockProductVariantRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.ProductVariant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ProductVariant), args.Error(1)
}

func (m *MockProductVariantRepository) FindByTemplateID(ctx context.Context, templateID uuid.UUID) ([]*catalog.ProductVariant, error) {
	args := m.Called(ctx, templateID)
	return args.Get(0).([]*catalog.ProductVariant), args.Error(1)
}

func (m *MockProductVariantRepository) Save(ctx context.Context, variant *catalog.ProductVariant) error {
	args := m.Called(ctx, variant)
	return args.Error(0)
}

func (m *MockProductVariantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductVariantRepository) DeleteByTemplateID(ctx context.Context, templateID uuid.UUID) error {
	args := m.Called(ctx, templateID)
	return args.Error(0)
}

// MockUnitOfMeasureRepository is a mock implementation of UnitOfMeasureRepository
type MockUnitOfMeasureRepository struct {
	mock.Mock
}

func (m *MockUnitOfMeasureRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.UnitOfMeasure, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.UnitOfMeasure), args.Error(1)
}

func (m *MockUnitOfMeasureRepository) FindByCode(ctx context.Context, code string) (*catalog.UnitOfMeasure, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.UnitOfMeasure), args.Error(1)
}

func (m *MockUnitOfMeasureRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.UnitOfMeasure, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.UnitOfMeasure), args.Error(1)
}

func (m *MockUnitOfMeasureRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUnitOfMeasureRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockUnitOfMeasureRepository) Save(ctx context.Context, unit *catalog.UnitOfMeasure) error {
	args := m.Called(ctx, unit)
	return args.Error(0)
}

// recordingPublisher collects published events
type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

// recordingMetrics collects catalog metric calls
type recordingMetrics struct {
	created    int
	propagated [][]catalog.Field
	writes     []string
	synced     [][]catalog.Field
}

func (m *recordingMetrics) TemplateCreated() { m.created++ }
func (m *recordingMetrics) FieldsPropagated(fields []catalog.Field) {
	m.propagated = append(m.propagated, fields)
}
func (m *recordingMetrics) VariantWritten(source string) { m.writes = append(m.writes, source) }
func (m *recordingMetrics) MirrorsSynced(changed []catalog.Field) {
	m.synced = append(m.synced, changed)
}
