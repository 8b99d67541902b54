package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/product-dimension/internal/domain/catalog"
	"github.com/erp/product-dimension/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUnitRepository struct {
	mock.Mock
}

func (m *mockUnitRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.UnitOfMeasure, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.UnitOfMeasure), args.Error(1)
}

func (m *mockUnitRepository) FindByCode(ctx context.Context, code string) (*catalog.UnitOfMeasure, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.UnitOfMeasure), args.Error(1)
}

func (m *mockUnitRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.UnitOfMeasure, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.UnitOfMeasure), args.Error(1)
}

func (m *mockUnitRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockUnitRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *mockUnitRepository) Save(ctx context.Context, unit *catalog.UnitOfMeasure) error {
	return m.Called(ctx, unit).Error(0)
}

func TestCachedUnitOfMeasureRepository_FindByID(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryUnitStore()
	defer store.Close()
	next := new(mockUnitRepository)
	var outcomes []bool
	repo := NewCachedUnitOfMeasureRepository(next, store, time.Minute, nil,
		WithLookupObserver(func(hit bool) { outcomes = append(outcomes, hit) }))
	unit := newTestUnit(t, "CM")
	next.On("FindByID", ctx, unit.ID).Return(unit, nil).Once()

	first, err := repo.FindByID(ctx, unit.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, unit.ID)
	require.NoError(t, err)

	assert.Equal(t, unit.ID, first.ID)
	assert.Equal(t, unit.ID, second.ID)
	assert.Equal(t, []bool{false, true}, outcomes)
	next.AssertNumberOfCalls(t, "FindByID", 1)
}

func TestCachedUnitOfMeasureRepository_NotFoundIsNotCached(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryUnitStore()
	defer store.Close()
	next := new(mockUnitRepository)
	repo := NewCachedUnitOfMeasureRepository(next, store, time.Minute, nil)
	next.On("FindByCode", ctx, "XX").Return(nil, shared.ErrNotFound)

	_, err := repo.FindByCode(ctx, "XX")
	assert.ErrorIs(t, err, shared.ErrNotFound)
	_, err = repo.FindByCode(ctx, "XX")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	next.AssertNumberOfCalls(t, "FindByCode", 2)
}

func TestCachedUnitOfMeasureRepository_SaveInvalidates(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryUnitStore()
	defer store.Close()
	next := new(mockUnitRepository)
	repo := NewCachedUnitOfMeasureRepository(next, store, time.Minute, nil)
	unit := newTestUnit(t, "M")

	require.NoError(t, store.Set(ctx, unitIDKey(unit.ID), unit, time.Minute))
	require.NoError(t, store.Set(ctx, unitCodeKey(unit.Code), unit, time.Minute))
	next.On("Save", ctx, unit).Return(nil)

	require.NoError(t, repo.Save(ctx, unit))

	_, ok, _ := store.Get(ctx, unitIDKey(unit.ID))
	assert.False(t, ok)
	_, ok, _ = store.Get(ctx, unitCodeKey(unit.Code))
	assert.False(t, ok)
}

func TestCachedUnitOfMeasureRepository_SaveErrorKeepsCache(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryUnitStore()
	defer store.Close()
	next := new(mockUnitRepository)
	repo := NewCachedUnitOfMeasureRepository(next, store, time.Minute, nil)
	unit := newTestUnit(t, "M")
	require.NoError(t, store.Set(ctx, unitIDKey(unit.ID), unit, time.Minute))
	next.On("Save", ctx, unit).Return(errors.New("db down"))

	require.Error(t, repo.Save(ctx, unit))

	_, ok, _ := store.Get(ctx, unitIDKey(unit.ID))
	assert.True(t, ok)
}

func TestCachedUnitOfMeasureRepository_PassThrough(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryUnitStore()
	defer store.Close()
	next := new(mockUnitRepository)
	wrap := Decorator(store, time.Minute, nil)
	repo := wrap(next)
	filter := shared.Filter{Page: 1, PageSize: 10}
	next.On("FindAll", ctx, filter).Return([]catalog.UnitOfMeasure{}, nil)
	next.On("Count", ctx, filter).Return(int64(0), nil)
	next.On("ExistsByCode", ctx, "KG").Return(true, nil)

	_, err := repo.FindAll(ctx, filter)
	require.NoError(t, err)
	_, err = repo.Count(ctx, filter)
	require.NoError(t, err)
	exists, err := repo.ExistsByCode(ctx, "KG")
	require.NoError(t, err)
	assert.True(t, exists)
	next.AssertExpectations(t)
}
