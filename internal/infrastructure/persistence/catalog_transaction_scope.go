package persistence

import (
	"context"

	appcatalog "github.com/erp/product-dimension/internal/application/catalog"
	"github.com/erp/product-dimension/internal/domain/catalog"
	"gorm.io/gorm"
)

// UnitRepositoryDecorator wraps the transaction-scoped unit repository,
// e.g. to put a read cache in front of it.
type UnitRepositoryDecorator func(catalog.UnitOfMeasureRepository) catalog.UnitOfMeasureRepository

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db           *gorm.DB
	decorateUnit UnitRepositoryDecorator
}

// TransactionScopeOption configures a GormTransactionScope
type TransactionScopeOption func(*GormTransactionScope)

// WithUnitRepositoryDecorator decorates the unit repository handed to every transaction
func WithUnitRepositoryDecorator(d UnitRepositoryDecorator) TransactionScopeOption {
	return func(s *GormTransactionScope) {
		s.decorateUnit = d
	}
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB, opts ...TransactionScopeOption) *GormTransactionScope {
	s := &GormTransactionScope{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appcatalog.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx, decorateUnit: s.decorateUnit})
	})
}

// gormTransactionalRepositories provides access to all repositories within a transaction.
type gormTransactionalRepositories struct {
	tx           *gorm.DB
	decorateUnit UnitRepositoryDecorator
}

// TemplateRepo returns the template repository scoped to the current transaction.
func (r *gormTransactionalRepositories) TemplateRepo() catalog.ProductTemplateRepository {
	return NewGormProductTemplateRepository(r.tx)
}

// VariantRepo returns the variant repository scoped to the current transaction.
func (r *gormTransactionalRepositories) VariantRepo() catalog.ProductVariantRepository {
	return NewGormProductVariantRepository(r.tx)
}

// UnitRepo returns the unit of measure repository scoped to the current transaction.
func (r *gormTransactionalRepositories) UnitRepo() catalog.UnitOfMeasureRepository {
	repo := catalog.UnitOfMeasureRepository(NewGormUnitOfMeasureRepository(r.tx))
	if r.decorateUnit != nil {
		repo = r.decorateUnit(repo)
	}
	return repo
}

// Ensure GormTransactionScope implements TransactionScope
var _ appcatalog.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appcatalog.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
