package catalog

import (
	"context"

	"github.com/erp/product-dimension/internal/domain/catalog"
)

// TransactionScope provides transactional access to catalog repositories.
// Every repository operation run inside Execute is part of the same database
// transaction and is committed or rolled back atomically.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the catalog repositories within a transaction.
//
// Aggregate boundary notes:
//   - TemplateRepo persists the template's own fields only.
//   - VariantRepo persists variants; each write re-persists the owning
//     template's mirrored attributes before the transaction completes.
//   - UnitRepo is read inside the transaction so unit checks see the same snapshot.
type TransactionalRepositories interface {
	TemplateRepo() catalog.ProductTemplateRepository
	VariantRepo() catalog.ProductVariantRepository
	UnitRepo() catalog.UnitOfMeasureRepository
}

// NoOpTransactionScope runs the function without a transaction.
// It is used in tests and where atomicity is not required.
type NoOpTransactionScope struct {
	templateRepo catalog.ProductTemplateRepository
	variantRepo  catalog.ProductVariantRepository
	unitRepo     catalog.UnitOfMeasureRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	templateRepo catalog.ProductTemplateRepository,
	variantRepo catalog.ProductVariantRepository,
	unitRepo catalog.UnitOfMeasureRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		templateRepo: templateRepo,
		variantRepo:  variantRepo,
		unitRepo:     unitRepo,
	}
}

// Execute runs fn directly.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// TemplateRepo returns the template repository.
func (s *NoOpTransactionScope) TemplateRepo() catalog.ProductTemplateRepository {
	return s.templateRepo
}

// VariantRepo returns the variant repository.
func (s *NoOpTransactionScope) VariantRepo() catalog.ProductVariantRepository {
	return s.variantRepo
}

// UnitRepo returns the unit of measure repository.
func (s *NoOpTransactionScope) UnitRepo() catalog.UnitOfMeasureRepository {
	return s.unitRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
