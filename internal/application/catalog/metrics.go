package catalog

import "github.com/erp/product-dimension/internal/domain/catalog"

// Write sources reported to CatalogMetrics.VariantWritten
const (
	WriteSourceCreate    = "create"
	WriteSourcePropagate = "propagate"
	WriteSourceTemplate  = "template"
	WriteSourceVariant   = "variant"
)

// CatalogMetrics receives counters from the template service.
// Implementations must be safe for concurrent use.
type CatalogMetrics interface {
	TemplateCreated()
	FieldsPropagated(fields []catalog.Field)
	VariantWritten(source string)
	MirrorsSynced(changed []catalog.Field)
}

type noopCatalogMetrics struct{}

func (noopCatalogMetrics) TemplateCreated()                 {}
func (noopCatalogMetrics) FieldsPropagated([]catalog.Field) {}
func (noopCatalogMetrics) VariantWritten(string)            {}
func (noopCatalogMetrics) MirrorsSynced([]catalog.Field)    {}
