package router

import "github.com/erp/product-dimension/internal/interfaces/http/handler"

// CatalogRoutes builds the /catalog group: templates, variants and units
func CatalogRoutes(templates *handler.ProductTemplateHandler, units *handler.UnitOfMeasureHandler) *DomainGroup {
	catalog := NewDomainGroup("catalog", "/catalog")

	catalog.Group("product-templates", "/product-templates").
		POST("", templates.Create).
		GET("", templates.List).
		GET("/code/:code", templates.GetByCode).
		GET("/:id", templates.GetByID).
		PUT("/:id", templates.Update).
		DELETE("/:id", templates.Delete).
		POST("/:id/propagate", templates.Propagate)

	catalog.Group("product-variants", "/product-variants").
		GET("/:id", templates.GetVariant).
		PUT("/:id", templates.UpdateVariant)

	catalog.Group("units", "/units").
		POST("", units.Create).
		GET("", units.List).
		GET("/:id", units.GetByID).
		PUT("/:id", units.Update).
		POST("/:id/deactivate", units.Deactivate)

	return catalog
}
