package handler

import (
	catalogapp "github.com/erp/product-dimension/internal/application/catalog"
	"github.com/gin-gonic/gin"
)

// ProductTemplateHandler handles product template and variant endpoints
type ProductTemplateHandler struct {
	BaseHandler
	service *catalogapp.ProductTemplateService
}

// NewProductTemplateHandler creates a new ProductTemplateHandler
func NewProductTemplateHandler(service *catalogapp.ProductTemplateService) *ProductTemplateHandler {
	return &ProductTemplateHandler{service: service}
}

// Create godoc
// @Summary      Create a product template
// @Description  Creates the template with its primary variant and writes the
// @Description  supplied weight and dimension values onto that variant
// @Tags         product-templates
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.CreateProductTemplateRequest true "Template creation request"
// @Success      201 {object} dto.Response{data=catalogapp.ProductTemplateResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /catalog/product-templates [post]
func (h *ProductTemplateHandler) Create(c *gin.Context) {
	var req catalogapp.CreateProductTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	template, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, template)
}

// GetByID godoc
// @Summary      Get a product template by ID
// @Tags         product-templates
// @Produce      json
// @Param        id path string true "Template ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalogapp.ProductTemplateResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /catalog/product-templates/{id} [get]
func (h *ProductTemplateHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "template")
	if !ok {
		return
	}

	template, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, template)
}

// GetByCode godoc
// @Summary      Get a product template by code
// @Tags         product-templates
// @Produce      json
// @Param        code path string true "Template code"
// @Success      200 {object} dto.Response{data=catalogapp.ProductTemplateResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /catalog/product-templates/code/{code} [get]
func (h *ProductTemplateHandler) GetByCode(c *gin.Context) {
	template, err := h.service.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, template)
}

// List godoc
// @Summary      List product templates
// @Tags         product-templates
// @Produce      json
// @Param        search query string false "Search by code or name"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]catalogapp.ProductTemplateListResponse,meta=dto.Meta}
// @Router       /catalog/product-templates [get]
func (h *ProductTemplateHandler) List(c *gin.Context) {
	var filter catalogapp.ProductTemplateListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	templates, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, pageSize := pageOrDefault(filter.Page, filter.PageSize, 20)
	h.SuccessWithMeta(c, templates, total, page, pageSize)
}

// Update godoc
// @Summary      Update a product template
// @Description  Mirrored attributes are written through to every variant
// @Tags         product-templates
// @Accept       json
// @Produce      json
// @Param        id path string true "Template ID" format(uuid)
// @Param        request body catalogapp.UpdateProductTemplateRequest true "Template update request"
// @Success      200 {object} dto.Response{data=catalogapp.ProductTemplateResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /catalog/product-templates/{id} [put]
func (h *ProductTemplateHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "template")
	if !ok {
		return
	}

	var req catalogapp.UpdateProductTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	template, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, template)
}

// Delete godoc
// @Summary      Delete a product template and its variants
// @Tags         product-templates
// @Param        id path string true "Template ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /catalog/product-templates/{id} [delete]
func (h *ProductTemplateHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "template")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Propagate godoc
// @Summary      Re-apply weight and dimension values to a template's variants
// @Tags         product-templates
// @Accept       json
// @Produce      json
// @Param        id path string true "Template ID" format(uuid)
// @Param        request body catalogapp.PropagateRequest true "Values to propagate"
// @Success      200 {object} dto.Response{data=catalogapp.ProductTemplateResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /catalog/product-templates/{id}/propagate [post]
func (h *ProductTemplateHandler) Propagate(c *gin.Context) {
	id, ok := h.parseID(c, "template")
	if !ok {
		return
	}

	var req catalogapp.PropagateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	template, err := h.service.Propagate(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, template)
}

// GetVariant godoc
// @Summary      Get a product variant
// @Tags         product-variants
// @Produce      json
// @Param        id path string true "Variant ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalogapp.ProductVariantResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /catalog/product-variants/{id} [get]
func (h *ProductTemplateHandler) GetVariant(c *gin.Context) {
	id, ok := h.parseID(c, "variant")
	if !ok {
		return
	}

	variant, err := h.service.GetVariant(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, variant)
}

// UpdateVariant godoc
// @Summary      Write a variant's weight and dimensions
// @Description  The parent template's mirrors follow the template's primary variant
// @Tags         product-variants
// @Accept       json
// @Produce      json
// @Param        id path string true "Variant ID" format(uuid)
// @Param        request body catalogapp.UpdateProductVariantRequest true "Variant update request"
// @Success      200 {object} dto.Response{data=catalogapp.ProductVariantResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /catalog/product-variants/{id} [put]
func (h *ProductTemplateHandler) UpdateVariant(c *gin.Context) {
	id, ok := h.parseID(c, "variant")
	if !ok {
		return
	}

	var req catalogapp.UpdateProductVariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	variant, err := h.service.UpdateVariant(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, variant)
}
