package handler

import (
	catalogapp "github.com/erp/product-dimension/internal/application/catalog"
	"github.com/gin-gonic/gin"
)

// UnitOfMeasureHandler handles unit of measure endpoints
type UnitOfMeasureHandler struct {
	BaseHandler
	service *catalogapp.UnitOfMeasureService
}

// NewUnitOfMeasureHandler creates a new UnitOfMeasureHandler
func NewUnitOfMeasureHandler(service *catalogapp.UnitOfMeasureService) *UnitOfMeasureHandler {
	return &UnitOfMeasureHandler{service: service}
}

// Create godoc
// @Summary      Create a unit of measure
// @Tags         units
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.CreateUnitOfMeasureRequest true "Unit creation request"
// @Success      201 {object} dto.Response{data=catalogapp.UnitOfMeasureResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /catalog/units [post]
func (h *UnitOfMeasureHandler) Create(c *gin.Context) {
	var req catalogapp.CreateUnitOfMeasureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	unit, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, unit)
}

// GetByID godoc
// @Summary      Get a unit of measure
// @Tags         units
// @Produce      json
// @Param        id path string true "Unit ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalogapp.UnitOfMeasureResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /catalog/units/{id} [get]
func (h *UnitOfMeasureHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "unit")
	if !ok {
		return
	}

	unit, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, unit)
}

// List godoc
// @Summary      List units of measure
// @Tags         units
// @Produce      json
// @Param        category query string false "weight, length or volume"
// @Param        active query bool false "Only active or inactive units"
// @Success      200 {object} dto.Response{data=[]catalogapp.UnitOfMeasureResponse,meta=dto.Meta}
// @Router       /catalog/units [get]
func (h *UnitOfMeasureHandler) List(c *gin.Context) {
	var filter catalogapp.UnitOfMeasureListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	units, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, pageSize := pageOrDefault(filter.Page, filter.PageSize, 50)
	h.SuccessWithMeta(c, units, total, page, pageSize)
}

// Update godoc
// @Summary      Update a unit's name or conversion factor
// @Tags         units
// @Accept       json
// @Produce      json
// @Param        id path string true "Unit ID" format(uuid)
// @Param        request body catalogapp.UpdateUnitOfMeasureRequest true "Unit update request"
// @Success      200 {object} dto.Response{data=catalogapp.UnitOfMeasureResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /catalog/units/{id} [put]
func (h *UnitOfMeasureHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "unit")
	if !ok {
		return
	}

	var req catalogapp.UpdateUnitOfMeasureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	unit, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, unit)
}

// Deactivate godoc
// @Summary      Deactivate a unit of measure
// @Description  Inactive units can no longer be referenced by new writes
// @Tags         units
// @Produce      json
// @Param        id path string true "Unit ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalogapp.UnitOfMeasureResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /catalog/units/{id}/deactivate [post]
func (h *UnitOfMeasureHandler) Deactivate(c *gin.Context) {
	id, ok := h.parseID(c, "unit")
	if !ok {
		return
	}

	unit, err := h.service.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, unit)
}
