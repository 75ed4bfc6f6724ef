package handler

import (
	"github.com/gin-gonic/gin"

	"dormhub/internal/service"
	"dormhub/pkg/response"
)

// CatalogHandler 区域与设施字典
type CatalogHandler struct {
	catalogSvc service.CatalogService
	errs       *errorResponder
}

// NewCatalogHandler 创建 CatalogHandler
func NewCatalogHandler(catalogSvc service.CatalogService, errs *errorResponder) *CatalogHandler {
	return &CatalogHandler{catalogSvc: catalogSvc, errs: errs}
}

// Zones GET /api/v1/zones
func (h *CatalogHandler) Zones(c *gin.Context) {
	zones, err := h.catalogSvc.Zones(c.Request.Context())
	if err != nil {
		h.errs.handleError(c, err)
		return
	}
	response.OK(c, gin.H{"list": zones})
}

// Amenities GET /api/v1/amenities
func (h *CatalogHandler) Amenities(c *gin.Context) {
	amenities, err := h.catalogSvc.Amenities(c.Request.Context())
	if err != nil {
		h.errs.handleError(c, err)
		return
	}
	response.OK(c, gin.H{"list": amenities})
}
