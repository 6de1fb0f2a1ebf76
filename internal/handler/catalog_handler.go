package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-enrollment-api/internal/models"
	"github.com/noah-isme/course-enrollment-api/pkg/response"
)

type catalogService interface {
	ListAvailable(ctx context.Context, department string) ([]models.AvailableClass, error)
}

// CatalogHandler exposes the class catalog.
type CatalogHandler struct {
	catalog catalogService
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(catalog catalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// List godoc
// @Summary Available classes
// @Tags Catalog
// @Produce json
// @Param department query string true "Department"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classes [get]
func (h *CatalogHandler) List(c *gin.Context) {
	classes, err := h.catalog.ListAvailable(c.Request.Context(), c.Query("department"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, classes)
}
