package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abel-rois666/Generador-Horarios-CUOM/internal/models"
	"github.com/abel-rois666/Generador-Horarios-CUOM/pkg/response"
)

// CatalogHandler serves the demonstration catalog.
type CatalogHandler struct {
	sample func() models.Catalog
}

// NewCatalogHandler constructs the handler around a catalog source.
func NewCatalogHandler(sample func() models.Catalog) *CatalogHandler {
	return &CatalogHandler{sample: sample}
}

// Sample godoc
// @Summary Demonstration catalog
// @Description Two degrees, three shifts, four teachers, seven subjects and three groups. Solving it is INFEASIBLE.
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /catalog/sample [get]
func (h *CatalogHandler) Sample(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.sample(), nil)
}
