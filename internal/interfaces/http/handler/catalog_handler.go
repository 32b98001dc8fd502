package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appcatalog "agromarket/internal/application/catalog"
	domain "agromarket/internal/domain/catalog"
)

// CatalogHandler serves the offline catalogue cache.
type CatalogHandler struct {
	svc *appcatalog.Service
}

func NewCatalogHandler(svc *appcatalog.Service) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// ReplaceProducts handles PUT /api/products: the UI pushes the full
// snapshot it just fetched online, replacing the cache atomically.
func (h *CatalogHandler) ReplaceProducts(c *gin.Context) {
	var products []domain.Product
	if err := c.ShouldBindJSON(&products); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.Replace(c.Request.Context(), products); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cached": len(products)})
}

// ListProducts handles GET /api/products?region=.
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	products, err := h.svc.List(c.Request.Context(), c.Query("region"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}
