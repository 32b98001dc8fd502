package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	appcart "agromarket/internal/application/cart"
	domain "agromarket/internal/domain/cart"
)

// CartHandler persists the shopping cart across app sessions.
type CartHandler struct {
	svc *appcart.Service
}

func NewCartHandler(svc *appcart.Service) *CartHandler {
	return &CartHandler{svc: svc}
}

type addCartLineRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// AddLine handles POST /api/cart.
func (h *CartHandler) AddLine(c *gin.Context) {
	var req addCartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	localID, err := h.svc.Add(c.Request.Context(), req.ProductID, req.Quantity)
	if err != nil {
		if errors.Is(err, domain.ErrMissingProduct) || errors.Is(err, domain.ErrInvalidQuantity) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"local_id": localID})
}

// ListLines handles GET /api/cart.
func (h *CartHandler) ListLines(c *gin.Context) {
	lines, err := h.svc.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"lines": lines})
}

// ClearLines handles DELETE /api/cart.
func (h *CartHandler) ClearLines(c *gin.Context) {
	if err := h.svc.Clear(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cart cleared"})
}
