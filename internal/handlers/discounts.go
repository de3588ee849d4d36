package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HighestDiscounts returns the largest active discounts
// GET /api/discounts/highest?limit=10
func (h *Handlers) HighestDiscounts(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.ranking.HighestDiscounts(limit))
}

// NewDiscounts returns discounts starting today
// GET /api/discounts/new
func (h *Handlers) NewDiscounts(c *gin.Context) {
	c.JSON(http.StatusOK, h.ranking.NewlyAdded())
}

// MaxDiscountPerProduct returns each product's best active discount
// GET /api/discounts/max-per-product?limit=10
func (h *Handlers) MaxDiscountPerProduct(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.ranking.MaxDiscountPerProduct(limit))
}
