package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kosarica/price-comparator/internal/optimizer"
	"github.com/kosarica/price-comparator/internal/types"
)

// BasketItemRequest is one basket line in an optimization request.
type BasketItemRequest struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
}

// OptimizeBasket handles plain basket optimization
// POST /api/basket/optimize?date=YYYY-MM-DD
func (h *Handlers) OptimizeBasket(c *gin.Context) {
	h.optimize(c, optimizer.VariantPlain)
}

// OptimizeBasketUnitPrice handles basket optimization with unit prices
// POST /api/basket/optimize-unit-price?date=YYYY-MM-DD
func (h *Handlers) OptimizeBasketUnitPrice(c *gin.Context) {
	h.optimize(c, optimizer.VariantUnitPrice)
}

func (h *Handlers) optimize(c *gin.Context, variant optimizer.Variant) {
	var items []BasketItemRequest
	if err := c.ShouldBindJSON(&items); err != nil {
		badRequest(c, err.Error())
		return
	}

	req := &optimizer.OptimizeRequest{
		Items:   make([]types.BasketItem, len(items)),
		Variant: variant,
	}
	for i, item := range items {
		req.Items[i] = types.BasketItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
		}
	}
	if raw := c.Query("date"); raw != "" {
		date, err := types.ParseDay(raw)
		if err != nil {
			badRequest(c, "date must be YYYY-MM-DD")
			return
		}
		req.Date = date
	}

	plan, err := h.optimizer.Optimize(c.Request.Context(), h.catalog.Snapshot(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}
