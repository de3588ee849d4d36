// Package handlers implements the HTTP API on top of the pricing engine.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/kosarica/price-comparator/internal/alerts"
	"github.com/kosarica/price-comparator/internal/catalog"
	"github.com/kosarica/price-comparator/internal/database"
	"github.com/kosarica/price-comparator/internal/discounts"
	"github.com/kosarica/price-comparator/internal/optimizer"
)

const defaultLimit = 10

// Reloader reloads the catalog from the data directory.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Deps are the components the handlers serve. Reloader and DB are optional.
type Deps struct {
	Catalog   *catalog.Catalog
	Optimizer *optimizer.BasketOptimizer
	Ranking   *discounts.Ranking
	Alerts    *alerts.Engine
	Reloader  Reloader
	DB        *database.DB
	Logger    *zerolog.Logger
}

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	catalog   *catalog.Catalog
	optimizer *optimizer.BasketOptimizer
	ranking   *discounts.Ranking
	alerts    *alerts.Engine
	reloader  Reloader
	db        *database.DB
	logger    *zerolog.Logger
}

// New creates the handlers.
func New(d Deps) *Handlers {
	logger := d.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Handlers{
		catalog:   d.Catalog,
		optimizer: d.Optimizer,
		ranking:   d.Ranking,
		alerts:    d.Alerts,
		reloader:  d.Reloader,
		db:        d.DB,
		logger:    logger,
	}
}

// RegisterRoutes mounts the public API under r.
func (h *Handlers) RegisterRoutes(r gin.IRouter) {
	basket := r.Group("/api/basket")
	{
		basket.POST("/optimize", h.OptimizeBasket)
		basket.POST("/optimize-unit-price", h.OptimizeBasketUnitPrice)
	}

	disc := r.Group("/api/discounts")
	{
		disc.GET("/highest", h.HighestDiscounts)
		disc.GET("/new", h.NewDiscounts)
		disc.GET("/max-per-product", h.MaxDiscountPerProduct)
	}

	priceAlerts := r.Group("/api/price-alerts")
	{
		priceAlerts.POST("", h.CreateAlert)
		priceAlerts.GET("/user/:userId", h.UserAlerts)
		priceAlerts.GET("/triggered/:userId", h.TriggeredAlerts)
		priceAlerts.PUT("/:id", h.UpdateAlert)
		priceAlerts.DELETE("/:id", h.DeleteAlert)
		priceAlerts.POST("/check", h.CheckAlerts)
	}

	trends := r.Group("/api/price-trends")
	{
		trends.GET("/product", h.ProductTrend)
		trends.GET("/product-store", h.ProductStoreTrend)
		trends.GET("/category", h.CategoryTrend)
		trends.GET("/brand", h.BrandTrend)
	}
}

// RegisterAdminRoutes mounts operator endpoints under r. Callers protect
// the group with authentication.
func (h *Handlers) RegisterAdminRoutes(r gin.IRouter) {
	r.POST("/reload", h.ReloadCatalog)
}

// ErrorResponse is the body of every 4xx/5xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (h *Handlers) fail(c *gin.Context, err error) {
	var (
		basketErr optimizer.ErrInvalidRequest
		alertErr  alerts.ErrInvalidAlert
	)
	switch {
	case errors.As(err, &basketErr), errors.As(err, &alertErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, alerts.ErrAlertNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, context.Canceled):
		c.Status(499)
	default:
		h.logger.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

// queryLimit reads ?limit=, defaulting to 10.
func queryLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return defaultLimit, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		badRequest(c, "limit must be a non-negative integer")
		return 0, false
	}
	return limit, true
}
