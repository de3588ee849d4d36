package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status         string     `json:"status"`
	Database       string     `json:"database"`
	CatalogLoaded  *time.Time `json:"catalogLoadedAt,omitempty"`
	Stores         int        `json:"stores"`
	PriceRecords   int        `json:"priceRecords"`
	DiscountRecords int        `json:"discountRecords"`
}

// HealthCheck handles the health check endpoint
// GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	snap := h.catalog.Snapshot()
	response := HealthResponse{
		Status:         "ok",
		Stores:         len(snap.Stores()),
		PriceRecords:   len(snap.Prices()),
		DiscountRecords: len(snap.Discounts()),
	}
	if loaded := snap.LoadedAt(); !loaded.IsZero() {
		response.CatalogLoaded = &loaded
	}

	// Check database connection
	if h.db != nil {
		if err := h.db.Status(c.Request.Context()); err != nil {
			response.Status = "degraded"
			response.Database = "disconnected"
			c.JSON(http.StatusServiceUnavailable, response)
			return
		}
		response.Database = "connected"
	} else {
		response.Database = "not configured"
	}

	c.JSON(http.StatusOK, response)
}

// ReloadCatalog reloads the data directory now
// POST /admin/reload
func (h *Handlers) ReloadCatalog(c *gin.Context) {
	if h.reloader == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "reload not configured"})
		return
	}
	if err := h.reloader.Reload(c.Request.Context()); err != nil {
		h.logger.Error().Err(err).Msg("Manual catalog reload failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	snap := h.catalog.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"stores":    len(snap.Stores()),
		"prices":    len(snap.Prices()),
		"discounts": len(snap.Discounts()),
		"loadedAt":  snap.LoadedAt(),
	})
}
