package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kosarica/price-comparator/internal/alerts"
)

// CreateAlertRequest is accepted as JSON or as query/form parameters.
type CreateAlertRequest struct {
	UserID      string   `json:"userId" form:"userId" binding:"required"`
	ProductID   string   `json:"productId" form:"productId" binding:"required"`
	TargetPrice *float64 `json:"targetPrice" form:"targetPrice" binding:"required"`
}

// UpdateAlertRequest carries the new target price.
type UpdateAlertRequest struct {
	TargetPrice    *float64 `json:"targetPrice" form:"targetPrice"`
	NewTargetPrice *float64 `json:"newTargetPrice" form:"newTargetPrice"`
}

// CreateAlert creates an armed alert
// POST /api/price-alerts
func (h *Handlers) CreateAlert(c *gin.Context) {
	var req CreateAlertRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	alert, err := h.alerts.Create(c.Request.Context(), req.UserID, req.ProductID, *req.TargetPrice)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, alert)
}

// UserAlerts lists all of a user's alerts
// GET /api/price-alerts/user/:userId
func (h *Handlers) UserAlerts(c *gin.Context) {
	views, err := h.alerts.AlertsForUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// TriggeredAlerts lists a user's triggered alerts
// GET /api/price-alerts/triggered/:userId
func (h *Handlers) TriggeredAlerts(c *gin.Context) {
	views, err := h.alerts.TriggeredForUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// UpdateAlert sets a new target and re-arms the alert
// PUT /api/price-alerts/:id
func (h *Handlers) UpdateAlert(c *gin.Context) {
	id, ok := alertID(c)
	if !ok {
		return
	}

	var req UpdateAlertRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	target := req.TargetPrice
	if target == nil {
		target = req.NewTargetPrice
	}
	if target == nil {
		badRequest(c, "targetPrice is required")
		return
	}

	alert, err := h.alerts.Update(c.Request.Context(), id, *target)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, alert)
}

// DeleteAlert removes an alert; unknown ids are not an error
// DELETE /api/price-alerts/:id
func (h *Handlers) DeleteAlert(c *gin.Context) {
	id, ok := alertID(c)
	if !ok {
		return
	}
	if _, err := h.alerts.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CheckAlerts runs an alert check now
// POST /api/price-alerts/check
func (h *Handlers) CheckAlerts(c *gin.Context) {
	var (
		result alerts.CheckResult
		err    error
	)
	if productID := c.Query("productId"); productID != "" {
		result, err = h.alerts.CheckProduct(c.Request.Context(), productID)
	} else {
		result, err = h.alerts.Check(c.Request.Context())
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	status := http.StatusOK
	if result.Skipped {
		status = http.StatusAccepted
	}
	c.JSON(status, result)
}

func alertID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "id must be a positive integer")
		return 0, false
	}
	return id, true
}
