// Package alerts implements user price alerts: a target price per product
// that fires once the latest known price reaches it.
package alerts

import (
	"errors"
	"time"
)

// ErrAlertNotFound is returned when an alert id does not exist.
var ErrAlertNotFound = errors.New("alert not found")

// PriceAlert is one user's target price for a product.
//
// An alert is armed while Active is true. Check moves it to triggered
// (Active false, TriggeredAt set); only Rearm brings it back.
type PriceAlert struct {
	ID          int64      `json:"id"`
	UserID      string     `json:"userId"`
	ProductID   string     `json:"productId"`
	TargetPrice float64    `json:"targetPrice"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"createdAt"`
	TriggeredAt *time.Time `json:"triggeredAt"`
}

// Triggered reports whether the alert has fired and was not re-armed.
func (a PriceAlert) Triggered() bool {
	return !a.Active && a.TriggeredAt != nil
}

// clone returns a copy that shares no memory with a.
func (a PriceAlert) clone() PriceAlert {
	if a.TriggeredAt != nil {
		t := *a.TriggeredAt
		a.TriggeredAt = &t
	}
	return a
}

// PriceAlertView is an alert enriched with the product's current price.
// CurrentPrice is nil when the catalog has no record for the product.
type PriceAlertView struct {
	ID           int64      `json:"id"`
	UserID       string     `json:"userId"`
	ProductID    string     `json:"productId"`
	ProductName  string     `json:"productName,omitempty"`
	TargetPrice  float64    `json:"targetPrice"`
	CurrentPrice *float64   `json:"currentPrice"`
	StoreName    string     `json:"storeName,omitempty"`
	Active       bool       `json:"active"`
	CreatedAt    time.Time  `json:"createdAt"`
	TriggeredAt  *time.Time `json:"triggeredAt"`
}

// ErrInvalidAlert is returned when alert input is invalid.
type ErrInvalidAlert struct {
	Field  string
	Reason string
}

func (e ErrInvalidAlert) Error() string {
	return e.Field + ": " + e.Reason
}

func validateTarget(target float64) error {
	if target < 0 {
		return ErrInvalidAlert{Field: "targetPrice", Reason: "must not be negative"}
	}
	return nil
}
