package types

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the layout used for snapshot dates in file names and cells.
const DateLayout = "2006-01-02"

// ErrInvalidRecord is returned when a record reaching the core violates
// one of its invariants.
var ErrInvalidRecord = errors.New("invalid record")

// PriceRecord is one product price observed at one store on one day.
// Records are produced by ingestion and never mutated afterwards.
type PriceRecord struct {
	ProductID       string    `json:"productId"`
	ProductName     string    `json:"productName"`
	Category        string    `json:"category"`
	Brand           string    `json:"brand"`
	PackageQuantity float64   `json:"packageQuantity"`
	PackageUnit     string    `json:"packageUnit"`
	StoreName       string    `json:"storeName"`
	Date            time.Time `json:"date"`
	Price           float64   `json:"price"`
	Currency        string    `json:"currency"`
}

// DiscountRecord is a percentage discount valid on an inclusive date range.
type DiscountRecord struct {
	ProductID            string    `json:"productId"`
	ProductName          string    `json:"productName"`
	Brand                string    `json:"brand"`
	PackageQuantity      float64   `json:"packageQuantity"`
	PackageUnit          string    `json:"packageUnit"`
	Category             string    `json:"category"`
	StoreName            string    `json:"storeName,omitempty"`
	StartDate            time.Time `json:"startDate"`
	EndingDate           time.Time `json:"endingDate"`
	PercentageOfDiscount float64   `json:"percentageOfDiscount"`
}

// BasketItem is one requested line of a shopping basket.
type BasketItem struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
}

// Key returns the identifier used to match the item against price records.
// Items without a product id fall back to their name.
func (b BasketItem) Key() string {
	if b.ProductID != "" {
		return b.ProductID
	}
	return b.ProductName
}

// RecordError describes which field of which record broke an invariant.
type RecordError struct {
	Kind   string
	Index  int
	Field  string
	Reason string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s[%d].%s: %s", e.Kind, e.Index, e.Field, e.Reason)
}

func (e *RecordError) Unwrap() error {
	return ErrInvalidRecord
}

// Validate checks the numeric invariants of a price record. A zero price
// is rejected along with negative ones.
func (r PriceRecord) Validate(index int) error {
	if r.Price <= 0 {
		return &RecordError{Kind: "price", Index: index, Field: "price", Reason: "must be positive"}
	}
	if r.PackageQuantity < 0 {
		return &RecordError{Kind: "price", Index: index, Field: "packageQuantity", Reason: "must not be negative"}
	}
	return nil
}

// Validate checks the numeric and date invariants of a discount record.
func (d DiscountRecord) Validate(index int) error {
	if d.PercentageOfDiscount < 0 || d.PercentageOfDiscount > 100 {
		return &RecordError{Kind: "discount", Index: index, Field: "percentageOfDiscount", Reason: "must be between 0 and 100"}
	}
	if d.EndingDate.Before(d.StartDate) {
		return &RecordError{Kind: "discount", Index: index, Field: "endingDate", Reason: "must not precede startDate"}
	}
	return nil
}

// Validate checks that the item requests a positive quantity.
func (b BasketItem) Validate(index int) error {
	if b.Key() == "" {
		return &RecordError{Kind: "basket", Index: index, Field: "productId", Reason: "productId or productName is required"}
	}
	if b.Quantity <= 0 {
		return &RecordError{Kind: "basket", Index: index, Field: "quantity", Reason: "must be positive"}
	}
	return nil
}

// ActiveOn reports whether the discount window contains day (inclusive).
func (d DiscountRecord) ActiveOn(day time.Time) bool {
	day = Day(day)
	return !day.Before(Day(d.StartDate)) && !day.After(Day(d.EndingDate))
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD date.
func ParseDay(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}
