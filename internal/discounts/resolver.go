// Package discounts resolves which discounts apply on a given day and
// ranks them for display.
package discounts

import (
	"time"

	"github.com/kosarica/price-comparator/internal/types"
)

// ActiveOn returns the discounts whose validity window contains day.
// Both bounds are inclusive.
func ActiveOn(day time.Time, discounts []types.DiscountRecord) []types.DiscountRecord {
	active := make([]types.DiscountRecord, 0, len(discounts))
	for _, d := range discounts {
		if d.ActiveOn(day) {
			active = append(active, d)
		}
	}
	return active
}

// BestPercentageFor returns the highest percentage among the given
// discounts for a product, or 0 when none match. Only the number is
// returned, so it does not matter which of several tied records wins.
func BestPercentageFor(productID string, active []types.DiscountRecord) float64 {
	best := 0.0
	for _, d := range active {
		if d.ProductID == productID && d.PercentageOfDiscount > best {
			best = d.PercentageOfDiscount
		}
	}
	return best
}

// Index maps products to their best active percentage so repeated
// lookups during one optimization are O(1).
type Index map[string]float64

// NewIndex builds an Index from discounts already filtered with ActiveOn.
func NewIndex(active []types.DiscountRecord) Index {
	idx := make(Index, len(active))
	for _, d := range active {
		if d.PercentageOfDiscount > idx[d.ProductID] {
			idx[d.ProductID] = d.PercentageOfDiscount
		}
	}
	return idx
}

// For returns the best percentage for a product, 0 when it has none.
func (idx Index) For(productID string) float64 {
	return idx[productID]
}
