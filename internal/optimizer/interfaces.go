package optimizer

import (
	"context"
	"time"

	"github.com/kosarica/price-comparator/internal/types"
)

// PriceSource defines the read-only catalog the optimizer works from.
// *catalog.Snapshot implements it; pass one snapshot per call so a reload
// in the middle of an optimization cannot mix data sets.
type PriceSource interface {
	// PricesFor returns every price record of a product across all stores.
	PricesFor(productKey string) []types.PriceRecord

	// LatestPriceAt returns the most recently dated record of a product at
	// one store dated on or before asOf, and false when there is none.
	LatestPriceAt(productKey, store string, asOf time.Time) (types.PriceRecord, bool)

	// Stores returns the names of all stores, sorted.
	Stores() []string

	// Discounts returns the full discount catalog.
	Discounts() []types.DiscountRecord
}

// Optimizer is the main interface for basket optimization operations.
type Optimizer interface {
	// Optimize assigns every resolvable item to its cheapest store.
	Optimize(ctx context.Context, src PriceSource, req *OptimizeRequest) (*OptimizedBasketPlan, error)

	// OriginalCost computes the cheapest single-store cost of the basket.
	OriginalCost(ctx context.Context, src PriceSource, items []types.BasketItem, asOf time.Time) float64
}
