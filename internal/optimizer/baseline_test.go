package optimizer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kosarica/price-comparator/internal/types"
)

var refDay = day("2025-05-03")

func TestOriginalCostUsesLatestPricePerStore(t *testing.T) {
	src := snapshot(t, []types.PriceRecord{
		price("StoreA", "P1", 1, "2025-04-01"), // older and cheaper, must be ignored
		price("StoreA", "P1", 3, "2025-05-01"),
		price("StoreB", "P1", 2.5, "2025-05-01"),
	})
	o := NewBasketOptimizer(nil, nil)

	cost := o.OriginalCost(context.Background(), src, []types.BasketItem{item("P1", 2)}, refDay)

	assert.Equal(t, 5.0, cost)
}

func TestOriginalCostDisqualifiesIncompleteStores(t *testing.T) {
	src := snapshot(t, []types.PriceRecord{
		price("Cheap", "P1", 0.5, "2025-05-01"), // lacks P2
		price("Full", "P1", 2, "2025-05-01"),
		price("Full", "P2", 3, "2025-05-01"),
		price("Pricey", "P1", 4, "2025-05-01"),
		price("Pricey", "P2", 4, "2025-05-01"),
	})
	o := NewBasketOptimizer(nil, nil)

	cost := o.OriginalCost(context.Background(), src, []types.BasketItem{item("P1", 1), item("P2", 2)}, refDay)

	assert.Equal(t, 8.0, cost)
}

func TestOriginalCostIgnoresDiscounts(t *testing.T) {
	src := snapshot(t,
		[]types.PriceRecord{price("StoreA", "P1", 10, "2025-05-01")},
		discount("P1", 50, "2025-01-01", "2030-12-31"),
	)
	o := NewBasketOptimizer(nil, nil)

	assert.Equal(t, 30.0, o.OriginalCost(context.Background(), src, []types.BasketItem{item("P1", 3)}, refDay))
}

func TestOriginalCostZeroWhenNoStoreQualifies(t *testing.T) {
	src := snapshot(t, []types.PriceRecord{
		price("StoreA", "P1", 1, "2025-05-01"),
		price("StoreB", "P2", 1, "2025-05-01"),
	})
	o := NewBasketOptimizer(nil, nil)

	assert.Equal(t, 0.0, o.OriginalCost(context.Background(), src, []types.BasketItem{item("P1", 1), item("P2", 1)}, refDay))
	assert.Equal(t, 0.0, o.OriginalCost(context.Background(), src, nil, refDay))
}

func TestOriginalCostIgnoresFutureRecords(t *testing.T) {
	src := snapshot(t, []types.PriceRecord{
		price("StoreA", "P1", 3, "2025-05-01"),
		price("StoreA", "P1", 1, "2025-09-01"),
		price("StoreB", "P1", 4, "2025-05-02"),
		price("StoreC", "P1", 0.5, "2025-05-04"),
	})
	o := NewBasketOptimizer(nil, nil)

	assert.Equal(t, 6.0, o.OriginalCost(context.Background(), src, []types.BasketItem{item("P1", 2)}, refDay))
	assert.Equal(t, 1.0, o.OriginalCost(context.Background(), src, []types.BasketItem{item("P1", 2)}, day("2025-09-01")))
}
