package optimizer

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kosarica/price-comparator/internal/types"
)

// OriginalCost returns the cheapest cost of buying the whole basket at one
// store, without discounts, using each store's latest price dated on or
// before asOf. Stores missing any item are disqualified; 0 is returned when
// none qualifies.
func (o *BasketOptimizer) OriginalCost(ctx context.Context, src PriceSource, items []types.BasketItem, asOf time.Time) float64 {
	_, span := tracer.Start(ctx, "optimizer.OriginalCost")
	defer span.End()

	startTime := time.Now()
	defer func() {
		o.metrics.RecordBaselineDuration(time.Since(startTime))
	}()

	if len(items) == 0 {
		return 0
	}

	keys := make([]string, len(items))
	for i, item := range items {
		keys[i] = matchKey(src, item)
	}

	var (
		cheapestTotal decimal.Decimal
		qualifying    int
	)
	for _, store := range src.Stores() {
		total, ok := storeTotal(src, store, items, keys, asOf)
		if !ok {
			continue
		}
		if qualifying == 0 || total.LessThan(cheapestTotal) {
			cheapestTotal = total
		}
		qualifying++
	}

	span.SetAttributes(attribute.Int("qualifying_stores", qualifying))
	o.metrics.RecordQualifyingStores(qualifying)

	if qualifying == 0 {
		return 0
	}
	return cheapestTotal.InexactFloat64()
}

func storeTotal(src PriceSource, store string, items []types.BasketItem, keys []string, asOf time.Time) (decimal.Decimal, bool) {
	total := decimal.Zero
	for i, item := range items {
		r, ok := src.LatestPriceAt(keys[i], store, asOf)
		if !ok {
			return decimal.Zero, false
		}
		total = total.Add(decimal.NewFromFloat(r.Price).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total, true
}
