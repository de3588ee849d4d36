package optimizer

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/kosarica/price-comparator/internal/discounts"
	"github.com/kosarica/price-comparator/internal/types"
)

var (
	hundred = decimal.NewFromInt(100)
	tracer  = otel.Tracer("github.com/kosarica/price-comparator/internal/optimizer")
)

// BasketOptimizer assigns every basket item to the store with the lowest
// discounted price. It is a per-item greedy assignment: a basket can span
// many stores.
type BasketOptimizer struct {
	config  *Config
	metrics *MetricsRecorder
	now     func() time.Time
	logger  zerolog.Logger
}

// NewBasketOptimizer creates a new basket optimizer. A nil config uses
// Defaults(); a nil logger disables logging.
func NewBasketOptimizer(config *Config, logger *zerolog.Logger) *BasketOptimizer {
	if config == nil {
		config = Defaults()
	}
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "basket_optimizer").Logger()
	}
	return &BasketOptimizer{
		config:  config,
		metrics: NewMetricsRecorder(),
		now:     time.Now,
		logger:  l,
	}
}

// WithClock replaces the clock used when a request carries no date.
func (o *BasketOptimizer) WithClock(now func() time.Time) *BasketOptimizer {
	if now != nil {
		o.now = now
	}
	return o
}

var _ Optimizer = (*BasketOptimizer)(nil)

// candidate is one store offer for an item after discounts.
type candidate struct {
	record    types.PriceRecord
	effective decimal.Decimal
	discount  decimal.Decimal
}

// Optimize runs the optimization against one price source.
func (o *BasketOptimizer) Optimize(ctx context.Context, src PriceSource, req *OptimizeRequest) (*OptimizedBasketPlan, error) {
	variant := string(req.Variant)
	if variant == "" {
		variant = string(VariantPlain)
	}

	ctx, span := tracer.Start(ctx, "optimizer.Optimize")
	defer span.End()
	span.SetAttributes(
		attribute.String("variant", variant),
		attribute.Int("items", len(req.Items)),
	)

	startTime := time.Now()
	if err := req.Validate(o.config.MaxBasketItems); err != nil {
		o.metrics.RecordOptimization(variant, time.Since(startTime), false)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if req.Variant == VariantUnitPrice && !o.config.EnableUnitPrice {
		err := ErrInvalidRequest{Field: "variant", Reason: "unit price variant is disabled", Index: -1}
		o.metrics.RecordOptimization(variant, time.Since(startTime), false)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	o.metrics.RecordBasketSize(len(req.Items))
	o.metrics.RecordStoreCount(len(src.Stores()))

	day := req.Date
	if day.IsZero() {
		day = o.now()
	}
	day = types.Day(day)
	best := discounts.NewIndex(discounts.ActiveOn(day, src.Discounts()))

	plan := &OptimizedBasketPlan{Date: day.Format(types.DateLayout)}
	lists := make(map[string]*ShoppingList)

	for _, item := range req.Items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		winner, ok := cheapest(offersOn(src.PricesFor(matchKey(src, item)), day), best)
		if !ok {
			o.logger.Debug().
				Str("product_id", item.ProductID).
				Str("product_name", item.ProductName).
				Msg("No price records for basket item, skipping")
			plan.SkippedItems = append(plan.SkippedItems, item.Key())
			continue
		}

		store := winner.record.StoreName
		list, exists := lists[store]
		if !exists {
			list = NewShoppingList(store)
			lists[store] = list
		}
		list.AddItem(planItem(winner, item.Quantity, req.Variant))
	}

	stores := make([]string, 0, len(lists))
	for store := range lists {
		stores = append(stores, store)
	}
	sort.Strings(stores)
	ordered := make([]*ShoppingList, 0, len(stores))
	for _, store := range stores {
		ordered = append(ordered, lists[store])
	}
	plan.SetShoppingLists(ordered)
	plan.SetOriginalCost(o.OriginalCost(ctx, src, req.Items, day))

	o.metrics.RecordSkippedItems(len(plan.SkippedItems))
	o.metrics.RecordShoppingLists(len(ordered))
	o.metrics.RecordOptimization(variant, time.Since(startTime), true)

	span.SetAttributes(
		attribute.Int("shopping_lists", len(ordered)),
		attribute.Int("skipped_items", len(plan.SkippedItems)),
	)

	o.logger.Debug().
		Int("items", len(req.Items)).
		Int("stores", len(ordered)).
		Float64("total_cost", plan.TotalCost).
		Float64("original_cost", plan.OriginalCost).
		Dur("duration", time.Since(startTime)).
		Msg("Basket optimized")

	return plan, nil
}

// matchKey picks the key an item is looked up by. An item whose product id
// matches nothing falls back to its name.
func matchKey(src PriceSource, item types.BasketItem) string {
	if item.ProductID != "" && item.ProductName != "" && len(src.PricesFor(item.ProductID)) == 0 {
		return item.ProductName
	}
	return item.Key()
}

// offersOn keeps each store's current offer on day: its latest record not
// dated after day. Superseded and future-dated records are dropped.
func offersOn(records []types.PriceRecord, day time.Time) []types.PriceRecord {
	current := make(map[string]types.PriceRecord, len(records))
	for _, r := range records {
		if types.Day(r.Date).After(day) {
			continue
		}
		if prev, ok := current[r.StoreName]; !ok || r.Date.After(prev.Date) {
			current[r.StoreName] = r
		}
	}
	out := make([]types.PriceRecord, 0, len(current))
	for _, r := range current {
		out = append(out, r)
	}
	return out
}

// cheapest returns the offer with the lowest effective price. Equal
// effective prices go to the lexicographically smaller store.
func cheapest(records []types.PriceRecord, best discounts.Index) (candidate, bool) {
	var winner candidate
	found := false
	for _, r := range records {
		price := decimal.NewFromFloat(r.Price)
		discount := price.Mul(decimal.NewFromFloat(best.For(r.ProductID))).Div(hundred)
		c := candidate{record: r, effective: price.Sub(discount), discount: discount}
		if !found || better(c, winner) {
			winner = c
			found = true
		}
	}
	return winner, found
}

func better(a, b candidate) bool {
	if cmp := a.effective.Cmp(b.effective); cmp != 0 {
		return cmp < 0
	}
	return a.record.StoreName < b.record.StoreName
}

func planItem(c candidate, quantity int, variant Variant) PlanItem {
	qty := decimal.NewFromInt(int64(quantity))
	item := PlanItem{
		ProductID:   c.record.ProductID,
		ProductName: c.record.ProductName,
		Quantity:    quantity,
		TotalPrice:  c.effective.Mul(qty).InexactFloat64(),
		Savings:     c.discount.Mul(qty).InexactFloat64(),
		StoreName:   c.record.StoreName,
	}
	if variant == VariantUnitPrice {
		if c.record.PackageQuantity > 0 {
			item.UnitPrice = c.effective.Div(decimal.NewFromFloat(c.record.PackageQuantity)).InexactFloat64()
			item.UnitPriceLabel = "per " + c.record.PackageUnit
		} else {
			item.UnitPriceLabel = UnitPriceUnavailable
		}
	}
	return item
}
