package optimizer

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kosarica/price-comparator/internal/types"
)

// Variant selects what the optimizer reports per item. Store selection is
// identical for every variant.
type Variant string

const (
	VariantPlain     Variant = "plain"      // absolute totals and savings
	VariantUnitPrice Variant = "unit_price" // also price per package unit
)

// UnitPriceUnavailable labels items whose package quantity is unknown.
const UnitPriceUnavailable = "N/A"

// OptimizeRequest contains the parameters for basket optimization.
type OptimizeRequest struct {
	Items   []types.BasketItem // Items in the basket, in request order
	Date    time.Time          // Reference date for discounts (zero = today)
	Variant Variant            // What to report per item (empty = plain)
}

// PlanItem is one basket line assigned to its cheapest store.
type PlanItem struct {
	ProductID      string  `json:"productId"`
	ProductName    string  `json:"productName"`
	Quantity       int     `json:"quantity"`
	TotalPrice     float64 `json:"totalPrice"`     // effective price × quantity
	UnitPrice      float64 `json:"unitPrice"`      // effective price per package unit
	UnitPriceLabel string  `json:"unitPriceLabel"` // "per <unit>" or N/A
	Savings        float64 `json:"savings"`        // discount amount × quantity
	StoreName      string  `json:"storeName"`
}

// ShoppingList groups the items bought at one store. Totals are derived
// from Items and recomputed on every change.
type ShoppingList struct {
	StoreName    string     `json:"storeName"`
	Items        []PlanItem `json:"items"`
	TotalCost    float64    `json:"totalCost"`
	TotalSavings float64    `json:"totalSavings"`
}

// NewShoppingList creates an empty list for a store.
func NewShoppingList(store string) *ShoppingList {
	return &ShoppingList{StoreName: store, Items: make([]PlanItem, 0)}
}

// AddItem appends an item and recomputes the list totals.
func (l *ShoppingList) AddItem(item PlanItem) {
	l.Items = append(l.Items, item)
	l.recalculateTotals()
}

func (l *ShoppingList) recalculateTotals() {
	cost, savings := decimal.Zero, decimal.Zero
	for _, item := range l.Items {
		cost = cost.Add(decimal.NewFromFloat(item.TotalPrice))
		savings = savings.Add(decimal.NewFromFloat(item.Savings))
	}
	l.TotalCost = cost.InexactFloat64()
	l.TotalSavings = savings.InexactFloat64()
}

// OptimizedBasketPlan is the result of a basket optimization.
//
// TotalCost and TotalSavings are sums over the shopping lists. OriginalCost
// is the single-store baseline; SavingsVsBaseline = OriginalCost - TotalCost
// and is negative whenever no single store carries the whole basket
// (baseline 0) or the baseline store is cheaper than the split.
type OptimizedBasketPlan struct {
	ShoppingLists     []*ShoppingList `json:"shoppingLists"`
	TotalCost         float64         `json:"totalCost"`
	TotalSavings      float64         `json:"totalSavings"`
	OriginalCost      float64         `json:"originalCost"`
	SavingsVsBaseline float64         `json:"savingsVsBaseline"`
	Date              string          `json:"date"`
	SkippedItems      []string        `json:"skippedItems,omitempty"`
}

// SetShoppingLists replaces the lists and recomputes every total.
func (p *OptimizedBasketPlan) SetShoppingLists(lists []*ShoppingList) {
	p.ShoppingLists = lists
	p.recalculateTotals()
}

// SetOriginalCost records the baseline and recomputes the comparison.
func (p *OptimizedBasketPlan) SetOriginalCost(cost float64) {
	p.OriginalCost = cost
	p.recalculateTotals()
}

func (p *OptimizedBasketPlan) recalculateTotals() {
	cost, savings := decimal.Zero, decimal.Zero
	for _, l := range p.ShoppingLists {
		cost = cost.Add(decimal.NewFromFloat(l.TotalCost))
		savings = savings.Add(decimal.NewFromFloat(l.TotalSavings))
	}
	p.TotalCost = cost.InexactFloat64()
	p.TotalSavings = savings.InexactFloat64()
	p.SavingsVsBaseline = decimal.NewFromFloat(p.OriginalCost).Sub(cost).InexactFloat64()
}

// Validate validates the optimization request and returns an error if invalid.
func (r *OptimizeRequest) Validate(maxItems int) error {
	if len(r.Items) < 1 {
		return ErrInvalidRequest{Field: "items", Reason: "must have at least one item", Index: -1}
	}
	if maxItems > 0 && len(r.Items) > maxItems {
		return ErrInvalidRequest{Field: "items", Reason: "exceeds maximum allowed", Index: -1}
	}
	for i, item := range r.Items {
		if err := item.Validate(i); err != nil {
			return ErrInvalidRequest{Field: "items", Reason: err.Error(), Index: i}
		}
	}
	switch r.Variant {
	case "", VariantPlain, VariantUnitPrice:
	default:
		return ErrInvalidRequest{Field: "variant", Reason: fmt.Sprintf("unknown variant %q", r.Variant), Index: -1}
	}
	return nil
}

// ErrInvalidBasket is matched by every ErrInvalidRequest.
var ErrInvalidBasket = errors.New("invalid basket")

// ErrInvalidRequest is returned when the optimization request is invalid.
type ErrInvalidRequest struct {
	Field  string
	Reason string
	Index  int
}

func (e ErrInvalidRequest) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s[%d]: %s", e.Field, e.Index, e.Reason)
	}
	return e.Field + ": " + e.Reason
}

func (e ErrInvalidRequest) Unwrap() error { return ErrInvalidBasket }
