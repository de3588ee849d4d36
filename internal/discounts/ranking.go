package discounts

import (
	"sort"
	"time"

	"github.com/kosarica/price-comparator/internal/types"
)

// Source supplies the discount catalog.
type Source interface {
	Discounts() []types.DiscountRecord
}

// View is the display form of a discount record.
type View struct {
	ProductID            string  `json:"productId"`
	ProductName          string  `json:"productName"`
	Brand                string  `json:"brand"`
	PackageQuantity      float64 `json:"packageQuantity"`
	PackageUnit          string  `json:"packageUnit"`
	Category             string  `json:"category"`
	StartingDate         string  `json:"startingDate"`
	EndingDate           string  `json:"endingDate"`
	PercentageOfDiscount float64 `json:"percentageOfDiscount"`
}

// ToView converts a record to its display form.
func ToView(d types.DiscountRecord) View {
	return View{
		ProductID:            d.ProductID,
		ProductName:          d.ProductName,
		Brand:                d.Brand,
		PackageQuantity:      d.PackageQuantity,
		PackageUnit:          d.PackageUnit,
		Category:             d.Category,
		StartingDate:         d.StartDate.Format(types.DateLayout),
		EndingDate:           d.EndingDate.Format(types.DateLayout),
		PercentageOfDiscount: d.PercentageOfDiscount,
	}
}

// Ranking answers "which discounts are worth showing today" queries.
type Ranking struct {
	source Source
	now    func() time.Time
}

// NewRanking creates a Ranking over source. A nil clock means time.Now.
func NewRanking(source Source, now func() time.Time) *Ranking {
	if now == nil {
		now = time.Now
	}
	return &Ranking{source: source, now: now}
}

// HighestDiscounts returns up to limit active discounts, highest
// percentage first. Order among equal percentages is unspecified.
func (r *Ranking) HighestDiscounts(limit int) []View {
	active := ActiveOn(r.now(), r.source.Discounts())
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].PercentageOfDiscount > active[j].PercentageOfDiscount
	})
	return toViews(truncate(active, limit))
}

// NewlyAdded returns discounts whose window starts exactly today.
func (r *Ranking) NewlyAdded() []View {
	today := types.Day(r.now())
	out := make([]types.DiscountRecord, 0)
	for _, d := range r.source.Discounts() {
		if types.Day(d.StartDate).Equal(today) {
			out = append(out, d)
		}
	}
	return toViews(out)
}

// MaxDiscountPerProduct keeps the best active discount of each product and
// returns up to limit of those winners, highest percentage first.
func (r *Ranking) MaxDiscountPerProduct(limit int) []View {
	best := make(map[string]types.DiscountRecord)
	order := make([]string, 0)
	for _, d := range ActiveOn(r.now(), r.source.Discounts()) {
		cur, seen := best[d.ProductID]
		if !seen {
			order = append(order, d.ProductID)
		}
		if !seen || d.PercentageOfDiscount > cur.PercentageOfDiscount {
			best[d.ProductID] = d
		}
	}

	winners := make([]types.DiscountRecord, 0, len(order))
	for _, id := range order {
		winners = append(winners, best[id])
	}
	sort.SliceStable(winners, func(i, j int) bool {
		return winners[i].PercentageOfDiscount > winners[j].PercentageOfDiscount
	})
	return toViews(truncate(winners, limit))
}

func truncate(records []types.DiscountRecord, limit int) []types.DiscountRecord {
	if limit < 0 {
		limit = 0
	}
	if len(records) > limit {
		return records[:limit]
	}
	return records
}

func toViews(records []types.DiscountRecord) []View {
	views := make([]View, len(records))
	for i, d := range records {
		views[i] = ToView(d)
	}
	return views
}
