package catalog

import (
	"sort"
	"strings"

	"github.com/kosarica/price-comparator/internal/types"
)

// TrendForProduct returns the price history of a product across all
// stores, oldest first.
func (s *Snapshot) TrendForProduct(productKey string) []types.PriceRecord {
	return sortByDate(s.PricesFor(productKey))
}

// TrendForProductAtStore returns the price history of a product at one store.
func (s *Snapshot) TrendForProductAtStore(productKey, store string) []types.PriceRecord {
	records := s.PricesFor(productKey)
	out := records[:0]
	for _, r := range records {
		if r.StoreName == store {
			out = append(out, r)
		}
	}
	return sortByDate(out)
}

// TrendByCategory returns the price history of every product in a category.
// Matching is case-insensitive.
func (s *Snapshot) TrendByCategory(category string) []types.PriceRecord {
	return sortByDate(s.filter(func(r types.PriceRecord) bool {
		return strings.EqualFold(r.Category, category)
	}))
}

// TrendByBrand returns the price history of every product of a brand.
// Matching is case-insensitive.
func (s *Snapshot) TrendByBrand(brand string) []types.PriceRecord {
	return sortByDate(s.filter(func(r types.PriceRecord) bool {
		return strings.EqualFold(r.Brand, brand)
	}))
}

func (s *Snapshot) filter(keep func(types.PriceRecord) bool) []types.PriceRecord {
	out := make([]types.PriceRecord, 0)
	for _, r := range s.prices {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func sortByDate(records []types.PriceRecord) []types.PriceRecord {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date) {
			return records[i].Date.Before(records[j].Date)
		}
		return records[i].StoreName < records[j].StoreName
	})
	return records
}
