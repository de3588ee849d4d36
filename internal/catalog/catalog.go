// Package catalog holds the read-only price and discount snapshot the
// pricing engine works from.
package catalog

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kosarica/price-comparator/internal/types"
)

// Snapshot is an immutable set of price and discount records plus the
// indexes used to look them up. Build it with NewSnapshot.
type Snapshot struct {
	prices    []types.PriceRecord
	discounts []types.DiscountRecord
	loadedAt  time.Time

	byProduct map[string][]int // productId -> indexes into prices
	byName    map[string][]int // NormalizeName(productName) -> indexes into prices
	stores    []string

	fingerprintOnce sync.Once
	fingerprint     string
}

// NewSnapshot validates the records and indexes them. A record that breaks
// a numeric invariant fails the whole snapshot.
func NewSnapshot(prices []types.PriceRecord, discounts []types.DiscountRecord, loadedAt time.Time) (*Snapshot, error) {
	s := &Snapshot{
		prices:    make([]types.PriceRecord, len(prices)),
		discounts: make([]types.DiscountRecord, len(discounts)),
		loadedAt:  loadedAt,
		byProduct: make(map[string][]int),
		byName:    make(map[string][]int),
	}
	copy(s.prices, prices)
	copy(s.discounts, discounts)

	storeSet := make(map[string]struct{})
	for i, p := range s.prices {
		if err := p.Validate(i); err != nil {
			return nil, fmt.Errorf("building snapshot: %w", err)
		}
		s.byProduct[p.ProductID] = append(s.byProduct[p.ProductID], i)
		if name := NormalizeName(p.ProductName); name != "" {
			s.byName[name] = append(s.byName[name], i)
		}
		storeSet[p.StoreName] = struct{}{}
	}
	for i, d := range s.discounts {
		if err := d.Validate(i); err != nil {
			return nil, fmt.Errorf("building snapshot: %w", err)
		}
	}

	s.stores = make([]string, 0, len(storeSet))
	for store := range storeSet {
		s.stores = append(s.stores, store)
	}
	sort.Strings(s.stores)

	return s, nil
}

// Empty returns a snapshot without records.
func Empty() *Snapshot {
	s, _ := NewSnapshot(nil, nil, time.Time{})
	return s
}

// Prices returns every price record. The slice must not be modified.
func (s *Snapshot) Prices() []types.PriceRecord { return s.prices }

// Discounts returns every discount record. The slice must not be modified.
func (s *Snapshot) Discounts() []types.DiscountRecord { return s.discounts }

// LoadedAt reports when the snapshot was built.
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

// Stores returns the sorted names of every store with at least one price.
func (s *Snapshot) Stores() []string { return s.stores }

// PricesFor returns all records for a product across stores and dates.
// The key is matched against productId first, then against the product
// name ignoring case and diacritics.
func (s *Snapshot) PricesFor(productKey string) []types.PriceRecord {
	idx, ok := s.byProduct[productKey]
	if !ok {
		idx = s.byName[NormalizeName(productKey)]
	}
	out := make([]types.PriceRecord, len(idx))
	for i, j := range idx {
		out[i] = s.prices[j]
	}
	return out
}

// LatestPrice returns the most recently dated record for a product across
// all stores. Records sharing the latest date resolve to the smallest
// store name so repeated lookups agree.
func (s *Snapshot) LatestPrice(productKey string) (types.PriceRecord, bool) {
	return latest(s.PricesFor(productKey), "", time.Time{})
}

// LatestPriceAt returns the most recently dated record for a product at
// one store, ignoring records dated after asOf. A zero asOf means no bound.
func (s *Snapshot) LatestPriceAt(productKey, store string, asOf time.Time) (types.PriceRecord, bool) {
	return latest(s.PricesFor(productKey), store, asOf)
}

func latest(records []types.PriceRecord, store string, asOf time.Time) (types.PriceRecord, bool) {
	var best types.PriceRecord
	found := false
	for _, r := range records {
		if store != "" && r.StoreName != store {
			continue
		}
		if !asOf.IsZero() && types.Day(r.Date).After(types.Day(asOf)) {
			continue
		}
		if !found || r.Date.After(best.Date) ||
			(r.Date.Equal(best.Date) && r.StoreName < best.StoreName) {
			best = r
			found = true
		}
	}
	return best, found
}

// Catalog publishes the current snapshot. Readers never block; a reload
// swaps the whole snapshot at once.
type Catalog struct {
	current atomic.Pointer[Snapshot]
}

// New creates a catalog serving the given snapshot (an empty one if nil).
func New(s *Snapshot) *Catalog {
	if s == nil {
		s = Empty()
	}
	c := &Catalog{}
	c.current.Store(s)
	return c
}

// Snapshot returns the snapshot currently being served.
func (c *Catalog) Snapshot() *Snapshot {
	return c.current.Load()
}

// Replace swaps in a new snapshot and returns the previous one.
func (c *Catalog) Replace(s *Snapshot) *Snapshot {
	if s == nil {
		s = Empty()
	}
	return c.current.Swap(s)
}

// Discounts returns the discounts of the current snapshot.
func (c *Catalog) Discounts() []types.DiscountRecord {
	return c.Snapshot().Discounts()
}

// LatestPrice looks up the latest price in the current snapshot.
func (c *Catalog) LatestPrice(productKey string) (types.PriceRecord, bool) {
	return c.Snapshot().LatestPrice(productKey)
}
