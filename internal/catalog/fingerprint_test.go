package catalog

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosarica/price-comparator/internal/types"
)

func fingerprintOf(t *testing.T, prices []types.PriceRecord, discounts []types.DiscountRecord) string {
	t.Helper()
	s, err := NewSnapshot(prices, discounts, time.Now())
	require.NoError(t, err)
	return s.Fingerprint()
}

func TestFingerprintIgnoresOrderAndLoadTime(t *testing.T) {
	a := price("lidl", "P1", 10, "2025-05-01")
	b := price("kaufland", "P1", 9, "2025-05-01")
	c := price("lidl", "P2", 3.5, "2025-05-02")

	first := fingerprintOf(t, []types.PriceRecord{a, b, c}, nil)

	assert.Equal(t, first, fingerprintOf(t, []types.PriceRecord{c, a, b}, nil))
	assert.Equal(t, first, fingerprintOf(t, []types.PriceRecord{b, c, a}, nil))
	assert.Len(t, first, 64)
}

func TestFingerprintSensitivity(t *testing.T) {
	base := []types.PriceRecord{price("lidl", "P1", 10, "2025-05-01")}
	baseHash := fingerprintOf(t, base, nil)

	tests := []struct {
		name   string
		mutate func(*types.PriceRecord)
	}{
		{"price", func(r *types.PriceRecord) { r.Price = 10.01 }},
		{"store", func(r *types.PriceRecord) { r.StoreName = "profi" }},
		{"date", func(r *types.PriceRecord) { r.Date = r.Date.AddDate(0, 0, 1) }},
		{"package", func(r *types.PriceRecord) { r.PackageQuantity = 0.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changed := base[0]
			tt.mutate(&changed)
			assert.NotEqual(t, baseHash, fingerprintOf(t, []types.PriceRecord{changed}, nil))
		})
	}
}

func TestFingerprintSeparatesPricesFromDiscounts(t *testing.T) {
	d := types.DiscountRecord{
		ProductID:            "P1",
		StartDate:            time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		EndingDate:           time.Date(2025, 5, 7, 0, 0, 0, 0, time.UTC),
		PercentageOfDiscount: 10,
	}
	prices := []types.PriceRecord{price("lidl", "P1", 10, "2025-05-01")}

	without := fingerprintOf(t, prices, nil)
	with := fingerprintOf(t, prices, []types.DiscountRecord{d})
	assert.NotEqual(t, without, with)

	d.PercentageOfDiscount = 11
	assert.NotEqual(t, with, fingerprintOf(t, prices, []types.DiscountRecord{d}))
}

func TestFingerprintKeepsDuplicates(t *testing.T) {
	a := price("lidl", "P1", 10, "2025-05-01")

	assert.NotEqual(t,
		fingerprintOf(t, []types.PriceRecord{a}, nil),
		fingerprintOf(t, []types.PriceRecord{a, a}, nil))
}

func TestFingerprintConcurrentReads(t *testing.T) {
	s, err := NewSnapshot([]types.PriceRecord{price("lidl", "P1", 10, "2025-05-01")}, nil, time.Now())
	require.NoError(t, err)
	want := computeFingerprint(s.Prices(), s.Discounts())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, s.Fingerprint())
		}()
	}
	wg.Wait()
}
