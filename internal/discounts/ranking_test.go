package discounts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosarica/price-comparator/internal/types"
)

type staticSource []types.DiscountRecord

func (s staticSource) Discounts() []types.DiscountRecord { return s }

func fixedClock(s string) func() time.Time {
	t := day(s).Add(10 * time.Hour)
	return func() time.Time { return t }
}

func TestHighestDiscounts(t *testing.T) {
	src := staticSource{
		discount("P1", 10, "2025-05-01", "2025-05-07"),
		discount("P2", 40, "2025-05-01", "2025-05-07"),
		discount("P3", 25, "2025-05-01", "2025-05-07"),
		discount("P4", 90, "2025-04-01", "2025-04-07"), // expired
	}
	ranking := NewRanking(src, fixedClock("2025-05-03"))

	top := ranking.HighestDiscounts(2)

	require.Len(t, top, 2)
	assert.Equal(t, "P2", top[0].ProductID)
	assert.Equal(t, "P3", top[1].ProductID)

	assert.Len(t, ranking.HighestDiscounts(10), 3, "expired discount must be filtered")
	assert.Empty(t, ranking.HighestDiscounts(0))
}

// TestNewlyAddedStrictStartDate verifies only discounts starting exactly
// today qualify.
func TestNewlyAddedStrictStartDate(t *testing.T) {
	src := staticSource{
		discount("YESTERDAY", 10, "2025-05-02", "2025-05-09"),
		discount("TODAY", 15, "2025-05-03", "2025-05-10"),
		discount("TOMORROW", 20, "2025-05-04", "2025-05-11"),
	}
	ranking := NewRanking(src, fixedClock("2025-05-03"))

	fresh := ranking.NewlyAdded()

	require.Len(t, fresh, 1)
	assert.Equal(t, "TODAY", fresh[0].ProductID)
	assert.Equal(t, "2025-05-03", fresh[0].StartingDate)
}

func TestMaxDiscountPerProduct(t *testing.T) {
	src := staticSource{
		discount("P1", 20, "2025-05-01", "2025-05-07"),
		discount("P1", 30, "2025-05-01", "2025-05-07"),
		discount("P2", 25, "2025-05-01", "2025-05-07"),
	}
	ranking := NewRanking(src, fixedClock("2025-05-03"))

	got := ranking.MaxDiscountPerProduct(10)

	require.Len(t, got, 2)
	assert.Equal(t, "P1", got[0].ProductID)
	assert.Equal(t, 30.0, got[0].PercentageOfDiscount)
	assert.Equal(t, "P2", got[1].ProductID)
	assert.Equal(t, 25.0, got[1].PercentageOfDiscount)
}

func TestMaxDiscountPerProductLimitAndInactive(t *testing.T) {
	src := staticSource{
		discount("P1", 50, "2025-01-01", "2025-01-31"), // inactive, must not win P1
		discount("P1", 5, "2025-05-01", "2025-05-07"),
		discount("P2", 25, "2025-05-01", "2025-05-07"),
		discount("P3", 15, "2025-05-01", "2025-05-07"),
	}
	ranking := NewRanking(src, fixedClock("2025-05-03"))

	got := ranking.MaxDiscountPerProduct(2)

	require.Len(t, got, 2)
	assert.Equal(t, "P2", got[0].ProductID)
	assert.Equal(t, "P3", got[1].ProductID)

	all := ranking.MaxDiscountPerProduct(10)
	require.Len(t, all, 3)
	assert.Equal(t, 5.0, all[2].PercentageOfDiscount)
}
