package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceTrends(t *testing.T) {
	s := setupTestServer(t)

	tests := []struct {
		name  string
		path  string
		count int
	}{
		{"product", "/api/price-trends/product?productId=P001", 3},
		{"product at store", "/api/price-trends/product-store?productId=P001&storeName=lidl", 2},
		{"category", "/api/price-trends/category?category=lactate", 5},
		{"brand", "/api/price-trends/brand?brand=Zuzu", 5},
		{"unknown brand", "/api/price-trends/brand?brand=Nope", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodGet, tt.path, nil)

			require.Equal(t, http.StatusOK, w.Code)
			points := decode[[]TrendPoint](t, w)
			require.Len(t, points, tt.count)
			for i := 1; i < len(points); i++ {
				assert.LessOrEqual(t, points[i-1].Date, points[i].Date, "points are ordered by date")
			}
		})
	}
}

func TestPriceTrendsRequireParameters(t *testing.T) {
	s := setupTestServer(t)

	for _, path := range []string{
		"/api/price-trends/product",
		"/api/price-trends/product-store?productId=P001",
		"/api/price-trends/category",
		"/api/price-trends/brand",
	} {
		w := s.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}
