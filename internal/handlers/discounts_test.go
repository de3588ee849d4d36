package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosarica/price-comparator/internal/discounts"
)

func TestHighestDiscounts(t *testing.T) {
	s := setupTestServer(t)

	w := s.do(t, http.MethodGet, "/api/discounts/highest", nil)

	require.Equal(t, http.StatusOK, w.Code)
	views := decode[[]discounts.View](t, w)
	require.Len(t, views, 2)
	assert.Equal(t, 35.0, views[0].PercentageOfDiscount)
	assert.Equal(t, 20.0, views[1].PercentageOfDiscount)

	w = s.do(t, http.MethodGet, "/api/discounts/highest?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]discounts.View](t, w), 1)
}

func TestNewDiscounts(t *testing.T) {
	s := setupTestServer(t)

	w := s.do(t, http.MethodGet, "/api/discounts/new", nil)

	require.Equal(t, http.StatusOK, w.Code)
	views := decode[[]discounts.View](t, w)
	require.Len(t, views, 1)
	assert.Equal(t, "P002", views[0].ProductID)
	assert.Equal(t, "2025-05-03", views[0].StartingDate)
}

func TestMaxDiscountPerProduct(t *testing.T) {
	s := setupTestServer(t)

	w := s.do(t, http.MethodGet, "/api/discounts/max-per-product?limit=5", nil)

	require.Equal(t, http.StatusOK, w.Code)
	views := decode[[]discounts.View](t, w)
	require.Len(t, views, 2)
	assert.Equal(t, "P002", views[0].ProductID)
}

func TestDiscountsRejectBadLimit(t *testing.T) {
	s := setupTestServer(t)

	for _, path := range []string{
		"/api/discounts/highest?limit=abc",
		"/api/discounts/max-per-product?limit=-1",
	} {
		w := s.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}
