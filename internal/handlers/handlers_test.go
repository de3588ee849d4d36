package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosarica/price-comparator/internal/alerts"
	"github.com/kosarica/price-comparator/internal/catalog"
	"github.com/kosarica/price-comparator/internal/discounts"
	"github.com/kosarica/price-comparator/internal/optimizer"
	"github.com/kosarica/price-comparator/internal/types"
)

var testNow = time.Date(2025, 5, 3, 12, 0, 0, 0, time.UTC)

func day(s string) time.Time {
	d, err := types.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

func price(store, id string, amount float64, date string) types.PriceRecord {
	return types.PriceRecord{
		ProductID:       id,
		ProductName:     "product " + id,
		Category:        "lactate",
		Brand:           "Zuzu",
		PackageQuantity: 1,
		PackageUnit:     "l",
		StoreName:       store,
		Date:            day(date),
		Price:           amount,
		Currency:        "RON",
	}
}

func discount(store, id string, pct float64, from, to string) types.DiscountRecord {
	return types.DiscountRecord{
		ProductID:            id,
		ProductName:          "product " + id,
		StoreName:            store,
		StartDate:            day(from),
		EndingDate:           day(to),
		PercentageOfDiscount: pct,
	}
}

type stubReloader struct {
	calls int
	err   error
}

func (s *stubReloader) Reload(ctx context.Context) error {
	s.calls++
	return s.err
}

type testServer struct {
	router   *gin.Engine
	reloader *stubReloader
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	snap, err := catalog.NewSnapshot(
		[]types.PriceRecord{
			price("lidl", "P001", 10, "2025-05-01"),
			price("kaufland", "P001", 9, "2025-05-01"),
			price("lidl", "P002", 5, "2025-05-01"),
			price("kaufland", "P002", 6, "2025-05-01"),
			price("lidl", "P001", 11, "2025-05-02"),
		},
		[]types.DiscountRecord{
			discount("lidl", "P001", 20, "2025-05-01", "2025-05-07"),
			discount("kaufland", "P002", 35, "2025-05-03", "2025-05-09"),
			discount("kaufland", "P003", 50, "2025-04-01", "2025-04-07"),
		},
		testNow,
	)
	require.NoError(t, err)
	cat := catalog.New(snap)
	now := func() time.Time { return testNow }

	reloader := &stubReloader{}
	h := New(Deps{
		Catalog:   cat,
		Optimizer: optimizer.NewBasketOptimizer(nil, nil).WithClock(now),
		Ranking:   discounts.NewRanking(cat, now),
		Alerts:    alerts.NewEngine(alerts.NewMemoryRepository(), cat, nil).WithClock(now),
		Reloader:  reloader,
	})

	router := gin.New()
	router.GET("/health", h.HealthCheck)
	h.RegisterRoutes(router)
	h.RegisterAdminRoutes(router.Group("/admin"))
	return &testServer{router: router, reloader: reloader}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthCheck(t *testing.T) {
	s := setupTestServer(t)

	w := s.do(t, http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[HealthResponse](t, w)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "not configured", resp.Database)
	assert.Equal(t, 2, resp.Stores)
	assert.Equal(t, 5, resp.PriceRecords)
	assert.Equal(t, 3, resp.DiscountRecords)
	require.NotNil(t, resp.CatalogLoaded)
	assert.True(t, testNow.Equal(*resp.CatalogLoaded))
}

func TestReloadCatalog(t *testing.T) {
	s := setupTestServer(t)

	w := s.do(t, http.MethodPost, "/admin/reload", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, s.reloader.calls)

	s.reloader.err = errors.New("disk on fire")
	w = s.do(t, http.MethodPost, "/admin/reload", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestReloadCatalogNotConfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := New(Deps{Catalog: catalog.New(nil)})
	router := gin.New()
	h.RegisterAdminRoutes(router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/reload", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
