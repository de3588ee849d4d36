package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kosarica/price-comparator/internal/types"
)

// TrendPoint is one dated price observation.
type TrendPoint struct {
	Date            string  `json:"date"`
	StoreName       string  `json:"storeName"`
	ProductID       string  `json:"productId"`
	ProductName     string  `json:"productName"`
	Category        string  `json:"category"`
	Brand           string  `json:"brand"`
	PackageQuantity float64 `json:"packageQuantity"`
	PackageUnit     string  `json:"packageUnit"`
	Price           float64 `json:"price"`
	Currency        string  `json:"currency"`
}

func toTrendPoints(records []types.PriceRecord) []TrendPoint {
	out := make([]TrendPoint, len(records))
	for i, r := range records {
		out[i] = TrendPoint{
			Date:            r.Date.Format(types.DateLayout),
			StoreName:       r.StoreName,
			ProductID:       r.ProductID,
			ProductName:     r.ProductName,
			Category:        r.Category,
			Brand:           r.Brand,
			PackageQuantity: r.PackageQuantity,
			PackageUnit:     r.PackageUnit,
			Price:           r.Price,
			Currency:        r.Currency,
		}
	}
	return out
}

// requireQuery reads a mandatory query parameter.
func requireQuery(c *gin.Context, name string) (string, bool) {
	v := c.Query(name)
	if v == "" {
		badRequest(c, name+" is required")
		return "", false
	}
	return v, true
}

// ProductTrend returns a product's price history across stores
// GET /api/price-trends/product?productId=
func (h *Handlers) ProductTrend(c *gin.Context) {
	productID, ok := requireQuery(c, "productId")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toTrendPoints(h.catalog.Snapshot().TrendForProduct(productID)))
}

// ProductStoreTrend returns a product's price history at one store
// GET /api/price-trends/product-store?productId=&storeName=
func (h *Handlers) ProductStoreTrend(c *gin.Context) {
	productID, ok := requireQuery(c, "productId")
	if !ok {
		return
	}
	store, ok := requireQuery(c, "storeName")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toTrendPoints(h.catalog.Snapshot().TrendForProductAtStore(productID, store)))
}

// CategoryTrend returns the price history of a category
// GET /api/price-trends/category?category=
func (h *Handlers) CategoryTrend(c *gin.Context) {
	category, ok := requireQuery(c, "category")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toTrendPoints(h.catalog.Snapshot().TrendByCategory(category)))
}

// BrandTrend returns the price history of a brand
// GET /api/price-trends/brand?brand=
func (h *Handlers) BrandTrend(c *gin.Context) {
	brand, ok := requireQuery(c, "brand")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toTrendPoints(h.catalog.Snapshot().TrendByBrand(brand)))
}
