package optimizer

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// optimizationDuration tracks the time taken for optimization calculations.
	optimizationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "optimizer_calculation_duration_seconds",
		Help:    "Time taken for basket optimization by variant",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
	}, []string{"variant"}) // variant: plain, unit_price

	// optimizationErrors tracks rejected optimization requests.
	optimizationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "optimizer_calculation_errors_total",
		Help: "Total number of optimization errors by variant",
	}, []string{"variant"})

	// basketSize tracks the distribution of basket sizes.
	basketSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "optimizer_basket_items_count",
		Help:    "Number of items in optimization requests",
		Buckets: []float64{1, 5, 10, 20, 50, 100},
	})

	// storeCount tracks the number of stores in the catalog at optimization time.
	storeCount = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "optimizer_stores_considered_count",
		Help:    "Number of stores considered in optimization",
		Buckets: []float64{1, 2, 5, 10, 20, 50},
	})

	skippedItems = promauto.NewCounter(prometheus.CounterOpts{
		Name: "optimizer_skipped_items_total",
		Help: "Total number of basket items without any price record",
	})

	// shoppingLists tracks how many stores a plan spans.
	shoppingLists = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "optimizer_plan_shopping_lists_count",
		Help:    "Number of shopping lists per optimized plan",
		Buckets: []float64{0, 1, 2, 3, 5, 10},
	})

	baselineDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "optimizer_baseline_duration_seconds",
		Help:    "Time taken to compute the single-store baseline",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
	})

	// qualifyingStores tracks how many stores carry the whole basket.
	qualifyingStores = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "optimizer_baseline_qualifying_stores_count",
		Help:    "Number of stores carrying every basket item",
		Buckets: []float64{0, 1, 2, 5, 10, 20},
	})
)

// MetricsRecorder provides methods to record optimizer metrics.
type MetricsRecorder struct{}

// NewMetricsRecorder creates a new metrics recorder.
func NewMetricsRecorder() *MetricsRecorder {
	return &MetricsRecorder{}
}

// RecordOptimization records an optimization operation.
func (m *MetricsRecorder) RecordOptimization(variant string, duration time.Duration, success bool) {
	optimizationDuration.WithLabelValues(variant).Observe(duration.Seconds())
	if !success {
		optimizationErrors.WithLabelValues(variant).Inc()
	}
}

// RecordBasketSize records the size of a basket.
func (m *MetricsRecorder) RecordBasketSize(size int) {
	basketSize.Observe(float64(size))
}

// RecordStoreCount records the number of stores considered.
func (m *MetricsRecorder) RecordStoreCount(count int) {
	storeCount.Observe(float64(count))
}

// RecordSkippedItems records basket items that had no price record.
func (m *MetricsRecorder) RecordSkippedItems(count int) {
	skippedItems.Add(float64(count))
}

// RecordShoppingLists records the number of stores an optimized plan spans.
func (m *MetricsRecorder) RecordShoppingLists(count int) {
	shoppingLists.Observe(float64(count))
}

// RecordBaselineDuration records the duration of a baseline computation.
func (m *MetricsRecorder) RecordBaselineDuration(duration time.Duration) {
	baselineDuration.Observe(duration.Seconds())
}

// RecordQualifyingStores records how many stores carried the full basket.
func (m *MetricsRecorder) RecordQualifyingStores(count int) {
	qualifyingStores.Observe(float64(count))
}
