package ingestion

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// filesLoaded counts parsed snapshot files by kind and result.
	filesLoaded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingestion_files_total",
		Help: "Total number of snapshot files parsed by kind and result",
	}, []string{"kind", "result"})

	rowsLoaded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingestion_rows_total",
		Help: "Total number of snapshot rows by kind and result",
	}, []string{"kind", "result"})

	loadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ingestion_load_duration_seconds",
		Help:    "Time taken to load the data directory",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
	})
)

// MetricsRecorder provides methods to record ingestion metrics.
type MetricsRecorder struct{}

// NewMetricsRecorder creates a new metrics recorder.
func NewMetricsRecorder() *MetricsRecorder {
	return &MetricsRecorder{}
}

// RecordFile records a parsed file.
func (m *MetricsRecorder) RecordFile(kind string, success bool) {
	result := "ok"
	if !success {
		result = "error"
	}
	filesLoaded.WithLabelValues(kind, result).Inc()
}

// RecordRows records accepted and rejected rows of one file.
func (m *MetricsRecorder) RecordRows(kind string, valid, invalid int) {
	rowsLoaded.WithLabelValues(kind, "valid").Add(float64(valid))
	rowsLoaded.WithLabelValues(kind, "invalid").Add(float64(invalid))
}

// RecordLoad records a full directory load.
func (m *MetricsRecorder) RecordLoad(duration time.Duration) {
	loadDuration.Observe(duration.Seconds())
}
