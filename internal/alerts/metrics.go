package alerts

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// checkDuration tracks how long an alert check takes.
	checkDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "alerts_check_duration_seconds",
		Help:    "Time taken to evaluate armed price alerts",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})

	// checksTotal counts check runs by outcome.
	checksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alerts_checks_total",
		Help: "Total number of alert checks by result",
	}, []string{"result"}) // result: completed, skipped, failed

	triggeredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "alerts_triggered_total",
		Help: "Total number of price alerts triggered",
	})

	armedAlerts = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "alerts_armed",
		Help: "Number of armed alerts at the last check",
	})

	// operationsTotal counts alert mutations from the API.
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alerts_operations_total",
		Help: "Total number of alert operations by type",
	}, []string{"operation"})
)

// MetricsRecorder provides methods to record alert metrics.
type MetricsRecorder struct{}

// NewMetricsRecorder creates a new metrics recorder.
func NewMetricsRecorder() *MetricsRecorder {
	return &MetricsRecorder{}
}

// RecordCheck records the outcome of a check run.
func (m *MetricsRecorder) RecordCheck(result string, duration time.Duration, triggered int) {
	checksTotal.WithLabelValues(result).Inc()
	if result == "skipped" {
		return
	}
	checkDuration.Observe(duration.Seconds())
	triggeredTotal.Add(float64(triggered))
}

// SetArmed records the number of armed alerts.
func (m *MetricsRecorder) SetArmed(count int) {
	armedAlerts.Set(float64(count))
}

// RecordOperation records a create, update or delete.
func (m *MetricsRecorder) RecordOperation(op string) {
	operationsTotal.WithLabelValues(op).Inc()
}
