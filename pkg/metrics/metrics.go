package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Payment pipeline metrics
	PaymentsVerified   *prometheus.CounterVec
	PaymentAmount      *prometheus.HistogramVec
	SettlementLatency  prometheus.Histogram
	SettlementRollback prometheus.Counter

	// Stock ledger metrics
	StockDecrements    *prometheus.CounterVec
	StockLockWait      prometheus.Histogram
	LowStockItems      prometheus.Gauge

	// Notification metrics
	NotificationsSent   *prometheus.CounterVec
	NotificationsFailed *prometheus.CounterVec
}

// NewMetrics creates and registers all application metrics
func NewMetrics(namespace, subsystem string) *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer, namespace, subsystem)
}

// NewMetricsWith registers the metrics on reg. Tests use it with a
// fresh registry to avoid duplicate registration across cases.
func NewMetricsWith(reg prometheus.Registerer, namespace, subsystem string) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PaymentsVerified: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "payments_verified_total",
			Help:      "Total number of payment verifications by type and status",
		}, []string{"payment_type", "status"}),
		PaymentAmount: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "payment_amount",
			Help:      "Distribution of verified payment amounts",
			Buckets:   []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}, []string{"payment_type"}),
		SettlementLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "settlement_duration_seconds",
			Help:      "Time spent inside the payment settlement transaction",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}),
		SettlementRollback: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "settlement_rollbacks_total",
			Help:      "Total number of rolled back settlement transactions",
		}),
		StockDecrements: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "stock_decrements_total",
			Help:      "Total number of stock decrement attempts by outcome",
		}, []string{"outcome"}),
		StockLockWait: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "stock_lock_wait_seconds",
			Help:      "Time spent waiting on stock row locks",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
		LowStockItems: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "low_stock_items",
			Help:      "Current number of medicines at or below their low stock threshold",
		}),
		NotificationsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notifications_sent_total",
			Help:      "Total number of successfully dispatched notifications",
		}, []string{"kind"}),
		NotificationsFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notifications_failed_total",
			Help:      "Total number of failed notification attempts",
		}, []string{"kind"}),
	}
}
