package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cafe"

// Metrics holds the business counters exported on /metrics.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	ordersPlaced  *prometheus.CounterVec
	orderFailures *prometheus.CounterVec
	points        *prometheus.CounterVec
	vouchers      *prometheus.CounterVec
}

// New registers the counters on reg
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ordersPlaced: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_placed_total",
			Help:      "Orders committed, by channel.",
		}, []string{"channel"}),
		orderFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_failures_total",
			Help:      "Orders rolled back, by error kind.",
		}, []string{"kind"}),
		points: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_total",
			Help:      "Loyalty points moved through the ledger, by entry type.",
		}, []string{"type"}),
		vouchers: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vouchers_total",
			Help:      "Voucher lifecycle events.",
		}, []string{"event"}),
	}
}

// OrderPlaced counts a committed order
func (m *Metrics) OrderPlaced(channel string) {
	if m == nil {
		return
	}
	m.ordersPlaced.WithLabelValues(channel).Inc()
}

// OrderFailed counts an order that was rolled back
func (m *Metrics) OrderFailed(kind string) {
	if m == nil {
		return
	}
	m.orderFailures.WithLabelValues(kind).Inc()
}

// Points adds n points under the given entry type (EARN or REDEEM)
func (m *Metrics) Points(txType string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.points.WithLabelValues(txType).Add(float64(n))
}

// Voucher counts a voucher event (claimed, redeemed)
func (m *Metrics) Voucher(event string) {
	if m == nil {
		return
	}
	m.vouchers.WithLabelValues(event).Inc()
}

// VouchersExpired counts vouchers an expiry run moved to EXPIRED
func (m *Metrics) VouchersExpired(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.vouchers.WithLabelValues("expired").Add(float64(n))
}
