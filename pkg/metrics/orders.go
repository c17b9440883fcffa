package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// CheckoutMetrics counts placed orders and checkout rejections.
type CheckoutMetrics struct {
	placed   prometheus.Counter
	value    prometheus.Histogram
	rejected *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	placed := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_placed_total",
		Help:      "Orders created by checkout.",
	})
	value := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "order_value",
		Help:      "Order totals in store currency.",
		Buckets:   []float64{25, 50, 100, 200, 400, 800},
	})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkout_rejected_total",
		Help:      "Checkout attempts that did not produce an order, by error code.",
	}, []string{"code"})
	reg.MustRegister(placed, value, rejected)
	return &CheckoutMetrics{placed: placed, value: value, rejected: rejected}
}

func (c *CheckoutMetrics) OrderPlaced(total decimal.Decimal) {
	if c == nil || c.placed == nil {
		return
	}
	c.placed.Inc()
	c.value.Observe(total.InexactFloat64())
}

func (c *CheckoutMetrics) Rejected(code string) {
	if c == nil || c.rejected == nil {
		return
	}
	c.rejected.WithLabelValues(normalizeLabel(code)).Inc()
}

// NotificationMetrics counts confirmation email outcomes per transport.
type NotificationMetrics struct {
	sent   *prometheus.CounterVec
	failed *prometheus.CounterVec
}

// NewNotificationMetrics registers the notification metrics on the provided registerer.
func NewNotificationMetrics(reg prometheus.Registerer) *NotificationMetrics {
	if reg == nil {
		return &NotificationMetrics{}
	}
	sent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_sent_total",
		Help:      "Notifications handed to a transport.",
	}, []string{"transport"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_failed_total",
		Help:      "Notifications that could not be delivered.",
	}, []string{"transport"})
	reg.MustRegister(sent, failed)
	return &NotificationMetrics{sent: sent, failed: failed}
}

func (n *NotificationMetrics) Sent(transport string) {
	if n == nil || n.sent == nil {
		return
	}
	n.sent.WithLabelValues(normalizeLabel(transport)).Inc()
}

func (n *NotificationMetrics) Failed(transport string) {
	if n == nil || n.failed == nil {
		return
	}
	n.failed.WithLabelValues(normalizeLabel(transport)).Inc()
}
