package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics records request-level metadata for the API server.
type HTTPMetrics struct {
	duration *prometheus.HistogramVec
}

// NewHTTPMetrics registers the HTTP metrics on the provided registerer.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		return &HTTPMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
	reg.MustRegister(duration)
	return &HTTPMetrics{duration: duration}
}

// ObserveRequest records the duration for a handled request.
func (h *HTTPMetrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	if h == nil || h.duration == nil {
		return
	}
	h.duration.WithLabelValues(method, normalizeLabel(route), strconv.Itoa(status)).Observe(duration.Seconds())
}

// CheckoutMetrics records order placement outcomes.
type CheckoutMetrics struct {
	ordersPlaced   prometheus.Counter
	stockConflicts *prometheus.CounterVec
	orderItems     prometheus.Histogram
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	ordersPlaced := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Orders placed successfully.",
	})
	stockConflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_stock_conflicts_total",
		Help: "Checkouts rejected because a product ran out of stock.",
	}, []string{"stage"})
	orderItems := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_line_items",
		Help:    "Line item count per placed order.",
		Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
	})
	reg.MustRegister(ordersPlaced, stockConflicts, orderItems)
	return &CheckoutMetrics{
		ordersPlaced:   ordersPlaced,
		stockConflicts: stockConflicts,
		orderItems:     orderItems,
	}
}

// IncOrderPlaced increments the placed-order counter and records the line count.
func (c *CheckoutMetrics) IncOrderPlaced(lineItems int) {
	if c == nil || c.ordersPlaced == nil {
		return
	}
	c.ordersPlaced.Inc()
	c.orderItems.Observe(float64(lineItems))
}

// IncStockConflict increments the conflict counter for the given stage
// (precheck or decrement).
func (c *CheckoutMetrics) IncStockConflict(stage string) {
	if c == nil || c.stockConflicts == nil {
		return
	}
	c.stockConflicts.WithLabelValues(normalizeLabel(stage)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
