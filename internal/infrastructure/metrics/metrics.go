package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	GatewayRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payment_gateway_request_duration_seconds",
			Help:    "Latency of outbound payment gateway calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "operation", "outcome"},
	)

	GatewayErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_gateway_errors_total",
			Help: "Gateway failures by error kind",
		},
		[]string{"provider", "kind"},
	)

	OrderTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_order_transitions_total",
			Help: "Payment order state transitions",
		},
		[]string{"provider", "method", "status"},
	)

	ActiveOrders = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "payment_orders_active",
			Help: "Orders currently owned by a live actor",
		},
	)

	PersistDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "payment_order_persist_dropped_total",
			Help: "Persist requests dropped because the buffer was full",
		},
	)

	PersistFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "payment_order_persist_failures_total",
			Help: "Persist requests the repository rejected",
		},
	)

	registerOnce sync.Once
)

// Register adds every collector to the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(GatewayRequestDuration)
		prometheus.MustRegister(GatewayErrors)
		prometheus.MustRegister(OrderTransitions)
		prometheus.MustRegister(ActiveOrders)
		prometheus.MustRegister(PersistDropped)
		prometheus.MustRegister(PersistFailures)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}
