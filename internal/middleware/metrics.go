package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration tracks request latency by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"method", "path", "status"},
	)

	// OrdersSubmitted counts accepted orders by side.
	OrdersSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orderbook_orders_submitted_total",
			Help: "Total number of orders accepted by the book",
		},
		[]string{"side"},
	)

	// OrdersRejected counts submissions refused at validation.
	OrdersRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orderbook_orders_rejected_total",
			Help: "Total number of rejected submissions",
		},
	)

	// OrdersCancelled counts successful cancels.
	OrdersCancelled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orderbook_orders_cancelled_total",
			Help: "Total number of cancelled orders",
		},
	)

	// OrdersModified counts successful modifies.
	OrdersModified = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orderbook_orders_modified_total",
			Help: "Total number of modified orders",
		},
	)

	// FillsTotal counts executed fills.
	FillsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orderbook_fills_total",
			Help: "Total number of fills executed",
		},
	)

	// VolumeTraded accumulates quantity traded across all fills.
	VolumeTraded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orderbook_volume_traded_total",
			Help: "Total quantity traded across all fills",
		},
	)

	// LiveOrders tracks the number of currently resting orders.
	LiveOrders = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "orderbook_live_orders",
			Help: "Number of orders currently resting in the book",
		},
	)

	// BookDepth tracks price levels per side.
	BookDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "orderbook_depth_levels",
			Help: "Current number of price levels",
		},
		[]string{"side"},
	)

	// SequencerInboundSeq tracks the current inbound sequence number.
	SequencerInboundSeq = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "orderbook_sequencer_inbound_seq",
			Help: "Current inbound sequence number",
		},
	)

	// SequencerOutboundSeq tracks the current outbound sequence number.
	SequencerOutboundSeq = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "orderbook_sequencer_outbound_seq",
			Help: "Current outbound sequence number",
		},
	)
)

// PrometheusMiddleware records request metrics.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start).Seconds()

		HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(c.Writer.Status()),
		).Observe(duration)
	}
}
