// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// HTTP metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Order metrics
	FeesQuotedLamports prometheus.Counter
	RequestsCreated    prometheus.Counter
	OrdersTotal        *prometheus.CounterVec

	// Minting metrics
	StepDuration *prometheus.HistogramVec
	StepOutcomes *prometheus.CounterVec
	PinUploads   *prometheus.CounterVec

	// Solana metrics
	RPCCallLatency       *prometheus.HistogramVec
	RPCCallErrors        *prometheus.CounterVec
	ConfirmationDuration *prometheus.HistogramVec

	// Health metrics
	LastSuccessfulMint prometheus.Gauge
}

// NewMetrics creates a new Metrics instance registered with reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "token_minter"
	}
	factory := promauto.With(reg)

	return &Metrics{
		// HTTP metrics
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status",
		}, []string{"route", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 120},
		}, []string{"route"}),

		// Order metrics
		FeesQuotedLamports: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "fees_quoted_lamports_total",
			Help:      "Sum of fees quoted in fee transactions, in lamports",
		}),
		RequestsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "requests_created_total",
			Help:      "Total number of pending token requests stored",
		}),
		OrdersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "status_transitions_total",
			Help:      "Total number of order status transitions by status",
		}, []string{"status"}),

		// Minting metrics
		StepDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "minting",
			Name:      "step_duration_seconds",
			Help:      "Mint finalizer step duration in seconds",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 90},
		}, []string{"step"}),
		StepOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "minting",
			Name:      "steps_total",
			Help:      "Total number of mint finalizer steps by outcome",
		}, []string{"step", "outcome"}),
		PinUploads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "minting",
			Name:      "pin_uploads_total",
			Help:      "Total number of IPFS uploads by kind and outcome",
		}, []string{"kind", "outcome"}),

		// Solana metrics
		RPCCallLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_latency_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		RPCCallErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_errors_total",
			Help:      "Total number of failed Solana RPC calls",
		}, []string{"method"}),
		ConfirmationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "confirmation_duration_seconds",
			Help:      "Time from send to confirmation, by result",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 90},
		}, []string{"result"}),

		// Health metrics
		LastSuccessfulMint: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_mint_timestamp",
			Help:      "Unix timestamp of last successful mint",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", prometheus.DefaultRegisterer)

// RecordHTTPRequest records a served request.
func RecordHTTPRequest(route, status string, d time.Duration) {
	DefaultMetrics.HTTPRequests.WithLabelValues(route, status).Inc()
	DefaultMetrics.HTTPRequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// RecordRequestCreated records a stored pending request and its fee.
func RecordRequestCreated(feeLamports uint64) {
	DefaultMetrics.RequestsCreated.Inc()
	DefaultMetrics.FeesQuotedLamports.Add(float64(feeLamports))
}

// RecordOrderStatus records an order status transition.
func RecordOrderStatus(status string) {
	DefaultMetrics.OrdersTotal.WithLabelValues(status).Inc()
}

// RecordStep records one mint finalizer step.
func RecordStep(step, outcome string, d time.Duration) {
	DefaultMetrics.StepDuration.WithLabelValues(step).Observe(d.Seconds())
	DefaultMetrics.StepOutcomes.WithLabelValues(step, outcome).Inc()
}

// RecordPin records an IPFS upload.
func RecordPin(kind string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "failed"
	}
	DefaultMetrics.PinUploads.WithLabelValues(kind, outcome).Inc()
}

// RecordRPCCall records RPC call latency and failures. Its signature
// matches the RPC client's observer hook.
func RecordRPCCall(method string, d time.Duration, err error) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(d.Seconds())
	if err != nil {
		DefaultMetrics.RPCCallErrors.WithLabelValues(method).Inc()
	}
}

// RecordConfirmation records how long a transaction took to confirm.
func RecordConfirmation(result string, d time.Duration) {
	DefaultMetrics.ConfirmationDuration.WithLabelValues(result).Observe(d.Seconds())
}

// RecordMinted marks a successful mint.
func RecordMinted() {
	DefaultMetrics.LastSuccessfulMint.SetToCurrentTime()
}
