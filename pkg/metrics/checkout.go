package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records outcomes and timings of the transaction pipeline.
type CheckoutMetrics struct {
	commitDuration *prometheus.HistogramVec
	processed      *prometheus.CounterVec
	rejected       *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	commitDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_commit_duration_seconds",
		Help:    "Duration of the atomic checkout commit in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"payment_method"})
	processed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_processed_total",
		Help: "Successfully committed checkout transactions.",
	}, []string{"payment_method"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_rejected_total",
		Help: "Checkouts rejected before or during commit.",
	}, []string{"stage"})
	reg.MustRegister(commitDuration, processed, rejected)
	return &CheckoutMetrics{
		commitDuration: commitDuration,
		processed:      processed,
		rejected:       rejected,
	}
}

// ObserveCommit records the commit duration for the payment method.
func (c *CheckoutMetrics) ObserveCommit(method string, duration time.Duration) {
	if c == nil || c.commitDuration == nil {
		return
	}
	c.commitDuration.WithLabelValues(normalizeLabel(method)).Observe(duration.Seconds())
}

// IncProcessed increments the processed counter for the payment method.
func (c *CheckoutMetrics) IncProcessed(method string) {
	if c == nil || c.processed == nil {
		return
	}
	c.processed.WithLabelValues(normalizeLabel(method)).Inc()
}

// IncRejected increments the rejection counter for the pipeline stage.
func (c *CheckoutMetrics) IncRejected(stage string) {
	if c == nil || c.rejected == nil {
		return
	}
	c.rejected.WithLabelValues(normalizeLabel(stage)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
