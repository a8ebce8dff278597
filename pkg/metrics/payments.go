package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PaymentMetrics records webhook and refund outcomes.
type PaymentMetrics struct {
	webhookDuration *prometheus.HistogramVec
	webhookEvents   *prometheus.CounterVec
	webhookFailures *prometheus.CounterVec
	refundsIssued   *prometheus.CounterVec
	disputes        prometheus.Counter
}

// NewPaymentMetrics registers the payment metrics on the provided registerer.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	if reg == nil {
		return &PaymentMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "webhook_event_duration_seconds",
		Help:    "Duration of webhook event processing in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"event_type"})
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_events_processed",
		Help: "Webhook events processed by type.",
	}, []string{"event_type"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_events_failed",
		Help: "Webhook events whose handler returned an error.",
	}, []string{"event_type"})
	refunds := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "refunds_issued",
		Help: "Refunds issued by reason.",
	}, []string{"reason"})
	disputes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "disputes_received",
		Help: "Charge disputes received via webhook.",
	})
	reg.MustRegister(duration, events, failures, refunds, disputes)
	return &PaymentMetrics{
		webhookDuration: duration,
		webhookEvents:   events,
		webhookFailures: failures,
		refundsIssued:   refunds,
		disputes:        disputes,
	}
}

// ObserveWebhookDuration records processing time for the given event type.
func (p *PaymentMetrics) ObserveWebhookDuration(eventType string, duration time.Duration) {
	if p == nil || p.webhookDuration == nil {
		return
	}
	p.webhookDuration.WithLabelValues(normalizeLabel(eventType)).Observe(duration.Seconds())
}

// IncWebhookProcessed increments the processed counter for the event type.
func (p *PaymentMetrics) IncWebhookProcessed(eventType string) {
	if p == nil || p.webhookEvents == nil {
		return
	}
	p.webhookEvents.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncWebhookFailed increments the failure counter for the event type.
func (p *PaymentMetrics) IncWebhookFailed(eventType string) {
	if p == nil || p.webhookFailures == nil {
		return
	}
	p.webhookFailures.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncRefundIssued increments the refund counter for the given reason.
func (p *PaymentMetrics) IncRefundIssued(reason string) {
	if p == nil || p.refundsIssued == nil {
		return
	}
	p.refundsIssued.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncDispute increments the dispute counter.
func (p *PaymentMetrics) IncDispute() {
	if p == nil || p.disputes == nil {
		return
	}
	p.disputes.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
