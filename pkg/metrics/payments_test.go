package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaymentMetricsRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPaymentMetrics(reg)
	require.NotNil(t, m)

	m.IncWebhookProcessed("payment_intent.succeeded")
	m.IncWebhookFailed("payment_intent.succeeded")
	m.IncRefundIssued("weather_cancellation")
	m.IncDispute()
	m.ObserveWebhookDuration("payment_intent.succeeded", 25*time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, fam := range families {
		names[fam.GetName()] = true
	}
	assert.True(t, names["webhook_events_processed"])
	assert.True(t, names["webhook_events_failed"])
	assert.True(t, names["refunds_issued"])
	assert.True(t, names["disputes_received"])
	assert.True(t, names["webhook_event_duration_seconds"])
}

func TestPaymentMetricsNilSafe(t *testing.T) {
	var m *PaymentMetrics
	m.IncWebhookProcessed("x")
	m.IncWebhookFailed("x")
	m.IncRefundIssued("x")
	m.IncDispute()
	m.ObserveWebhookDuration("x", time.Second)

	empty := NewPaymentMetrics(nil)
	empty.IncWebhookProcessed("")
	empty.IncDispute()
}
