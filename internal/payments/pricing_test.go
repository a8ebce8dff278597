package payments

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphasup/alphasup-backend/pkg/config"
)

func testPricer(t *testing.T) *Pricer {
	t.Helper()
	p, err := NewPricer(config.PaymentsConfig{
		ProcessingFeePercent: "2.9",
		FixedFeeCents:        30,
		DefaultDepositPct:    30,
	})
	require.NoError(t, err)
	return p
}

func TestProcessingFee(t *testing.T) {
	p := testPricer(t)

	cases := []struct {
		name string
		base string
		want string
	}{
		{"hundred dollars", "100.00", "3.20"},
		{"zero", "0.00", "0.30"},
		{"rounds half up", "50.00", "1.75"},
		{"odd cents", "79.99", "2.62"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			base := decimal.RequireFromString(tc.base)
			assert.Equal(t, tc.want, p.ProcessingFee(base).StringFixed(2))
		})
	}
}

func TestTotalWithFees(t *testing.T) {
	p := testPricer(t)
	total := p.TotalWithFees(decimal.RequireFromString("100.00"))
	assert.Equal(t, "103.20", total.StringFixed(2))
}

func TestDepositAmount(t *testing.T) {
	p := testPricer(t)
	total := decimal.RequireFromString("150.00")

	deposit := p.DepositAmount(total, nil)
	assert.Equal(t, "45.00", deposit.StringFixed(2))

	half := 50
	deposit = p.DepositAmount(total, &half)
	assert.Equal(t, "75.00", deposit.StringFixed(2))
}

func TestDepositPlusRemainingEqualsTotal(t *testing.T) {
	p := testPricer(t)

	totals := []string{"150.00", "99.99", "0.01", "1234.56", "33.33"}
	for _, raw := range totals {
		total := decimal.RequireFromString(raw)
		deposit := p.DepositAmount(total, nil)
		remaining := p.RemainingAmount(total, deposit)
		assert.True(t, deposit.Add(remaining).Equal(total), "total %s split %s + %s", raw, deposit, remaining)
		assert.False(t, remaining.IsNegative())
	}
}

func TestRemainingAmountNeverNegative(t *testing.T) {
	p := testPricer(t)
	total := decimal.RequireFromString("10.00")
	deposit := decimal.RequireFromString("10.01")
	assert.True(t, p.RemainingAmount(total, deposit).IsZero())
}

func TestGatewayAmountRoundTrip(t *testing.T) {
	amounts := []string{"0.00", "0.01", "103.20", "9999.99"}
	for _, raw := range amounts {
		amount := decimal.RequireFromString(raw)
		cents := ToGatewayAmount(amount)
		assert.True(t, FromGatewayAmount(cents).Equal(amount), "round trip %s", raw)
	}

	assert.Equal(t, int64(10320), ToGatewayAmount(decimal.RequireFromString("103.20")))
	assert.Equal(t, "103.20", FromGatewayAmount(10320).StringFixed(2))
}

func TestNewPricerRejectsBadConfig(t *testing.T) {
	_, err := NewPricer(config.PaymentsConfig{ProcessingFeePercent: "abc", FixedFeeCents: 30, DefaultDepositPct: 30})
	assert.Error(t, err)

	_, err = NewPricer(config.PaymentsConfig{ProcessingFeePercent: "2.9", FixedFeeCents: -1, DefaultDepositPct: 30})
	assert.Error(t, err)

	_, err = NewPricer(config.PaymentsConfig{ProcessingFeePercent: "2.9", FixedFeeCents: 30, DefaultDepositPct: 0})
	assert.Error(t, err)
}
