package payments

import (
	"github.com/shopspring/decimal"

	"github.com/alphasup/alphasup-backend/pkg/config"
	pkgerrors "github.com/alphasup/alphasup-backend/pkg/errors"
)

var oneHundred = decimal.NewFromInt(100)

// Pricer performs all money math for the booking payment flow. Amounts are
// decimal dollars with two fractional digits; the gateway speaks integer
// minor units, so conversions happen at the gateway boundary only.
type Pricer struct {
	processingFeePct decimal.Decimal
	fixedFee         decimal.Decimal
	defaultDeposit   decimal.Decimal
}

// NewPricer builds a Pricer from the payments configuration.
func NewPricer(cfg config.PaymentsConfig) (*Pricer, error) {
	pct, err := decimal.NewFromString(cfg.ProcessingFeePercent)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "invalid processing fee percent")
	}
	if pct.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "processing fee percent must be non-negative")
	}
	if cfg.FixedFeeCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "fixed fee must be non-negative")
	}
	if cfg.DefaultDepositPct <= 0 || cfg.DefaultDepositPct > 100 {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "default deposit percent must be in (0, 100]")
	}
	return &Pricer{
		processingFeePct: pct,
		fixedFee:         decimal.NewFromInt(cfg.FixedFeeCents).Shift(-2),
		defaultDeposit:   decimal.NewFromInt(int64(cfg.DefaultDepositPct)),
	}, nil
}

// ProcessingFee returns the card processing fee for a base amount:
// base × fee% + fixed fee, rounded half away from zero to cents.
func (p *Pricer) ProcessingFee(base decimal.Decimal) decimal.Decimal {
	fee := base.Mul(p.processingFeePct).Div(oneHundred).Add(p.fixedFee)
	return fee.Round(2)
}

// TotalWithFees returns the charge amount a customer pays for a base amount.
func (p *Pricer) TotalWithFees(base decimal.Decimal) decimal.Decimal {
	return base.Add(p.ProcessingFee(base)).Round(2)
}

// DepositAmount returns the deposit owed for a booking total. A nil pct uses
// the configured default.
func (p *Pricer) DepositAmount(total decimal.Decimal, pct *int) decimal.Decimal {
	depositPct := p.defaultDeposit
	if pct != nil {
		depositPct = decimal.NewFromInt(int64(*pct))
	}
	return total.Mul(depositPct).Div(oneHundred).Round(2)
}

// RemainingAmount returns total minus deposit, floored at zero so a rounded-up
// deposit can never produce a negative balance.
func (p *Pricer) RemainingAmount(total, deposit decimal.Decimal) decimal.Decimal {
	remaining := total.Sub(deposit)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining.Round(2)
}

// ToGatewayAmount converts decimal dollars into the gateway's integer minor
// units.
func ToGatewayAmount(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// FromGatewayAmount converts gateway minor units back into decimal dollars.
func FromGatewayAmount(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Shift(-2)
}
