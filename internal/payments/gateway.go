package payments

import (
	"context"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/charge"
	"github.com/stripe/stripe-go/v84/customer"
	"github.com/stripe/stripe-go/v84/paymentintent"
	"github.com/stripe/stripe-go/v84/refund"

	pkgstripe "github.com/alphasup/alphasup-backend/pkg/stripe"
)

// Gateway exposes the subset of Stripe operations the payment services need.
type Gateway interface {
	CreateCustomer(ctx context.Context, params *stripe.CustomerParams) (*stripe.Customer, error)
	CreatePaymentIntent(ctx context.Context, params *stripe.PaymentIntentParams, idempotencyKey string) (*stripe.PaymentIntent, error)
	RetrievePaymentIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error)
	GetCharge(ctx context.Context, id string) (*stripe.Charge, error)
	CreateRefund(ctx context.Context, params *stripe.RefundParams, idempotencyKey string) (*stripe.Refund, error)
}

type stripeGateway struct{}

// NewGateway wraps the provided Stripe client so the payment services can be
// tested against a fake.
func NewGateway(api *pkgstripe.Client) Gateway {
	if api == nil {
		return nil
	}
	return &stripeGateway{}
}

func (g *stripeGateway) CreateCustomer(ctx context.Context, params *stripe.CustomerParams) (*stripe.Customer, error) {
	if params != nil {
		params.Context = ctx
	}
	return customer.New(params)
}

func (g *stripeGateway) CreatePaymentIntent(ctx context.Context, params *stripe.PaymentIntentParams, idempotencyKey string) (*stripe.PaymentIntent, error) {
	if params != nil {
		params.Context = ctx
		if idempotencyKey != "" {
			params.IdempotencyKey = stripe.String(idempotencyKey)
		}
	}
	return paymentintent.New(params)
}

func (g *stripeGateway) RetrievePaymentIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	return paymentintent.Get(id, params)
}

func (g *stripeGateway) GetCharge(ctx context.Context, id string) (*stripe.Charge, error) {
	params := &stripe.ChargeParams{}
	params.Context = ctx
	return charge.Get(id, params)
}

func (g *stripeGateway) CreateRefund(ctx context.Context, params *stripe.RefundParams, idempotencyKey string) (*stripe.Refund, error) {
	if params != nil {
		params.Context = ctx
		if idempotencyKey != "" {
			params.IdempotencyKey = stripe.String(idempotencyKey)
		}
	}
	return refund.New(params)
}
