package customers

import (
	"context"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	pkgerrors "github.com/alphasup/alphasup-backend/pkg/errors"
)

type gatewayCustomerCreator interface {
	CreateCustomer(ctx context.Context, params *stripe.CustomerParams) (*stripe.Customer, error)
}

// Service resolves local customers to gateway customers.
type Service interface {
	ResolveGatewayCustomer(ctx context.Context, customerID uuid.UUID) (string, error)
}

type service struct {
	repo    Repository
	gateway gatewayCustomerCreator
}

// ServiceParams wires customer service dependencies.
type ServiceParams struct {
	Repo    Repository
	Gateway gatewayCustomerCreator
}

// NewService wires customer dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "customer repo required")
	}
	if params.Gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "gateway client required")
	}
	return &service{repo: params.Repo, gateway: params.Gateway}, nil
}

// ResolveGatewayCustomer returns the gateway customer ID for a local customer,
// creating the gateway record on first use and persisting the mapping.
func (s *service) ResolveGatewayCustomer(ctx context.Context, customerID uuid.UUID) (string, error) {
	if customerID == uuid.Nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}

	customer, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	if customer == nil {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}
	if customer.StripeCustomerID != "" {
		return customer.StripeCustomerID, nil
	}

	params := &stripe.CustomerParams{
		Name:  stripe.String(customer.Name),
		Email: stripe.String(customer.Email),
	}
	if customer.Phone != "" {
		params.Phone = stripe.String(customer.Phone)
	}
	params.AddMetadata("customer_id", customer.ID.String())

	created, err := s.gateway.CreateCustomer(ctx, params)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create gateway customer")
	}

	customer.StripeCustomerID = created.ID
	if err := s.repo.Update(ctx, customer); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist gateway customer id")
	}
	return created.ID, nil
}
