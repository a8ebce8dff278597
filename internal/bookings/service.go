package bookings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alphasup/alphasup-backend/internal/customers"
	"github.com/alphasup/alphasup-backend/pkg/db/models"
	"github.com/alphasup/alphasup-backend/pkg/enums"
	pkgerrors "github.com/alphasup/alphasup-backend/pkg/errors"
)

// Service defines the booking flow that feeds the payment lifecycle.
type Service interface {
	Create(ctx context.Context, params CreateParams) (*models.Booking, error)
	Get(ctx context.Context, params GetParams) (*models.Booking, error)
	Quote(ctx context.Context, params QuoteParams) (*QuoteResult, error)
}

// CreateParams configures booking creation.
type CreateParams struct {
	CustomerID        uuid.UUID
	ServiceID         uuid.UUID
	ServiceName       string
	Participants      int
	ScheduledAt       time.Time
	BaseAmount        decimal.Decimal
	Currency          string
	PaymentType       enums.PaymentType
	DepositPercentage *int
}

// GetParams identifies a booking read plus the requesting actor.
type GetParams struct {
	BookingID  uuid.UUID
	CustomerID uuid.UUID
	Role       enums.ActorRole
}

// QuoteParams configures a price quote.
type QuoteParams struct {
	BaseAmount        decimal.Decimal
	PaymentType       enums.PaymentType
	DepositPercentage *int
}

// QuoteResult is the price breakdown returned to the client.
type QuoteResult struct {
	BaseAmount    decimal.Decimal `json:"base_amount"`
	Fees          decimal.Decimal `json:"fees"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	DepositAmount decimal.Decimal `json:"deposit_amount"`
	Remaining     decimal.Decimal `json:"remaining_amount"`
}

// Pricer performs the money math for booking quotes; *payments.Pricer
// satisfies it.
type Pricer interface {
	ProcessingFee(base decimal.Decimal) decimal.Decimal
	TotalWithFees(base decimal.Decimal) decimal.Decimal
	DepositAmount(total decimal.Decimal, pct *int) decimal.Decimal
	RemainingAmount(total, deposit decimal.Decimal) decimal.Decimal
}

type service struct {
	repo      Repository
	customers customers.Repository
	pricer    Pricer
	currency  string
}

// ServiceParams wires booking service dependencies.
type ServiceParams struct {
	Repo            Repository
	CustomerRepo    customers.Repository
	Pricer          Pricer
	DefaultCurrency string
}

// NewService wires booking dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "booking repo required")
	}
	if params.CustomerRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "customer repo required")
	}
	if params.Pricer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "pricer required")
	}
	currency := params.DefaultCurrency
	if currency == "" {
		currency = "usd"
	}
	return &service{
		repo:      params.Repo,
		customers: params.CustomerRepo,
		pricer:    params.Pricer,
		currency:  currency,
	}, nil
}

func (s *service) Create(ctx context.Context, params CreateParams) (*models.Booking, error) {
	if params.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if params.ServiceID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service id required")
	}
	if params.Participants <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "participants must be positive")
	}
	if !params.BaseAmount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if params.ScheduledAt.Before(time.Now()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "scheduled time must be in the future")
	}
	paymentType := params.PaymentType
	if paymentType == "" {
		paymentType = enums.PaymentTypeFull
	}
	if !paymentType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment type")
	}
	if params.DepositPercentage != nil && (*params.DepositPercentage < 1 || *params.DepositPercentage > 100) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deposit percentage must be between 1 and 100")
	}

	customer, err := s.customers.FindByID(ctx, params.CustomerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	if customer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}

	total := s.pricer.TotalWithFees(params.BaseAmount)
	currency := params.Currency
	if currency == "" {
		currency = s.currency
	}

	booking := &models.Booking{
		ServiceID:       params.ServiceID,
		ServiceName:     params.ServiceName,
		CustomerID:      customer.ID,
		CustomerName:    customer.Name,
		CustomerEmail:   customer.Email,
		CustomerPhone:   customer.Phone,
		Participants:    params.Participants,
		ScheduledAt:     params.ScheduledAt,
		TotalAmount:     total,
		Currency:        currency,
		Status:          enums.BookingStatusPendingPayment,
		PaymentType:     paymentType,
		PaidAmount:      decimal.Zero,
		RemainingAmount: total,
	}
	if paymentType == enums.PaymentTypeDeposit {
		due := params.ScheduledAt
		booking.PaymentDueAt = &due
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create booking")
	}
	return booking, nil
}

func (s *service) Get(ctx context.Context, params GetParams) (*models.Booking, error) {
	if params.BookingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking id required")
	}

	booking, err := s.repo.FindByID(ctx, params.BookingID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
	}
	if booking == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
	}
	if params.Role != enums.ActorRoleAdmin && booking.CustomerID != params.CustomerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not allowed to view this booking")
	}
	return booking, nil
}

func (s *service) Quote(ctx context.Context, params QuoteParams) (*QuoteResult, error) {
	if params.BaseAmount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be non-negative")
	}
	if params.DepositPercentage != nil && (*params.DepositPercentage < 1 || *params.DepositPercentage > 100) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deposit percentage must be between 1 and 100")
	}

	fees := s.pricer.ProcessingFee(params.BaseAmount)
	total := params.BaseAmount.Add(fees)

	deposit := total
	if params.PaymentType == enums.PaymentTypeDeposit {
		deposit = s.pricer.DepositAmount(total, params.DepositPercentage)
	}

	return &QuoteResult{
		BaseAmount:    params.BaseAmount,
		Fees:          fees,
		TotalAmount:   total,
		DepositAmount: deposit,
		Remaining:     s.pricer.RemainingAmount(total, deposit),
	}, nil
}
