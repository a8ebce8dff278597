package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/alphasup/alphasup-backend/internal/bookings"
	"github.com/alphasup/alphasup-backend/internal/customers"
	"github.com/alphasup/alphasup-backend/internal/notifications"
	"github.com/alphasup/alphasup-backend/pkg/db/models"
	"github.com/alphasup/alphasup-backend/pkg/enums"
	pkgerrors "github.com/alphasup/alphasup-backend/pkg/errors"
	"github.com/alphasup/alphasup-backend/pkg/logger"
	"github.com/alphasup/alphasup-backend/pkg/metrics"
	"github.com/alphasup/alphasup-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes the payment intent and refund orchestration flows.
type Service interface {
	CreateIntent(ctx context.Context, params CreateIntentParams) (*CreateIntentResult, error)
	CreateRefund(ctx context.Context, params CreateRefundParams) (*models.Refund, error)
	GetPayment(ctx context.Context, params GetPaymentParams) (*models.Payment, error)
	ListPaymentsByBooking(ctx context.Context, params ListPaymentsParams) (*ListPaymentsResult, error)
}

// CreateIntentParams configures gateway intent creation for a booking.
type CreateIntentParams struct {
	BookingID         uuid.UUID
	CustomerID        uuid.UUID
	Amount            decimal.Decimal
	DepositOnly       bool
	DepositPercentage *int
	Currency          string
	SavePaymentMethod bool
}

// CreateIntentResult carries the client-usable intent credentials.
type CreateIntentResult struct {
	PaymentIntentID string          `json:"payment_intent_id"`
	ClientSecret    string          `json:"client_secret"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	ExpiresAt       time.Time       `json:"expires_at"`
}

// CreateRefundParams configures refund issuance against a payment.
type CreateRefundParams struct {
	PaymentID   uuid.UUID
	Amount      decimal.Decimal
	Reason      enums.RefundReason
	RequestedBy uuid.UUID
	AdminNotes  *string
}

// GetPaymentParams identifies a payment read plus the requesting actor.
type GetPaymentParams struct {
	PaymentID  uuid.UUID
	CustomerID uuid.UUID
	Role       enums.ActorRole
}

// ListPaymentsParams configures a booking-scoped payment listing.
type ListPaymentsParams struct {
	BookingID  uuid.UUID
	CustomerID uuid.UUID
	Role       enums.ActorRole
	Limit      int
	Cursor     string
}

// ListPaymentsResult wraps returned payments and the cursor for the next page.
type ListPaymentsResult struct {
	Items  []models.Payment `json:"items"`
	Cursor string           `json:"cursor"`
}

// ServiceParams wires payment service dependencies.
type ServiceParams struct {
	Repo              Repository
	BookingRepo       bookings.Repository
	Customers         customers.Service
	Gateway           Gateway
	Notifications     notifications.Service
	Pricer            *Pricer
	TransactionRunner txRunner
	Logger            *logger.Logger
	Metrics           *metrics.PaymentMetrics
	DefaultCurrency   string
	IntentTTL         time.Duration
}

type service struct {
	repo          Repository
	bookingRepo   bookings.Repository
	customers     customers.Service
	gateway       Gateway
	notifications notifications.Service
	pricer        *Pricer
	txRunner      txRunner
	logg          *logger.Logger
	metrics       *metrics.PaymentMetrics
	currency      string
	intentTTL     time.Duration
}

// NewService wires payment dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payment repo required")
	}
	if params.BookingRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "booking repo required")
	}
	if params.Customers == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "customer service required")
	}
	if params.Gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "gateway client required")
	}
	if params.Notifications == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "notifications service required")
	}
	if params.Pricer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "pricer required")
	}
	if params.TransactionRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	currency := params.DefaultCurrency
	if currency == "" {
		currency = "usd"
	}
	ttl := params.IntentTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &service{
		repo:          params.Repo,
		bookingRepo:   params.BookingRepo,
		customers:     params.Customers,
		gateway:       params.Gateway,
		notifications: params.Notifications,
		pricer:        params.Pricer,
		txRunner:      params.TransactionRunner,
		logg:          params.Logger,
		metrics:       params.Metrics,
		currency:      currency,
		intentTTL:     ttl,
	}, nil
}

// CreateIntent produces a gateway payment intent plus a durable local record.
// The gateway call carries a deterministic idempotency key so client retries
// never double-charge; a gateway failure leaves no local state behind.
func (s *service) CreateIntent(ctx context.Context, params CreateIntentParams) (*CreateIntentResult, error) {
	if params.BookingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking id required")
	}
	if params.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if !params.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if params.DepositPercentage != nil && (*params.DepositPercentage < 1 || *params.DepositPercentage > 100) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deposit percentage must be between 1 and 100")
	}

	booking, err := s.bookingRepo.FindByID(ctx, params.BookingID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
	}
	if booking == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
	}
	if booking.CustomerID != params.CustomerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "booking belongs to another customer")
	}

	finalAmount := params.Amount
	if params.DepositOnly {
		finalAmount = s.pricer.DepositAmount(params.Amount, params.DepositPercentage)
	}
	fees := s.pricer.ProcessingFee(finalAmount)
	total := finalAmount.Add(fees)

	currency := params.Currency
	if currency == "" {
		currency = s.currency
	}

	gatewayCustomerID, err := s.customers.ResolveGatewayCustomer(ctx, params.CustomerID)
	if err != nil {
		return nil, err
	}

	intentParams := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(ToGatewayAmount(total)),
		Currency:           stripe.String(currency),
		Customer:           stripe.String(gatewayCustomerID),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		CaptureMethod:      stripe.String(string(stripe.PaymentIntentCaptureMethodAutomatic)),
	}
	if params.SavePaymentMethod {
		intentParams.SetupFutureUsage = stripe.String(string(stripe.PaymentIntentSetupFutureUsageOffSession))
	}
	intentParams.AddMetadata("booking_id", params.BookingID.String())
	intentParams.AddMetadata("customer_id", params.CustomerID.String())
	intentParams.AddMetadata("original_amount", params.Amount.StringFixed(2))
	intentParams.AddMetadata("deposit_only", fmt.Sprintf("%t", params.DepositOnly))
	intentParams.AddMetadata("fees", fees.StringFixed(2))

	idempotencyKey := fmt.Sprintf("%s:create-intent", params.BookingID)
	intent, err := s.gateway.CreatePaymentIntent(ctx, intentParams, idempotencyKey)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "intent creation failed")
	}

	expiresAt := time.Now().UTC().Add(s.intentTTL)
	record := &models.PaymentIntent{
		ID:                 intent.ID,
		BookingID:          params.BookingID,
		CustomerID:         params.CustomerID,
		AmountCents:        intent.Amount,
		Currency:           currency,
		Status:             intentStatusFromGateway(intent.Status),
		ClientSecret:       intent.ClientSecret,
		PaymentMethodTypes: "card",
		DepositOnly:        params.DepositOnly,
		ExpiresAt:          expiresAt,
	}
	if err := s.repo.CreateIntent(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist payment intent")
	}

	return &CreateIntentResult{
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		Amount:          total,
		Currency:        currency,
		ExpiresAt:       expiresAt,
	}, nil
}

// CreateRefund issues a refund against a captured payment. The refundable
// floor is validated before the gateway call and re-validated inside the
// transaction, so concurrent refunds can never push the balance negative.
func (s *service) CreateRefund(ctx context.Context, params CreateRefundParams) (*models.Refund, error) {
	if params.PaymentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment id required")
	}
	if !params.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund amount must be positive")
	}
	if !params.Reason.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid refund reason")
	}
	if params.RequestedBy == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "requester id required")
	}

	payment, err := s.repo.FindPaymentByID(ctx, params.PaymentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
	}
	if payment == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
	}
	if payment.Status != enums.PaymentStatusSucceeded && payment.Status != enums.PaymentStatusPartiallyRefunded {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment is not refundable")
	}
	if params.Amount.GreaterThan(payment.RefundableAmount) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund amount exceeds refundable balance").
			WithDetails(map[string]any{"refundable_amount": payment.RefundableAmount.StringFixed(2)})
	}

	refundParams := &stripe.RefundParams{
		PaymentIntent: stripe.String(payment.StripePaymentIntentID),
		Amount:        stripe.Int64(ToGatewayAmount(params.Amount)),
		Reason:        stripe.String(params.Reason.GatewayCode()),
	}
	refundParams.AddMetadata("payment_id", payment.ID.String())
	refundParams.AddMetadata("booking_id", payment.BookingID.String())
	refundParams.AddMetadata("requested_by", params.RequestedBy.String())

	idempotencyKey := fmt.Sprintf("%s:refund", params.PaymentID)
	gatewayRefund, err := s.gateway.CreateRefund(ctx, refundParams, idempotencyKey)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refund issuance failed")
	}

	refund := &models.Refund{
		StripeRefundID: gatewayRefund.ID,
		PaymentID:      payment.ID,
		Amount:         params.Amount,
		Currency:       payment.Currency,
		Status:         refundStatusFromGateway(gatewayRefund.Status),
		Reason:         params.Reason,
		RequestedBy:    params.RequestedBy,
		AdminNotes:     params.AdminNotes,
	}

	txErr := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		current, err := repo.FindPaymentByID(ctx, payment.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload payment")
		}
		if current == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		if params.Amount.GreaterThan(current.RefundableAmount) {
			return pkgerrors.New(pkgerrors.CodeConflict, "refundable balance changed concurrently")
		}

		if err := repo.CreateRefund(ctx, refund); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist refund")
		}

		current.RefundableAmount = current.RefundableAmount.Sub(params.Amount)
		if current.RefundableAmount.IsZero() {
			current.Status = enums.PaymentStatusRefunded
		} else {
			current.Status = enums.PaymentStatusPartiallyRefunded
		}
		if err := repo.UpdatePayment(ctx, current); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment balance")
		}

		if current.RefundableAmount.IsZero() {
			bookingRepo := s.bookingRepo.WithTx(tx)
			booking, err := bookingRepo.FindByID(ctx, current.BookingID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
			}
			if booking != nil {
				refunded := enums.PaymentStatusRefunded
				booking.Status = enums.BookingStatusCancelled
				booking.PaymentStatus = &refunded
				if err := bookingRepo.Update(ctx, booking); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update booking after refund")
				}
			}
		}
		return nil
	})
	if txErr != nil {
		// The gateway refund already settled; local state now diverges from
		// the gateway ledger and needs manual reconciliation.
		if s.logg != nil {
			lctx := s.logg.WithFields(ctx, map[string]any{
				"payment_id":        payment.ID.String(),
				"stripe_refund_id":  gatewayRefund.ID,
				"refund_amount":     params.Amount.StringFixed(2),
				"gateway_reconcile": true,
			})
			s.logg.Error(lctx, "reconciliation.required", txErr)
		}
		return nil, txErr
	}

	if s.metrics != nil {
		s.metrics.IncRefundIssued(string(params.Reason))
	}

	if err := s.notifications.SendRefundNotice(ctx, payment.CustomerID, payment.BookingID, params.Amount, payment.Currency); err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "booking_id", payment.BookingID.String()), "refund notice dispatch failed")
		}
	}

	return refund, nil
}

func (s *service) GetPayment(ctx context.Context, params GetPaymentParams) (*models.Payment, error) {
	if params.PaymentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment id required")
	}

	payment, err := s.repo.FindPaymentByID(ctx, params.PaymentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
	}
	if payment == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
	}
	if params.Role != enums.ActorRoleAdmin && payment.CustomerID != params.CustomerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not allowed to view this payment")
	}
	return payment, nil
}

func (s *service) ListPaymentsByBooking(ctx context.Context, params ListPaymentsParams) (*ListPaymentsResult, error) {
	if params.BookingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking id required")
	}

	booking, err := s.bookingRepo.FindByID(ctx, params.BookingID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
	}
	if booking == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
	}
	if params.Role != enums.ActorRoleAdmin && booking.CustomerID != params.CustomerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not allowed to view this booking")
	}

	query := ListPaymentsQuery{
		BookingID: params.BookingID,
		Limit:     pagination.LimitWithBuffer(params.Limit),
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.ListPaymentsByBooking(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payments")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListPaymentsResult{Items: rows, Cursor: cursor}, nil
}

func intentStatusFromGateway(status stripe.PaymentIntentStatus) enums.IntentStatus {
	if parsed, err := enums.ParseIntentStatus(string(status)); err == nil {
		return parsed
	}
	return enums.IntentStatusRequiresPaymentMethod
}

func refundStatusFromGateway(status stripe.RefundStatus) enums.RefundStatus {
	switch status {
	case stripe.RefundStatusSucceeded:
		return enums.RefundStatusSucceeded
	case stripe.RefundStatusFailed:
		return enums.RefundStatusFailed
	default:
		return enums.RefundStatusPending
	}
}
