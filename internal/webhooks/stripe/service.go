package stripewebhook

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/alphasup/alphasup-backend/internal/bookings"
	"github.com/alphasup/alphasup-backend/internal/notifications"
	"github.com/alphasup/alphasup-backend/internal/payments"
	"github.com/alphasup/alphasup-backend/pkg/db/models"
	"github.com/alphasup/alphasup-backend/pkg/enums"
	pkgerrors "github.com/alphasup/alphasup-backend/pkg/errors"
	"github.com/alphasup/alphasup-backend/pkg/logger"
	"github.com/alphasup/alphasup-backend/pkg/metrics"
)

const canceledFailureReason = "Payment canceled"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams wires webhook reconciler dependencies.
type ServiceParams struct {
	PaymentRepo       payments.Repository
	BookingRepo       bookings.Repository
	Gateway           payments.Gateway
	Notifications     notifications.Service
	TransactionRunner txRunner
	Logger            *logger.Logger
	Metrics           *metrics.PaymentMetrics
}

// Service is the single authoritative path by which booking and payment state
// transitions out of "in flight". Events may arrive duplicated or out of
// order; every mutation is conditional so replays converge to the same state.
type Service struct {
	paymentRepo   payments.Repository
	bookingRepo   bookings.Repository
	gateway       payments.Gateway
	notifications notifications.Service
	txRunner      txRunner
	logg          *logger.Logger
	metrics       *metrics.PaymentMetrics
}

func NewService(params ServiceParams) (*Service, error) {
	if params.PaymentRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payment repo required")
	}
	if params.BookingRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "booking repo required")
	}
	if params.Gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "gateway client required")
	}
	if params.Notifications == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "notifications service required")
	}
	if params.TransactionRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	return &Service{
		paymentRepo:   params.PaymentRepo,
		bookingRepo:   params.BookingRepo,
		gateway:       params.Gateway,
		notifications: params.Notifications,
		txRunner:      params.TransactionRunner,
		logg:          params.Logger,
		metrics:       params.Metrics,
	}, nil
}

func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	if s.logg != nil {
		ctx = s.logg.WithEventID(ctx, event.ID)
		ctx = s.logg.WithField(ctx, "event_type", string(event.Type))
	}

	start := time.Now()
	err := s.dispatch(ctx, event)
	if s.metrics != nil {
		s.metrics.ObserveWebhookDuration(string(event.Type), time.Since(start))
		if err != nil {
			s.metrics.IncWebhookFailed(string(event.Type))
		} else {
			s.metrics.IncWebhookProcessed(string(event.Type))
		}
	}
	return err
}

func (s *Service) dispatch(ctx context.Context, event *stripe.Event) error {
	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		intent, err := decodeIntent(event)
		if err != nil {
			return err
		}
		return s.handleIntentSucceeded(ctx, intent)
	case stripe.EventTypePaymentIntentPaymentFailed:
		intent, err := decodeIntent(event)
		if err != nil {
			return err
		}
		return s.handleIntentFailed(ctx, intent, failureReason(intent))
	case stripe.EventTypePaymentIntentCanceled:
		intent, err := decodeIntent(event)
		if err != nil {
			return err
		}
		return s.handleIntentFailed(ctx, intent, canceledFailureReason)
	case stripe.EventTypeChargeDisputeCreated:
		var dispute stripe.Dispute
		if err := json.Unmarshal(event.Data.Raw, &dispute); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode dispute event")
		}
		return s.handleDisputeCreated(ctx, &dispute)
	default:
		// Vestigial event types (invoices, subscriptions, setup intents) are
		// acknowledged without mutation.
		if s.logg != nil {
			s.logg.Info(ctx, "webhook event acknowledged without action")
		}
		return nil
	}
}

// handleIntentSucceeded creates the durable Payment ledger entry and confirms
// the booking. The conditional create keyed by the gateway intent ID makes
// redelivery and concurrent delivery converge on exactly one ledger entry.
func (s *Service) handleIntentSucceeded(ctx context.Context, intent *stripe.PaymentIntent) error {
	amountCents := intent.AmountReceived
	if amountCents == 0 {
		amountCents = intent.Amount
	}
	amount := payments.FromGatewayAmount(amountCents)

	payment := &models.Payment{
		StripePaymentIntentID: intent.ID,
		Amount:                amount,
		RefundableAmount:      amount,
		Currency:              string(intent.Currency),
		Status:                enums.PaymentStatusSucceeded,
		MethodType:            "card",
		ProcessingFee:         metadataAmount(intent.Metadata, "fees"),
	}
	now := time.Now().UTC()
	payment.CapturedAt = &now

	if intent.LatestCharge != nil {
		payment.StripeChargeID = intent.LatestCharge.ID
		s.enrichCardDetails(ctx, payment, intent.LatestCharge.ID)
	}

	bookingID, customerID, err := s.resolveReferences(ctx, intent)
	if err != nil {
		return err
	}
	payment.BookingID = bookingID
	payment.CustomerID = customerID

	var created bool
	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.paymentRepo.WithTx(tx)

		var err error
		created, err = repo.CreatePaymentIfAbsent(ctx, payment)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment ledger entry")
		}
		if !created {
			return nil
		}

		if err := s.markIntentStatus(ctx, repo, intent.ID, enums.IntentStatusSucceeded); err != nil {
			return err
		}

		bookingRepo := s.bookingRepo.WithTx(tx)
		booking, err := bookingRepo.FindByID(ctx, bookingID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
		}
		if booking == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "booking not found for payment")
		}

		succeeded := enums.PaymentStatusSucceeded
		booking.Status = enums.BookingStatusConfirmed
		booking.PaymentStatus = &succeeded
		booking.PaidAmount = booking.PaidAmount.Add(amount)
		remaining := booking.TotalAmount.Sub(booking.PaidAmount)
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}
		booking.RemainingAmount = remaining
		if err := bookingRepo.Update(ctx, booking); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm booking")
		}
		return nil
	})
	if err != nil {
		return err
	}
	if !created {
		// A previous delivery already applied this transition; acknowledge
		// without repeating side effects.
		if s.logg != nil {
			s.logg.Info(ctx, "payment already recorded for intent, skipping")
		}
		return nil
	}

	if err := s.notifications.SendPaymentReceipt(ctx, customerID, bookingID, amount, payment.Currency); err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithBookingID(ctx, bookingID.String()), "receipt dispatch failed")
		}
	}
	return nil
}

func (s *Service) handleIntentFailed(ctx context.Context, intent *stripe.PaymentIntent, reason string) error {
	bookingID, customerID, err := s.resolveReferences(ctx, intent)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	payment := &models.Payment{
		StripePaymentIntentID: intent.ID,
		BookingID:             bookingID,
		CustomerID:            customerID,
		Amount:                payments.FromGatewayAmount(intent.Amount),
		RefundableAmount:      decimal.Zero,
		Currency:              string(intent.Currency),
		Status:                enums.PaymentStatusFailed,
		MethodType:            "card",
		FailureReason:         &reason,
		FailedAt:              &now,
	}

	intentStatus := enums.IntentStatusCanceled
	if reason != canceledFailureReason {
		intentStatus = enums.IntentStatusRequiresPaymentMethod
	}

	var created bool
	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.paymentRepo.WithTx(tx)

		var err error
		created, err = repo.CreatePaymentIfAbsent(ctx, payment)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment ledger entry")
		}
		if !created {
			return nil
		}

		if err := s.markIntentStatus(ctx, repo, intent.ID, intentStatus); err != nil {
			return err
		}

		bookingRepo := s.bookingRepo.WithTx(tx)
		booking, err := bookingRepo.FindByID(ctx, bookingID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
		}
		if booking == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "booking not found for payment")
		}

		failed := enums.PaymentStatusFailed
		booking.Status = enums.BookingStatusCancelled
		booking.PaymentStatus = &failed
		if err := bookingRepo.Update(ctx, booking); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel booking")
		}
		return nil
	})
	if err != nil {
		return err
	}
	if !created {
		if s.logg != nil {
			s.logg.Info(ctx, "payment already recorded for intent, skipping")
		}
		return nil
	}

	if err := s.notifications.SendPaymentFailed(ctx, customerID, bookingID, reason); err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithBookingID(ctx, bookingID.String()), "failure notice dispatch failed")
		}
	}
	return nil
}

// handleDisputeCreated looks up the disputed payment for audit logging.
// Disputes do not transition booking or payment state.
func (s *Service) handleDisputeCreated(ctx context.Context, dispute *stripe.Dispute) error {
	if s.metrics != nil {
		s.metrics.IncDispute()
	}

	intentID := ""
	if dispute.PaymentIntent != nil {
		intentID = dispute.PaymentIntent.ID
	}
	if intentID == "" && dispute.Charge != nil {
		charge, err := s.gateway.GetCharge(ctx, dispute.Charge.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load disputed charge")
		}
		if charge.PaymentIntent != nil {
			intentID = charge.PaymentIntent.ID
		}
	}
	if intentID == "" {
		if s.logg != nil {
			s.logg.Warn(ctx, "dispute received without resolvable payment intent")
		}
		return nil
	}

	payment, err := s.paymentRepo.FindPaymentByIntentID(ctx, intentID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load disputed payment")
	}
	if s.logg != nil {
		fields := map[string]any{
			"dispute_id":               dispute.ID,
			"stripe_payment_intent_id": intentID,
		}
		if payment != nil {
			fields["payment_id"] = payment.ID.String()
			fields["booking_id"] = payment.BookingID.String()
		}
		s.logg.Warn(s.logg.WithFields(ctx, fields), "charge dispute received")
	}
	return nil
}

// resolveReferences extracts the local booking/customer IDs for an intent,
// preferring gateway metadata and falling back to the stored intent record.
func (s *Service) resolveReferences(ctx context.Context, intent *stripe.PaymentIntent) (uuid.UUID, uuid.UUID, error) {
	bookingID, bErr := uuid.Parse(intent.Metadata["booking_id"])
	customerID, cErr := uuid.Parse(intent.Metadata["customer_id"])
	if bErr == nil && cErr == nil {
		return bookingID, customerID, nil
	}

	record, err := s.paymentRepo.FindIntentByID(ctx, intent.ID)
	if err != nil {
		return uuid.Nil, uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load intent record")
	}
	if record == nil {
		return uuid.Nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeNotFound, "no local record for payment intent")
	}
	return record.BookingID, record.CustomerID, nil
}

func (s *Service) markIntentStatus(ctx context.Context, repo payments.Repository, intentID string, status enums.IntentStatus) error {
	record, err := repo.FindIntentByID(ctx, intentID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load intent record")
	}
	if record == nil {
		return nil
	}
	record.Status = status
	if err := repo.UpdateIntent(ctx, record); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update intent status")
	}
	return nil
}

// enrichCardDetails fetches the charge for masked card info. Best-effort: a
// lookup failure leaves the descriptor fields empty rather than failing the
// transition.
func (s *Service) enrichCardDetails(ctx context.Context, payment *models.Payment, chargeID string) {
	charge, err := s.gateway.GetCharge(ctx, chargeID)
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "stripe_charge_id", chargeID), "charge lookup for card details failed")
		}
		return
	}
	if charge.PaymentMethodDetails != nil && charge.PaymentMethodDetails.Card != nil {
		payment.CardBrand = string(charge.PaymentMethodDetails.Card.Brand)
		payment.CardLast4 = charge.PaymentMethodDetails.Card.Last4
	}
}

func decodeIntent(event *stripe.Event) (*stripe.PaymentIntent, error) {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode payment intent event")
	}
	return &intent, nil
}

func failureReason(intent *stripe.PaymentIntent) string {
	if intent.LastPaymentError != nil && intent.LastPaymentError.Msg != "" {
		return intent.LastPaymentError.Msg
	}
	return "payment failed"
}

func metadataAmount(metadata map[string]string, key string) decimal.Decimal {
	raw, ok := metadata[key]
	if !ok {
		return decimal.Zero
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return amount
}
