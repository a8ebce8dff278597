package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alphasup/alphasup-backend/pkg/db/models"
	"github.com/alphasup/alphasup-backend/pkg/enums"
	pkgerrors "github.com/alphasup/alphasup-backend/pkg/errors"
)

// Service persists customer notices. Callers on the payment path treat every
// method as fire-and-forget: errors are logged by the caller, never propagated.
type Service interface {
	SendPaymentReceipt(ctx context.Context, customerID, bookingID uuid.UUID, amount decimal.Decimal, currency string) error
	SendPaymentFailed(ctx context.Context, customerID, bookingID uuid.UUID, reason string) error
	SendRefundNotice(ctx context.Context, customerID, bookingID uuid.UUID, amount decimal.Decimal, currency string) error
}

type service struct {
	repo Repository
}

// NewService wires notification dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "notifications repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) SendPaymentReceipt(ctx context.Context, customerID, bookingID uuid.UUID, amount decimal.Decimal, currency string) error {
	body := fmt.Sprintf("Payment of %s %s received. Your booking is confirmed — see you on the water!",
		amount.StringFixed(2), currency)
	return s.dispatch(ctx, customerID, bookingID, enums.NotificationKindPaymentReceipt, body)
}

func (s *service) SendPaymentFailed(ctx context.Context, customerID, bookingID uuid.UUID, reason string) error {
	if reason == "" {
		reason = "payment was not completed"
	}
	body := fmt.Sprintf("We could not process your payment: %s. Your booking has been cancelled.", reason)
	return s.dispatch(ctx, customerID, bookingID, enums.NotificationKindPaymentFailed, body)
}

func (s *service) SendRefundNotice(ctx context.Context, customerID, bookingID uuid.UUID, amount decimal.Decimal, currency string) error {
	body := fmt.Sprintf("A refund of %s %s has been issued to your original payment method.",
		amount.StringFixed(2), currency)
	return s.dispatch(ctx, customerID, bookingID, enums.NotificationKindRefundNotice, body)
}

func (s *service) dispatch(ctx context.Context, customerID, bookingID uuid.UUID, kind enums.NotificationKind, body string) error {
	if customerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if bookingID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "booking id required")
	}

	now := time.Now().UTC()
	notification := &models.Notification{
		CustomerID: customerID,
		BookingID:  bookingID,
		Kind:       kind,
		Body:       body,
		SentAt:     &now,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist notification")
	}
	return nil
}
