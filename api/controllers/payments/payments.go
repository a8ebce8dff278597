package payments

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alphasup/alphasup-backend/api/middleware"
	"github.com/alphasup/alphasup-backend/api/responses"
	"github.com/alphasup/alphasup-backend/api/validators"
	paymentsvc "github.com/alphasup/alphasup-backend/internal/payments"
	"github.com/alphasup/alphasup-backend/pkg/enums"
	pkgerrors "github.com/alphasup/alphasup-backend/pkg/errors"
	"github.com/alphasup/alphasup-backend/pkg/logger"
)

type createIntentRequest struct {
	BookingID         string `json:"booking_id" validate:"required,uuid"`
	Amount            string `json:"amount" validate:"required"`
	DepositOnly       bool   `json:"deposit_only,omitempty"`
	DepositPercentage *int   `json:"deposit_percentage,omitempty"`
	Currency          string `json:"currency,omitempty"`
	SavePaymentMethod bool   `json:"save_payment_method,omitempty"`
}

type refundRequest struct {
	Amount     string  `json:"amount" validate:"required"`
	Reason     string  `json:"reason" validate:"required"`
	AdminNotes *string `json:"admin_notes,omitempty"`
}

func CreateIntent(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		customerID, err := uuid.Parse(middleware.CustomerIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing customer identity"))
			return
		}

		var req createIntentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		bookingID, err := uuid.Parse(req.BookingID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid booking id"))
			return
		}
		amount, err := decimal.NewFromString(req.Amount)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid amount"))
			return
		}

		result, err := svc.CreateIntent(ctx, paymentsvc.CreateIntentParams{
			BookingID:         bookingID,
			CustomerID:        customerID,
			Amount:            amount,
			DepositOnly:       req.DepositOnly,
			DepositPercentage: req.DepositPercentage,
			Currency:          req.Currency,
			SavePaymentMethod: req.SavePaymentMethod,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func Get(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		paymentID, err := uuid.Parse(chi.URLParam(r, "paymentId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment id"))
			return
		}
		customerID, _ := uuid.Parse(middleware.CustomerIDFromContext(ctx))
		role, _ := enums.ParseActorRole(middleware.RoleFromContext(ctx))

		payment, err := svc.GetPayment(ctx, paymentsvc.GetPaymentParams{
			PaymentID:  paymentID,
			CustomerID: customerID,
			Role:       role,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, payment)
	}
}

func ListByBooking(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		bookingID, err := uuid.Parse(chi.URLParam(r, "bookingId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid booking id"))
			return
		}
		customerID, _ := uuid.Parse(middleware.CustomerIDFromContext(ctx))
		role, _ := enums.ParseActorRole(middleware.RoleFromContext(ctx))

		limit := 0
		if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
			limit, err = strconv.Atoi(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid limit"))
				return
			}
		}

		result, err := svc.ListPaymentsByBooking(ctx, paymentsvc.ListPaymentsParams{
			BookingID:  bookingID,
			CustomerID: customerID,
			Role:       role,
			Limit:      limit,
			Cursor:     strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func Refund(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		requestedBy, err := uuid.Parse(middleware.CustomerIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing requester identity"))
			return
		}
		paymentID, err := uuid.Parse(chi.URLParam(r, "paymentId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment id"))
			return
		}

		var req refundRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		amount, err := decimal.NewFromString(req.Amount)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid amount"))
			return
		}
		reason, err := enums.ParseRefundReason(req.Reason)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid refund reason"))
			return
		}

		refund, err := svc.CreateRefund(ctx, paymentsvc.CreateRefundParams{
			PaymentID:   paymentID,
			Amount:      amount,
			Reason:      reason,
			RequestedBy: requestedBy,
			AdminNotes:  req.AdminNotes,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, refund)
	}
}
