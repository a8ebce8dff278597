package bookings

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alphasup/alphasup-backend/api/middleware"
	"github.com/alphasup/alphasup-backend/api/responses"
	"github.com/alphasup/alphasup-backend/api/validators"
	bookingsvc "github.com/alphasup/alphasup-backend/internal/bookings"
	"github.com/alphasup/alphasup-backend/pkg/enums"
	pkgerrors "github.com/alphasup/alphasup-backend/pkg/errors"
	"github.com/alphasup/alphasup-backend/pkg/logger"
)

type createBookingRequest struct {
	ServiceID         string `json:"service_id" validate:"required,uuid"`
	ServiceName       string `json:"service_name" validate:"required"`
	Participants      int    `json:"participants" validate:"required,min=1"`
	ScheduledAt       string `json:"scheduled_at" validate:"required"`
	Amount            string `json:"amount" validate:"required"`
	Currency          string `json:"currency,omitempty"`
	PaymentType       string `json:"payment_type,omitempty"`
	DepositPercentage *int   `json:"deposit_percentage,omitempty"`
}

type quoteRequest struct {
	Amount            string `json:"amount" validate:"required"`
	PaymentType       string `json:"payment_type,omitempty"`
	DepositPercentage *int   `json:"deposit_percentage,omitempty"`
}

func Create(svc bookingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "booking service unavailable"))
			return
		}

		customerID, err := uuid.Parse(middleware.CustomerIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing customer identity"))
			return
		}

		var req createBookingRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		serviceID, err := uuid.Parse(req.ServiceID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid service id"))
			return
		}
		scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid scheduled time"))
			return
		}
		amount, err := decimal.NewFromString(req.Amount)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid amount"))
			return
		}

		paymentType := enums.PaymentTypeFull
		if req.PaymentType != "" {
			paymentType, err = enums.ParsePaymentType(req.PaymentType)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment type"))
				return
			}
		}

		booking, err := svc.Create(ctx, bookingsvc.CreateParams{
			CustomerID:        customerID,
			ServiceID:         serviceID,
			ServiceName:       req.ServiceName,
			Participants:      req.Participants,
			ScheduledAt:       scheduledAt,
			BaseAmount:        amount,
			Currency:          req.Currency,
			PaymentType:       paymentType,
			DepositPercentage: req.DepositPercentage,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, booking)
	}
}

func Get(svc bookingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "booking service unavailable"))
			return
		}

		bookingID, err := uuid.Parse(chi.URLParam(r, "bookingId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid booking id"))
			return
		}
		customerID, _ := uuid.Parse(middleware.CustomerIDFromContext(ctx))
		role, _ := enums.ParseActorRole(middleware.RoleFromContext(ctx))

		booking, err := svc.Get(ctx, bookingsvc.GetParams{
			BookingID:  bookingID,
			CustomerID: customerID,
			Role:       role,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, booking)
	}
}

func Quote(svc bookingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "booking service unavailable"))
			return
		}

		var req quoteRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		amount, err := decimal.NewFromString(req.Amount)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid amount"))
			return
		}

		paymentType := enums.PaymentTypeFull
		if req.PaymentType != "" {
			paymentType, err = enums.ParsePaymentType(req.PaymentType)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment type"))
				return
			}
		}

		quote, err := svc.Quote(ctx, bookingsvc.QuoteParams{
			BaseAmount:        amount,
			PaymentType:       paymentType,
			DepositPercentage: req.DepositPercentage,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}
