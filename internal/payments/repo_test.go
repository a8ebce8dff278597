package payments

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/alphasup/alphasup-backend/pkg/db/models"
	"github.com/alphasup/alphasup-backend/pkg/enums"
	"github.com/alphasup/alphasup-backend/pkg/pagination"
)

func setupPaymentsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	payments := `
CREATE TABLE IF NOT EXISTS payments (
  id TEXT PRIMARY KEY,
  stripe_payment_intent_id TEXT NOT NULL UNIQUE,
  stripe_charge_id TEXT,
  booking_id TEXT NOT NULL,
  customer_id TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  refundable_amount NUMERIC NOT NULL DEFAULT 0,
  currency TEXT NOT NULL DEFAULT 'usd',
  status TEXT NOT NULL,
  method_type TEXT NOT NULL DEFAULT 'card',
  card_brand TEXT,
  card_last4 TEXT,
  processing_fee NUMERIC NOT NULL DEFAULT 0,
  platform_fee NUMERIC NOT NULL DEFAULT 0,
  failure_reason TEXT,
  captured_at DATETIME,
  failed_at DATETIME,
  receipt_sent INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	refunds := `
CREATE TABLE IF NOT EXISTS refunds (
  id TEXT PRIMARY KEY,
  stripe_refund_id TEXT NOT NULL UNIQUE,
  payment_id TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  currency TEXT NOT NULL DEFAULT 'usd',
  status TEXT NOT NULL DEFAULT 'pending',
  reason TEXT NOT NULL,
  requested_by TEXT NOT NULL,
  admin_notes TEXT,
  created_at DATETIME
);`
	paymentIntents := `
CREATE TABLE IF NOT EXISTS payment_intents (
  id TEXT PRIMARY KEY,
  booking_id TEXT NOT NULL,
  customer_id TEXT NOT NULL,
  amount_cents INTEGER NOT NULL,
  currency TEXT NOT NULL DEFAULT 'usd',
  status TEXT NOT NULL,
  client_secret TEXT NOT NULL,
  payment_method_types TEXT NOT NULL DEFAULT 'card',
  deposit_only INTEGER NOT NULL DEFAULT 0,
  expires_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(payments).Error)
	require.NoError(t, db.Exec(refunds).Error)
	require.NoError(t, db.Exec(paymentIntents).Error)
	return db
}

func newPayment(bookingID uuid.UUID, intentID string, createdAt time.Time) *models.Payment {
	return &models.Payment{
		ID:                    uuid.New(),
		StripePaymentIntentID: intentID,
		BookingID:             bookingID,
		CustomerID:            uuid.New(),
		Amount:                decimal.RequireFromString("103.20"),
		RefundableAmount:      decimal.RequireFromString("103.20"),
		Currency:              "usd",
		Status:                enums.PaymentStatusSucceeded,
		CreatedAt:             createdAt,
		UpdatedAt:             createdAt,
	}
}

func TestCreatePaymentIfAbsent(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	bookingID := uuid.New()
	first := newPayment(bookingID, "pi_once", time.Now().UTC())
	created, err := repo.CreatePaymentIfAbsent(ctx, first)
	require.NoError(t, err)
	assert.True(t, created)

	duplicate := newPayment(bookingID, "pi_once", time.Now().UTC())
	created, err = repo.CreatePaymentIfAbsent(ctx, duplicate)
	require.NoError(t, err)
	assert.False(t, created)

	var count int64
	require.NoError(t, db.Model(&models.Payment{}).Where("stripe_payment_intent_id = ?", "pi_once").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestFindPaymentMissingReturnsNil(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	payment, err := repo.FindPaymentByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, payment)

	payment, err = repo.FindPaymentByIntentID(ctx, "pi_missing")
	require.NoError(t, err)
	assert.Nil(t, payment)
}

func TestFindPaymentPreloadsRefunds(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	payment := newPayment(uuid.New(), "pi_refunded", time.Now().UTC())
	created, err := repo.CreatePaymentIfAbsent(ctx, payment)
	require.NoError(t, err)
	require.True(t, created)

	refund := &models.Refund{
		ID:             uuid.New(),
		StripeRefundID: "re_1",
		PaymentID:      payment.ID,
		Amount:         decimal.RequireFromString("25.00"),
		Currency:       "usd",
		Status:         enums.RefundStatusSucceeded,
		Reason:         enums.RefundReasonCustomerRequest,
		RequestedBy:    uuid.New(),
	}
	require.NoError(t, repo.CreateRefund(ctx, refund))

	got, err := repo.FindPaymentByID(ctx, payment.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Refunds, 1)
	assert.Equal(t, "re_1", got.Refunds[0].StripeRefundID)
}

func TestListPaymentsByBookingPaginates(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	bookingID := uuid.New()
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		p := newPayment(bookingID, "pi_page_"+uuid.NewString(), base.Add(time.Duration(i)*time.Minute))
		created, err := repo.CreatePaymentIfAbsent(ctx, p)
		require.NoError(t, err)
		require.True(t, created)
	}
	// Unrelated booking should never appear.
	other := newPayment(uuid.New(), "pi_other", base)
	_, err := repo.CreatePaymentIfAbsent(ctx, other)
	require.NoError(t, err)

	firstPage, next, err := repo.ListPaymentsByBooking(ctx, ListPaymentsQuery{
		BookingID: bookingID,
		Limit:     pagination.LimitWithBuffer(2),
	})
	require.NoError(t, err)
	require.NotNil(t, next)
	require.Len(t, firstPage, 2)
	assert.True(t, firstPage[0].CreatedAt.After(firstPage[1].CreatedAt))

	secondPage, next2, err := repo.ListPaymentsByBooking(ctx, ListPaymentsQuery{
		BookingID: bookingID,
		Limit:     pagination.LimitWithBuffer(2),
		Cursor:    next,
	})
	require.NoError(t, err)
	assert.Nil(t, next2)
	require.Len(t, secondPage, 1)
	assert.Equal(t, base, secondPage[0].CreatedAt.UTC())
}
