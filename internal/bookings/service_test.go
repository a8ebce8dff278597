package bookings_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/alphasup/alphasup-backend/internal/bookings"
	"github.com/alphasup/alphasup-backend/internal/customers"
	"github.com/alphasup/alphasup-backend/internal/payments"
	"github.com/alphasup/alphasup-backend/pkg/config"
	"github.com/alphasup/alphasup-backend/pkg/db/models"
	"github.com/alphasup/alphasup-backend/pkg/enums"
	pkgerrors "github.com/alphasup/alphasup-backend/pkg/errors"
)

type fakeBookingRepo struct {
	bookings map[uuid.UUID]*models.Booking
}

func (r *fakeBookingRepo) WithTx(tx *gorm.DB) bookings.Repository { return r }

func (r *fakeBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	r.bookings[booking.ID] = booking
	return nil
}

func (r *fakeBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return r.bookings[id], nil
}

func (r *fakeBookingRepo) Update(ctx context.Context, booking *models.Booking) error {
	r.bookings[booking.ID] = booking
	return nil
}

type fakeCustomerRepo struct {
	customers map[uuid.UUID]*models.Customer
}

func (r *fakeCustomerRepo) WithTx(tx *gorm.DB) customers.Repository { return r }

func (r *fakeCustomerRepo) Create(ctx context.Context, customer *models.Customer) error {
	r.customers[customer.ID] = customer
	return nil
}

func (r *fakeCustomerRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	return r.customers[id], nil
}

func (r *fakeCustomerRepo) FindByEmail(ctx context.Context, email string) (*models.Customer, error) {
	for _, c := range r.customers {
		if c.Email == email {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeCustomerRepo) Update(ctx context.Context, customer *models.Customer) error {
	r.customers[customer.ID] = customer
	return nil
}

func newTestService(t *testing.T) (bookings.Service, *fakeBookingRepo, *models.Customer) {
	t.Helper()
	pricer, err := payments.NewPricer(config.PaymentsConfig{
		ProcessingFeePercent: "2.9",
		FixedFeeCents:        30,
		DefaultDepositPct:    30,
	})
	if err != nil {
		t.Fatalf("setup pricer: %v", err)
	}

	customer := &models.Customer{
		ID:    uuid.New(),
		Name:  "Kai Rider",
		Email: "kai@example.com",
		Phone: "+15550100",
	}
	bookingRepo := &fakeBookingRepo{bookings: map[uuid.UUID]*models.Booking{}}
	customerRepo := &fakeCustomerRepo{customers: map[uuid.UUID]*models.Customer{customer.ID: customer}}

	service, err := bookings.NewService(bookings.ServiceParams{
		Repo:            bookingRepo,
		CustomerRepo:    customerRepo,
		Pricer:          pricer,
		DefaultCurrency: "usd",
	})
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}
	return service, bookingRepo, customer
}

func TestCreateBookingSnapshotsCustomer(t *testing.T) {
	service, repo, customer := newTestService(t)

	booking, err := service.Create(context.Background(), bookings.CreateParams{
		CustomerID:   customer.ID,
		ServiceID:    uuid.New(),
		ServiceName:  "Sunset SUP Tour",
		Participants: 2,
		ScheduledAt:  time.Now().Add(72 * time.Hour),
		BaseAmount:   decimal.RequireFromString("100.00"),
		PaymentType:  enums.PaymentTypeFull,
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	if booking.CustomerName != customer.Name || booking.CustomerEmail != customer.Email {
		t.Fatalf("customer snapshot not copied")
	}
	if booking.Status != enums.BookingStatusPendingPayment {
		t.Fatalf("status = %s, want pending_payment", booking.Status)
	}
	// base 100 + fee (2.90 + 0.30) = 103.20
	if got := booking.TotalAmount.StringFixed(2); got != "103.20" {
		t.Fatalf("total = %s, want 103.20", got)
	}
	if !booking.PaidAmount.Add(booking.RemainingAmount).Equal(booking.TotalAmount) {
		t.Fatalf("paid + remaining must equal total at creation")
	}
	if _, ok := repo.bookings[booking.ID]; !ok {
		t.Fatalf("booking not persisted")
	}
}

func TestCreateBookingValidation(t *testing.T) {
	service, _, customer := newTestService(t)
	future := time.Now().Add(24 * time.Hour)

	cases := []struct {
		name   string
		params bookings.CreateParams
	}{
		{"missing customer", bookings.CreateParams{ServiceID: uuid.New(), Participants: 1, ScheduledAt: future, BaseAmount: decimal.NewFromInt(10)}},
		{"zero participants", bookings.CreateParams{CustomerID: customer.ID, ServiceID: uuid.New(), ScheduledAt: future, BaseAmount: decimal.NewFromInt(10)}},
		{"negative amount", bookings.CreateParams{CustomerID: customer.ID, ServiceID: uuid.New(), Participants: 1, ScheduledAt: future, BaseAmount: decimal.NewFromInt(-5)}},
		{"past schedule", bookings.CreateParams{CustomerID: customer.ID, ServiceID: uuid.New(), Participants: 1, ScheduledAt: time.Now().Add(-time.Hour), BaseAmount: decimal.NewFromInt(10)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.Create(context.Background(), tc.params)
			if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	_, err := service.Create(context.Background(), bookings.CreateParams{
		CustomerID:   uuid.New(),
		ServiceID:    uuid.New(),
		Participants: 1,
		ScheduledAt:  future,
		BaseAmount:   decimal.NewFromInt(10),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unknown customer must be not found, got %v", err)
	}
}

func TestGetBookingAuthorization(t *testing.T) {
	service, repo, customer := newTestService(t)
	booking := &models.Booking{ID: uuid.New(), CustomerID: customer.ID}
	repo.bookings[booking.ID] = booking

	if _, err := service.Get(context.Background(), bookings.GetParams{
		BookingID:  booking.ID,
		CustomerID: customer.ID,
		Role:       enums.ActorRoleCustomer,
	}); err != nil {
		t.Fatalf("owner read failed: %v", err)
	}

	_, err := service.Get(context.Background(), bookings.GetParams{
		BookingID:  booking.ID,
		CustomerID: uuid.New(),
		Role:       enums.ActorRoleCustomer,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("non-owner must be forbidden, got %v", err)
	}

	if _, err := service.Get(context.Background(), bookings.GetParams{
		BookingID:  booking.ID,
		CustomerID: uuid.New(),
		Role:       enums.ActorRoleAdmin,
	}); err != nil {
		t.Fatalf("admin read failed: %v", err)
	}
}

func TestQuoteDepositBreakdown(t *testing.T) {
	service, _, _ := newTestService(t)

	quote, err := service.Quote(context.Background(), bookings.QuoteParams{
		BaseAmount:  decimal.RequireFromString("100.00"),
		PaymentType: enums.PaymentTypeDeposit,
	})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}

	if got := quote.TotalAmount.StringFixed(2); got != "103.20" {
		t.Fatalf("total = %s, want 103.20", got)
	}
	if got := quote.DepositAmount.StringFixed(2); got != "30.96" {
		t.Fatalf("deposit = %s, want 30.96", got)
	}
	if !quote.DepositAmount.Add(quote.Remaining).Equal(quote.TotalAmount) {
		t.Fatalf("deposit + remaining must equal total")
	}

	full, err := service.Quote(context.Background(), bookings.QuoteParams{
		BaseAmount:  decimal.RequireFromString("100.00"),
		PaymentType: enums.PaymentTypeFull,
	})
	if err != nil {
		t.Fatalf("full quote: %v", err)
	}
	if !full.Remaining.IsZero() {
		t.Fatalf("full payment quote must have zero remaining")
	}
}
