package notifications

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alphasup/alphasup-backend/pkg/db/models"
	"github.com/alphasup/alphasup-backend/pkg/enums"
)

type stubRepo struct {
	rows []*models.Notification
	err  error
}

func (r *stubRepo) Create(ctx context.Context, notification *models.Notification) error {
	if r.err != nil {
		return r.err
	}
	r.rows = append(r.rows, notification)
	return nil
}

func TestSendPaymentReceipt(t *testing.T) {
	repo := &stubRepo{}
	service, err := NewService(repo)
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}

	customerID := uuid.New()
	bookingID := uuid.New()
	if err := service.SendPaymentReceipt(context.Background(), customerID, bookingID, decimal.RequireFromString("330.00"), "usd"); err != nil {
		t.Fatalf("send receipt: %v", err)
	}

	if len(repo.rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(repo.rows))
	}
	row := repo.rows[0]
	if row.Kind != enums.NotificationKindPaymentReceipt {
		t.Fatalf("kind = %s", row.Kind)
	}
	if row.CustomerID != customerID || row.BookingID != bookingID {
		t.Fatalf("references not carried")
	}
	if !strings.Contains(row.Body, "330.00") {
		t.Fatalf("amount missing from body: %s", row.Body)
	}
	if row.SentAt == nil {
		t.Fatalf("sent timestamp missing")
	}
}

func TestSendPaymentFailedDefaultsReason(t *testing.T) {
	repo := &stubRepo{}
	service, _ := NewService(repo)

	if err := service.SendPaymentFailed(context.Background(), uuid.New(), uuid.New(), ""); err != nil {
		t.Fatalf("send failure notice: %v", err)
	}
	if !strings.Contains(repo.rows[0].Body, "payment was not completed") {
		t.Fatalf("default reason missing: %s", repo.rows[0].Body)
	}
}

func TestSendRefundNotice(t *testing.T) {
	repo := &stubRepo{}
	service, _ := NewService(repo)

	if err := service.SendRefundNotice(context.Background(), uuid.New(), uuid.New(), decimal.RequireFromString("100.00"), "usd"); err != nil {
		t.Fatalf("send refund notice: %v", err)
	}
	if repo.rows[0].Kind != enums.NotificationKindRefundNotice {
		t.Fatalf("kind = %s", repo.rows[0].Kind)
	}
}

func TestDispatchErrorsSurface(t *testing.T) {
	repo := &stubRepo{err: errors.New("db down")}
	service, _ := NewService(repo)

	if err := service.SendPaymentReceipt(context.Background(), uuid.New(), uuid.New(), decimal.NewFromInt(1), "usd"); err == nil {
		t.Fatalf("persistence error must surface to caller for logging")
	}

	if err := service.SendRefundNotice(context.Background(), uuid.Nil, uuid.New(), decimal.NewFromInt(1), "usd"); err == nil {
		t.Fatalf("missing customer id must be rejected")
	}
}
