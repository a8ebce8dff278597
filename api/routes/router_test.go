package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/alphasup/alphasup-backend/internal/bookings"
	"github.com/alphasup/alphasup-backend/internal/payments"
	pkgAuth "github.com/alphasup/alphasup-backend/pkg/auth"
	"github.com/alphasup/alphasup-backend/pkg/config"
	"github.com/alphasup/alphasup-backend/pkg/db/models"
	"github.com/alphasup/alphasup-backend/pkg/enums"
	"github.com/alphasup/alphasup-backend/pkg/logger"
	"github.com/alphasup/alphasup-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubBookingService struct{}

func (stubBookingService) Create(ctx context.Context, params bookings.CreateParams) (*models.Booking, error) {
	return &models.Booking{ID: uuid.New()}, nil
}

func (stubBookingService) Get(ctx context.Context, params bookings.GetParams) (*models.Booking, error) {
	return &models.Booking{ID: params.BookingID}, nil
}

func (stubBookingService) Quote(ctx context.Context, params bookings.QuoteParams) (*bookings.QuoteResult, error) {
	return &bookings.QuoteResult{}, nil
}

type stubPaymentService struct{}

func (stubPaymentService) CreateIntent(ctx context.Context, params payments.CreateIntentParams) (*payments.CreateIntentResult, error) {
	return &payments.CreateIntentResult{}, nil
}

func (stubPaymentService) CreateRefund(ctx context.Context, params payments.CreateRefundParams) (*models.Refund, error) {
	return &models.Refund{ID: uuid.New()}, nil
}

func (stubPaymentService) GetPayment(ctx context.Context, params payments.GetPaymentParams) (*models.Payment, error) {
	return &models.Payment{ID: params.PaymentID}, nil
}

func (stubPaymentService) ListPaymentsByBooking(ctx context.Context, params payments.ListPaymentsParams) (*payments.ListPaymentsResult, error) {
	return &payments.ListPaymentsResult{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		(*redis.Client)(nil),
		stubBookingService{},
		stubPaymentService{},
		nil,
		nil,
		nil,
	)
}

func TestPrivateGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestPrivateGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for private ping got %d", resp.Code)
	}
}

func TestRefundRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	body := `{"amount":"25.00","reason":"customer_request"}`

	customer := httptest.NewRequest(http.MethodPost, "/api/v1/payments/"+uuid.NewString()+"/refund", strings.NewReader(body))
	customer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleCustomer))
	customer.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, customer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin refund got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodPost, "/api/v1/payments/"+uuid.NewString()+"/refund", strings.NewReader(body))
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleAdmin))
	admin.Header.Set("Content-Type", "application/json")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin refund got %d (%s)", resp.Code, resp.Body.String())
	}
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}
}

func TestBookingRoutesRequireAuth(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/"+uuid.NewString(), nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}

	authed := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/"+uuid.NewString(), nil)
	authed.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleCustomer))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, authed)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for authed booking read got %d (%s)", resp.Code, resp.Body.String())
	}
}

func buildToken(t *testing.T, cfg *config.Config, role enums.ActorRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		CustomerID: uuid.New(),
		Role:       role,
		JTI:        uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}
