package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPaymentLifecycleMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_payment_lifecycle.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no payment lifecycle migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE payments",
		"stripe_payment_intent_id TEXT NOT NULL UNIQUE",
		"stripe_refund_id TEXT NOT NULL UNIQUE",
		"refundable_amount NUMERIC(12,2) NOT NULL DEFAULT 0",
		"booking_id UUID NOT NULL REFERENCES bookings (id)",
		"payment_id UUID NOT NULL REFERENCES payments (id)",
		"DROP TABLE payments",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
