package billing

import (
	"testing"
	"time"
)

func TestNormalizeCycle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "weekly", want: "weekly"},
		{in: "MONTHLY", want: "monthly"},
		{in: " month ", want: "monthly"},
		{in: "", want: "weekly"},
		{in: "yearly", want: "weekly"},
	}

	for _, tt := range tests {
		if got := NormalizeCycle(tt.in); got != tt.want {
			t.Fatalf("NormalizeCycle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNextBillingDate(t *testing.T) {
	start := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	if got := NextBillingDate(start, "weekly"); !got.Equal(time.Date(2024, 6, 17, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("weekly next billing = %s, want 2024-06-17", got.Format("2006-01-02"))
	}
	if got := NextBillingDate(start, "monthly"); !got.Equal(time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("monthly next billing = %s, want 2024-07-10", got.Format("2006-01-02"))
	}
}

func TestStartDateIsTomorrowAtMidnight(t *testing.T) {
	now := time.Date(2024, 6, 9, 18, 45, 12, 0, time.UTC)
	want := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	if got := StartDate(now); !got.Equal(want) {
		t.Fatalf("StartDate = %s, want %s", got, want)
	}

	// month boundary
	now = time.Date(2024, 6, 30, 23, 59, 0, 0, time.UTC)
	if got := StartDate(now); got.Format("2006-01-02") != "2024-07-01" {
		t.Fatalf("StartDate at month end = %s", got.Format("2006-01-02"))
	}
}

func TestTransactionID(t *testing.T) {
	now := time.Date(2024, 6, 9, 14, 3, 5, 0, time.UTC)
	got := TransactionID(now, "3f2a9c1b-1111-2222-3333-444455556666")
	if got != "TXN-20240609140305-3F2A9C1B" {
		t.Fatalf("TransactionID = %q", got)
	}
}

func TestUpcomingWeekendDates(t *testing.T) {
	// Wednesday
	now := time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC)
	dates := UpcomingWeekendDates(now, 4)
	want := []string{"2024-06-15", "2024-06-16", "2024-06-22", "2024-06-23"}
	if len(dates) != len(want) {
		t.Fatalf("got %d dates, want %d", len(dates), len(want))
	}
	for i, d := range dates {
		if d.Format("2006-01-02") != want[i] {
			t.Fatalf("date %d = %s, want %s", i, d.Format("2006-01-02"), want[i])
		}
	}
}

func TestCanTransition(t *testing.T) {
	if !canTransition("active", "paused") || !canTransition("paused", "active") {
		t.Fatalf("expected pause and resume to be allowed")
	}
	if canTransition("cancelled", "active") {
		t.Fatalf("cancelled subscriptions must not be resumed")
	}
	if canTransition("expired", "cancelled") {
		t.Fatalf("expired subscriptions cannot be cancelled")
	}
	if !isBillableStatus("pending_payment") || isBillableStatus("paused") {
		t.Fatalf("unexpected billable status result")
	}
}
