package tracking

import (
	"testing"
	"time"

	"github.com/ManuelReschke/BaanBox/app/models"
)

var start = time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

func order(status string, meals ...string) models.Subscription {
	sub := models.Subscription{ID: "s", Status: status, StartDate: start, CreatedAt: start.Add(-9 * time.Hour)}
	for _, m := range meals {
		sub.ScheduledMeals = append(sub.ScheduledMeals, models.ScheduledMeal{Status: m})
	}
	return sub
}

var paid = &models.Payment{Status: models.PAYMENT_COMPLETED, PaymentDate: start.Add(-9 * time.Hour)}

func states(steps []Step) string {
	out := ""
	for _, s := range steps {
		out += s.Key + "=" + string(s.State) + " "
	}
	return out
}

func TestTimeline(t *testing.T) {
	tests := []struct {
		name    string
		sub     models.Subscription
		payment *models.Payment
		now     time.Time
		want    string
		label   string
	}{
		{
			name:    "fresh order",
			sub:     order(models.SUBSCRIPTION_ACTIVE, models.MEAL_SCHEDULED),
			payment: paid,
			now:     start.Add(-8 * time.Hour),
			want:    "placed=done payment_confirmed=done preparing=current out_for_delivery=upcoming delivered=upcoming ",
			label:   "Preparing your meals",
		},
		{
			name: "unpaid order waits on payment",
			sub:  order(models.SUBSCRIPTION_PENDING_PAYMENT),
			now:  start,
			want: "placed=done payment_confirmed=current preparing=upcoming out_for_delivery=upcoming delivered=upcoming ",
		},
		{
			name:    "delivery morning",
			sub:     order(models.SUBSCRIPTION_ACTIVE, models.MEAL_SCHEDULED),
			payment: paid,
			now:     start.Add(8 * time.Hour),
			want:    "placed=done payment_confirmed=done preparing=done out_for_delivery=current delivered=upcoming ",
		},
		{
			name:    "after dispatch",
			sub:     order(models.SUBSCRIPTION_ACTIVE, models.MEAL_SCHEDULED),
			payment: paid,
			now:     start.Add(13 * time.Hour),
			want:    "placed=done payment_confirmed=done preparing=done out_for_delivery=done delivered=current ",
		},
		{
			name:    "all delivered",
			sub:     order(models.SUBSCRIPTION_ACTIVE, models.MEAL_DELIVERED, models.MEAL_SKIPPED),
			payment: paid,
			now:     start.Add(20 * time.Hour),
			want:    "placed=done payment_confirmed=done preparing=done out_for_delivery=done delivered=done ",
			label:   "Delivered",
		},
		{
			name:    "cancelled stops early",
			sub:     order(models.SUBSCRIPTION_CANCELLED, models.MEAL_SCHEDULED),
			payment: paid,
			now:     start.Add(20 * time.Hour),
			want:    "placed=done payment_confirmed=done cancelled=done ",
			label:   "Cancelled",
		},
		{
			name:    "paused",
			sub:     order(models.SUBSCRIPTION_PAUSED),
			payment: paid,
			now:     start,
			want:    "placed=done payment_confirmed=done paused=current ",
			label:   "Paused",
		},
	}

	for _, tt := range tests {
		steps := Timeline(tt.sub, tt.payment, tt.now)
		if got := states(steps); got != tt.want {
			t.Fatalf("%s: got %q, want %q", tt.name, got, tt.want)
		}
		if tt.label != "" {
			if got := CurrentLabel(steps); got != tt.label {
				t.Fatalf("%s: label %q, want %q", tt.name, got, tt.label)
			}
		}
		for _, s := range steps {
			if s.Label == "" {
				t.Fatalf("%s: step %s has no label", tt.name, s.Key)
			}
		}
	}
}
