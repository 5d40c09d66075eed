package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ManuelReschke/BaanBox/app/models"
	"github.com/ManuelReschke/BaanBox/internal/pkg/database/dbtest"
)

func TestGormServiceHonoursContext(t *testing.T) {
	db := dbtest.Open(t)

	user := models.User{Name: "Malee", Email: "malee@example.com", Password: "x", Role: models.ROLE_USER, Status: models.STATUS_ACTIVE}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	plan := models.SubscriptionPlan{Name: "Duo", MealsPerWeek: 3, Price: decimal.RequireFromString("34.99"),
		BillingCycle: models.BILLING_CYCLE_WEEKLY, IsActive: true}
	if err := db.Create(&plan).Error; err != nil {
		t.Fatalf("seed plan: %v", err)
	}
	start := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	sub := models.Subscription{ID: "7d0c2a4e-0000-4000-8000-000000000001", UserID: user.ID, PlanID: plan.ID,
		Status: models.SUBSCRIPTION_ACTIVE, StartDate: start, NextBillingDate: start.AddDate(0, 0, 7),
		BillingCycle: models.BILLING_CYCLE_WEEKLY, TotalAmount: plan.Price, AutoRenew: true}
	if err := db.Create(&sub).Error; err != nil {
		t.Fatalf("seed subscription: %v", err)
	}

	svc := NewServiceFromDB(db)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.Pause(cancelled, user.ID, sub.ID); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	var stored models.Subscription
	if err := db.First(&stored, "id = ?", sub.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Status != models.SUBSCRIPTION_ACTIVE {
		t.Fatalf("cancelled request changed status to %s", stored.Status)
	}

	if _, err := svc.Pause(context.Background(), user.ID, sub.ID); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if err := svc.SetAutoRenew(context.Background(), user.ID, sub.ID, false); err != nil {
		t.Fatalf("auto renew off: %v", err)
	}
	if err := db.First(&stored, "id = ?", sub.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Status != models.SUBSCRIPTION_PAUSED || stored.AutoRenew {
		t.Fatalf("unexpected stored subscription: status=%s auto_renew=%v", stored.Status, stored.AutoRenew)
	}

	if err := svc.SetAutoRenew(context.Background(), user.ID+1, sub.ID, false); !errors.Is(err, ErrSubscriptionNotFound) {
		t.Fatalf("foreign user: %v", err)
	}
}
