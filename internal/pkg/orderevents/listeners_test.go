package orderevents

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/BaanBox/app/models"
	"github.com/ManuelReschke/BaanBox/app/repository"
	"github.com/ManuelReschke/BaanBox/internal/pkg/cache"
	"github.com/ManuelReschke/BaanBox/internal/pkg/checkout"
	"github.com/ManuelReschke/BaanBox/internal/pkg/database/dbtest"
	"github.com/ManuelReschke/BaanBox/internal/pkg/mail"
)

func committed(userID uint) (*checkout.Draft, *checkout.Result) {
	sub := &models.Subscription{
		ID:           "0a1b2c3d-1111-4222-8333-000000000001",
		UserID:       userID,
		PlanID:       3,
		Status:       models.SUBSCRIPTION_ACTIVE,
		StartDate:    time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		BillingCycle: models.BILLING_CYCLE_WEEKLY,
		TotalAmount:  decimal.RequireFromString("53.99"),
	}
	sub.SetDays([]string{"monday", "friday"})

	draft := &checkout.Draft{
		Plan:            checkout.PlanSnapshot{ID: 3, Name: "Family Feast"},
		SelectedMealIDs: []uint{1, 2, 1},
		MealDetailsByID: map[uint]checkout.MealDetail{1: {ID: 1, Name: "Green Curry"}, 2: {ID: 2, Name: "Pad Thai"}},
	}
	res := &checkout.Result{
		State:        checkout.StateCommitted,
		Subscription: sub,
		Payment:      &models.Payment{PaymentMethod: models.PAYMENT_METHOD_CARD, Currency: "USD"},
		ScheduledMeals: []models.ScheduledMeal{
			{MenuID: 1, Quantity: 1},
			{MenuID: 2, Quantity: 1},
			{MenuID: 1, Quantity: 1},
		},
	}
	return draft, res
}

func TestNotifierCreatesAndPrunes(t *testing.T) {
	db := dbtest.Open(t)
	repo := repository.NewNotificationRepository(db)
	for i := 0; i < KeepNotifications; i++ {
		require.NoError(t, repo.Create(&models.Notification{UserID: 7, Type: models.NOTIFICATION_SYSTEM, Content: fmt.Sprintf("old %d", i)}))
	}

	draft, res := committed(7)
	require.NoError(t, NewNotifier(repo).OrderPlaced(context.Background(), 7, draft, res))

	latest, err := repo.ListRecent(7, 100)
	require.NoError(t, err)
	require.Len(t, latest, KeepNotifications)
	assert.Equal(t, models.NOTIFICATION_ORDER, latest[0].Type)
	assert.Equal(t, res.Subscription.ID, latest[0].ReferenceID)
	assert.Contains(t, latest[0].Content, "Family Feast")
}

func TestMailerSendsConfirmation(t *testing.T) {
	db := dbtest.Open(t)
	users := repository.NewUserRepository(db)
	user := &models.User{Name: "Somchai", Email: "somchai@example.com", Password: "x", Role: models.ROLE_USER, Status: models.STATUS_ACTIVE}
	require.NoError(t, users.Create(user))

	var sentTo string
	var sent mail.OrderConfirmationData
	m := NewMailer(users, func(userID uint) (*models.UserSettings, error) {
		return models.GetOrCreateUserSettings(db, userID)
	})
	m.send = func(to string, data mail.OrderConfirmationData) error {
		sentTo, sent = to, data
		return nil
	}

	draft, res := committed(user.ID)
	require.NoError(t, m.OrderPlaced(context.Background(), user.ID, draft, res))

	assert.Equal(t, "somchai@example.com", sentTo)
	assert.Equal(t, "53.99", sent.Total)
	assert.Equal(t, "USD", sent.Currency)
	assert.Equal(t, []string{"Monday", "Friday"}, sent.DeliveryDays)
	assert.Equal(t, []mail.OrderMeal{{Name: "Green Curry", Quantity: 2}, {Name: "Pad Thai", Quantity: 1}}, sent.Meals)
	assert.Contains(t, sent.StatusLink, "/orders/"+res.Subscription.ID+"/status")
}

func TestMailerRespectsOptOut(t *testing.T) {
	db := dbtest.Open(t)
	users := repository.NewUserRepository(db)
	user := &models.User{Name: "Nok", Email: "nok@example.com", Password: "x", Role: models.ROLE_USER, Status: models.STATUS_ACTIVE}
	require.NoError(t, users.Create(user))
	us, err := models.GetOrCreateUserSettings(db, user.ID)
	require.NoError(t, err)
	require.NoError(t, db.Model(us).Update("order_emails", false).Error)

	m := NewMailer(users, func(userID uint) (*models.UserSettings, error) {
		return models.GetOrCreateUserSettings(db, userID)
	})
	m.send = func(string, mail.OrderConfirmationData) error {
		t.Fatal("mail sent despite opt-out")
		return nil
	}

	draft, res := committed(user.ID)
	require.NoError(t, m.OrderPlaced(context.Background(), user.ID, draft, res))
}

func TestPopularityCountsPortions(t *testing.T) {
	mr := miniredis.RunT(t)
	cache.UseClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.UseClient(nil) })

	draft, res := committed(7)
	require.NoError(t, NewPopularity().OrderPlaced(context.Background(), 7, draft, res))

	assert.Equal(t, "2", mr.HGet("menu:counters:orders", "1"))
	assert.Equal(t, "1", mr.HGet("menu:counters:orders", "2"))
}
