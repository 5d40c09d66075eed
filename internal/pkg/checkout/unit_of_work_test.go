package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ManuelReschke/BaanBox/app/models"
	"github.com/ManuelReschke/BaanBox/internal/pkg/database/dbtest"
)

func seedShop(t *testing.T, db *gorm.DB) (models.User, models.MenuItem) {
	t.Helper()

	user := models.User{Name: "Somchai", Email: "somchai@example.com", Password: "x", Role: models.ROLE_USER, Status: models.STATUS_ACTIVE,
		DeliveryAddress: "Old Road 1", City: "Austin", ZipCode: "73301"}
	require.NoError(t, db.Create(&user).Error)

	require.NoError(t, db.Create(&models.SubscriptionPlan{ID: 3, Name: "Family Feast", MealsPerWeek: 5,
		Price: decimal.RequireFromString("59.99"), BillingCycle: models.BILLING_CYCLE_WEEKLY, IsActive: true}).Error)

	item := models.MenuItem{Name: "Green Curry", Category: models.MenuCategoryCurry, Price: decimal.RequireFromString("12.50"), IsAvailable: true}
	require.NoError(t, db.Create(&item).Error)
	return user, item
}

func countRows(t *testing.T, db *gorm.DB) (subs, payments, meals int64) {
	t.Helper()
	require.NoError(t, db.Model(&models.Subscription{}).Count(&subs).Error)
	require.NoError(t, db.Model(&models.Payment{}).Count(&payments).Error)
	require.NoError(t, db.Model(&models.ScheduledMeal{}).Count(&meals).Error)
	return
}

func TestGormCommitWritesAllRows(t *testing.T) {
	db := dbtest.Open(t)
	user, item := seedShop(t, db)

	res := testWorkflow(NewGormUnitOfWork(db)).Commit(context.Background(), user.ID, testDraft("weekly", item.ID), validInput())
	require.True(t, res.Committed(), "err: %v", res.Err)

	subs, payments, meals := countRows(t, db)
	assert.Equal(t, int64(1), subs)
	assert.Equal(t, int64(1), payments)
	assert.Equal(t, int64(1), meals)

	var stored models.Subscription
	require.NoError(t, db.Where("id = ? AND user_id = ?", res.Subscription.ID, user.ID).First(&stored).Error)
	assert.Equal(t, "53.99", stored.TotalAmount.StringFixed(2))

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.Equal(t, "12 Soi Sukhumvit", reloaded.DeliveryAddress)
}

func TestGormCommitAbortLeavesNoTrace(t *testing.T) {
	db := dbtest.Open(t)
	user, item := seedShop(t, db)

	wf := testWorkflow(NewGormUnitOfWork(db), WithMissingMenuPolicy(AbortOnMissingMenu))
	res := wf.Commit(context.Background(), user.ID, testDraft("weekly", item.ID, 4242), validInput())

	assert.Equal(t, StateRolledBack, res.State)
	assert.True(t, errors.Is(res.Err, ErrMenuItemMissing))

	subs, payments, meals := countRows(t, db)
	assert.Zero(t, subs)
	assert.Zero(t, payments)
	assert.Zero(t, meals)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.Equal(t, "Old Road 1", reloaded.DeliveryAddress)
}

func TestGormCommitUnknownUserRollsBack(t *testing.T) {
	db := dbtest.Open(t)
	_, item := seedShop(t, db)

	res := testWorkflow(NewGormUnitOfWork(db)).Commit(context.Background(), 999, testDraft("weekly", item.ID), validInput())

	assert.Equal(t, StateRolledBack, res.State)
	assert.True(t, errors.Is(res.Err, ErrUserNotFound))
	subs, payments, meals := countRows(t, db)
	assert.Zero(t, subs + payments + meals)
}

func TestGormCommitSkipsUnavailableDish(t *testing.T) {
	db := dbtest.Open(t)
	user, item := seedShop(t, db)
	soup := models.MenuItem{Name: "Tom Yum", Category: models.MenuCategorySoup, Price: decimal.RequireFromString("9.00"), IsAvailable: true}
	require.NoError(t, db.Create(&soup).Error)
	require.NoError(t, db.Model(&soup).Update("is_available", false).Error)

	res := testWorkflow(NewGormUnitOfWork(db)).Commit(context.Background(), user.ID, testDraft("weekly", item.ID, soup.ID), validInput())
	require.True(t, res.Committed(), "err: %v", res.Err)
	assert.Equal(t, []uint{soup.ID}, res.SkippedMenuIDs)

	var meals []models.ScheduledMeal
	require.NoError(t, db.Where("subscription_id = ?", res.Subscription.ID).Find(&meals).Error)
	require.Len(t, meals, 1)
	assert.Equal(t, item.ID, meals[0].MenuID)
}

func TestGormCommitAbortsOnUnavailableDish(t *testing.T) {
	db := dbtest.Open(t)
	user, item := seedShop(t, db)
	require.NoError(t, db.Model(&item).Update("is_available", false).Error)

	wf := testWorkflow(NewGormUnitOfWork(db), WithMissingMenuPolicy(AbortOnMissingMenu))
	res := wf.Commit(context.Background(), user.ID, testDraft("weekly", item.ID), validInput())

	assert.Equal(t, StateRolledBack, res.State)
	assert.True(t, errors.Is(res.Err, ErrMenuItemMissing))
	subs, payments, meals := countRows(t, db)
	assert.Zero(t, subs + payments + meals)
}
