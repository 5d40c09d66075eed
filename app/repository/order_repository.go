package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/ManuelReschke/BaanBox/app/models"
)

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// ListByUser returns the user's orders, newest first.
func (r *orderRepository) ListByUser(userID uint, offset, limit int) ([]OrderSummary, error) {
	var subs []models.Subscription
	err := r.db.Preload("Plan", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Where("user_id = ?", userID).
		Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, nil
	}

	ids := make([]string, len(subs))
	for i, s := range subs {
		ids[i] = s.ID
	}
	var counts []struct {
		SubscriptionID string
		Meals          int64
	}
	err = r.db.Model(&models.ScheduledMeal{}).
		Select("subscription_id, COUNT(*) AS meals").
		Where("subscription_id IN ?", ids).
		Group("subscription_id").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	byID := make(map[string]int64, len(counts))
	for _, c := range counts {
		byID[c.SubscriptionID] = c.Meals
	}

	out := make([]OrderSummary, len(subs))
	for i, s := range subs {
		out[i] = OrderSummary{Subscription: s, PlanName: s.Plan.Name, MealCount: byID[s.ID]}
	}
	return out, nil
}

func (r *orderRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Subscription{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// GetDetail returns gorm.ErrRecordNotFound for orders of other users.
func (r *orderRepository) GetDetail(userID uint, subscriptionID string) (*OrderDetail, error) {
	var sub models.Subscription
	err := r.db.
		Preload("Plan", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("ScheduledMeals", func(db *gorm.DB) *gorm.DB { return db.Order("delivery_date ASC").Order("id ASC") }).
		Preload("ScheduledMeals.MenuItem", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Where("id = ? AND user_id = ?", subscriptionID, userID).
		First(&sub).Error
	if err != nil {
		return nil, err
	}

	detail := &OrderDetail{Subscription: sub}
	var payment models.Payment
	err = r.db.Where("subscription_id = ? AND user_id = ?", sub.ID, userID).First(&payment).Error
	switch {
	case err == nil:
		detail.Payment = &payment
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}
	return detail, nil
}

func (r *orderRepository) CountByStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Subscription{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

func (r *orderRepository) CountMeals(status string) (int64, error) {
	var count int64
	q := r.db.Model(&models.ScheduledMeal{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Count(&count).Error
	return count, err
}

func (r *orderRepository) CountCustomers() (int64, error) {
	var count int64
	err := r.db.Model(&models.Subscription{}).Distinct("user_id").Count(&count).Error
	return count, err
}

// GetDailyStats buckets orders and scheduled meals per calendar day of
// startDate's location. Days without orders are included with zeros.
func (r *orderRepository) GetDailyStats(startDate, endDate time.Time) ([]models.DailyStats, error) {
	var orders []struct {
		ID        string
		CreatedAt time.Time
	}
	err := r.db.Model(&models.Subscription{}).
		Select("id, created_at").
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Scan(&orders).Error
	if err != nil {
		return nil, err
	}

	loc := startDate.Location()
	day := func(t time.Time) string { return t.In(loc).Format("2006-01-02") }

	index := map[string]int{}
	var stats []models.DailyStats
	for d := startDate; !d.After(endDate); d = d.AddDate(0, 0, 1) {
		index[day(d)] = len(stats)
		stats = append(stats, models.DailyStats{Date: day(d)})
	}

	orderDay := make(map[string]string, len(orders))
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		if i, ok := index[day(o.CreatedAt)]; ok {
			stats[i].Orders++
			orderDay[o.ID] = day(o.CreatedAt)
			ids = append(ids, o.ID)
		}
	}
	if len(ids) == 0 {
		return stats, nil
	}

	var meals []struct {
		SubscriptionID string
		Meals          int
	}
	err = r.db.Model(&models.ScheduledMeal{}).
		Select("subscription_id, COUNT(*) AS meals").
		Where("subscription_id IN ?", ids).
		Group("subscription_id").
		Scan(&meals).Error
	if err != nil {
		return nil, err
	}
	for _, m := range meals {
		stats[index[orderDay[m.SubscriptionID]]].Meals += m.Meals
	}
	return stats, nil
}
