package billing

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ManuelReschke/BaanBox/app/models"
)

// Repository provides DB operations used by the billing service.
type Repository interface {
	GetSubscription(ctx context.Context, userID uint, id string) (*models.Subscription, error)
	UpdateSubscriptionStatus(ctx context.Context, userID uint, id, status string, nextBilling *time.Time) error
	SetAutoRenew(ctx context.Context, userID uint, id string, autoRenew bool) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetSubscription(ctx context.Context, userID uint, id string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) UpdateSubscriptionStatus(ctx context.Context, userID uint, id, status string, nextBilling *time.Time) error {
	updates := map[string]interface{}{"status": status}
	if nextBilling != nil {
		updates["next_billing_date"] = *nextBilling
	}
	res := r.db.WithContext(ctx).Model(&models.Subscription{}).Where("id = ? AND user_id = ?", id, userID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *gormRepository) SetAutoRenew(ctx context.Context, userID uint, id string, autoRenew bool) error {
	return r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("auto_renew", autoRenew).Error
}
