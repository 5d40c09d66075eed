package repository

import (
	"gorm.io/gorm"

	"github.com/ManuelReschke/BaanBox/app/models"
)

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(n *models.Notification) error {
	return r.db.Create(n).Error
}

func (r *notificationRepository) ListRecent(userID uint, limit int) ([]models.Notification, error) {
	var list []models.Notification
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Order("id DESC").Limit(limit).Find(&list).Error
	return list, err
}

func (r *notificationRepository) CountUnread(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).Where("user_id = ? AND is_read = ?", userID, false).Count(&count).Error
	return count, err
}

func (r *notificationRepository) MarkAllRead(userID uint) error {
	return r.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}

// PruneToLatest deletes everything but the newest keep notifications of the user.
func (r *notificationRepository) PruneToLatest(userID uint, keep int) (int64, error) {
	var keepIDs []uint
	err := r.db.Model(&models.Notification{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").Limit(keep).
		Pluck("id", &keepIDs).Error
	if err != nil {
		return 0, err
	}

	q := r.db.Where("user_id = ?", userID)
	if len(keepIDs) > 0 {
		q = q.Where("id NOT IN ?", keepIDs)
	}
	res := q.Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}
