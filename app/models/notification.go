package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	NOTIFICATION_ORDER    = "order"
	NOTIFICATION_DELIVERY = "delivery"
	NOTIFICATION_ACCOUNT  = "account"
	NOTIFICATION_SYSTEM   = "system"
)

type Notification struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	UserID  uint   `gorm:"index" json:"user_id"`
	Type    string `gorm:"type:varchar(50)" json:"type" validate:"oneof=order delivery account system"`
	Content string `gorm:"type:text" json:"content"`
	Link    string `gorm:"type:varchar(255);default:null" json:"link"`
	IsRead  bool   `gorm:"default:false;index" json:"is_read"`
	// ReferenceID points at the subscription an order notification is about.
	ReferenceID string         `gorm:"type:varchar(36);default:null" json:"reference_id"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// MarkAsRead flags a single notification as read
func (n *Notification) MarkAsRead(db *gorm.DB) error {
	n.IsRead = true
	return db.Model(n).Update("is_read", true).Error
}

// NewOrderNotification builds the notice shown after a successful checkout.
func NewOrderNotification(userID uint, sub *Subscription, planName string) *Notification {
	return &Notification{
		UserID:      userID,
		Type:        NOTIFICATION_ORDER,
		Content:     "Your " + planName + " order #" + sub.ShortID() + " has been placed.",
		Link:        "/orders/" + sub.ID,
		ReferenceID: sub.ID,
	}
}
