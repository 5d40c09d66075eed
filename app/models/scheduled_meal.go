package models

import "time"

const (
	MEAL_SCHEDULED = "scheduled"
	MEAL_PREPARING = "preparing"
	MEAL_DELIVERED = "delivered"
	MEAL_SKIPPED   = "skipped"
)

type ScheduledMeal struct {
	ID             string    `gorm:"type:char(36);primaryKey" json:"id"`
	SubscriptionID string    `gorm:"type:char(36);index;not null" json:"subscription_id"`
	MenuID         uint      `gorm:"index;not null" json:"menu_id"`
	MenuItem       MenuItem  `gorm:"foreignKey:MenuID" json:"menu_item,omitempty"`
	DeliveryDate   time.Time `gorm:"index;not null" json:"delivery_date"`
	Quantity       int       `gorm:"not null" json:"quantity"`
	Status         string    `gorm:"type:varchar(20);not null" json:"status"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
