package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	SUBSCRIPTION_ACTIVE          = "active"
	SUBSCRIPTION_PAUSED          = "paused"
	SUBSCRIPTION_CANCELLED       = "cancelled"
	SUBSCRIPTION_PENDING_PAYMENT = "pending_payment"
	SUBSCRIPTION_EXPIRED         = "expired"
)

// DeliveryDayNames lists the accepted delivery day tokens in week order.
var DeliveryDayNames = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// Subscription is the order a customer places at checkout.
type Subscription struct {
	ID                    string           `gorm:"type:char(36);primaryKey" json:"id"`
	UserID                uint             `gorm:"index;not null" json:"user_id"`
	PlanID                uint             `gorm:"index;not null" json:"plan_id"`
	Plan                  SubscriptionPlan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
	Status                string           `gorm:"type:varchar(30);index;not null" json:"status"`
	StartDate             time.Time        `gorm:"not null" json:"start_date"`
	NextBillingDate       time.Time        `gorm:"not null" json:"next_billing_date"`
	BillingCycle          string           `gorm:"type:varchar(20);not null" json:"billing_cycle"`
	TotalAmount           decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	DeliveryDays          string           `gorm:"type:varchar(100)" json:"delivery_days"`
	PreferredDeliveryTime string           `gorm:"type:varchar(30)" json:"preferred_delivery_time"`
	SpecialInstructions   string           `gorm:"type:text" json:"special_instructions"`
	AutoRenew             bool             `json:"auto_renew"`
	ScheduledMeals        []ScheduledMeal  `gorm:"foreignKey:SubscriptionID" json:"scheduled_meals,omitempty"`
	CreatedAt             time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

// Days splits the stored comma separated delivery days.
func (s *Subscription) Days() []string {
	if strings.TrimSpace(s.DeliveryDays) == "" {
		return nil
	}
	parts := strings.Split(s.DeliveryDays, ",")
	days := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			days = append(days, p)
		}
	}
	return days
}

// SetDays stores the days in week order without duplicates.
func (s *Subscription) SetDays(days []string) {
	wanted := make(map[string]bool, len(days))
	for _, d := range days {
		wanted[strings.ToLower(strings.TrimSpace(d))] = true
	}
	ordered := make([]string, 0, len(wanted))
	for _, name := range DeliveryDayNames {
		if wanted[name] {
			ordered = append(ordered, name)
		}
	}
	s.DeliveryDays = strings.Join(ordered, ",")
}

func (s *Subscription) IsActive() bool {
	return s.Status == SUBSCRIPTION_ACTIVE
}

// ShortID is the first block of the uuid, used as order number on pages and mails.
func (s *Subscription) ShortID() string {
	if i := strings.IndexByte(s.ID, '-'); i > 0 {
		return strings.ToUpper(s.ID[:i])
	}
	return strings.ToUpper(s.ID)
}
